package session_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/examtrainer/backend/internal/domain/question"
	"github.com/examtrainer/backend/internal/session"
)

func makeQuestions(n int) []question.Question {
	qs := make([]question.Question, n)
	for i := range qs {
		qs[i] = question.Question{
			ID:      fmt.Sprintf("q%d", i+1),
			Text:    fmt.Sprintf("Question %d", i+1),
			Options: []string{"alpha", "beta", "gamma", "delta"},
			Correct: i % 4,
		}
	}
	return qs
}

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// recordingSaver counts pushes and keeps the last snapshot.
type recordingSaver struct {
	pushes int
	last   session.Progress
}

func (r *recordingSaver) SaveProgress(p session.Progress) {
	r.pushes++
	r.last = p
}

// displayIndexOf finds the display position that maps back to original
// option index want.
func displayIndexOf(order []session.OptionView, want int) int {
	for i, opt := range order {
		if opt.OriginalIndex == want {
			return i
		}
	}
	return -1
}

func answerCorrectly(t *testing.T, s *session.Session, q question.Question) {
	t.Helper()
	idx := displayIndexOf(s.OptionsFor(q), q.Correct)
	if err := s.RecordAnswer(q.ID, idx); err != nil {
		t.Fatalf("RecordAnswer(%s, %d): %v", q.ID, idx, err)
	}
}

func answerWrong(t *testing.T, s *session.Session, q question.Question) {
	t.Helper()
	order := s.OptionsFor(q)
	idx := (displayIndexOf(order, q.Correct) + 1) % len(order)
	if err := s.RecordAnswer(q.ID, idx); err != nil {
		t.Fatalf("RecordAnswer(%s, %d): %v", q.ID, idx, err)
	}
}

// ── Option order stability ──────────────────────────────────────────────────

func TestOptionsFor_StableAcrossCalls(t *testing.T) {
	qs := makeQuestions(5)
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), nil)

	for _, q := range s.Active() {
		first := s.OptionsFor(q)
		second := s.OptionsFor(q)
		if len(first) != len(second) {
			t.Fatalf("order length changed for %s", q.ID)
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("order for %s changed at position %d: %+v vs %+v", q.ID, i, first[i], second[i])
			}
		}
	}
}

func TestOptionsFor_IsPermutation(t *testing.T) {
	qs := makeQuestions(3)
	s := session.Start(qs, session.EmptyProgress(), newRNG(7), nil)

	for _, q := range s.Active() {
		order := s.OptionsFor(q)
		if len(order) != len(q.Options) {
			t.Fatalf("expected %d options, got %d", len(q.Options), len(order))
		}
		seen := make(map[int]bool)
		for _, opt := range order {
			if opt.OriginalIndex < 0 || opt.OriginalIndex >= len(q.Options) {
				t.Fatalf("original index %d out of range", opt.OriginalIndex)
			}
			if seen[opt.OriginalIndex] {
				t.Fatalf("original index %d appears twice", opt.OriginalIndex)
			}
			seen[opt.OriginalIndex] = true
			if opt.Text != q.Options[opt.OriginalIndex] {
				t.Errorf("text %q does not match original option %d", opt.Text, opt.OriginalIndex)
			}
		}
	}
}

func TestOptionsFor_RestoredFromSavedProgress(t *testing.T) {
	qs := makeQuestions(4)
	first := session.Start(qs, session.EmptyProgress(), newRNG(3), nil)
	q := first.Active()[0]
	want := first.OptionsFor(q)

	second := session.Start(qs, first.Snapshot(), newRNG(99), nil)
	got := second.OptionsFor(q)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("restored order differs at %d: %+v vs %+v", i, got[i], want[i])
		}
	}
}

// ── Base order shuffle ──────────────────────────────────────────────────────

func TestStart_ShufflesOnFirstLoadOnly(t *testing.T) {
	qs := makeQuestions(20)

	// Fresh sessions with different seeds should disagree on order at
	// least once (statistically certain with 20 questions).
	base := session.Start(qs, session.EmptyProgress(), newRNG(1), nil)
	shuffled := false
	for seed := int64(2); seed < 12; seed++ {
		other := session.Start(qs, session.EmptyProgress(), newRNG(seed), nil)
		if !sameOrder(base.Active(), other.Active()) {
			shuffled = true
			break
		}
	}
	if !shuffled {
		t.Error("expected fresh sessions to randomize the question order")
	}

	// Once an answer exists the bank order is never re-shuffled.
	saved := session.EmptyProgress()
	saved.Answers["q1"] = 0
	saved.ShuffledOptions["q1"] = []session.OptionView{
		{Text: "alpha", OriginalIndex: 0},
		{Text: "beta", OriginalIndex: 1},
		{Text: "gamma", OriginalIndex: 2},
		{Text: "delta", OriginalIndex: 3},
	}
	resumed := session.Start(qs, saved, newRNG(5), nil)
	if !sameOrder(resumed.Active(), qs) {
		t.Error("expected resumed session to keep the stored bank order")
	}
}

func TestStart_ClampsSavedPosition(t *testing.T) {
	qs := makeQuestions(3)
	saved := session.EmptyProgress()
	saved.CurrentIndex = 17

	s := session.Start(qs, saved, newRNG(1), nil)
	if s.Position() != 0 {
		t.Errorf("expected out-of-range position to clamp to 0, got %d", s.Position())
	}
}

func sameOrder(a, b []question.Question) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

// ── Answers ─────────────────────────────────────────────────────────────────

func TestRecordAnswer_Immutable(t *testing.T) {
	qs := makeQuestions(3)
	saver := &recordingSaver{}
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), saver)

	q := s.Active()[0]
	if err := s.RecordAnswer(q.ID, 1); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	pushes := saver.pushes

	err := s.RecordAnswer(q.ID, 2)
	if !errors.Is(err, session.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	if ans, _ := s.Answer(q); ans != 1 {
		t.Errorf("expected answer to stay 1, got %d", ans)
	}
	if saver.pushes != pushes {
		t.Error("rejected answer must not push progress")
	}
}

func TestRecordAnswer_UnknownQuestion(t *testing.T) {
	s := session.Start(makeQuestions(2), session.EmptyProgress(), newRNG(1), nil)
	if err := s.RecordAnswer("nope", 0); !errors.Is(err, session.ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
}

func TestRecordAnswer_DisplayIndexOutOfRange(t *testing.T) {
	qs := makeQuestions(1)
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), nil)
	q := s.Active()[0]

	for _, idx := range []int{-1, len(q.Options)} {
		if err := s.RecordAnswer(q.ID, idx); !errors.Is(err, session.ErrOutOfRange) {
			t.Errorf("index %d: expected ErrOutOfRange, got %v", idx, err)
		}
	}
}

func TestRecordAnswer_PushesSnapshot(t *testing.T) {
	qs := makeQuestions(2)
	saver := &recordingSaver{}
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), saver)

	q := s.Active()[0]
	if err := s.RecordAnswer(q.ID, 0); err != nil {
		t.Fatal(err)
	}
	if saver.pushes != 1 {
		t.Fatalf("expected 1 push, got %d", saver.pushes)
	}
	if got := saver.last.Answers[q.ID]; got != 0 {
		t.Errorf("pushed snapshot has answer %d, want 0", got)
	}
	if len(saver.last.ShuffledOptions[q.ID]) != len(q.Options) {
		t.Error("pushed snapshot is missing the option order")
	}
}

// ── Navigation ──────────────────────────────────────────────────────────────

func TestNavigate_RejectsOutOfRange(t *testing.T) {
	qs := makeQuestions(3)
	saver := &recordingSaver{}
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), saver)

	if err := s.Navigate(-1); !errors.Is(err, session.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange at position 0, got %v", err)
	}
	if s.Position() != 0 {
		t.Errorf("position changed on rejected move: %d", s.Position())
	}
	if saver.pushes != 0 {
		t.Error("rejected move must not push progress")
	}

	if err := s.Navigate(1); err != nil {
		t.Fatalf("forward move: %v", err)
	}
	if s.Position() != 1 {
		t.Errorf("expected position 1, got %d", s.Position())
	}
	if saver.pushes != 1 {
		t.Errorf("expected 1 push after a successful move, got %d", saver.pushes)
	}

	if err := s.Navigate(10); !errors.Is(err, session.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange past the end, got %v", err)
	}
	if s.Position() != 1 {
		t.Errorf("position changed on rejected move: %d", s.Position())
	}
}

func TestJumpTo(t *testing.T) {
	qs := makeQuestions(5)
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), nil)

	if err := s.JumpTo(4); err != nil {
		t.Fatal(err)
	}
	if s.Position() != 4 {
		t.Errorf("expected position 4, got %d", s.Position())
	}
	if err := s.JumpTo(5); !errors.Is(err, session.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestCurrent_EmptyActiveSet(t *testing.T) {
	saved := session.EmptyProgress()
	saved.Mode = session.ModeRetry // nothing answered, so retry set is empty

	s := session.Start(makeQuestions(3), saved, newRNG(1), nil)
	if _, ok := s.Current(); ok {
		t.Fatal("expected no current question on an empty active set")
	}
	if err := s.JumpTo(0); !errors.Is(err, session.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange on empty set, got %v", err)
	}
}

// ── Stats ───────────────────────────────────────────────────────────────────

func TestStats_OneCorrectOneWrongOnePending(t *testing.T) {
	qs := makeQuestions(3)
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), nil)

	answerCorrectly(t, s, s.Active()[0])
	answerWrong(t, s, s.Active()[1])

	st := s.Stats()
	if st.Correct != 1 || st.Wrong != 1 || st.Pending != 1 {
		t.Fatalf("expected 1/1/1, got correct=%d wrong=%d pending=%d", st.Correct, st.Wrong, st.Pending)
	}
	if pct := st.Percent(); pct < 66.6 || pct > 66.7 {
		t.Errorf("expected progress ≈66.6%%, got %.2f", pct)
	}
	if !s.RetryAvailable() {
		t.Error("expected retry to be offered with one wrong answer")
	}
}

func TestRetryAvailable_OnlyInNormalModeWithWrongAnswers(t *testing.T) {
	qs := makeQuestions(2)
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), nil)

	if s.RetryAvailable() {
		t.Error("retry offered with nothing answered")
	}
	answerCorrectly(t, s, s.Active()[0])
	if s.RetryAvailable() {
		t.Error("retry offered with no wrong answers")
	}
	answerWrong(t, s, s.Active()[1])
	if !s.RetryAvailable() {
		t.Error("retry not offered with a wrong answer")
	}

	s.StartRetry()
	if s.RetryAvailable() {
		t.Error("retry offered while already in retry mode")
	}
}

// ── Retry mode ──────────────────────────────────────────────────────────────

func TestStartRetry_ActiveSetIsWrongAnswersOnly(t *testing.T) {
	qs := makeQuestions(4)
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), nil)

	answerCorrectly(t, s, s.Active()[0])
	answerWrong(t, s, s.Active()[1])
	answerWrong(t, s, s.Active()[2])
	// Active()[3] stays unanswered: neither correct nor known-wrong.

	wrongIDs := map[string]bool{s.Active()[1].ID: true, s.Active()[2].ID: true}
	s.StartRetry()

	if s.Mode() != session.ModeRetry {
		t.Fatalf("expected retry mode, got %s", s.Mode())
	}
	if s.Position() != 0 {
		t.Errorf("expected position reset to 0, got %d", s.Position())
	}
	if len(s.Active()) != 2 {
		t.Fatalf("expected 2 retry questions, got %d", len(s.Active()))
	}
	for _, q := range s.Active() {
		if !wrongIDs[q.ID] {
			t.Errorf("question %s does not belong in the retry set", q.ID)
		}
	}
}

func TestRetry_RoundTripThroughSnapshot(t *testing.T) {
	qs := makeQuestions(5)
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), nil)

	answerWrong(t, s, s.Active()[0])
	answerCorrectly(t, s, s.Active()[1])
	answerWrong(t, s, s.Active()[3])
	s.StartRetry()

	want := map[string]bool{}
	for _, q := range s.Active() {
		want[q.ID] = true
	}

	// Persist and reload: the derived retry set must be identical. The
	// stored progress carries no bank order, so only membership is stable.
	reloaded := session.Start(qs, s.Snapshot(), newRNG(42), nil)
	if reloaded.Mode() != session.ModeRetry {
		t.Fatalf("expected reloaded session in retry mode, got %s", reloaded.Mode())
	}
	if len(reloaded.Active()) != len(want) {
		t.Fatalf("expected %d retry questions, got %d", len(want), len(reloaded.Active()))
	}
	for _, q := range reloaded.Active() {
		if !want[q.ID] {
			t.Errorf("question %s does not belong in the reloaded retry set", q.ID)
		}
	}
}

func TestRetry_QuestionsAreAnswerableAgainOnce(t *testing.T) {
	qs := makeQuestions(3)
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), nil)

	answerWrong(t, s, s.Active()[0])
	answerCorrectly(t, s, s.Active()[1])
	answerCorrectly(t, s, s.Active()[2])
	s.StartRetry()

	q := s.Active()[0]
	if s.Answered(q) {
		t.Fatal("retried question should present as answerable")
	}

	// The new answer replaces the old wrong one.
	answerCorrectly(t, s, q)
	if !s.Answered(q) {
		t.Fatal("re-answered question should be locked again")
	}
	if err := s.RecordAnswer(q.ID, 0); !errors.Is(err, session.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered after re-answering, got %v", err)
	}

	st := s.Stats()
	if st.Correct != 1 || st.Wrong != 0 || st.Pending != 0 {
		t.Errorf("expected 1/0/0 after correcting the retry, got %+v", st)
	}

	// Back in normal mode on the next reload the fix sticks: nothing left
	// to retry.
	snap := s.Snapshot()
	snap.Mode = session.ModeNormal
	normal := session.Start(qs, snap, newRNG(2), nil)
	if normal.RetryAvailable() {
		t.Error("expected no retry after the wrong answer was corrected")
	}
}

func TestRetry_OptionOrderSurvivesModeSwitch(t *testing.T) {
	qs := makeQuestions(2)
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), nil)

	q := s.Active()[0]
	want := s.OptionsFor(q)
	answerWrong(t, s, q)
	answerCorrectly(t, s, s.Active()[1])

	s.StartRetry()
	got := s.OptionsFor(q)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("option order changed after mode switch at %d", i)
		}
	}
}

// ── Reset ───────────────────────────────────────────────────────────────────

func TestReset(t *testing.T) {
	qs := makeQuestions(3)
	saver := &recordingSaver{}
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), saver)

	answerWrong(t, s, s.Active()[0])
	s.StartRetry()
	s.Reset()

	if s.Mode() != session.ModeNormal {
		t.Errorf("expected normal mode after reset, got %s", s.Mode())
	}
	if s.Position() != 0 {
		t.Errorf("expected position 0 after reset, got %d", s.Position())
	}
	if len(s.Active()) != 3 {
		t.Errorf("expected the full bank active after reset, got %d", len(s.Active()))
	}
	snap := saver.last
	if len(snap.Answers) != 0 || len(snap.ShuffledOptions) != 0 {
		t.Error("expected the pushed snapshot to be empty after reset")
	}
}

// ── Snapshot ────────────────────────────────────────────────────────────────

func TestSnapshot_IsACopy(t *testing.T) {
	qs := makeQuestions(2)
	s := session.Start(qs, session.EmptyProgress(), newRNG(1), nil)
	q := s.Active()[0]
	if err := s.RecordAnswer(q.ID, 0); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	snap.Answers[q.ID] = 3
	snap.ShuffledOptions[q.ID][0] = session.OptionView{Text: "mutated", OriginalIndex: 9}

	if ans, _ := s.Answer(q); ans != 0 {
		t.Error("mutating a snapshot leaked into the session answers")
	}
	if s.OptionsFor(q)[0].Text == "mutated" {
		t.Error("mutating a snapshot leaked into the session orders")
	}
}
