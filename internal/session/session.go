package session

import (
	"errors"
	"math/rand"

	"github.com/examtrainer/backend/internal/domain/question"
)

var (
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrOutOfRange      = errors.New("position out of range")
	ErrUnknownQuestion = errors.New("question not in active set")
)

// Saver receives a full progress snapshot after every state change. Pushes
// are fire and forget: a lost final write only costs the user a re-answer.
type Saver interface {
	SaveProgress(Progress)
}

// Session owns all quiz state for one user: the active question list, the
// current position, and the per-question answer and option-order maps.
// It is not safe for concurrent use; each user drives exactly one session.
type Session struct {
	all     []question.Question
	active  []question.Question
	answers map[string]int
	orders  map[string][]OptionView
	pos     int
	mode    Mode

	// Questions re-attempted during this retry session. A stored wrong
	// answer keeps deriving the retry set across reloads, but only locks
	// the question again once it has been re-answered here.
	reanswered map[string]bool

	rng   *rand.Rand
	saver Saver
}

// Start rebuilds a session from the question bank and saved progress.
// The base order is shuffled exactly once per bank: only a session with no
// recorded answers gets a fresh random order, so a reload keeps the order
// the user already saw. The saved position is clamped to the active set;
// saver may be nil when nothing should be persisted.
func Start(questions []question.Question, saved Progress, rng *rand.Rand, saver Saver) *Session {
	s := &Session{
		answers:    map[string]int{},
		orders:     map[string][]OptionView{},
		reanswered: map[string]bool{},
		mode:       ModeNormal,
		rng:        rng,
		saver:      saver,
	}
	for qid, ans := range saved.Answers {
		s.answers[qid] = ans
	}
	for qid, order := range saved.ShuffledOptions {
		s.orders[qid] = append([]OptionView(nil), order...)
	}
	if saved.Mode == ModeRetry {
		s.mode = ModeRetry
	}

	s.all = make([]question.Question, len(questions))
	copy(s.all, questions)
	if s.mode == ModeNormal && len(s.answers) == 0 {
		rng.Shuffle(len(s.all), func(i, j int) {
			s.all[i], s.all[j] = s.all[j], s.all[i]
		})
	}

	s.active = s.filterActive()
	s.pos = saved.CurrentIndex
	if s.pos < 0 || s.pos >= len(s.active) {
		s.pos = 0
	}
	return s
}

// filterActive derives the active subset for the current mode. In retry
// mode a question qualifies iff it has a recorded answer, a cached display
// order, and the answer maps back to a wrong option. Questions never
// answered are neither correct nor known-wrong, so they stay out.
func (s *Session) filterActive() []question.Question {
	if s.mode != ModeRetry {
		return s.all
	}
	var active []question.Question
	for _, q := range s.all {
		if s.isWrong(q) {
			active = append(active, q)
		}
	}
	return active
}

func (s *Session) isWrong(q question.Question) bool {
	ans, order, ok := s.recordedAnswer(q)
	return ok && order[ans].OriginalIndex != q.Correct
}

func (s *Session) isCorrect(q question.Question) bool {
	ans, order, ok := s.recordedAnswer(q)
	return ok && order[ans].OriginalIndex == q.Correct
}

// recordedAnswer returns the stored display index and order for q, if both
// exist and the index is valid for the order.
func (s *Session) recordedAnswer(q question.Question) (int, []OptionView, bool) {
	ans, ok := s.answers[q.ID]
	if !ok {
		return 0, nil, false
	}
	order, ok := s.orders[q.ID]
	if !ok || ans < 0 || ans >= len(order) {
		return 0, nil, false
	}
	return ans, order, true
}

// Current returns the question at the current position, or false when the
// active set is empty.
func (s *Session) Current() (question.Question, bool) {
	if len(s.active) == 0 {
		return question.Question{}, false
	}
	return s.active[s.pos], true
}

// Position returns the current position within the active set.
func (s *Session) Position() int { return s.pos }

// Active returns the questions of the current mode, in display order.
func (s *Session) Active() []question.Question { return s.active }

// Mode returns the current session mode.
func (s *Session) Mode() Mode { return s.mode }

// OptionsFor returns the display order for q, generating and caching a
// uniform permutation on first use. Re-displaying a question never
// reorders its options.
func (s *Session) OptionsFor(q question.Question) []OptionView {
	if order, ok := s.orders[q.ID]; ok {
		return order
	}
	order := make([]OptionView, len(q.Options))
	for i, txt := range q.Options {
		order[i] = OptionView{Text: txt, OriginalIndex: i}
	}
	s.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	s.orders[q.ID] = order
	return order
}

// Answered reports whether q is locked for this session. In retry mode the
// stored wrong answer that put q into the set does not lock it; only a
// re-answer given during this session does.
func (s *Session) Answered(q question.Question) bool {
	if _, _, ok := s.recordedAnswer(q); !ok {
		return false
	}
	if s.mode == ModeRetry {
		return s.reanswered[q.ID]
	}
	return true
}

// Answer returns the recorded display index for q, if any.
func (s *Session) Answer(q question.Question) (int, bool) {
	ans, _, ok := s.recordedAnswer(q)
	return ans, ok
}

// RecordAnswer stores the display index the user selected for questionID
// and pushes the new state. An already answered question rejects further
// answers until the session is reset (or the question comes up in retry
// mode again).
func (s *Session) RecordAnswer(questionID string, displayIndex int) error {
	q, ok := s.find(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if s.Answered(q) {
		return ErrAlreadyAnswered
	}
	order := s.OptionsFor(q)
	if displayIndex < 0 || displayIndex >= len(order) {
		return ErrOutOfRange
	}
	s.answers[q.ID] = displayIndex
	if s.mode == ModeRetry {
		s.reanswered[q.ID] = true
	}
	s.push()
	return nil
}

func (s *Session) find(questionID string) (question.Question, bool) {
	for _, q := range s.active {
		if q.ID == questionID {
			return q, true
		}
	}
	return question.Question{}, false
}

// Navigate moves the current position by delta. Out-of-range moves are
// rejected without wraparound and without a persistence push.
func (s *Session) Navigate(delta int) error {
	return s.JumpTo(s.pos + delta)
}

// JumpTo sets the current position directly, with the same range and
// persistence contract as Navigate.
func (s *Session) JumpTo(index int) error {
	if index < 0 || index >= len(s.active) {
		return ErrOutOfRange
	}
	s.pos = index
	s.push()
	return nil
}

// Stats summarizes correctness over the active set.
type Stats struct {
	Correct int
	Wrong   int
	Pending int
}

// Percent is the share of answered questions, 0 on an empty set.
func (st Stats) Percent() float64 {
	total := st.Correct + st.Wrong + st.Pending
	if total == 0 {
		return 0
	}
	return float64(st.Correct+st.Wrong) / float64(total) * 100
}

func (s *Session) Stats() Stats {
	var st Stats
	for _, q := range s.active {
		switch {
		case !s.Answered(q):
			st.Pending++
		case s.isCorrect(q):
			st.Correct++
		default:
			st.Wrong++
		}
	}
	return st
}

// RetryAvailable reports whether the retry flow can be offered: only in
// normal mode, and only when something was answered wrong.
func (s *Session) RetryAvailable() bool {
	return s.mode == ModeNormal && s.Stats().Wrong > 0
}

// StartRetry switches to retry mode over the questions answered wrong and
// resets the position. The stored answers stay in place, since they are
// what derives the same retry set on the next reload, but each retried
// question accepts one new answer (see Answered). Confirmation is the
// caller's concern.
func (s *Session) StartRetry() {
	s.mode = ModeRetry
	s.reanswered = map[string]bool{}
	s.active = s.filterActive()
	s.pos = 0
	s.push()
}

// Reset clears all progress and returns the session to its initial empty
// state in normal mode.
func (s *Session) Reset() {
	s.answers = map[string]int{}
	s.orders = map[string][]OptionView{}
	s.reanswered = map[string]bool{}
	s.mode = ModeNormal
	s.pos = 0
	s.active = s.filterActive()
	s.push()
}

// Snapshot exports the state the sync API persists. The maps are copied so
// a snapshot can be handed to a goroutine safely.
func (s *Session) Snapshot() Progress {
	p := EmptyProgress()
	p.CurrentIndex = s.pos
	p.Mode = s.mode
	for qid, ans := range s.answers {
		p.Answers[qid] = ans
	}
	for qid, order := range s.orders {
		p.ShuffledOptions[qid] = append([]OptionView(nil), order...)
	}
	return p
}

func (s *Session) push() {
	if s.saver != nil {
		s.saver.SaveProgress(s.Snapshot())
	}
}
