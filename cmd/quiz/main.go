// Command quiz is a terminal client for the exam trainer backend. It loads
// the question bank and the user's saved progress, runs the quiz session
// locally, and pushes every state change back through the sync API.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/examtrainer/backend/internal/client"
	"github.com/examtrainer/backend/internal/domain/question"
	"github.com/examtrainer/backend/internal/session"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "backend address")
	user := flag.String("user", "", "username")
	pass := flag.String("pass", "", "password")
	local := flag.String("local", "", "path to a local progress file (offline fallback, no backend)")
	importFile := flag.String("import", "", "JSON array of questions to upload, then exit")
	flag.Parse()

	if err := run(*server, *user, *pass, *local, *importFile); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(server, user, pass, local, importFile string) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	stdin := bufio.NewScanner(os.Stdin)

	if local != "" {
		return runLocal(local, rng, stdin)
	}

	if user == "" || pass == "" {
		return errors.New("-user and -pass are required (or use -local)")
	}

	api := client.New(server)
	if err := api.Login(user, pass); err != nil {
		return err
	}

	if importFile != "" {
		return runImport(api, importFile)
	}

	wire, err := api.Questions()
	if errors.Is(err, client.ErrUnauthorized) {
		// Token went bad between login and first call; one fresh login.
		if err := api.Login(user, pass); err != nil {
			return err
		}
		wire, err = api.Questions()
	}
	if err != nil {
		return err
	}
	if len(wire) == 0 {
		fmt.Println("The question bank is empty. Upload questions with -import first.")
		return nil
	}

	saved, err := api.Progress()
	if err != nil {
		return err
	}

	pusher := client.NewPusher(api.SaveProgress, func(err error) {
		fmt.Fprintln(os.Stderr, "warning: progress push failed:", err)
	})
	defer pusher.Close()

	sess := session.Start(toDomain(wire), saved, rng, pusher)
	loop(&sess, stdin, func() error {
		if err := api.DeleteProgress(); err != nil {
			return err
		}
		sess = session.Start(toDomain(wire), session.EmptyProgress(), rng, pusher)
		return nil
	})
	return nil
}

// runLocal drives a session against the single-file fallback store instead
// of the sync API.
func runLocal(path string, rng *rand.Rand, stdin *bufio.Scanner) error {
	fmt.Fprint(os.Stderr, "questions file: ")
	if !stdin.Scan() {
		return errors.New("no questions file given")
	}
	qs, err := readQuestions(strings.TrimSpace(stdin.Text()))
	if err != nil {
		return err
	}

	store := client.NewFileStore(path)
	saved, err := store.Load()
	if err != nil {
		return err
	}

	pusher := client.NewPusher(store.Save, func(err error) {
		fmt.Fprintln(os.Stderr, "warning: could not save progress:", err)
	})
	defer pusher.Close()

	sess := session.Start(toDomain(qs), saved, rng, pusher)
	loop(&sess, stdin, func() error {
		if err := store.Delete(); err != nil {
			return err
		}
		sess = session.Start(toDomain(qs), session.EmptyProgress(), rng, pusher)
		return nil
	})
	return nil
}

func runImport(api *client.API, path string) error {
	qs, err := readQuestions(path)
	if err != nil {
		// Malformed file: report locally, no server call is made.
		return err
	}
	result, err := api.Import(qs)
	if err != nil {
		return err
	}
	fmt.Printf("Import done. Added: %d, duplicates skipped: %d, total in bank: %d\n",
		result.Added, result.Duplicates, result.TotalInDB)
	return nil
}

func readQuestions(path string) ([]client.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var qs []client.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("%s: expected a JSON array of questions: %w", path, err)
	}
	return qs, nil
}

func toDomain(wire []client.Question) []question.Question {
	qs := make([]question.Question, len(wire))
	for i, q := range wire {
		qs[i] = question.Question{
			ID:      q.ID,
			Text:    q.Question,
			Options: q.Options,
			Correct: q.Correct,
		}
	}
	return qs
}

// loop reads commands until quit. reset wipes the stored progress and
// replaces *cur with a fresh session.
func loop(cur **session.Session, stdin *bufio.Scanner, reset func() error) {
	render(*cur)
	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			return
		}
		input := strings.TrimSpace(strings.ToLower(stdin.Text()))
		s := *cur

		switch {
		case input == "q" || input == "quit":
			return
		case input == "n" || input == "next":
			if err := s.Navigate(1); err != nil {
				fmt.Println("Already at the last question.")
				continue
			}
		case input == "p" || input == "prev":
			if err := s.Navigate(-1); err != nil {
				fmt.Println("Already at the first question.")
				continue
			}
		case strings.HasPrefix(input, "j "):
			var n int
			if _, err := fmt.Sscanf(input, "j %d", &n); err != nil {
				fmt.Println("Usage: j <question number>")
				continue
			}
			if err := s.JumpTo(n - 1); err != nil {
				fmt.Println("No such question.")
				continue
			}
		case input == "stats":
			printStats(s)
			continue
		case input == "retry":
			if !s.RetryAvailable() {
				fmt.Println("Nothing to retry.")
				continue
			}
			if !confirm(stdin, "Switch to retry mode over the questions you missed?") {
				continue
			}
			s.StartRetry()
		case input == "reset":
			if !confirm(stdin, "Delete your saved progress and start over?") {
				continue
			}
			if err := reset(); err != nil {
				fmt.Println("Reset failed:", err)
				continue
			}
		case len(input) == 1 && input[0] >= 'a' && input[0] <= 'z':
			answer(s, int(input[0]-'a'))
		default:
			fmt.Println("Commands: a..z answer, n next, p prev, j N jump, stats, retry, reset, q quit")
			continue
		}
		render(*cur)
	}
}

func answer(s *session.Session, displayIndex int) {
	q, ok := s.Current()
	if !ok {
		return
	}
	err := s.RecordAnswer(q.ID, displayIndex)
	switch {
	case errors.Is(err, session.ErrAlreadyAnswered):
		fmt.Println("This question is already answered.")
	case errors.Is(err, session.ErrOutOfRange):
		fmt.Println("No such option.")
	case err == nil:
		order := s.OptionsFor(q)
		if order[displayIndex].OriginalIndex == q.Correct {
			fmt.Println("Correct!")
		} else {
			for i, opt := range order {
				if opt.OriginalIndex == q.Correct {
					fmt.Printf("Wrong. The answer was %c) %s\n", 'a'+i, opt.Text)
					break
				}
			}
		}
	}
}

func render(s *session.Session) {
	q, ok := s.Current()
	if !ok {
		fmt.Println("\nNo questions in this mode.")
		return
	}

	badge := "exam"
	if s.Mode() == session.ModeRetry {
		badge = "retry"
	}
	fmt.Printf("\n[%s] Question %d / %d\n%s\n", badge, s.Position()+1, len(s.Active()), q.Text)

	answered := s.Answered(q)
	picked, _ := s.Answer(q)
	for i, opt := range s.OptionsFor(q) {
		mark := " "
		if answered {
			switch {
			case opt.OriginalIndex == q.Correct:
				mark = "✓"
			case i == picked:
				mark = "✗"
			}
		}
		fmt.Printf("  %s %c) %s\n", mark, 'a'+i, opt.Text)
	}
}

func printStats(s *session.Session) {
	st := s.Stats()
	fmt.Printf("Correct: %d  Wrong: %d  Pending: %d  (%.1f%% answered)\n",
		st.Correct, st.Wrong, st.Pending, st.Percent())
	if s.RetryAvailable() {
		fmt.Println("Type 'retry' to go over the questions you missed.")
	}
}

func confirm(stdin *bufio.Scanner, prompt string) bool {
	fmt.Print(prompt + " [y/N] ")
	if !stdin.Scan() {
		return false
	}
	return strings.TrimSpace(strings.ToLower(stdin.Text())) == "y"
}
