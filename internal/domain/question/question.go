package question

import (
	"errors"
	"fmt"

	"github.com/examtrainer/backend/internal/id"
)

// Question is one multiple-choice question from the shared bank.
// Options keep their stored order; Correct indexes into Options.
// A question is never mutated after creation.
type Question struct {
	ID      string
	Text    string
	Options []string
	Correct int
}

// New validates the fields and assigns a fresh ID.
func New(text string, options []string, correct int) (*Question, error) {
	if err := Validate(text, options, correct); err != nil {
		return nil, err
	}
	return &Question{
		ID:      id.GenerateID(),
		Text:    text,
		Options: options,
		Correct: correct,
	}, nil
}

// Validate checks the invariants shared by single-add and bulk import.
func Validate(text string, options []string, correct int) error {
	if text == "" {
		return errors.New("question text is required")
	}
	if len(options) < 2 {
		return errors.New("at least 2 options are required")
	}
	if correct < 0 || correct >= len(options) {
		return fmt.Errorf("correct index %d is out of range for %d options", correct, len(options))
	}
	return nil
}
