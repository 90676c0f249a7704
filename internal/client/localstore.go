package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/examtrainer/backend/internal/session"
)

// localState is the single namespaced record the fallback keeps: answers
// and option orders only, matching what the local-only client revision
// stored under its one browser key.
type localState struct {
	Answers         map[string]int                  `json:"answers"`
	ShuffledOptions map[string][]session.OptionView `json:"shuffledOptions"`
}

// FileStore is the degraded fallback when no progress backend is available:
// one JSON file in place of the sync API. Mode and position are not kept;
// a local session always resumes in normal mode at the top.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the saved state. A missing file is empty progress, not an
// error.
func (f *FileStore) Load() (session.Progress, error) {
	p := session.EmptyProgress()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, err
	}

	var state localState
	if err := json.Unmarshal(data, &state); err != nil {
		return p, err
	}
	if state.Answers != nil {
		p.Answers = state.Answers
	}
	if state.ShuffledOptions != nil {
		p.ShuffledOptions = state.ShuffledOptions
	}
	return p, nil
}

// Save writes answers and option orders back to the file.
func (f *FileStore) Save(p session.Progress) error {
	data, err := json.Marshal(localState{
		Answers:         p.Answers,
		ShuffledOptions: p.ShuffledOptions,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o644)
}

// Delete removes the file; deleting state that was never saved is a no-op.
func (f *FileStore) Delete() error {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
