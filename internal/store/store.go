package store

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// ImportSummary reports the outcome of a bulk question import. Counting is
// best effort: rows insert one at a time, so a failure mid-array leaves the
// earlier inserts in place.
type ImportSummary struct {
	Added      int
	Duplicates int
	Total      int // questions in the bank after the import
}
