package session

// Mode selects which subset of the question bank a session presents.
type Mode string

const (
	ModeNormal Mode = "normal" // the full bank
	ModeRetry  Mode = "retry"  // only questions previously answered wrong
)

// OptionView is one option as shown to the user: its text plus the index it
// occupies in the stored question. The JSON names match what the web client
// already persists.
type OptionView struct {
	Text          string `json:"txt"`
	OriginalIndex int    `json:"originalIdx"`
}

// Progress is the per-user persisted session state. Answers map a question
// ID to the display index the user picked, not the original option index;
// ShuffledOptions is what maps one back to the other.
type Progress struct {
	Answers         map[string]int          `json:"answers"`
	ShuffledOptions map[string][]OptionView `json:"shuffledOptions"`
	CurrentIndex    int                     `json:"currentIndex"`
	Mode            Mode                    `json:"mode"`
}

// EmptyProgress is the state a user gets on first access.
func EmptyProgress() Progress {
	return Progress{
		Answers:         map[string]int{},
		ShuffledOptions: map[string][]OptionView{},
		CurrentIndex:    0,
		Mode:            ModeNormal,
	}
}
