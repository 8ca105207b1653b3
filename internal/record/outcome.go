package record

// Outcome is the terminal result classification a game is partitioned by.
// The set mirrors the corpus directory layout: a win by either side, a
// stalemate, the timeout variants of each, or none for games that ended
// without a decided result.
type Outcome string

const (
	OutcomeWhite            Outcome = "white"
	OutcomeBlack            Outcome = "black"
	OutcomeStalemate        Outcome = "stalemate"
	OutcomeWhiteTimeout     Outcome = "white_timeout"
	OutcomeBlackTimeout     Outcome = "black_timeout"
	OutcomeStalemateTimeout Outcome = "stalemate_timeout"
	OutcomeNone             Outcome = "none"
)

var outcomes = map[Outcome]bool{
	OutcomeWhite:            true,
	OutcomeBlack:            true,
	OutcomeStalemate:        true,
	OutcomeWhiteTimeout:     true,
	OutcomeBlackTimeout:     true,
	OutcomeStalemateTimeout: true,
	OutcomeNone:             true,
}

// ParseOutcome maps a directory name to an Outcome.
func ParseOutcome(s string) (Outcome, bool) {
	o := Outcome(s)
	return o, outcomes[o]
}

func (o Outcome) String() string { return string(o) }
