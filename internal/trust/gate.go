package trust

// Decision is the gate's verdict for a score.
type Decision struct {
	Score     int  `json:"score"`
	Human     bool `json:"human"`
	Threshold int  `json:"threshold"`
}

// Gate splits the score range into "human" and "not yet verified".
type Gate struct {
	threshold int
}

// NewGate creates a gate. Scores at or above threshold count as human.
func NewGate(threshold int) Gate {
	return Gate{threshold: threshold}
}

// Threshold returns the cut-off score.
func (g Gate) Threshold() int {
	return g.threshold
}

// Decide applies the threshold.
func (g Gate) Decide(score int) Decision {
	return Decision{
		Score:     score,
		Human:     score >= g.threshold,
		Threshold: g.threshold,
	}
}
