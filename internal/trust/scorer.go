package trust

import (
	"strings"
	"time"
)

// Heuristic constants. They are untuned; see DefaultParams.
const (
	TimeBonusCap   = 15
	TimeBonusStep  = 30 * time.Second
	VarietyPoints  = 5
	SearchBonus    = 10
	VoiceBonus     = 20
	BotWindow      = 5
	BotMinEvents   = 3
	BotGap         = 500 * time.Millisecond
	BotPenalty     = 20
	HumanThreshold = 80

	SearchAction = "search"
	VoicePrefix  = "voice"

	MinScore = 0
	MaxScore = 100
)

// Params holds the scoring knobs. The zero value is not useful; start from
// DefaultParams.
type Params struct {
	TimeBonusCap   int           `json:"timeBonusCap"`
	TimeBonusStep  time.Duration `json:"timeBonusStep"`
	VarietyPoints  int           `json:"varietyPoints"`
	SearchBonus    int           `json:"searchBonus"`
	VoiceBonus     int           `json:"voiceBonus"`
	SearchAction   string        `json:"searchAction"`
	VoicePrefix    string        `json:"voicePrefix"`
	BotWindow      int           `json:"botWindow"`
	BotMinEvents   int           `json:"botMinEvents"`
	BotGap         time.Duration `json:"botGap"`
	BotPenalty     int           `json:"botPenalty"`
	HumanThreshold int           `json:"humanThreshold"`
}

// DefaultParams returns the stock heuristic.
func DefaultParams() Params {
	return Params{
		TimeBonusCap:   TimeBonusCap,
		TimeBonusStep:  TimeBonusStep,
		VarietyPoints:  VarietyPoints,
		SearchBonus:    SearchBonus,
		VoiceBonus:     VoiceBonus,
		SearchAction:   SearchAction,
		VoicePrefix:    VoicePrefix,
		BotWindow:      BotWindow,
		BotMinEvents:   BotMinEvents,
		BotGap:         BotGap,
		BotPenalty:     BotPenalty,
		HumanThreshold: HumanThreshold,
	}
}

// Breakdown is the per-component view of a score.
type Breakdown struct {
	TimeBonus    int `json:"timeBonus"`
	VarietyBonus int `json:"varietyBonus"`
	SearchBonus  int `json:"searchBonus"`
	VoiceBonus   int `json:"voiceBonus"`
	BotPenalty   int `json:"botPenalty"`
	// Raw is the unclamped sum; Score is Raw clamped to [0,100].
	Raw   int `json:"raw"`
	Score int `json:"score"`
}

// Scorer computes trust scores from an interaction history.
type Scorer struct {
	params Params
}

// NewScorer creates a scorer.
func NewScorer(p Params) *Scorer {
	return &Scorer{params: p}
}

// Params returns the scorer's configuration.
func (s *Scorer) Params() Params {
	return s.params
}

// Recompute derives the score from scratch. It reads nothing but its
// arguments.
func (s *Scorer) Recompute(start, now time.Time, log []Interaction) int {
	return s.Breakdown(start, now, log).Score
}

// Breakdown computes every component of the score.
func (s *Scorer) Breakdown(start, now time.Time, log []Interaction) Breakdown {
	p := s.params
	var b Breakdown

	b.TimeBonus = s.timeBonus(now.Sub(start))

	distinct := make(map[string]struct{}, len(log))
	searched, spoke := false, false
	for _, in := range log {
		distinct[in.Action] = struct{}{}
		if in.Action == p.SearchAction {
			searched = true
		}
		if strings.HasPrefix(in.Action, p.VoicePrefix) {
			spoke = true
		}
	}
	b.VarietyBonus = p.VarietyPoints * len(distinct)
	if searched {
		b.SearchBonus = p.SearchBonus
	}
	if spoke {
		b.VoiceBonus = p.VoiceBonus
	}
	if s.looksAutomated(log) {
		b.BotPenalty = p.BotPenalty
	}

	b.Raw = b.TimeBonus + b.VarietyBonus + b.SearchBonus + b.VoiceBonus - b.BotPenalty
	b.Score = clamp(b.Raw)
	return b
}

func (s *Scorer) timeBonus(elapsed time.Duration) int {
	if elapsed <= 0 || s.params.TimeBonusStep <= 0 {
		return 0
	}
	steps := int(elapsed / s.params.TimeBonusStep)
	if steps > s.params.TimeBonusCap {
		return s.params.TimeBonusCap
	}
	return steps
}

// looksAutomated reports whether the trailing window of interactions came
// in faster than a person plausibly clicks: at least BotMinEvents entries
// with every consecutive gap under BotGap.
func (s *Scorer) looksAutomated(log []Interaction) bool {
	window := log
	if len(window) > s.params.BotWindow {
		window = window[len(window)-s.params.BotWindow:]
	}
	if len(window) < s.params.BotMinEvents || len(window) < 2 {
		return false
	}
	for i := 1; i < len(window); i++ {
		if window[i].Timestamp.Sub(window[i-1].Timestamp) >= s.params.BotGap {
			return false
		}
	}
	return true
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
