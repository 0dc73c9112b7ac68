package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

func at(offset time.Duration, action string) Interaction {
	return Interaction{Timestamp: t0.Add(offset), Action: action}
}

func TestBreakdown_VoiceOnly(t *testing.T) {
	s := NewScorer(DefaultParams())
	log := []Interaction{at(0, "voice_submit")}

	b := s.Breakdown(t0, t0, log)
	assert.Equal(t, 0, b.TimeBonus)
	assert.Equal(t, 5, b.VarietyBonus)
	assert.Equal(t, 0, b.SearchBonus)
	assert.Equal(t, 20, b.VoiceBonus)
	assert.Equal(t, 0, b.BotPenalty)
	assert.Equal(t, 25, b.Score)

	// 65s in: two full 30s steps.
	assert.Equal(t, 27, s.Recompute(t0, t0.Add(65*time.Second), log))
}

func TestBreakdown_TimeBonusCapped(t *testing.T) {
	s := NewScorer(DefaultParams())
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{-time.Minute, 0},
		{0, 0},
		{29 * time.Second, 0},
		{30 * time.Second, 1},
		{89 * time.Second, 2},
		{450 * time.Second, 15},
		{10 * time.Hour, 15},
	}
	for _, tt := range tests {
		b := s.Breakdown(t0, t0.Add(tt.elapsed), nil)
		assert.Equal(t, tt.want, b.TimeBonus, "elapsed %v", tt.elapsed)
	}
}

func TestBreakdown_SearchMustMatchExactly(t *testing.T) {
	s := NewScorer(DefaultParams())

	b := s.Breakdown(t0, t0, []Interaction{at(0, "search_again"), at(time.Second, "Search")})
	assert.Equal(t, 0, b.SearchBonus)
	assert.Equal(t, 10, b.VarietyBonus)

	b = s.Breakdown(t0, t0, []Interaction{at(0, "search")})
	assert.Equal(t, 10, b.SearchBonus)
}

func TestBreakdown_VoicePrefix(t *testing.T) {
	s := NewScorer(DefaultParams())

	for _, action := range []string{"voice", "voice_stop", "voice_search", "voicemail"} {
		b := s.Breakdown(t0, t0, []Interaction{at(0, action)})
		assert.Equal(t, 20, b.VoiceBonus, action)
	}
	for _, action := range []string{"Voice", "start_voice", " voice"} {
		b := s.Breakdown(t0, t0, []Interaction{at(0, action)})
		assert.Equal(t, 0, b.VoiceBonus, action)
	}
}

func TestBreakdown_BotPenalty(t *testing.T) {
	s := NewScorer(DefaultParams())

	var log []Interaction
	for i := 0; i < 5; i++ {
		log = append(log, at(time.Duration(i)*100*time.Millisecond, "click"))
	}

	b := s.Breakdown(t0, log[4].Timestamp, log)
	assert.Equal(t, 20, b.BotPenalty)
	assert.Equal(t, 5-20, b.Raw)
	assert.Equal(t, 0, b.Score)
}

func TestBreakdown_BotPenaltyFloorsWithBonuses(t *testing.T) {
	s := NewScorer(DefaultParams())
	log := []Interaction{
		at(0, "search"),
		at(100*time.Millisecond, "search"),
		at(200*time.Millisecond, "search"),
		at(300*time.Millisecond, "search"),
		at(400*time.Millisecond, "search"),
	}
	b := s.Breakdown(t0, t0.Add(400*time.Millisecond), log)
	assert.Equal(t, 5+10-20, b.Raw)
	assert.Equal(t, 0, b.Score)
}

func TestBreakdown_BotWindow(t *testing.T) {
	s := NewScorer(DefaultParams())
	fast := 100 * time.Millisecond

	tests := []struct {
		name    string
		offsets []time.Duration
		penalty bool
	}{
		{"two fast events", []time.Duration{0, fast}, false},
		{"three fast events", []time.Duration{0, fast, 2 * fast}, true},
		{"gap exactly at threshold", []time.Duration{0, 500 * time.Millisecond, time.Second}, false},
		{"one slow gap inside window", []time.Duration{0, fast, 2 * fast, 2*fast + time.Second, 3*fast + time.Second}, false},
		{"slow event before window", []time.Duration{0, 10 * time.Second, 10*time.Second + fast, 10*time.Second + 2*fast, 10*time.Second + 3*fast, 10*time.Second + 4*fast}, true},
		{"latest gap slow", []time.Duration{0, fast, 2 * fast, 3 * fast, 3*fast + time.Second}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log []Interaction
			for _, off := range tt.offsets {
				log = append(log, at(off, "click"))
			}
			b := s.Breakdown(t0, log[len(log)-1].Timestamp, log)
			assert.Equal(t, tt.penalty, b.BotPenalty > 0)
		})
	}
}

func TestBreakdown_ClampsAtHundred(t *testing.T) {
	s := NewScorer(DefaultParams())
	var log []Interaction
	for i := 0; i < 30; i++ {
		log = append(log, at(time.Duration(i)*time.Second, "action_"+string(rune('a'+i))))
	}
	log = append(log, at(31*time.Second, "search"), at(32*time.Second, "voice_search"))

	b := s.Breakdown(t0, t0.Add(time.Hour), log)
	assert.Greater(t, b.Raw, 100)
	assert.Equal(t, 100, b.Score)
}

func TestGate(t *testing.T) {
	g := NewGate(HumanThreshold)
	assert.False(t, g.Decide(79).Human)
	assert.True(t, g.Decide(80).Human)
	assert.True(t, g.Decide(100).Human)
	assert.Equal(t, Decision{Score: 42, Human: false, Threshold: 80}, g.Decide(42))
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 15, p.TimeBonusCap)
	assert.Equal(t, 30*time.Second, p.TimeBonusStep)
	assert.Equal(t, 5, p.BotWindow)
	assert.Equal(t, 500*time.Millisecond, p.BotGap)
	assert.Equal(t, 80, p.HumanThreshold)
}
