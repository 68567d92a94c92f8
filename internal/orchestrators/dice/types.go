package dice

import (
	"github.com/KirkDiggler/rpg-toolkit/core"
)

// RollAbilityScoresInput defines the request for rolling ability scores
type RollAbilityScoresInput struct {
	// Entity is whoever the scores are rolled for
	Entity core.Entity
	// Method is MethodStandard or MethodClassic; empty means MethodStandard
	Method string
}

// AbilityRoll is one rolled score
type AbilityRoll struct {
	Notation string
	// Dice holds the kept dice, Dropped the discarded ones
	Dice    []int
	Dropped []int
	Total   int
}

// RollAbilityScoresOutput defines the response for rolling ability scores
type RollAbilityScoresOutput struct {
	Method string
	Rolls  []AbilityRoll
}

// Scores returns the totals in roll order
func (o *RollAbilityScoresOutput) Scores() []int {
	scores := make([]int, len(o.Rolls))
	for i, r := range o.Rolls {
		scores[i] = r.Total
	}
	return scores
}
