// Package dice rolls ability scores with the rpg-toolkit dice roller
package dice

//go:generate mockgen -destination=mock/mock_service.go -package=dicemock github.com/KirkDiggler/sheetform/internal/orchestrators/dice Service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/sheetform/internal/errors"
)

// Rolling methods
const (
	MethodStandard = "4d6_drop_lowest"
	MethodClassic  = "3d6"
)

// AbilityScoreCount is the number of scores rolled per request
const AbilityScoreCount = 6

// Service rolls dice for the character sheet form
type Service interface {
	RollAbilityScores(ctx context.Context, input *RollAbilityScoresInput) (*RollAbilityScoresOutput, error)
}

// RollFunc rolls count dice of the given size and returns each die
type RollFunc func(count, size int) ([]int, error)

// Config holds the dependencies for the dice orchestrator
type Config struct {
	// Roll defaults to the rpg-toolkit roller
	Roll RollFunc
}

// Validate ensures the config is usable
func (c *Config) Validate() error {
	return nil
}

type orchestrator struct {
	roll RollFunc
}

// NewOrchestrator creates a new dice orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	roll := cfg.Roll
	if roll == nil {
		roll = rollWithToolkit
	}

	return &orchestrator{roll: roll}, nil
}

// rollWithToolkit rolls through rpg-toolkit and recovers the individual
// dice from the roll description, formatted like "+2d6[3,4]=7"
func rollWithToolkit(count, size int) ([]int, error) {
	roll, err := dice.NewRoll(count, size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create dice roll")
	}

	total := roll.GetValue()
	description := roll.GetDescription()

	var individual []int
	start := strings.Index(description, "[")
	end := strings.Index(description, "]")
	if start >= 0 && end > start {
		for _, ds := range strings.Split(description[start+1:end], ",") {
			if d, err := strconv.Atoi(strings.TrimSpace(ds)); err == nil {
				individual = append(individual, d)
			}
		}
	}

	sum := 0
	for _, d := range individual {
		sum += d
	}
	if len(individual) != count || sum != total {
		return nil, errors.Internalf("unexpected roll description %q", description)
	}

	return individual, nil
}

// keepHighest splits rolled dice into the kept and dropped sets
func keepHighest(rolled []int, drop int) (kept, dropped []int) {
	sorted := append([]int(nil), rolled...)
	sort.Ints(sorted)
	if drop > len(sorted) {
		drop = len(sorted)
	}
	return sorted[drop:], sorted[:drop]
}

// RollAbilityScores rolls six scores for the entity
func (o *orchestrator) RollAbilityScores(ctx context.Context, input *RollAbilityScoresInput) (*RollAbilityScoresOutput, error) {
	if input == nil || input.Entity == nil {
		return nil, errors.InvalidArgument("entity is required")
	}
	if input.Entity.GetID() == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}

	method := input.Method
	if method == "" {
		method = MethodStandard
	}

	var count, drop int
	switch method {
	case MethodStandard:
		count, drop = 4, 1
	case MethodClassic:
		count, drop = 3, 0
	default:
		return nil, errors.InvalidArgumentf("unsupported rolling method: %s", method)
	}
	notation := fmt.Sprintf("%dd6", count)

	rolls := make([]AbilityRoll, 0, AbilityScoreCount)
	for i := 0; i < AbilityScoreCount; i++ {
		rolled, err := o.roll(count, 6)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll ability score %d", i+1)
		}

		kept, dropped := keepHighest(rolled, drop)
		total := 0
		for _, d := range kept {
			total += d
		}

		rolls = append(rolls, AbilityRoll{
			Notation: notation,
			Dice:     kept,
			Dropped:  dropped,
			Total:    total,
		})
	}

	out := &RollAbilityScoresOutput{Method: method, Rolls: rolls}

	slog.InfoContext(ctx, "ability scores rolled",
		"entity_id", input.Entity.GetID(),
		"entity_type", input.Entity.GetType(),
		"method", method,
		"scores", out.Scores(),
	)

	return out, nil
}
