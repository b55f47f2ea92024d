package reconcile

import (
	"fmt"
	"strings"

	"flow-vault/core/models"
)

// decision is a strategy's verdict for one object.
type decision struct {
	action  models.Action
	skip    models.SkipReason
	message string
}

func apply(action models.Action) decision {
	return decision{action: action, skip: models.SkipNone}
}

func skip(reason models.SkipReason, message string) decision {
	return decision{action: models.ActionNone, skip: reason, message: message}
}

// Strategy decides what happens to an object given whether the target already has it.
// The set of strategies is closed; construct one directly or with ParseStrategy.
type Strategy interface {
	// Name returns the CLI name of the strategy.
	Name() string

	decide(present bool) decision
}

// SourceWins overwrites the target unconditionally (create or update).
type SourceWins struct{}

func (SourceWins) Name() string { return "source-wins" }

func (SourceWins) decide(present bool) decision {
	if present {
		return apply(models.ActionUpdate)
	}
	return apply(models.ActionCreate)
}

// TargetWins leaves objects the target already has untouched.
type TargetWins struct{}

func (TargetWins) Name() string { return "target-wins" }

func (TargetWins) decide(present bool) decision {
	if present {
		return skip(models.SkipDuplicate, "target already has this object")
	}
	return apply(models.ActionCreate)
}

// UpdateExisting only updates objects the target already has.
type UpdateExisting struct{}

func (UpdateExisting) Name() string { return "update-existing" }

func (UpdateExisting) decide(present bool) decision {
	if !present {
		return skip(models.SkipUnsupported, "absent at target; update-existing does not create")
	}
	return apply(models.ActionUpdate)
}

// AddMissing only creates objects the target lacks.
type AddMissing struct{}

func (AddMissing) Name() string { return "add-missing" }

func (AddMissing) decide(present bool) decision {
	if present {
		return skip(models.SkipDuplicate, "target already has this object")
	}
	return apply(models.ActionCreate)
}

// Strategies lists every strategy in display order.
var Strategies = []Strategy{SourceWins{}, TargetWins{}, UpdateExisting{}, AddMissing{}}

// ParseStrategy resolves a strategy name. An empty name yields SourceWins.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return SourceWins{}, nil
	}
	for _, s := range Strategies {
		if s.Name() == name {
			return s, nil
		}
	}
	names := make([]string, 0, len(Strategies))
	for _, s := range Strategies {
		names = append(names, s.Name())
	}
	return nil, fmt.Errorf("unknown strategy %q (valid: %s)", name, strings.Join(names, ", "))
}
