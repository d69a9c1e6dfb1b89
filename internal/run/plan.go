package run

import (
	"errors"
	"fmt"
	"os"

	"github.com/systmms/opsync/internal/config"
	"github.com/systmms/opsync/internal/resolve"
	"github.com/systmms/opsync/internal/template"
)

// TargetPlan describes what one target would look up, without looking
// anything up.
type TargetPlan struct {
	Target config.Target
	Keys   []resolve.Key
	Err    error
}

// PlanTargets inspects every target and lists the lookups a run would
// perform: parsed placeholders merged with target defaults, deduped,
// in first-appearance order. Only template sources are read; the
// provider is never touched, so a plan works without a session.
func PlanTargets(targets []config.Target) []TargetPlan {
	plans := make([]TargetPlan, 0, len(targets))
	for _, target := range targets {
		plans = append(plans, planTarget(target))
	}
	return plans
}

func planTarget(target config.Target) TargetPlan {
	plan := TargetPlan{Target: target}

	if !target.IsTemplate() {
		if target.Item == "" {
			plan.Err = &resolve.MissingItemError{Target: target.Name}
			return plan
		}
		plan.Keys = []resolve.Key{{Account: target.Account, Vault: target.Vault, Item: target.Item}}
		return plan
	}

	sourcePath, err := ExpandPath(target.Source)
	if err != nil {
		plan.Err = err
		return plan
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		plan.Err = fmt.Errorf("failed to read template source '%s': %w", target.Source, err)
		return plan
	}

	refs, err := template.ParseAll(string(source))
	if err != nil {
		plan.Err = err
		return plan
	}

	seen := make(map[resolve.Key]bool, len(refs))
	var merged []error
	for _, ref := range refs {
		key, err := resolve.KeyFor(target, ref)
		if err != nil {
			merged = append(merged, err)
			continue
		}
		if !seen[key] {
			seen[key] = true
			plan.Keys = append(plan.Keys, key)
		}
	}
	plan.Err = errors.Join(merged...)

	return plan
}
