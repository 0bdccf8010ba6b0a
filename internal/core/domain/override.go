package domain

import (
	"context"
	"errors"
	"maps"

	"go.trai.ch/zerr"
)

// Override post-processes a computed plan. It is either a ReplacementPlan or a TransformFn.
type Override interface {
	apply(ctx context.Context, env map[string]string, plan *Plan) (*Plan, error)
}

// ReplacementPlan discards the computed plan in favor of a fixed one.
// Each pass receives its own shallow copy; the configured plan is never written.
type ReplacementPlan struct {
	Plan *Plan
}

func (r ReplacementPlan) apply(_ context.Context, _ map[string]string, _ *Plan) (*Plan, error) {
	plan := *r.Plan
	return &plan, nil
}

// TransformFn receives the environment and the computed plan and returns the final plan.
type TransformFn func(ctx context.Context, env map[string]string, plan *Plan) (*Plan, error)

func (f TransformFn) apply(ctx context.Context, env map[string]string, plan *Plan) (*Plan, error) {
	return f(ctx, maps.Clone(env), plan)
}

// ValidateOverride rejects override values that cannot produce a plan.
// A nil override is valid and means no post-processing.
func ValidateOverride(o Override) error {
	switch v := o.(type) {
	case nil:
		return nil
	case ReplacementPlan:
		if v.Plan == nil {
			return zerr.Wrap(ErrInvalidOverride, "replacement plan is empty")
		}
	case TransformFn:
		if v == nil {
			return zerr.Wrap(ErrInvalidOverride, "transform function is nil")
		}
	}
	return nil
}

// ApplyOverride runs the override against the computed plan.
// The computed plan is returned unchanged when o is nil.
func ApplyOverride(ctx context.Context, o Override, env map[string]string, plan *Plan) (*Plan, error) {
	if err := ValidateOverride(o); err != nil {
		return nil, err
	}
	if o == nil {
		return plan, nil
	}

	out, err := o.apply(ctx, env, plan)
	if err != nil {
		return nil, errors.Join(ErrOverrideFailed, err)
	}
	if out == nil {
		return nil, zerr.Wrap(ErrOverrideFailed, "override returned no plan")
	}
	return out, nil
}
