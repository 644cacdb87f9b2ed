package quota

import "context"

type planCodeCtxKey struct{}

// WithPlanCode stores a resolved plan code in the context so downstream
// handlers in the same request can skip a second subscription lookup.
func WithPlanCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, planCodeCtxKey{}, code)
}

// PlanCodeFromContext retrieves the plan code from the context, if present.
func PlanCodeFromContext(ctx context.Context) (string, bool) {
	code, ok := ctx.Value(planCodeCtxKey{}).(string)
	return code, ok
}
