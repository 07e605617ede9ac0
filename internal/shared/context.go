package shared

import "context"

// Principal describes the authenticated caller attached to a request.
type Principal struct {
	ID     int64
	Email  string
	Claims map[string]any
}

// IsAdmin reports whether the principal carries the admin claim.
func (p *Principal) IsAdmin() bool {
	if p == nil {
		return false
	}
	admin, _ := p.Claims["admin"].(bool)
	return admin
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
