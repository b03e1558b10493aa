package auth

import "context"

// Identity is the decoded caller attached to a request. The zero value is an
// anonymous caller.
type Identity struct {
	EvaluatorID uint
	Name        string
	IsAdmin     bool
	Permissions Set
}

// Anonymous is the identity of a caller without a valid token.
var Anonymous = Identity{}

// Authenticated reports whether the caller presented a valid token.
func (i Identity) Authenticated() bool {
	return i.EvaluatorID != 0
}

// Can reports whether the caller holds the capability, admins hold every capability.
func (i Identity) Can(c Capability) bool {
	if !i.Authenticated() {
		return false
	}
	return i.IsAdmin || i.Permissions.Has(c)
}

// Owns reports whether the caller is the given evaluator.
func (i Identity) Owns(evaluatorID uint) bool {
	return i.Authenticated() && i.EvaluatorID == evaluatorID
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey{}, identity)
}

// FromContext extracts the identity from ctx, falling back to Anonymous.
func FromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Anonymous
	}
	if identity, ok := ctx.Value(identityKey{}).(Identity); ok {
		return identity
	}
	return Anonymous
}
