package auth

// SessionState is the server-side status of the evaluator a token was minted for.
type SessionState struct {
	Found           bool
	Locked          bool
	RefreshRequired bool
}
