package auth

import "context"

// Identity is what the identity provider resolves a credential to. Subject
// is the federation user id; the rest is profile data used by user sync.
type Identity struct {
	Subject  string `json:"subject"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
}

type Provider interface {
	ValidateTokenLocal(token string) (*Identity, error)
	ValidateTokenRemote(ctx context.Context, token string) (*Identity, error)
}
