package auth

import (
	"context"
	"errors"

	"github.com/srniranjan/dopamine-menu/internal"
)

type LocalProvider struct {
	Token  string
	logger internal.Logger
}

func NewLocalProvider(token string, logger internal.Logger) *LocalProvider {
	return &LocalProvider{Token: token, logger: logger}
}

func (a *LocalProvider) ValidateTokenLocal(token string) (*Identity, error) {
	if token == a.Token {
		return &Identity{Subject: "dev-user", Username: "demo", Name: "Demo User"}, nil
	}
	a.logger.Warnf("invalid token: %s", token)
	return nil, errors.New("invalid token")
}

func (a *LocalProvider) ValidateTokenRemote(ctx context.Context, token string) (*Identity, error) {
	a.logger.Warnf("ValidateTokenRemote not implemented in LocalProvider")
	return nil, errors.New("not implemented in LocalProvider")
}
