package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/srniranjan/dopamine-menu/internal"
)

// RemoteProvider resolves federation access tokens. When a shared JWT
// secret is configured the token is verified locally; otherwise (or when
// local verification fails structurally) the token is posted to the
// provider's verify endpoint.
type RemoteProvider struct {
	VerifyURL  string
	JWTSecret  []byte
	HTTPClient *http.Client
	logger     internal.Logger
}

func NewRemoteProvider(verifyURL, jwtSecret string, logger internal.Logger) *RemoteProvider {
	var secret []byte
	if jwtSecret != "" {
		secret = []byte(jwtSecret)
	}
	return &RemoteProvider{
		VerifyURL:  verifyURL,
		JWTSecret:  secret,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
	}
}

func (a *RemoteProvider) ValidateTokenLocal(token string) (*Identity, error) {
	return nil, errors.New("not implemented in RemoteProvider")
}

func (a *RemoteProvider) ValidateTokenRemote(ctx context.Context, token string) (*Identity, error) {
	if len(a.JWTSecret) > 0 {
		id, err := a.verifyJWT(token)
		if err == nil {
			return id, nil
		}
		a.logger.Debugf("jwt verification failed, falling back to verify endpoint: %v", err)
	}
	if a.VerifyURL == "" {
		return nil, errors.New("token rejected and no verify endpoint configured")
	}
	return a.verifyHTTP(ctx, token)
}

type accessClaims struct {
	Username string `json:"preferred_username,omitempty"`
	Name     string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (a *RemoteProvider) verifyJWT(token string) (*Identity, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &Identity{Subject: claims.Subject, Username: claims.Username, Name: claims.Name}, nil
}

func (a *RemoteProvider) verifyHTTP(ctx context.Context, token string) (*Identity, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", a.VerifyURL, bytes.NewReader(body))
	if err != nil {
		a.logger.Errorf("failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		a.logger.Errorf("failed to call auth service: %v", err)
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		a.logger.Errorf("auth service returned %d", resp.StatusCode)
		return nil, errors.New("auth service returned non-200")
	}
	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		a.logger.Errorf("failed to decode auth response: %v", err)
		return nil, err
	}
	if id.Subject == "" {
		return nil, errors.New("auth service returned empty subject")
	}
	return &id, nil
}
