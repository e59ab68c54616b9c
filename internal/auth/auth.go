// Package auth implements sign-in against the CV Studio API and tracks the
// resulting session.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cvforge/cvchat/internal/metrics"
)

// Session holds the signed-in user's token and identity.
type Session struct {
	Token     string
	UserName  string
	ExpiresAt time.Time
}

// Valid reports whether the session can still authorize requests.
func (s *Session) Valid() bool {
	if s == nil || s.Token == "" {
		return false
	}
	// Tokens without an exp claim never expire client-side.
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}

// Provider signs in against the CV Studio API and holds the current session.
// It is used from the single UI goroutine and is not safe for concurrent use.
type Provider struct {
	endpoint   string
	email      string
	password   string
	httpClient *http.Client
	collector  *metrics.Collector

	session *Session
}

// NewProvider creates a provider for the given API base URL and credentials.
// collector may be nil to disable stats.
func NewProvider(baseURL, email, password string, timeout time.Duration, collector *metrics.Collector) *Provider {
	return &Provider{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/api/auth/login",
		email:    email,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		collector: collector,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		Name string `json:"name"`
	} `json:"user"`
}

// SignIn authenticates with the configured credentials and stores the
// resulting session on success.
func (p *Provider) SignIn(ctx context.Context) (*Session, error) {
	start := time.Now()
	session, err := p.signIn(ctx)
	if p.collector != nil {
		p.collector.Record(metrics.OpSignIn, time.Since(start), err != nil)
	}
	return session, err
}

func (p *Provider) signIn(ctx context.Context) (*Session, error) {
	reqBody, err := json.Marshal(loginRequest{Email: p.email, Password: p.password})
	if err != nil {
		return nil, fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute login request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sign in failed: %s - %s", resp.Status, string(body))
	}

	var loginResp loginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return nil, fmt.Errorf("unmarshal login response: %w", err)
	}
	if loginResp.Token == "" {
		return nil, fmt.Errorf("sign in failed: empty token")
	}

	p.session = &Session{
		Token:     loginResp.Token,
		UserName:  loginResp.User.Name,
		ExpiresAt: tokenExpiry(loginResp.Token),
	}
	return p.session, nil
}

// Authenticated reports whether a valid session is present.
func (p *Provider) Authenticated() bool {
	return p.session.Valid()
}

// Token returns the current bearer token, or "" when signed out.
func (p *Provider) Token() string {
	if !p.session.Valid() {
		return ""
	}
	return p.session.Token
}

// tokenExpiry extracts the exp claim from the token without verifying the
// signature. Verification is the server's job; the client only needs to know
// when to re-prompt for sign-in. Returns the zero time for opaque tokens.
func tokenExpiry(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
