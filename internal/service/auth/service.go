// Package auth wraps the login, logout and inscription endpoints.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"storefront-client/internal/domain"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrIncompleteLogin means the HTTP call succeeded but the response
	// was missing the token or the client id; the login is treated as
	// failed and nothing is persisted.
	ErrIncompleteLogin = errors.New("login response missing token or client id")
)

type api interface {
	Do(ctx context.Context, method, endpoint string, body interface{}, requireAuth bool) (json.RawMessage, error)
}

type sessionWriter interface {
	SetSession(domain.Session) error
}

// Service is a stateless wrapper over the auth endpoints.
type Service struct {
	api      api
	sessions sessionWriter
}

// New creates the auth service.
func New(a api, sessions sessionWriter) *Service {
	return &Service{api: a, sessions: sessions}
}

// loginResponse accepts both legacy names for the client id. Neither
// may leak past this package.
type loginResponse struct {
	Token      string `json:"token"`
	ClientID   *int   `json:"client_id"`
	UserPK     *int   `json:"user_pk"`
	Expiration string `json:"expiration"`
}

// Login authenticates and persists the session. Both token and client
// id are required even on HTTP success.
func (s *Service) Login(ctx context.Context, email, password string) (domain.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return domain.Session{}, ErrInvalidCredentials
	}

	raw, err := s.api.Do(ctx, "POST", "/api/login/", map[string]string{
		"email":    email,
		"password": password,
	}, false)
	if err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 400 {
			return domain.Session{}, ErrInvalidCredentials
		}
		return domain.Session{}, err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return domain.Session{}, fmt.Errorf("decode login response: %w", err)
	}

	id := 0
	switch {
	case resp.ClientID != nil:
		id = *resp.ClientID
	case resp.UserPK != nil:
		id = *resp.UserPK
	}
	sess := domain.Session{Token: resp.Token, ClientID: id}
	if !sess.Complete() {
		return domain.Session{}, ErrIncompleteLogin
	}
	if resp.Expiration != "" {
		if t, err := time.Parse(time.RFC3339, resp.Expiration); err == nil {
			sess.ExpiresAt = t
		}
	}

	if err := s.sessions.SetSession(sess); err != nil {
		return domain.Session{}, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

// Logout notifies the server. The caller clears local state first and
// decides what to do with a failure here.
func (s *Service) Logout(ctx context.Context) error {
	_, err := s.api.Do(ctx, "POST", "/api/logout/", nil, true)
	return err
}

// RegisterInput captures the inscription form.
type RegisterInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
	Street          string
	PostalCode      string
	City            string
	Country         string
}

const passwordMin = 8

var postalCodeRe = regexp.MustCompile(`^\d{5}$`)

// Register validates the form client-side, then calls the inscription
// endpoint. Validation failures never reach the network.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if strings.TrimSpace(in.Email) == "" {
		return errors.New("email required")
	}
	if len(in.Password) < passwordMin {
		return fmt.Errorf("password must be at least %d characters", passwordMin)
	}
	if in.Password != in.PasswordConfirm {
		return errors.New("password confirmation does not match")
	}
	if in.PostalCode != "" && !postalCodeRe.MatchString(in.PostalCode) {
		return errors.New("malformed postal code")
	}

	_, err := s.api.Do(ctx, "POST", "/api/inscription/", map[string]string{
		"email":       strings.TrimSpace(strings.ToLower(in.Email)),
		"password":    in.Password,
		"prenom":      in.FirstName,
		"nom":         in.LastName,
		"rue":         in.Street,
		"code_postal": in.PostalCode,
		"ville":       in.City,
		"pays":        in.Country,
	}, false)
	return err
}
