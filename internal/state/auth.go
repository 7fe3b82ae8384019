// Package state holds the client-side state containers: authentication,
// cart and theme. Containers synchronize with the backend on
// authentication transitions and publish change events on the bus.
package state

import (
	"context"
	"log"
	"sync"
	"time"

	"storefront-client/internal/domain"
	"storefront-client/internal/events"
)

// AuthStatus is the authentication container state.
type AuthStatus int

const (
	StatusUnauthenticated AuthStatus = iota
	StatusLoading
	StatusAuthenticated
)

type authService interface {
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Logout(ctx context.Context) error
}

type accountService interface {
	Get(ctx context.Context, clientID int) (*domain.Account, error)
}

type sessionStore interface {
	Session() (domain.Session, bool, error)
	ClearSession() error
}

// Auth is the authentication state container. No other container may
// assume authentication without checking it.
type Auth struct {
	mu     sync.Mutex
	status AuthStatus
	user   *domain.Account

	auth     authService
	accounts accountService
	store    sessionStore
	bus      *events.Bus
	logger   *log.Logger
}

// NewAuth creates the container in the unauthenticated state.
func NewAuth(auth authService, accounts accountService, store sessionStore, bus *events.Bus, logger *log.Logger) *Auth {
	return &Auth{
		auth:     auth,
		accounts: accounts,
		store:    store,
		bus:      bus,
		logger:   logger,
	}
}

// Status returns the current container state.
func (a *Auth) Status() AuthStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// User returns the authenticated account, nil otherwise.
func (a *Auth) User() *domain.Account {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

// Authenticated is a convenience check.
func (a *Auth) Authenticated() bool {
	return a.Status() == StatusAuthenticated
}

// Load runs the mount-time validation: a stored, unexpired session is
// validated by fetching account details. Any failure clears storage
// and settles to unauthenticated without surfacing an error.
func (a *Auth) Load(ctx context.Context) error {
	a.setStatus(StatusLoading)

	sess, ok, err := a.store.Session()
	if err != nil {
		a.logger.Printf("read stored session: %v", err)
		a.settleUnauthenticated()
		return nil
	}
	if !ok || sess.Expired(time.Now()) {
		if ok {
			if err := a.store.ClearSession(); err != nil {
				a.logger.Printf("clear expired session: %v", err)
			}
		}
		a.settleUnauthenticated()
		return nil
	}

	user, err := a.accounts.Get(ctx, sess.ClientID)
	if err != nil {
		a.logger.Printf("validate session: %v", err)
		if err := a.store.ClearSession(); err != nil {
			a.logger.Printf("clear invalid session: %v", err)
		}
		a.settleUnauthenticated()
		return nil
	}

	a.settleAuthenticated(user)
	return nil
}

// Login authenticates and populates the full user details. The auth
// service already refuses responses missing the token or client id.
func (a *Auth) Login(ctx context.Context, email, password string) error {
	a.setStatus(StatusLoading)

	sess, err := a.auth.Login(ctx, email, password)
	if err != nil {
		a.settleUnauthenticated()
		return err
	}

	user, err := a.accounts.Get(ctx, sess.ClientID)
	if err != nil {
		if cerr := a.store.ClearSession(); cerr != nil {
			a.logger.Printf("clear session after failed validation: %v", cerr)
		}
		a.settleUnauthenticated()
		return err
	}

	a.settleAuthenticated(user)
	return nil
}

// Logout clears local state synchronously first so the UI reacts
// immediately, then notifies the server best-effort. A server-side
// failure is logged, never surfaced.
func (a *Auth) Logout(ctx context.Context) {
	a.settleUnauthenticated()
	if err := a.auth.Logout(ctx); err != nil {
		a.logger.Printf("server logout failed: %v", err)
	}
	if err := a.store.ClearSession(); err != nil {
		a.logger.Printf("clear session on logout: %v", err)
	}
}

func (a *Auth) setStatus(s AuthStatus) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
}

func (a *Auth) settleAuthenticated(user *domain.Account) {
	a.mu.Lock()
	a.status = StatusAuthenticated
	a.user = user
	a.mu.Unlock()
	if a.bus != nil {
		a.bus.Publish(events.AuthChanged{Authenticated: true})
	}
}

func (a *Auth) settleUnauthenticated() {
	a.mu.Lock()
	wasAuthenticated := a.status == StatusAuthenticated
	a.status = StatusUnauthenticated
	a.user = nil
	a.mu.Unlock()
	if a.bus != nil && wasAuthenticated {
		a.bus.Publish(events.AuthChanged{Authenticated: false})
	}
}
