package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------

var ErrInvalidUser = errors.New("user id cannot be empty")

// -----------------------------------------------------------------------------
// LocalProvider
// -----------------------------------------------------------------------------

// LocalProvider is an in-process identity source. Every sign-in opens a new
// session id.
type LocalProvider struct {
	Logger *logger.Logger

	mu        sync.Mutex
	current   *models.MUser
	listeners []*listener
}

type listener struct {
	fn func(*models.MUser)
}

func NewLocalProvider(log *logger.Logger) *LocalProvider {
	if log == nil {
		log = logger.NewNop()
	}
	return &LocalProvider{Logger: log}
}

// -----------------------------------------------------------------------------

// SignIn replaces the current user and notifies listeners.
func (p *LocalProvider) SignIn(ctx context.Context, user models.MUser) (*models.MUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user.UID = strings.TrimSpace(user.UID)
	if user.UID == "" {
		return nil, ErrInvalidUser
	}
	if user.DisplayName == "" {
		user.DisplayName = user.UID
	}
	user.SessionID = uuid.NewString()

	p.mu.Lock()
	p.current = &user
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	p.Logger.Info("User %s signed in (session %s)", user.UID, user.SessionID)
	notify(listeners, &user)

	signedIn := user
	return &signedIn, nil
}

// -----------------------------------------------------------------------------

// SignOut clears the current user. Signing out while signed out is a no-op.
func (p *LocalProvider) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return nil
	}
	uid := p.current.UID
	p.current = nil
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	p.Logger.Info("User %s signed out", uid)
	notify(listeners, nil)
	return nil
}

// -----------------------------------------------------------------------------

func (p *LocalProvider) Current() *models.MUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// -----------------------------------------------------------------------------

// OnChange delivers the current user (or nil) immediately, then every change,
// in registration order.
func (p *LocalProvider) OnChange(fn func(*models.MUser)) func() {
	l := &listener{fn: fn}

	p.mu.Lock()
	p.listeners = append(p.listeners, l)
	current := p.current
	p.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, registered := range p.listeners {
				if registered == l {
					p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
					break
				}
			}
		})
	}
}

// -----------------------------------------------------------------------------

func (p *LocalProvider) snapshotListeners() []*listener {
	out := make([]*listener, len(p.listeners))
	copy(out, p.listeners)
	return out
}

func notify(listeners []*listener, user *models.MUser) {
	for _, l := range listeners {
		l.fn(user)
	}
}
