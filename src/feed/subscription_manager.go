package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// ErrAlreadySubscribed is returned by Subscribe while a feed subscription is
// still active on the same manager.
var ErrAlreadySubscribed = errors.New("feed subscription already active")

const feedSection = "feed"

// -----------------------------------------------------------------------------
// Stats
// -----------------------------------------------------------------------------

type Stats struct {
	Deliveries      int64     `json:"deliveries"`
	SkippedEmpty    int64     `json:"skipped_empty"`
	TransportErrors int64     `json:"transport_errors"`
	MalformedIssues int64     `json:"malformed_issues"`
	LastDelivery    time.Time `json:"last_delivery,omitempty"`
}

// -----------------------------------------------------------------------------
// SubscriptionManager
// -----------------------------------------------------------------------------

// SubscriptionManager owns the live feed subscription of one view and the
// independent identity subscription. It keeps the latest snapshot.
type SubscriptionManager struct {
	transport interfaces.IFeedTransport
	identity  interfaces.IIdentityProvider
	path      string

	Logger       *logger.Logger
	ErrorHandler *helpers.ErrorHandler

	mu        sync.RWMutex
	latest    *models.MFeedSnapshot
	connected bool
	user      *models.MUser
	stats     Stats
	ready     chan struct{}
	readyOnce sync.Once

	activeMu sync.Mutex
	active   *subscription
}

// subscription is one Subscribe call. mu serializes deliveries with
// cancellation so nothing runs after closed is set.
type subscription struct {
	mu     sync.Mutex
	closed bool
}

// -----------------------------------------------------------------------------

// NewSubscriptionManager creates a manager reading the tree at path. identity
// may be nil when no identity source is configured.
func NewSubscriptionManager(transport interfaces.IFeedTransport, identity interfaces.IIdentityProvider, path string, log *logger.Logger) *SubscriptionManager {
	if log == nil {
		log = logger.NewNop()
	}
	if path == "" {
		path = "/"
	}
	return &SubscriptionManager{
		transport:    transport,
		identity:     identity,
		path:         path,
		Logger:       log,
		ErrorHandler: helpers.NewErrorHandler(log),
		ready:        make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------
// Feed subscription
// -----------------------------------------------------------------------------

// Subscribe opens the feed subscription. onSnapshot receives every non-empty
// snapshot, each one replacing the previous wholesale. The returned
// unsubscribe is idempotent, waits for an in-flight delivery and must not be
// called from inside onSnapshot.
func (m *SubscriptionManager) Subscribe(ctx context.Context, onSnapshot func(*models.MFeedSnapshot)) (func(), error) {
	m.activeMu.Lock()
	defer m.activeMu.Unlock()

	if m.active != nil {
		return nil, ErrAlreadySubscribed
	}

	sub := &subscription{}
	listenCtx, cancel := context.WithCancel(ctx)

	stop, err := m.transport.Listen(listenCtx, m.path,
		func(raw []byte) { m.deliver(sub, raw, onSnapshot) },
		func(err error) { m.transportFailed(sub, err) },
	)
	if err != nil {
		cancel()
		terr := helpers.NewTransportError("feed subscription failed", err)
		m.recordTransportError(terr)
		return nil, terr
	}

	m.active = sub
	m.Logger.Info("Subscribed to feed path %s via %s", m.path, m.transport.Name())

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			sub.mu.Lock()
			sub.closed = true
			sub.mu.Unlock()

			stop()
			cancel()

			m.activeMu.Lock()
			if m.active == sub {
				m.active = nil
			}
			m.activeMu.Unlock()
			m.Logger.Info("Unsubscribed from feed path %s", m.path)
		})
	}
	return unsubscribe, nil
}

// -----------------------------------------------------------------------------

func (m *SubscriptionManager) deliver(sub *subscription, raw []byte, onSnapshot func(*models.MFeedSnapshot)) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}

	snapshot, issues := DecodeSnapshot(raw)
	for _, issue := range issues {
		m.ErrorHandler.Handle(issue, feedSection)
	}

	m.mu.Lock()
	m.stats.MalformedIssues += int64(len(issues))
	if snapshot.IsEmpty() {
		m.stats.SkippedEmpty++
		m.mu.Unlock()
		m.Logger.Debug("Skipped empty feed payload")
		return
	}
	m.latest = snapshot
	m.connected = true
	m.stats.Deliveries++
	m.stats.LastDelivery = time.Now()
	m.mu.Unlock()
	m.readyOnce.Do(func() { close(m.ready) })

	if len(issues) == 0 {
		m.ErrorHandler.ResetErrorCount(feedSection)
	}

	if onSnapshot != nil {
		onSnapshot(snapshot)
	}
}

// -----------------------------------------------------------------------------

func (m *SubscriptionManager) transportFailed(sub *subscription, err error) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed || err == nil {
		return
	}
	m.recordTransportError(helpers.NewTransportError("feed transport error", err))
}

func (m *SubscriptionManager) recordTransportError(err error) {
	m.mu.Lock()
	m.stats.TransportErrors++
	m.mu.Unlock()
	m.ErrorHandler.Handle(err, feedSection)
}

// -----------------------------------------------------------------------------
// State
// -----------------------------------------------------------------------------

// Latest returns the most recent snapshot, nil before the first delivery.
func (m *SubscriptionManager) Latest() *models.MFeedSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// WaitLatest blocks until the first snapshot has been delivered. It returns
// helpers.ErrNotYetAvailable when ctx ends first.
func (m *SubscriptionManager) WaitLatest(ctx context.Context) (*models.MFeedSnapshot, error) {
	select {
	case <-m.ready:
		return m.Latest(), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", helpers.ErrNotYetAvailable, ctx.Err())
	}
}

// Connected reports whether at least one snapshot has been received.
func (m *SubscriptionManager) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *SubscriptionManager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// CurrentUser returns the identity last delivered to WatchIdentity.
func (m *SubscriptionManager) CurrentUser() *models.MUser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// -----------------------------------------------------------------------------
// Identity subscription
// -----------------------------------------------------------------------------

// WatchIdentity opens the identity subscription. Its lifecycle is independent
// of the feed subscription. Without an identity source onUser is never called.
func (m *SubscriptionManager) WatchIdentity(onUser func(*models.MUser)) func() {
	if m.identity == nil {
		return func() {}
	}

	sub := &subscription{}
	stop := m.identity.OnChange(func(user *models.MUser) {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		if sub.closed {
			return
		}

		m.mu.Lock()
		m.user = user
		m.mu.Unlock()

		if onUser != nil {
			onUser(user)
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.mu.Lock()
			sub.closed = true
			sub.mu.Unlock()
			stop()
		})
	}
}
