// Package session owns the client's authenticated identity: the persisted
// token, the user profile, and the single authoritative answer to "who is
// logged in".
package session

import (
	"context"
	"sync"

	"roombook/api"
	"roombook/models"
	"roombook/storage"
	"roombook/utils"

	"go.uber.org/zap"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusVerifying
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusVerifying:
		return "verifying"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Manager is the session lifecycle API. Construct one per process and pass it
// to the components that need it; there is no ambient global.
type Manager interface {
	Restore(ctx context.Context) error
	Login(ctx context.Context, initData, phone string) error
	Logout()
	RefreshProfile(ctx context.Context) error

	Status() Status
	Token() string
	User() *models.UserProfile
	Subscribe(fn func())
}

// DefaultManager is the production Manager implementation.
type DefaultManager struct {
	mu    sync.Mutex
	api   api.Client
	store storage.TokenStore

	status Status
	token  string
	user   *models.UserProfile
	// epoch increments on every login/logout so an in-flight Restore that
	// was superseded cannot overwrite newer state.
	epoch uint64

	subscribers []func()
}

// NewManager builds a session manager over the given API client and token
// store. The initial status is Unauthenticated until Restore runs.
func NewManager(client api.Client, store storage.TokenStore) *DefaultManager {
	return &DefaultManager{api: client, store: store}
}

// Restore verifies any persisted token on startup. It always resolves to
// Authenticated or Unauthenticated; Verifying is observable only while the
// remote calls are in flight. If there is no persisted token, no network call
// is made. Verification or profile-fetch failures purge the persisted token,
// collapse the session, and are returned for reporting.
func (m *DefaultManager) Restore(ctx context.Context) error {
	token, err := m.store.Load()
	if err != nil {
		utils.GetLogger().Warn("Restore: failed to read persisted token", zap.Error(err))
		token = ""
	}

	m.mu.Lock()
	if token == "" {
		m.status = StatusUnauthenticated
		m.token = ""
		m.user = nil
		m.mu.Unlock()
		m.notify()
		return nil
	}
	m.status = StatusVerifying
	m.token = token
	epoch := m.epoch
	m.mu.Unlock()
	m.notify()

	valid, err := m.api.VerifyToken(ctx, token)
	if err == nil && valid {
		var profile *models.Profile
		profile, err = m.api.GetProfile(ctx)
		if err == nil {
			m.applyAuthenticated(epoch, token, profile.User)
			return nil
		}
		// Any profile-fetch failure is treated like an invalid token: the
		// token may have been revoked remotely.
	}

	m.collapse(epoch)
	if err != nil {
		utils.GetLogger().Warn("Restore: token verification failed", zap.Error(err))
		return err
	}
	return nil
}

// Login submits the host-provided auth payload. On success the returned token
// is persisted and the session becomes Authenticated with the returned
// profile. On failure the session is left untouched and the error is returned;
// retrying is the caller's decision.
func (m *DefaultManager) Login(ctx context.Context, initData, phone string) error {
	resp, err := m.api.Authenticate(ctx, models.AuthRequest{InitData: initData, Phone: phone})
	if err != nil {
		utils.GetLogger().Warn("Login failed", zap.Error(err))
		return err
	}

	if err := m.store.Save(resp.Token); err != nil {
		// The in-memory session is still good; only the next restart loses it.
		utils.GetLogger().Error("Login: failed to persist token", zap.Error(err))
	}

	m.mu.Lock()
	m.epoch++
	m.status = StatusAuthenticated
	m.token = resp.Token
	user := resp.User
	m.user = &user
	m.mu.Unlock()
	m.notify()
	return nil
}

// Logout purges the persisted token and resets the session. It has no network
// effect and cannot fail; calling it repeatedly is a no-op after the first.
func (m *DefaultManager) Logout() {
	m.mu.Lock()
	alreadyOut := m.status == StatusUnauthenticated && m.token == ""
	m.epoch++
	m.status = StatusUnauthenticated
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if alreadyOut {
		return
	}
	if err := m.store.Clear(); err != nil {
		utils.GetLogger().Warn("Logout: failed to clear persisted token", zap.Error(err))
	}
	m.notify()
}

// RefreshProfile re-fetches the profile under the current token. Any failure
// forces a logout, since the token can be invalidated remotely at any time.
func (m *DefaultManager) RefreshProfile(ctx context.Context) error {
	m.mu.Lock()
	if m.status != StatusAuthenticated {
		m.mu.Unlock()
		return utils.AuthorizationError(0, "Not authenticated")
	}
	epoch := m.epoch
	m.mu.Unlock()

	profile, err := m.api.GetProfile(ctx)
	if err != nil {
		utils.GetLogger().Warn("RefreshProfile failed, forcing logout", zap.Error(err))
		m.collapse(epoch)
		return err
	}

	m.mu.Lock()
	if m.epoch == epoch {
		user := profile.User
		m.user = &user
	}
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *DefaultManager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *DefaultManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *DefaultManager) User() *models.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Subscribe registers fn to run after every session state change. Callbacks
// run outside the manager's lock.
func (m *DefaultManager) Subscribe(fn func()) {
	m.mu.Lock()
	m.subscribers = append(m.subscribers, fn)
	m.mu.Unlock()
}

// applyAuthenticated installs a verified identity unless a newer
// login/logout superseded the operation that produced it.
func (m *DefaultManager) applyAuthenticated(epoch uint64, token string, user models.UserProfile) {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return
	}
	m.status = StatusAuthenticated
	m.token = token
	m.user = &user
	m.mu.Unlock()
	m.notify()
}

// collapse purges the persisted token and resets to Unauthenticated, unless
// a newer login/logout superseded the operation that failed.
func (m *DefaultManager) collapse(epoch uint64) {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return
	}
	m.status = StatusUnauthenticated
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		utils.GetLogger().Warn("Failed to clear persisted token", zap.Error(err))
	}
	m.notify()
}

func (m *DefaultManager) notify() {
	m.mu.Lock()
	subs := make([]func(), len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
