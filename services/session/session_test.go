package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"roombook/models"
	"roombook/utils"
)

type fakeStore struct {
	mu     sync.Mutex
	token  string
	saves  int
	clears int
}

func (s *fakeStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *fakeStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.saves++
	return nil
}

func (s *fakeStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.clears++
	return nil
}

func (s *fakeStore) clearCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

type fakeAPI struct {
	mu         sync.Mutex
	calls      int
	verifyOK   bool
	verifyErr  error
	profile    *models.Profile
	profileErr error
	authResp   *models.AuthResponse
	authErr    error
}

func (f *fakeAPI) record() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAPI) Authenticate(_ context.Context, _ models.AuthRequest) (*models.AuthResponse, error) {
	f.record()
	return f.authResp, f.authErr
}

func (f *fakeAPI) VerifyToken(_ context.Context, _ string) (bool, error) {
	f.record()
	return f.verifyOK, f.verifyErr
}

func (f *fakeAPI) GetProfile(_ context.Context) (*models.Profile, error) {
	f.record()
	return f.profile, f.profileErr
}

func (f *fakeAPI) ListRooms(_ context.Context) ([]models.Room, error) { f.record(); return nil, nil }

func (f *fakeAPI) GetAvailability(_ context.Context, _ int, _ string) (*models.Availability, error) {
	f.record()
	return nil, nil
}

func (f *fakeAPI) CreateBooking(_ context.Context, _ models.BookingInput) (*models.Booking, error) {
	f.record()
	return nil, nil
}

func (f *fakeAPI) MyBookings(_ context.Context) ([]models.Booking, error) { f.record(); return nil, nil }

func (f *fakeAPI) CancelBooking(_ context.Context, _ string) error { f.record(); return nil }

func testUser() models.UserProfile {
	return models.UserProfile{ID: 1, TelegramID: "tg-1", FirstName: "Ada"}
}

func TestRestore(t *testing.T) {
	t.Run("no persisted token resolves unauthenticated without network", func(t *testing.T) {
		api := &fakeAPI{}
		m := NewManager(api, &fakeStore{})
		if err := m.Restore(context.Background()); err != nil {
			t.Fatalf("Restore returned error: %v", err)
		}
		if m.Status() != StatusUnauthenticated {
			t.Errorf("status = %v, want unauthenticated", m.Status())
		}
		if api.callCount() != 0 {
			t.Errorf("network calls = %d, want 0", api.callCount())
		}
	})

	t.Run("invalid token is purged", func(t *testing.T) {
		store := &fakeStore{token: "stale-token"}
		api := &fakeAPI{verifyOK: false}
		m := NewManager(api, store)
		if err := m.Restore(context.Background()); err != nil {
			t.Fatalf("Restore returned error: %v", err)
		}
		if m.Status() != StatusUnauthenticated {
			t.Errorf("status = %v, want unauthenticated", m.Status())
		}
		if got, _ := store.Load(); got != "" {
			t.Errorf("persisted token = %q, want purged", got)
		}
	})

	t.Run("valid token loads profile and authenticates", func(t *testing.T) {
		store := &fakeStore{token: "good-token"}
		user := testUser()
		api := &fakeAPI{verifyOK: true, profile: &models.Profile{User: user}}
		m := NewManager(api, store)
		if err := m.Restore(context.Background()); err != nil {
			t.Fatalf("Restore returned error: %v", err)
		}
		if m.Status() != StatusAuthenticated {
			t.Fatalf("status = %v, want authenticated", m.Status())
		}
		if m.Token() != "good-token" {
			t.Errorf("token = %q, want good-token", m.Token())
		}
		if got := m.User(); got == nil || got.FirstName != "Ada" {
			t.Errorf("user = %+v, want Ada", got)
		}
	})

	t.Run("verification error purges token and collapses", func(t *testing.T) {
		store := &fakeStore{token: "token"}
		api := &fakeAPI{verifyErr: errors.New("connection refused")}
		m := NewManager(api, store)
		if err := m.Restore(context.Background()); err == nil {
			t.Fatal("Restore should return the verification error")
		}
		if m.Status() != StatusUnauthenticated {
			t.Errorf("status = %v, want unauthenticated", m.Status())
		}
		if got, _ := store.Load(); got != "" {
			t.Errorf("persisted token = %q, want purged", got)
		}
	})

	t.Run("profile fetch failure is treated like an invalid token", func(t *testing.T) {
		store := &fakeStore{token: "token"}
		api := &fakeAPI{verifyOK: true, profileErr: utils.NetworkError(errors.New("timeout"))}
		m := NewManager(api, store)
		if err := m.Restore(context.Background()); err == nil {
			t.Fatal("Restore should return the profile error")
		}
		if m.Status() != StatusUnauthenticated {
			t.Errorf("status = %v, want unauthenticated", m.Status())
		}
		if got, _ := store.Load(); got != "" {
			t.Errorf("persisted token = %q, want purged", got)
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("success persists token and authenticates", func(t *testing.T) {
		store := &fakeStore{}
		api := &fakeAPI{authResp: &models.AuthResponse{Token: "fresh", User: testUser()}}
		m := NewManager(api, store)
		if err := m.Login(context.Background(), "init-data", "+100"); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if m.Status() != StatusAuthenticated {
			t.Errorf("status = %v, want authenticated", m.Status())
		}
		if got, _ := store.Load(); got != "fresh" {
			t.Errorf("persisted token = %q, want fresh", got)
		}
	})

	t.Run("failure leaves the session untouched", func(t *testing.T) {
		store := &fakeStore{}
		api := &fakeAPI{authErr: utils.ValidationError(400, "initData rejected")}
		m := NewManager(api, store)
		err := m.Login(context.Background(), "bad", "")
		if err == nil {
			t.Fatal("Login should return the failure")
		}
		if utils.UserMessage(err) != "initData rejected" {
			t.Errorf("message = %q, want server text", utils.UserMessage(err))
		}
		if m.Status() != StatusUnauthenticated {
			t.Errorf("status = %v, want unauthenticated", m.Status())
		}
		if got, _ := store.Load(); got != "" {
			t.Errorf("persisted token = %q, want none", got)
		}
	})
}

func TestLogout(t *testing.T) {
	t.Run("purges token and resets state", func(t *testing.T) {
		store := &fakeStore{}
		api := &fakeAPI{authResp: &models.AuthResponse{Token: "tok", User: testUser()}}
		m := NewManager(api, store)
		if err := m.Login(context.Background(), "init", ""); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		m.Logout()
		if m.Status() != StatusUnauthenticated {
			t.Errorf("status = %v, want unauthenticated", m.Status())
		}
		if m.Token() != "" || m.User() != nil {
			t.Error("token and user should be cleared")
		}
		if got, _ := store.Load(); got != "" {
			t.Errorf("persisted token = %q, want purged", got)
		}
	})

	t.Run("is idempotent with no further effects", func(t *testing.T) {
		store := &fakeStore{}
		api := &fakeAPI{authResp: &models.AuthResponse{Token: "tok", User: testUser()}}
		m := NewManager(api, store)
		if err := m.Login(context.Background(), "init", ""); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		before := api.callCount()
		m.Logout()
		m.Logout()
		if m.Status() != StatusUnauthenticated {
			t.Errorf("status = %v, want unauthenticated", m.Status())
		}
		if api.callCount() != before {
			t.Errorf("network calls during logout = %d, want 0", api.callCount()-before)
		}
		if store.clearCount() != 1 {
			t.Errorf("store clears = %d, want 1", store.clearCount())
		}
	})
}

func TestRefreshProfile(t *testing.T) {
	login := func(t *testing.T, api *fakeAPI, store *fakeStore) *DefaultManager {
		t.Helper()
		m := NewManager(api, store)
		if err := m.Login(context.Background(), "init", ""); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		return m
	}

	t.Run("replaces the profile snapshot", func(t *testing.T) {
		api := &fakeAPI{authResp: &models.AuthResponse{Token: "tok", User: testUser()}}
		m := login(t, api, &fakeStore{})
		api.profile = &models.Profile{User: models.UserProfile{ID: 1, FirstName: "Grace"}}
		if err := m.RefreshProfile(context.Background()); err != nil {
			t.Fatalf("RefreshProfile returned error: %v", err)
		}
		if got := m.User(); got == nil || got.FirstName != "Grace" {
			t.Errorf("user = %+v, want Grace", got)
		}
	})

	t.Run("any failure forces logout", func(t *testing.T) {
		store := &fakeStore{}
		api := &fakeAPI{authResp: &models.AuthResponse{Token: "tok", User: testUser()}}
		m := login(t, api, store)
		api.profileErr = utils.AuthorizationError(401, "token revoked")
		if err := m.RefreshProfile(context.Background()); err == nil {
			t.Fatal("RefreshProfile should return the failure")
		}
		if m.Status() != StatusUnauthenticated {
			t.Errorf("status = %v, want unauthenticated", m.Status())
		}
		if got, _ := store.Load(); got != "" {
			t.Errorf("persisted token = %q, want purged", got)
		}
	})

	t.Run("rejected while unauthenticated", func(t *testing.T) {
		m := NewManager(&fakeAPI{}, &fakeStore{})
		if err := m.RefreshProfile(context.Background()); !utils.IsAuthorization(err) {
			t.Errorf("error = %v, want authorization error", err)
		}
	})
}

func TestSubscribe(t *testing.T) {
	api := &fakeAPI{authResp: &models.AuthResponse{Token: "tok", User: testUser()}}
	m := NewManager(api, &fakeStore{})
	var mu sync.Mutex
	notified := 0
	m.Subscribe(func() {
		mu.Lock()
		notified++
		mu.Unlock()
	})
	if err := m.Login(context.Background(), "init", ""); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	m.Logout()
	mu.Lock()
	defer mu.Unlock()
	if notified < 2 {
		t.Errorf("notifications = %d, want at least 2", notified)
	}
}
