package auth

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/store-dashboard/internal/domain"
	"github.com/spec-kit/store-dashboard/internal/events"
	"github.com/spec-kit/store-dashboard/internal/remote"
	"github.com/spec-kit/store-dashboard/internal/session"
)

type fakeAPI struct {
	mu sync.Mutex

	meUser  *domain.User
	meErr   error
	meCalls int

	loginResp  *remote.LoginResponse
	loginErr   error
	loginCalls int

	logoutErr   error
	logoutCalls int
}

func (f *fakeAPI) Login(context.Context, string, string) (*remote.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	return f.loginResp, f.loginErr
}

func (f *fakeAPI) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAPI) Me(context.Context) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	return f.meUser, f.meErr
}

type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, ev events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, ev := range d.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	api      *fakeAPI
	backend  *session.MemoryBackend
	nav      *PendingRedirect
	notifier *recordingNotifier
	events   *recordingDispatcher
	ctrl     *Controller
}

func newFixture(api *fakeAPI, seed ...string) *fixture {
	f := &fixture{
		api:      api,
		backend:  session.NewMemoryBackend(seed...),
		nav:      &PendingRedirect{},
		notifier: &recordingNotifier{},
		events:   &recordingDispatcher{},
	}
	f.ctrl = NewController(Deps{
		Session:   session.NewStore(f.backend),
		API:       api,
		Navigator: f.nav,
		Notifier:  f.notifier,
		Events:    f.events,
		Client:    events.Client{IP: "10.0.0.1", UserAgent: "test"},
	})
	return f
}

func sampleUser() *domain.User {
	return &domain.User{ID: 1, Email: "ana@example.com", Name: "Ana", Stores: []domain.Store{{ID: 5, Name: "Loja"}}}
}

func TestController_StartWithoutCredentialIsAnonymous(t *testing.T) {
	f := newFixture(&fakeAPI{})

	assert.Equal(t, session.PhaseResolving, f.ctrl.Phase())
	phase := f.ctrl.Start(context.Background())

	assert.Equal(t, session.PhaseAnonymous, phase)
	assert.Zero(t, f.api.meCalls)
	assert.Nil(t, f.ctrl.Identity())
	assert.False(t, f.ctrl.IsAuthenticated())
	_, ok := f.nav.Destination()
	assert.False(t, ok)

	select {
	case <-f.ctrl.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestController_StartDiscardsMalformedCredential(t *testing.T) {
	f := newFixture(&fakeAPI{}, "bad token")

	phase := f.ctrl.Start(context.Background())

	assert.Equal(t, session.PhaseAnonymous, phase)
	assert.Zero(t, f.api.meCalls)
	_, present := f.backend.Get()
	assert.False(t, present)
}

func TestController_StartRestoresIdentity(t *testing.T) {
	f := newFixture(&fakeAPI{meUser: sampleUser()}, "opaque-token")

	phase := f.ctrl.Start(context.Background())

	require.Equal(t, session.PhaseAuthenticated, phase)
	assert.Equal(t, 1, f.api.meCalls)
	assert.Equal(t, int64(1), f.ctrl.Identity().ID)
	assert.Equal(t, []events.EventType{events.EventSessionRestored}, f.events.types())
	assert.Equal(t, session.Fingerprint("opaque-token"), f.events.events[0].TokenFingerprint)
	assert.Equal(t, "10.0.0.1", f.events.events[0].Client.IP)
}

func TestController_StartRejectedCredentialClearsAndRedirects(t *testing.T) {
	rejected := &remote.APIError{Method: http.MethodGet, Path: "/auth/me", Status: http.StatusUnauthorized, Message: "invalid token"}
	f := newFixture(&fakeAPI{meErr: rejected}, "opaque-token")

	phase := f.ctrl.Start(context.Background())

	assert.Equal(t, session.PhaseAnonymous, phase)
	_, present := f.backend.Get()
	assert.False(t, present)
	dest, ok := f.nav.Destination()
	require.True(t, ok)
	assert.Equal(t, "/login", dest)
	assert.Equal(t, []events.EventType{events.EventSessionRejected}, f.events.types())
	payload, ok := f.events.events[0].Payload.(*events.FailurePayload)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, payload.Status)
}

func TestController_StartRunsOnce(t *testing.T) {
	f := newFixture(&fakeAPI{meUser: sampleUser()}, "opaque-token")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.ctrl.Start(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.api.meCalls)
	assert.Equal(t, session.PhaseAuthenticated, f.ctrl.Phase())
}

func TestController_SignInSuccess(t *testing.T) {
	user := sampleUser()
	api := &fakeAPI{loginResp: &remote.LoginResponse{
		Token: remote.Token{Token: "fresh-token", ExpiresIn: 3600},
		User:  *user,
	}}
	f := newFixture(api)
	f.ctrl.Start(context.Background())

	err := f.ctrl.SignIn(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)

	token, ok := f.backend.Get()
	require.True(t, ok)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, time.Hour, f.backend.MaxAge())
	assert.Equal(t, user.ID, f.ctrl.Identity().ID)
	assert.Equal(t, session.PhaseAuthenticated, f.ctrl.Phase())
	assert.False(t, f.ctrl.Busy())

	dest, ok := f.nav.Destination()
	require.True(t, ok)
	assert.Equal(t, "/", dest)
	assert.Equal(t, []string{"Signed in successfully!"}, f.notifier.successes)
	assert.Equal(t, []events.EventType{events.EventSignedIn}, f.events.types())
}

func TestController_SignInFailure(t *testing.T) {
	api := &fakeAPI{loginErr: &remote.APIError{
		Method: http.MethodPost, Path: "/auth/login", Status: http.StatusBadRequest, Message: "Credenciais inválidas",
	}}
	f := newFixture(api)
	f.ctrl.Start(context.Background())

	err := f.ctrl.SignIn(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)

	assert.Nil(t, f.ctrl.Identity())
	_, written := f.backend.Get()
	assert.False(t, written)
	assert.Equal(t, []string{"Credenciais inválidas"}, f.notifier.errors)
	assert.Empty(t, f.notifier.successes)
	assert.False(t, f.ctrl.Busy())
	_, navigated := f.nav.Destination()
	assert.False(t, navigated)

	require.Equal(t, []events.EventType{events.EventSignInFailed}, f.events.types())
	assert.Equal(t, "ana@example.com", f.events.events[0].Email)
}

func TestController_SignInRejectsUnusableToken(t *testing.T) {
	api := &fakeAPI{loginResp: &remote.LoginResponse{Token: remote.Token{Token: ""}, User: *sampleUser()}}
	f := newFixture(api)

	err := f.ctrl.SignIn(context.Background(), "ana@example.com", "secret")

	require.ErrorIs(t, err, session.ErrMalformedCredential)
	assert.Nil(t, f.ctrl.Identity())
	assert.Len(t, f.notifier.errors, 1)
}

func TestController_SignOutSuccess(t *testing.T) {
	f := newFixture(&fakeAPI{meUser: sampleUser()}, "opaque-token")
	f.ctrl.Start(context.Background())

	require.NoError(t, f.ctrl.SignOut(context.Background()))

	assert.Nil(t, f.ctrl.Identity())
	assert.Equal(t, session.PhaseAnonymous, f.ctrl.Phase())
	_, present := f.backend.Get()
	assert.False(t, present)
	dest, _ := f.nav.Destination()
	assert.Equal(t, "/", dest)
	assert.Equal(t, []events.EventType{events.EventSessionRestored, events.EventSignedOut}, f.events.types())
}

func TestController_SignOutFailureKeepsState(t *testing.T) {
	api := &fakeAPI{
		meUser:    sampleUser(),
		logoutErr: &remote.APIError{Method: http.MethodDelete, Path: "/auth/logout", Status: http.StatusInternalServerError, Message: "boom"},
	}
	f := newFixture(api, "opaque-token")
	f.ctrl.Start(context.Background())

	require.Error(t, f.ctrl.SignOut(context.Background()))

	assert.NotNil(t, f.ctrl.Identity())
	token, present := f.backend.Get()
	assert.True(t, present)
	assert.Equal(t, "opaque-token", token)
	assert.Equal(t, []string{"boom"}, f.notifier.errors)
	_, navigated := f.nav.Destination()
	assert.False(t, navigated)
}

func TestController_Invalidate(t *testing.T) {
	f := newFixture(&fakeAPI{meUser: sampleUser()}, "opaque-token")
	f.ctrl.Start(context.Background())

	f.ctrl.Invalidate(context.Background(), &remote.APIError{Status: http.StatusUnauthorized, Message: "expired"})

	assert.False(t, f.ctrl.IsAuthenticated())
	_, present := f.backend.Get()
	assert.False(t, present)
	dest, _ := f.nav.Destination()
	assert.Equal(t, "/login", dest)
}

func TestController_AddStore(t *testing.T) {
	f := newFixture(&fakeAPI{meUser: sampleUser()}, "opaque-token")
	f.ctrl.Start(context.Background())

	f.ctrl.AddStore(context.Background(), domain.Store{ID: 9, Name: "Nova"})

	storeID := int64(9)
	assert.True(t, CanAccessDashboard(f.ctrl.Identity(), &storeID))
	assert.Contains(t, f.events.types(), events.EventStoreAdded)
}

func TestController_AddStoreWhenAnonymousIsNoop(t *testing.T) {
	f := newFixture(&fakeAPI{})
	f.ctrl.Start(context.Background())

	f.ctrl.AddStore(context.Background(), domain.Store{ID: 9})

	assert.Nil(t, f.ctrl.Identity())
	assert.Empty(t, f.events.types())
}

func TestController_IdentityIsACopy(t *testing.T) {
	f := newFixture(&fakeAPI{meUser: sampleUser()}, "opaque-token")
	f.ctrl.Start(context.Background())

	id := f.ctrl.Identity()
	id.Stores = append(id.Stores, domain.Store{ID: 77})

	storeID := int64(77)
	assert.False(t, CanAccessDashboard(f.ctrl.Identity(), &storeID))
}
