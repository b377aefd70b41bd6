// Package auth drives the dashboard session: startup identity resolution,
// sign-in and sign-out, the pre-render route guard and the dashboard
// permission check.
package auth

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/store-dashboard/internal/domain"
	"github.com/spec-kit/store-dashboard/internal/events"
	"github.com/spec-kit/store-dashboard/internal/observability"
	"github.com/spec-kit/store-dashboard/internal/remote"
	"github.com/spec-kit/store-dashboard/internal/session"
)

// IdentityAPI is the part of the store API the controller talks to.
type IdentityAPI interface {
	Login(ctx context.Context, email, password string) (*remote.LoginResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*domain.User, error)
}

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(path string)
}

// Notifier shows a message to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Routes are the destinations the controller navigates to.
type Routes struct {
	Login string
	Home  string
}

func (r Routes) withDefaults() Routes {
	if r.Login == "" {
		r.Login = "/login"
	}
	if r.Home == "" {
		r.Home = "/"
	}
	return r
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Session   *session.Store
	API       IdentityAPI
	Navigator Navigator
	Notifier  Notifier
	Events    events.Dispatcher
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	Routes    Routes
	Client    events.Client
}

const msgSignedIn = "Signed in successfully!"

// Controller owns one session's identity. Start resolves the persisted
// credential exactly once; afterwards the controller only moves between
// Authenticated and Anonymous.
//
// SignIn and SignOut are not serialized against each other: callers are
// expected to issue them one at a time, and Busy exists so a UI can disable
// its submit control meanwhile.
type Controller struct {
	deps Deps

	startOnce sync.Once
	done      chan struct{}

	mu       sync.RWMutex
	identity *domain.User
	settled  bool
	busy     bool
}

// NewController builds a controller. Optional deps get no-op defaults.
func NewController(deps Deps) *Controller {
	if deps.Session == nil {
		deps.Session = session.NewStore(session.NewMemoryBackend())
	}
	if deps.Navigator == nil {
		deps.Navigator = &PendingRedirect{}
	}
	if deps.Notifier == nil {
		deps.Notifier = discardNotifier{}
	}
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	deps.Routes = deps.Routes.withDefaults()
	return &Controller{deps: deps, done: make(chan struct{})}
}

// Start resolves the persisted credential into an identity and returns the
// settled phase. Later calls return the phase without doing anything.
func (c *Controller) Start(ctx context.Context) session.Phase {
	c.startOnce.Do(func() {
		defer close(c.done)
		c.resolve(ctx)
	})
	return c.Phase()
}

// Done is closed once startup resolution has finished.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) resolve(ctx context.Context) {
	cred, ok := c.deps.Session.Current()
	if !ok {
		if c.deps.Session.Present() {
			c.deps.Logger.Info("discarding malformed credential")
			c.deps.Session.Clear()
		}
		c.settle(nil)
		c.deps.Metrics.RecordSessionResolution("anonymous")
		return
	}

	user, err := c.deps.API.Me(ctx)
	if err != nil {
		c.deps.Session.Clear()
		c.settle(nil)
		c.deps.Metrics.RecordSessionResolution("rejected")
		c.deps.Logger.Info("session rejected",
			zap.String("token_fingerprint", session.Fingerprint(cred.Token)),
			zap.Error(err))
		c.publish(ctx, events.EventSessionRejected, nil, cred.Token, failure(err))
		c.deps.Navigator.Navigate(c.deps.Routes.Login)
		return
	}

	c.settle(user)
	c.deps.Metrics.RecordSessionResolution("restored")
	c.publish(ctx, events.EventSessionRestored, user, cred.Token, nil)
}

func (c *Controller) settle(user *domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = user
	c.settled = true
}

// Phase reports the current session phase.
func (c *Controller) Phase() session.Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case !c.settled:
		return session.PhaseResolving
	case c.identity != nil:
		return session.PhaseAuthenticated
	default:
		return session.PhaseAnonymous
	}
}

// Identity returns a copy of the signed-in user, or nil.
func (c *Controller) Identity() *domain.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity.Clone()
}

// IsAuthenticated reports whether an identity is present.
func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity != nil
}

// Busy reports whether a sign-in is in flight.
func (c *Controller) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.busy
}

func (c *Controller) setBusy(v bool) {
	c.mu.Lock()
	c.busy = v
	c.mu.Unlock()
}

// SignIn authenticates against the store API. On success the credential is
// persisted with the server-provided lifetime and the user is sent home; on
// failure the server message is shown and nothing is persisted.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	c.setBusy(true)
	defer c.setBusy(false)

	resp, err := c.deps.API.Login(ctx, email, password)
	if err != nil {
		c.deps.Metrics.RecordSignIn("failure")
		c.deps.Notifier.Error(remote.Message(err))
		c.publishEmail(ctx, events.EventSignInFailed, email, failure(err))
		return err
	}

	if err := c.deps.Session.Persist(resp.Token.Credential()); err != nil {
		c.deps.Metrics.RecordSignIn("failure")
		c.deps.Notifier.Error("The server returned an unusable credential.")
		return err
	}

	user := resp.User
	c.mu.Lock()
	c.identity = &user
	c.settled = true
	c.mu.Unlock()

	c.deps.Metrics.RecordSignIn("success")
	c.deps.Notifier.Success(msgSignedIn)
	c.publish(ctx, events.EventSignedIn, &user, resp.Token.Token, nil)
	c.deps.Navigator.Navigate(c.deps.Routes.Home)
	return nil
}

// SignOut revokes the credential on the server and then forgets it locally.
// If the server call fails nothing is cleared.
func (c *Controller) SignOut(ctx context.Context) error {
	cred, _ := c.deps.Session.Current()
	if err := c.deps.API.Logout(ctx); err != nil {
		c.deps.Notifier.Error(remote.Message(err))
		return err
	}

	c.mu.Lock()
	user := c.identity
	c.identity = nil
	c.mu.Unlock()
	c.deps.Session.Clear()

	c.publish(ctx, events.EventSignedOut, user, cred.Token, nil)
	c.deps.Navigator.Navigate(c.deps.Routes.Home)
	return nil
}

// Invalidate drops the session after an authenticated request was rejected
// by the store API, and sends the user to the login route.
func (c *Controller) Invalidate(ctx context.Context, cause error) {
	cred, _ := c.deps.Session.Current()
	c.mu.Lock()
	user := c.identity
	c.identity = nil
	c.mu.Unlock()
	c.deps.Session.Clear()

	c.publish(ctx, events.EventSessionRejected, user, cred.Token, failure(cause))
	c.deps.Navigator.Navigate(c.deps.Routes.Login)
}

// AddStore appends a freshly created store to the identity so ownership checks
// see it without a refetch. The controller lives for one request; the next
// request resolves identity again through /auth/me.
func (c *Controller) AddStore(ctx context.Context, store domain.Store) {
	c.mu.Lock()
	if c.identity == nil {
		c.mu.Unlock()
		return
	}
	c.identity.Stores = append(c.identity.Stores, store)
	user := c.identity.Clone()
	c.mu.Unlock()

	cred, _ := c.deps.Session.Current()
	c.publish(ctx, events.EventStoreAdded, user, cred.Token, events.StoreAddedPayload{StoreID: store.ID, Name: store.Name})
}

func (c *Controller) publish(ctx context.Context, t events.EventType, user *domain.User, token string, payload any) {
	ev := events.New(t)
	ev.Client = c.deps.Client
	ev.TokenFingerprint = session.Fingerprint(token)
	if user != nil {
		ev.UserID = user.ID
		ev.Email = user.Email
	}
	if payload != nil {
		ev.Payload = payload
	}
	_ = c.deps.Events.Publish(ctx, ev)
}

func (c *Controller) publishEmail(ctx context.Context, t events.EventType, email string, payload any) {
	ev := events.New(t)
	ev.Client = c.deps.Client
	ev.Email = email
	ev.Payload = payload
	_ = c.deps.Events.Publish(ctx, ev)
}

func failure(err error) *events.FailurePayload {
	if err == nil {
		return nil
	}
	p := &events.FailurePayload{Message: remote.Message(err)}
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		p.Status = apiErr.Status
	}
	return p
}

type discardNotifier struct{}

func (discardNotifier) Success(string) {}
func (discardNotifier) Error(string)   {}
