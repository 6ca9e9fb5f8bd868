// Package session owns the authenticated identity and the credential
// lifecycle: signup, login, current-user refresh and logout.
//
// The in-memory State is authoritative once the store is built. Every
// mutation is mirrored to durable storage before the action returns, and
// storage is only read back at construction.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront/internal/apiclient"
	"github.com/hongminglow/storefront/internal/apierr"
	"github.com/hongminglow/storefront/internal/auth"
	"github.com/hongminglow/storefront/internal/envelope"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/models/dto"
	"github.com/hongminglow/storefront/internal/observe"
	"github.com/hongminglow/storefront/internal/storage"
)

// Durable storage keys shared with the request interceptor.
const (
	KeyToken = "auth_token"
	KeyUser  = "user"
)

const (
	PrefixUser = "user"
	PrefixAuth = "auth"
)

var (
	// ErrSignupRejected is returned when the backend declares a signup unsuccessful.
	ErrSignupRejected = errors.New("signup rejected")
	// ErrLoginFailed is returned when a login response carries no token.
	ErrLoginFailed = errors.New("login failed")
)

const (
	signupFallback  = "Signup failed"
	loginFallback   = "Login failed"
	profileFallback = "Failed to fetch profile"
)

// API is the subset of the HTTP client the session needs.
type API interface {
	Get(ctx context.Context, path string, opts ...apiclient.Option) (*apiclient.Response, error)
	Post(ctx context.Context, path string, body any, opts ...apiclient.Option) (*apiclient.Response, error)
}

// State is a snapshot of the session.
type State struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	Loading         bool
	Err             string
}

// Options tune a Store. The zero value is usable.
type Options struct {
	// AuthPrefix is the path segment for signup and login: "user" or "auth".
	AuthPrefix string
	Logger     logrus.FieldLogger
	// Now is the clock used for token expiry checks.
	Now func() time.Time
}

// Store is the session store. It is safe for concurrent use.
type Store struct {
	api    API
	kv     storage.KV
	prefix string
	log    logrus.FieldLogger
	now    func() time.Time

	mu    sync.Mutex
	state State
	hub   observe.Hub[State]
}

// NewStore rehydrates the session from kv. A stored JWT that is already
// expired is treated as invalid and removed along with the user snapshot.
func NewStore(ctx context.Context, api API, kv storage.KV, opts Options) (*Store, error) {
	if api == nil || kv == nil {
		return nil, errors.New("session: api and storage are required")
	}
	prefix := opts.AuthPrefix
	if prefix == "" {
		prefix = PrefixUser
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Store{
		api:    api,
		kv:     kv,
		prefix: prefix,
		log:    log.WithField("component", "session"),
		now:    now,
	}
	if err := s.rehydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) rehydrate(ctx context.Context) error {
	token, err := s.kv.Get(ctx, KeyToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("read %s: %w", KeyToken, err)
	}

	if token != "" && auth.Expired(token, s.now()) {
		s.log.Info("stored token expired, clearing session")
		return s.clearStorage(ctx)
	}

	var user *models.User
	raw, err := s.kv.Get(ctx, KeyUser)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("read %s: %w", KeyUser, err)
	case raw == "" || raw == "null":
	default:
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.log.WithError(err).Warn("stored user is unreadable, discarding")
			if err := s.kv.Delete(ctx, KeyUser); err != nil {
				return fmt.Errorf("delete %s: %w", KeyUser, err)
			}
		} else {
			user = &u
		}
	}

	s.state = State{User: user, Token: token, IsAuthenticated: token != ""}
	return nil
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every state change.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	return s.hub.Subscribe(fn)
}

// Signup registers a new account. When the backend returns a token the
// session is authenticated immediately.
func (s *Store) Signup(ctx context.Context, form dto.SignupForm) (err error) {
	s.begin()
	defer func() { s.end(err, signupFallback) }()

	resp, err := s.api.Post(ctx, s.prefix+"/signup", form.Payload(), apiclient.SkipAuth())
	if err != nil {
		return err
	}

	if declared, ok := envelope.Status(resp.Body); declared && !ok {
		msg, _ := envelope.Message(resp.Body)
		return apierr.Reject(apierr.KindBackendRejected, ErrSignupRejected, msg)
	}

	token, ok := envelope.Token(resp.Body)
	if !ok {
		s.log.Info("signup succeeded without a token")
		return nil
	}
	return s.authenticate(ctx, token, extractUser(resp.Body))
}

// Login exchanges credentials for a token. A response without a token is a
// failure even on HTTP 200, and leaves the session unchanged.
func (s *Store) Login(ctx context.Context, req dto.LoginRequest) (err error) {
	s.begin()
	defer func() { s.end(err, loginFallback) }()

	resp, err := s.api.Post(ctx, s.prefix+"/login", req, apiclient.SkipAuth())
	if err != nil {
		return err
	}

	token, ok := envelope.Token(resp.Body)
	if !ok {
		msg, _ := envelope.Message(resp.Body)
		return apierr.Reject(apierr.KindValidationGap, ErrLoginFailed, msg)
	}
	return s.authenticate(ctx, token, extractUser(resp.Body))
}

// FetchCurrentUser refreshes the user snapshot. A 401 logs the session out
// before the error is returned.
func (s *Store) FetchCurrentUser(ctx context.Context) (err error) {
	s.begin()
	defer func() { s.end(err, profileFallback) }()

	resp, err := s.api.Get(ctx, "auth/me")
	if err != nil {
		if apierr.IsUnauthorized(err) {
			if logoutErr := s.Logout(ctx); logoutErr != nil {
				s.log.WithError(logoutErr).Warn("logout after 401 did not clear storage")
			}
		}
		return err
	}

	user := extractUser(resp.Body)
	if user == nil {
		var direct models.User
		if jsonErr := json.Unmarshal(resp.Body, &direct); jsonErr != nil {
			return apierr.Reject(apierr.KindValidationGap, errors.New("unexpected profile response"), "")
		}
		user = &direct
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	s.mu.Lock()
	s.state.User = user
	s.mu.Unlock()
	if err := s.kv.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

// Logout clears the session. It makes no network call and always clears the
// in-memory state; the returned error only reports storage failures.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.state.User = nil
	s.state.Token = ""
	s.state.IsAuthenticated = false
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.hub.Publish(snap)

	return s.clearStorage(ctx)
}

func (s *Store) clearStorage(ctx context.Context) error {
	return errors.Join(
		s.deleteKey(ctx, KeyToken),
		s.deleteKey(ctx, KeyUser),
	)
}

func (s *Store) deleteKey(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// authenticate sets the credential in memory and mirrors it to storage.
func (s *Store) authenticate(ctx context.Context, token string, user *models.User) error {
	userJSON := "null"
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		userJSON = string(raw)
	}

	s.mu.Lock()
	s.state.Token = token
	s.state.User = user
	s.state.IsAuthenticated = true
	s.mu.Unlock()

	if err := s.kv.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("persist %s: %w", KeyToken, err)
	}
	if err := s.kv.Set(ctx, KeyUser, userJSON); err != nil {
		return fmt.Errorf("persist %s: %w", KeyUser, err)
	}
	s.log.WithField("user_id", userID(user)).Info("session authenticated")
	return nil
}

func (s *Store) begin() {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Err = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.hub.Publish(snap)
}

func (s *Store) end(err error, fallback string) {
	s.mu.Lock()
	s.state.Loading = false
	if err != nil {
		s.state.Err = apierr.Message(err, fallback)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.log.WithError(err).WithField("kind", apierr.KindOf(err)).Warn(fallback)
	}
	s.hub.Publish(snap)
}

func (s *Store) snapshotLocked() State {
	snap := s.state
	if snap.User != nil {
		u := *snap.User
		snap.User = &u
	}
	return snap
}

func extractUser(body []byte) *models.User {
	raw, ok := envelope.User(body)
	if !ok {
		return nil
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil
	}
	return &u
}

func userID(u *models.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

// TokenSource reads the bearer credential from durable storage for the HTTP
// client's request interceptor.
type TokenSource struct {
	kv storage.KV
}

var _ apiclient.TokenSource = TokenSource{}

// NewTokenSource returns a token source over kv.
func NewTokenSource(kv storage.KV) TokenSource {
	return TokenSource{kv: kv}
}

// Token returns the stored token, or "" when there is none.
func (t TokenSource) Token(ctx context.Context) (string, error) {
	token, err := t.kv.Get(ctx, KeyToken)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return token, err
}
