package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/namatovu-christine/alumni-sync/internal/errs"
	"github.com/namatovu-christine/alumni-sync/internal/limiter"
)

type session struct {
	token     string
	userID    string
	expiresAt time.Time
}

// DeviceRegistrar registers a push delivery token for a user with the
// remote store.
type DeviceRegistrar interface {
	RegisterDeviceToken(ctx context.Context, userID, token string) error
}

// SessionManager signs users in against the hosted auth endpoint, verifies
// the returned ID token and holds the active session. A sign-in hook lets
// the sync layer trigger an immediate pass once a session exists.
type SessionManager struct {
	api     API
	lim     limiter.Limiter
	signKey []byte
	ttl     time.Duration
	log     *zap.Logger

	mu          sync.RWMutex
	current     *session
	onSignIn    func()
	registrar   DeviceRegistrar
	deviceToken string
}

// NewSessionManager constructs a SessionManager. signKey verifies the HS256
// ID tokens issued by the auth endpoint.
func NewSessionManager(api API, lim limiter.Limiter, signKey []byte, ttl time.Duration, log *zap.Logger) *SessionManager {
	return &SessionManager{api: api, lim: lim, signKey: signKey, ttl: ttl, log: log}
}

// OnSignIn registers a hook invoked after every successful sign-in.
func (m *SessionManager) OnSignIn(fn func()) {
	m.mu.Lock()
	m.onSignIn = fn
	m.mu.Unlock()
}

// RegisterDevice sets the push token registered with the remote store after
// every successful sign-in. Registration failures are logged, not fatal.
func (m *SessionManager) RegisterDevice(reg DeviceRegistrar, deviceToken string) {
	m.mu.Lock()
	m.registrar = reg
	m.deviceToken = deviceToken
	m.mu.Unlock()
}

// SignIn authenticates with the hosted endpoint, applying the sign-in
// limiter per account.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return errors.New("empty email/password")
	}

	allowed, _, err := m.lim.Allow(ctx, email)
	if err != nil {
		return err
	}
	if !allowed {
		return errs.ErrRateLimited
	}

	creds, err := m.api.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			if blocked, _, ferr := m.lim.Failure(ctx, email); ferr == nil && blocked {
				return errs.ErrRateLimited
			}
			return errs.ErrUnauthorized
		}
		return err
	}

	_ = m.lim.Success(ctx, email)
	return m.adopt(creds)
}

// Register creates an account with the hosted endpoint and adopts the
// returned session.
func (m *SessionManager) Register(ctx context.Context, email, password, fullName string) error {
	if email == "" || password == "" {
		return errors.New("empty email/password")
	}
	creds, err := m.api.Register(ctx, email, password, fullName)
	if err != nil {
		return err
	}
	return m.adopt(creds)
}

func (m *SessionManager) adopt(creds Credentials) error {
	uid, err := m.verify(creds.IDToken)
	if err != nil {
		return fmt.Errorf("verify id token: %w", err)
	}
	if creds.UserID != "" && creds.UserID != uid {
		return errors.New("id token subject mismatch")
	}

	expires := time.Now().Add(m.ttl)
	if creds.ExpiresAt > 0 {
		expires = time.UnixMilli(creds.ExpiresAt)
	}

	m.mu.Lock()
	m.current = &session{token: creds.IDToken, userID: uid, expiresAt: expires}
	hook := m.onSignIn
	reg, deviceToken := m.registrar, m.deviceToken
	m.mu.Unlock()

	m.log.Info("session established", zap.String("user_id", uid))
	if hook != nil {
		hook()
	}
	if reg != nil && deviceToken != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := reg.RegisterDeviceToken(ctx, uid, deviceToken); err != nil {
			m.log.Warn("device token registration failed",
				zap.String("user_id", uid), zap.Error(err))
		}
	}
	return nil
}

// verify parses and validates an HS256 ID token and returns its subject.
func (m *SessionManager) verify(tok string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.signKey, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}

	v := jwt.NewValidator(jwt.WithLeeway(30 * time.Second))
	if err := v.Validate(claims); err != nil {
		return "", errors.New("token expired or not valid yet")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// SignOut drops the active session.
func (m *SessionManager) SignOut() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// CurrentUserID returns the signed-in user, or errs.ErrNoSession when the
// session is absent or expired.
func (m *SessionManager) CurrentUserID() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || time.Now().After(m.current.expiresAt) {
		return "", errs.ErrNoSession
	}
	return m.current.userID, nil
}

// Token returns the active bearer token, or an empty string. It satisfies
// the document store client's token source.
func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || time.Now().After(m.current.expiresAt) {
		return ""
	}
	return m.current.token
}
