package session

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const captchaKey = "captcha"

// Options configures the session cookie.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager issues and resolves session cookies. The cookie carries only the
// HMAC-signed session id; values live in the Store.
type Manager struct {
	store  Store
	codec  *securecookie.SecureCookie
	name   string
	ttl    time.Duration
	secure bool
}

// NewManager signs cookies with secretKey.
func NewManager(store Store, secretKey string, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "sl.sid"
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}

	codec := securecookie.New([]byte(secretKey), nil)
	codec.MaxAge(int(opts.TTL / time.Second))

	return &Manager{
		store:  store,
		codec:  codec,
		name:   opts.CookieName,
		ttl:    opts.TTL,
		secure: opts.Secure,
	}
}

// TTL is the lifetime of both the cookie and the stored values.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Load resolves the session named by the request cookie. A missing, forged or
// expired cookie yields a fresh session whose cookie is written to w.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(m.name); err == nil {
		var id string
		if err := m.codec.Decode(m.name, c.Value, &id); err == nil {
			if _, err := uuid.Parse(id); err == nil {
				return &Session{id: id, m: m, w: w}
			}
		}
	}

	s := &Session{id: uuid.NewString(), m: m, w: w}
	if err := s.writeCookie(); err != nil {
		log.Printf("[session] failed to write cookie: %v", err)
	}
	return s
}

// Cookie builds the signed cookie for a session id.
func (m *Manager) Cookie(id string) (*http.Cookie, error) {
	value, err := m.codec.Encode(m.name, id)
	if err != nil {
		return nil, fmt.Errorf("encode session cookie: %w", err)
	}
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.ttl / time.Second),
		Expires:  time.Now().Add(m.ttl),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Session is the per-request handle on one visitor's state.
type Session struct {
	id      string
	m       *Manager
	w       http.ResponseWriter
	written bool
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Secret returns the captcha answer currently attached to the session.
func (s *Session) Secret(ctx context.Context) (string, bool, error) {
	return s.m.store.Get(ctx, s.id, captchaKey)
}

// SetSecret replaces any previous captcha answer and restarts the session's
// expiry, cookie included.
func (s *Session) SetSecret(ctx context.Context, secret string) error {
	if err := s.m.store.Set(ctx, s.id, captchaKey, secret, s.m.ttl); err != nil {
		return err
	}
	if s.written {
		return nil
	}
	return s.writeCookie()
}

// ClearSecret removes the captcha answer.
func (s *Session) ClearSecret(ctx context.Context) error {
	return s.m.store.Delete(ctx, s.id, captchaKey)
}

func (s *Session) writeCookie() error {
	if s.w == nil {
		return nil
	}
	c, err := s.m.Cookie(s.id)
	if err != nil {
		return err
	}
	http.SetCookie(s.w, c)
	s.written = true
	return nil
}
