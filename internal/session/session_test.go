package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Set(ctx, "sid", "captcha", "abc12", 10*time.Minute); err != nil {
		t.Fatalf("Set err: %v", err)
	}

	now = now.Add(9 * time.Minute)
	if v, ok, _ := store.Get(ctx, "sid", "captcha"); !ok || v != "abc12" {
		t.Fatalf("expected live value, got %q ok=%v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "sid", "captcha"); ok {
		t.Fatal("expected value to expire after ttl")
	}
}

func TestMemoryStoreOverwriteAndDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "sid", "captcha", "first", time.Minute)
	_ = store.Set(ctx, "sid", "captcha", "second", time.Minute)
	if v, _, _ := store.Get(ctx, "sid", "captcha"); v != "second" {
		t.Fatalf("expected overwrite, got %q", v)
	}

	_ = store.Delete(ctx, "sid", "captcha")
	if _, ok, _ := store.Get(ctx, "sid", "captcha"); ok {
		t.Fatal("expected value to be deleted")
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Set(ctx, "old", "captcha", "x", time.Minute)
	_ = store.Set(ctx, "new", "captcha", "y", time.Hour)

	now = now.Add(2 * time.Minute)
	store.Sweep()

	if store.Len() != 1 {
		t.Fatalf("expected 1 session after sweep, got %d", store.Len())
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisStore(rdb, WithKeyPrefix("test:session:"))
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "sid", "captcha"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "sid", "captcha", "k3y9z", 10*time.Minute); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	if !mr.Exists("test:session:sid") {
		t.Fatal("expected hash under prefixed key")
	}

	v, ok, err := store.Get(ctx, "sid", "captcha")
	if err != nil || !ok || v != "k3y9z" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", v, ok, err)
	}

	mr.FastForward(11 * time.Minute)
	if _, ok, _ := store.Get(ctx, "sid", "captcha"); ok {
		t.Fatal("expected redis ttl to expire the session")
	}
}

func TestRedisStoreDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisStore(rdb)
	ctx := context.Background()

	_ = store.Set(ctx, "sid", "captcha", "abc", time.Minute)
	if err := store.Delete(ctx, "sid", "captcha"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "sid", "captcha"); ok {
		t.Fatal("expected value to be deleted")
	}
}

func TestManagerLoadIssuesCookieForNewVisitor(t *testing.T) {
	m := NewManager(NewMemoryStore(), "test-secret", Options{TTL: 10 * time.Minute})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/captcha", nil)
	s := m.Load(rec, req)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge != 600 || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookie attributes: %+v", cookies[0])
	}

	// Same cookie resolves to the same session.
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/contact", nil)
	req2.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	s2 := m.Load(rec2, req2)
	if s2.ID() != s.ID() {
		t.Fatalf("expected same session, got %s vs %s", s2.ID(), s.ID())
	}
	if len(rec2.Result().Cookies()) != 0 {
		t.Fatal("known session should not rewrite the cookie")
	}
}

func TestManagerRejectsForgedCookie(t *testing.T) {
	m := NewManager(NewMemoryStore(), "test-secret", Options{})
	other := NewManager(NewMemoryStore(), "another-secret", Options{})

	forged, err := other.Cookie("5b0b0a4e-2a52-4b0a-9d3b-0d6a3d2a1f00")
	if err != nil {
		t.Fatalf("Cookie err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(forged)
	s := m.Load(httptest.NewRecorder(), req)
	if s.ID() == "5b0b0a4e-2a52-4b0a-9d3b-0d6a3d2a1f00" {
		t.Fatal("forged cookie must not select a session")
	}
}

func TestSessionSecretLifecycle(t *testing.T) {
	m := NewManager(NewMemoryStore(), "test-secret", Options{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s := m.Load(rec, req)
	ctx := context.Background()

	if _, ok, _ := s.Secret(ctx); ok {
		t.Fatal("new session should have no secret")
	}
	if err := s.SetSecret(ctx, "first"); err != nil {
		t.Fatalf("SetSecret err: %v", err)
	}
	if err := s.SetSecret(ctx, "second"); err != nil {
		t.Fatalf("SetSecret err: %v", err)
	}
	if v, ok, _ := s.Secret(ctx); !ok || v != "second" {
		t.Fatalf("expected latest secret, got %q", v)
	}
	if err := s.ClearSecret(ctx); err != nil {
		t.Fatalf("ClearSecret err: %v", err)
	}
	if _, ok, _ := s.Secret(ctx); ok {
		t.Fatal("expected secret to be cleared")
	}
	if n := len(rec.Result().Cookies()); n != 1 {
		t.Fatalf("expected a single Set-Cookie per response, got %d", n)
	}
}
