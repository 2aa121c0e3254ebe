package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

func TestResponseSinkSetAndClear(t *testing.T) {
	cfg := goSession.DefaultConfig()
	cfg.ProductionMode = true
	cfg.Cookie.Domain = "example.com"

	rec := httptest.NewRecorder()
	sink := NewResponseSink(rec, cfg)

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	sink.Set("access_token", "abc", goSession.CookieOptions{
		HTTPOnly: true,
		Secure:   true,
		Expires:  exp,
		Path:     "/",
		Domain:   "example.com",
		SameSite: http.SameSiteLaxMode,
	})
	sink.Clear("refresh_token")

	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}

	set := cookies[0]
	if set.Name != "access_token" || set.Value != "abc" {
		t.Fatalf("unexpected cookie %+v", set)
	}
	if !set.HttpOnly || !set.Secure || !set.Expires.Equal(exp) {
		t.Fatalf("expected http-only secure cookie expiring at %v, got %+v", exp, set)
	}

	cleared := cookies[1]
	if cleared.Name != "refresh_token" || cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Fatalf("expected expired refresh cookie, got %+v", cleared)
	}
	if cleared.Domain != "example.com" || cleared.Path != "/" {
		t.Fatalf("clear must match set path/domain, got %+v", cleared)
	}
}

func TestResponseSinkIgnoresEmptyName(t *testing.T) {
	rec := httptest.NewRecorder()
	sink := NewResponseSink(rec, goSession.DefaultConfig())
	sink.Set(" ", "v", goSession.CookieOptions{})
	sink.Clear("")
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("expected no cookies")
	}
}

func TestValue(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "refresh_token", Value: " tok "})

	if v, ok := Value(r, "refresh_token"); !ok || v != "tok" {
		t.Fatalf("expected tok, got %q ok=%v", v, ok)
	}
	if _, ok := Value(r, "access_token"); ok {
		t.Fatal("missing cookie must not be found")
	}
}
