package cookie

import (
	"net/http"
	"strings"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

// ResponseSink writes engine cookies as Set-Cookie headers on w.
type ResponseSink struct {
	w        http.ResponseWriter
	path     string
	domain   string
	secure   bool
	sameSite http.SameSite
}

var _ goSession.CookieSink = (*ResponseSink)(nil)

// NewResponseSink returns a sink whose Clear matches the path and domain the
// engine sets cookies with; browsers only drop a cookie when both match.
func NewResponseSink(w http.ResponseWriter, cfg goSession.Config) *ResponseSink {
	return &ResponseSink{
		w:        w,
		path:     cfg.Cookie.Path,
		domain:   cfg.Cookie.Domain,
		secure:   cfg.ProductionMode,
		sameSite: cfg.Cookie.SameSite,
	}
}

func (s *ResponseSink) Set(name, value string, opts goSession.CookieOptions) {
	if s == nil || s.w == nil || strings.TrimSpace(name) == "" {
		return
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  opts.Expires,
		HttpOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

func (s *ResponseSink) Clear(name string) {
	if s == nil || s.w == nil || strings.TrimSpace(name) == "" {
		return
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     s.path,
		Domain:   s.domain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite,
	})
}

// Value returns the trimmed value of the named request cookie.
func Value(r *http.Request, name string) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return "", false
	}
	return v, true
}
