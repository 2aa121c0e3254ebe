package goSession

import (
	"io"
	"net/http"
	"time"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/users"
)

// Principal is the user record the engine authenticates against. The engine
// never creates or deletes principals outside [Engine.Register].
type Principal = users.Principal

// PrincipalView is the part of a [Principal] that is safe to return to a
// client.
type PrincipalView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func viewOf(p Principal) PrincipalView {
	return PrincipalView{ID: p.ID, Email: p.Email, Role: p.Role}
}

// TokenPair is one minted access/refresh pair. A pair is never mutated; the
// next login or refresh supersedes it.
type TokenPair = flows.TokenPair

// AccessClaims are the verified claims of an access token.
type AccessClaims = jwt.Claims

// Credentials are the e-mail and password presented to [Engine.Login].
type Credentials struct {
	Email    string
	Password string
	// Redirect asks Login to report Config.Cookie.RedirectPath in
	// LoginResult.RedirectTo.
	Redirect bool
}

// LoginResult is returned by a successful [Engine.Login].
type LoginResult struct {
	Principal  PrincipalView
	Tokens     TokenPair
	RedirectTo string
}

// RegisterInput describes an account for [Engine.Register].
type RegisterInput struct {
	Email    string
	Password string
	Role     string // empty means Config.Account.DefaultRole
}

// CookieOptions are the attributes the engine asks a [CookieSink] to set.
type CookieOptions struct {
	HTTPOnly bool
	Secure   bool
	Expires  time.Time
	Path     string
	Domain   string
	SameSite http.SameSite
}

// CookieSink receives minted tokens for the outgoing response. Operations
// accept a nil sink and then only return the tokens.
type CookieSink interface {
	Set(name, value string, opts CookieOptions)
	Clear(name string)
}

// Collaborator contracts, re-exported for callers wiring the Builder.
type (
	UserLookup      = users.Lookup
	AccountCreator  = users.Creator
	PasswordUpdater = users.PasswordUpdater
	RefreshRecords  = users.RefreshHashStore
)

// AuditEvent is one record delivered to an [AuditSink].
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the engine's dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink discards every event.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink delivers events on a buffered channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON event per line.
type JSONWriterSink = internalaudit.JSONWriterSink

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

const (
	AuditEventLoginSuccess           = internalaudit.EventLoginSuccess
	AuditEventLoginFailure           = internalaudit.EventLoginFailure
	AuditEventRefreshSuccess         = internalaudit.EventRefreshSuccess
	AuditEventRefreshInvalid         = internalaudit.EventRefreshInvalid
	AuditEventRefreshReuseDetected   = internalaudit.EventRefreshReuseDetected
	AuditEventLogout                 = internalaudit.EventLogout
	AuditEventAccountCreated         = internalaudit.EventAccountCreated
	AuditEventAccountCreationFailure = internalaudit.EventAccountCreationFailure
)
