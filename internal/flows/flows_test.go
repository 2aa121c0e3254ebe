package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/password"
	"github.com/MrEthical07/goSession/refresh"
	"github.com/MrEthical07/goSession/users"
	"golang.org/x/crypto/bcrypt"
)

var errBackend = errors.New("backend down")

// scriptedStore returns the configured errors and otherwise behaves like a
// single-slot map.
type scriptedStore struct {
	tokens    map[string]string
	putErr    error
	rotateErr error
	deleteErr error
	puts      int
}

func newScriptedStore() *scriptedStore {
	return &scriptedStore{tokens: map[string]string{}}
}

func (s *scriptedStore) Put(_ context.Context, subjectID, token string, _ time.Duration) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.tokens[subjectID] = token
	return nil
}

func (s *scriptedStore) Get(_ context.Context, subjectID string) (string, error) {
	tok, ok := s.tokens[subjectID]
	if !ok {
		return "", refresh.ErrNotFound
	}
	return tok, nil
}

func (s *scriptedStore) Matches(ctx context.Context, subjectID, presented string) (bool, error) {
	tok, err := s.Get(ctx, subjectID)
	if err != nil {
		return false, nil
	}
	return tok == presented, nil
}

func (s *scriptedStore) Rotate(_ context.Context, subjectID, presented, next string, _ time.Duration) error {
	if s.rotateErr != nil {
		return s.rotateErr
	}
	tok, ok := s.tokens[subjectID]
	if !ok {
		return refresh.ErrNotFound
	}
	if tok != presented {
		return refresh.ErrMismatch
	}
	s.tokens[subjectID] = next
	return nil
}

func (s *scriptedStore) Delete(_ context.Context, subjectID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.tokens, subjectID)
	return nil
}

type brokenLookup struct{}

func (brokenLookup) FindByEmail(context.Context, string) (users.Principal, error) {
	return users.Principal{}, errBackend
}

func (brokenLookup) FindByID(context.Context, string) (users.Principal, error) {
	return users.Principal{}, errBackend
}

type fixture struct {
	repo     *users.MemoryRepository
	verifier *password.Verifier
	tokens   Issuers
	store    *scriptedStore
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	v, err := password.NewVerifier(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	hash, err := v.Hash("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	f := &fixture{
		repo:     users.NewMemoryRepository(),
		verifier: v,
		store:    newScriptedStore(),
		now:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.repo.Put(users.Principal{ID: "7", Email: "a@x.com", PasswordHash: hash, Role: users.RoleCustomer})

	clock := func() time.Time { return f.now }
	access, err := jwt.NewManager(jwt.Config{
		Kind: jwt.KindAccess, TTL: time.Minute, SigningMethod: jwt.MethodHS256,
		PrivateKey: []byte("access-key-0123456789"), Now: clock,
	})
	if err != nil {
		t.Fatalf("access manager: %v", err)
	}
	refreshTokens, err := jwt.NewManager(jwt.Config{
		Kind: jwt.KindRefresh, TTL: time.Hour, SigningMethod: jwt.MethodHS256,
		PrivateKey: []byte("refresh-key-0123456789"), Now: clock,
	})
	if err != nil {
		t.Fatalf("refresh manager: %v", err)
	}
	f.tokens = Issuers{Access: access, Refresh: refreshTokens}
	return f
}

func (f *fixture) loginDeps() LoginDeps {
	return LoginDeps{
		Users:          f.repo,
		Passwords:      f.verifier,
		Tokens:         f.tokens,
		Store:          f.store,
		Updater:        f.repo,
		UpgradeOnLogin: true,
	}
}

func (f *fixture) refreshDeps() RefreshDeps {
	return RefreshDeps{Users: f.repo, Tokens: f.tokens, Store: f.store}
}

func TestRunLoginKinds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if res := RunLogin(ctx, "ghost@x.com", "secret123", f.loginDeps()); res.Failure != LoginFailureUnknownUser || res.Failure.Internal() {
		t.Fatalf("expected unknown user, got %v", res.Failure)
	}
	if res := RunLogin(ctx, "a@x.com", "nope", f.loginDeps()); res.Failure != LoginFailureBadPassword || res.Failure.Internal() {
		t.Fatalf("expected bad password, got %v", res.Failure)
	}

	deps := f.loginDeps()
	deps.Users = brokenLookup{}
	if res := RunLogin(ctx, "a@x.com", "secret123", deps); res.Failure != LoginFailureLookup || !res.Failure.Internal() {
		t.Fatalf("expected lookup failure, got %v", res.Failure)
	}

	f.store.putErr = errBackend
	res := RunLogin(ctx, "a@x.com", "secret123", f.loginDeps())
	if res.Failure != LoginFailureStore || !errors.Is(res.Err, errBackend) {
		t.Fatalf("expected store failure, got %v (%v)", res.Failure, res.Err)
	}
	if res.Tokens.RefreshToken != "" {
		t.Fatal("a failed store write must not hand back tokens")
	}
}

func TestRunLoginStoresRefreshToken(t *testing.T) {
	f := newFixture(t)
	res := RunLogin(context.Background(), "a@x.com", "secret123", f.loginDeps())
	if res.Failure != LoginFailureNone {
		t.Fatalf("login: %v (%v)", res.Failure, res.Err)
	}
	if f.store.tokens["7"] != res.Tokens.RefreshToken {
		t.Fatal("refresh token must be stored for subject 7")
	}
	if res.Upgraded {
		t.Fatal("a current argon2id hash needs no upgrade")
	}
	if !res.Tokens.RefreshExpiresAt.Equal(f.now.Add(time.Hour)) {
		t.Fatalf("unexpected refresh expiry %v", res.Tokens.RefreshExpiresAt)
	}
}

func TestRunRefreshKinds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	login := RunLogin(ctx, "a@x.com", "secret123", f.loginDeps())
	t1 := login.Tokens.RefreshToken

	if res := RunRefresh(ctx, login.Tokens.AccessToken, "7", f.refreshDeps()); res.Failure != RefreshFailureDecode {
		t.Fatalf("access token: expected decode failure, got %v", res.Failure)
	}
	if res := RunRefresh(ctx, t1, "8", f.refreshDeps()); res.Failure != RefreshFailureSubjectMismatch {
		t.Fatalf("expected subject mismatch, got %v", res.Failure)
	}

	deps := f.refreshDeps()
	deps.Users = brokenLookup{}
	if res := RunRefresh(ctx, t1, "7", deps); res.Failure != RefreshFailureLookup || !res.Failure.Internal() {
		t.Fatalf("expected lookup failure, got %v", res.Failure)
	}

	f.store.rotateErr = errBackend
	if res := RunRefresh(ctx, t1, "7", f.refreshDeps()); res.Failure != RefreshFailureStore || !res.Failure.Internal() {
		t.Fatalf("expected store failure, got %v", res.Failure)
	}
	f.store.rotateErr = nil

	ok := RunRefresh(ctx, t1, "7", f.refreshDeps())
	if ok.Failure != RefreshFailureNone {
		t.Fatalf("refresh: %v (%v)", ok.Failure, ok.Err)
	}
	if res := RunRefresh(ctx, t1, "7", f.refreshDeps()); res.Failure != RefreshFailureReuse {
		t.Fatalf("expected reuse, got %v", res.Failure)
	}

	delete(f.store.tokens, "7")
	if res := RunRefresh(ctx, ok.Tokens.RefreshToken, "7", f.refreshDeps()); res.Failure != RefreshFailureSessionNotFound {
		t.Fatalf("expected no live session, got %v", res.Failure)
	}

	f.now = f.now.Add(2 * time.Hour)
	if res := RunRefresh(ctx, ok.Tokens.RefreshToken, "7", f.refreshDeps()); res.Failure != RefreshFailureExpired {
		t.Fatalf("expected expiry, got %v", res.Failure)
	}
}

func TestRunVerifyRefreshLeavesStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	t1 := RunLogin(ctx, "a@x.com", "secret123", f.loginDeps()).Tokens.RefreshToken

	res := RunVerifyRefresh(ctx, t1, "", f.refreshDeps())
	if res.Failure != RefreshFailureNone || res.Principal.ID != "7" {
		t.Fatalf("verify: %v %+v", res.Failure, res.Principal)
	}
	if f.store.tokens["7"] != t1 {
		t.Fatal("verification must not rotate")
	}

	f.store.tokens["7"] = "something-else"
	if res := RunVerifyRefresh(ctx, t1, "7", f.refreshDeps()); res.Failure != RefreshFailureReuse {
		t.Fatalf("expected reuse, got %v", res.Failure)
	}

	delete(f.store.tokens, "7")
	if res := RunVerifyRefresh(ctx, t1, "7", f.refreshDeps()); res.Failure != RefreshFailureSessionNotFound {
		t.Fatalf("expected no live session, got %v", res.Failure)
	}
}

func TestRunLogout(t *testing.T) {
	f := newFixture(t)
	f.store.tokens["7"] = "t"
	if err := RunLogout(context.Background(), "7", LogoutDeps{Store: f.store}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := f.store.tokens["7"]; ok {
		t.Fatal("record must be deleted")
	}
	f.store.deleteErr = errBackend
	if err := RunLogout(context.Background(), "7", LogoutDeps{Store: f.store}); !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestRunRegister(t *testing.T) {
	f := newFixture(t)
	deps := RegisterDeps{
		Creator:           f.repo,
		Passwords:         f.verifier,
		MinPasswordLength: 8,
		DefaultRole:       users.RoleCustomer,
		AllowedRoles:      []string{users.RoleCustomer, users.RoleAdmin},
	}
	ctx := context.Background()

	res := RunRegister(ctx, RegisterRequest{Email: " B@X.com", Password: "password1"}, deps)
	if res.Failure != RegisterFailureNone || res.Principal.Email != "b@x.com" || res.Principal.Role != users.RoleCustomer {
		t.Fatalf("register: %v %+v", res.Failure, res.Principal)
	}

	cases := []struct {
		req  RegisterRequest
		want RegisterFailureKind
	}{
		{RegisterRequest{Email: "b@x.com", Password: "password1"}, RegisterFailureDuplicate},
		{RegisterRequest{Email: "Bob <c@x.com>", Password: "password1"}, RegisterFailureInvalidEmail},
		{RegisterRequest{Email: "c@x.com", Password: "pässwör"}, RegisterFailureWeakPassword},
		{RegisterRequest{Email: "c@x.com", Password: "password1", Role: "owner"}, RegisterFailureInvalidRole},
	}
	for _, tc := range cases {
		if got := RunRegister(ctx, tc.req, deps).Failure; got != tc.want {
			t.Fatalf("%+v: expected %v, got %v", tc.req, tc.want, got)
		}
	}
}
