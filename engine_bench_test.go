package goSession

import (
	"context"
	"testing"
)

func newBenchmarkEngine(b *testing.B, backend StoreBackend) *Engine {
	b.Helper()
	_, rdb := newTestRedis(b)
	cfg := testConfig()
	cfg.Store.Backend = backend

	engine, err := New().WithConfig(cfg).WithUserRepository(seededRepository(b)).WithRedis(rdb).Build()
	if err != nil {
		b.Fatalf("build: %v", err)
	}
	b.Cleanup(engine.Close)
	return engine
}

func BenchmarkValidateAccess(b *testing.B) {
	engine := newBenchmarkEngine(b, StoreEphemeral)
	res, err := engine.Login(context.Background(), Credentials{Email: testEmail, Password: testPassword}, nil)
	if err != nil {
		b.Fatalf("login failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.ValidateAccess(context.Background(), res.Tokens.AccessToken); err != nil {
			b.Fatalf("validate failed: %v", err)
		}
	}
}

func benchmarkRefresh(b *testing.B, backend StoreBackend) {
	engine := newBenchmarkEngine(b, backend)
	res, err := engine.Login(context.Background(), Credentials{Email: testEmail, Password: testPassword}, nil)
	if err != nil {
		b.Fatalf("login failed: %v", err)
	}
	token := res.Tokens.RefreshToken

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pair, err := engine.Refresh(context.Background(), token, testSubject, nil)
		if err != nil {
			b.Fatalf("refresh failed: %v", err)
		}
		token = pair.RefreshToken
	}
}

func BenchmarkRefreshEphemeral(b *testing.B) { benchmarkRefresh(b, StoreEphemeral) }

// Durable rotation pays one argon2id hash and one verify per call.
func BenchmarkRefreshDurable(b *testing.B) { benchmarkRefresh(b, StoreDurable) }
