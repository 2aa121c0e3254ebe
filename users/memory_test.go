package users

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRepositoryCreateAndLookup(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	p, err := repo.Create(ctx, NewPrincipal{Email: "A@x.com", PasswordHash: "h", Role: RoleCustomer})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if p.ID != "1" {
		t.Fatalf("expected id 1, got %q", p.ID)
	}
	if _, err := repo.Create(ctx, NewPrincipal{Email: "a@x.com", PasswordHash: "h"}); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	byEmail, err := repo.FindByEmail(ctx, "a@X.com")
	if err != nil || byEmail.ID != p.ID {
		t.Fatalf("FindByEmail mismatch: %+v err=%v", byEmail, err)
	}
	if _, err := repo.FindByID(ctx, "404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepositoryPutAdvancesSequence(t *testing.T) {
	repo := NewMemoryRepository()
	repo.Put(Principal{ID: "7", Email: "a@x.com", PasswordHash: "h"})

	p, err := repo.Create(context.Background(), NewPrincipal{Email: "b@x.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if p.ID != "8" {
		t.Fatalf("expected id 8 after Put(7), got %q", p.ID)
	}
}

func TestMemoryRepositorySwapIsConditional(t *testing.T) {
	repo := NewMemoryRepository()
	repo.Put(Principal{ID: "7", Email: "a@x.com"})
	ctx := context.Background()

	if ok, _ := repo.SwapStoredRefreshHash(ctx, "7", "", "h1"); ok {
		t.Fatal("swap from empty must not succeed")
	}
	if err := repo.SetStoredRefreshHash(ctx, "7", "h1"); err != nil {
		t.Fatalf("SetStoredRefreshHash error: %v", err)
	}
	if ok, _ := repo.SwapStoredRefreshHash(ctx, "7", "h1", "h2"); !ok {
		t.Fatal("expected swap to succeed")
	}
	if ok, _ := repo.SwapStoredRefreshHash(ctx, "7", "h1", "h3"); ok {
		t.Fatal("stale swap must fail")
	}
	got, _ := repo.StoredRefreshHash(ctx, "7")
	if got != "h2" {
		t.Fatalf("expected h2, got %q", got)
	}
}

func TestMemoryRepositoryDelete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	repo.Put(Principal{ID: "3", Email: "gone@x.com", Role: RoleCustomer})

	repo.Delete("3")
	repo.Delete("3")

	if _, err := repo.FindByID(ctx, "3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound by id, got %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "gone@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound by email, got %v", err)
	}
}
