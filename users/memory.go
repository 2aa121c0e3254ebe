package users

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryRepository keeps principals in process memory. It backs tests and the
// demo server.
type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[string]*memoryRow
	byEmail map[string]string
}

type memoryRow struct {
	principal   Principal
	refreshHash string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*memoryRow),
		byEmail: make(map[string]string),
	}
}

// Put inserts or replaces a principal with a caller-chosen ID.
func (m *MemoryRepository) Put(p Principal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.Email = normalizeEmail(p.Email)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if old, ok := m.byID[p.ID]; ok {
		delete(m.byEmail, old.principal.Email)
	}
	m.byID[p.ID] = &memoryRow{principal: p}
	m.byEmail[p.Email] = p.ID
	if v, err := strconv.ParseInt(p.ID, 10, 64); err == nil && v > m.nextID {
		m.nextID = v
	}
}

// Delete removes a principal and its refresh hash. Missing IDs are ignored.
func (m *MemoryRepository) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row, ok := m.byID[id]; ok {
		delete(m.byEmail, row.principal.Email)
		delete(m.byID, id)
	}
}

func (m *MemoryRepository) Create(_ context.Context, in NewPrincipal) (Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(in.Email)
	if _, ok := m.byEmail[email]; ok {
		return Principal{}, ErrExists
	}
	m.nextID++
	p := Principal{
		ID:           strconv.FormatInt(m.nextID, 10),
		Email:        email,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
		CreatedAt:    time.Now().UTC(),
	}
	m.byID[p.ID] = &memoryRow{principal: p}
	m.byEmail[email] = p.ID
	return p, nil
}

func (m *MemoryRepository) FindByEmail(_ context.Context, email string) (Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[normalizeEmail(email)]
	if !ok {
		return Principal{}, ErrNotFound
	}
	return m.byID[id].principal, nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id string) (Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.byID[id]
	if !ok {
		return Principal{}, ErrNotFound
	}
	return row.principal, nil
}

func (m *MemoryRepository) UpdatePasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	row.principal.PasswordHash = hash
	return nil
}

func (m *MemoryRepository) StoredRefreshHash(_ context.Context, id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.byID[id]
	if !ok {
		return "", ErrNotFound
	}
	return row.refreshHash, nil
}

func (m *MemoryRepository) SetStoredRefreshHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	row.refreshHash = hash
	return nil
}

func (m *MemoryRepository) SwapStoredRefreshHash(_ context.Context, id, oldHash, newHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	if row.refreshHash == "" || row.refreshHash != oldHash {
		return false, nil
	}
	row.refreshHash = newHash
	return true, nil
}
