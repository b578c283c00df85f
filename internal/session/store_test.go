package session_test

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/dom/tablebook/internal/domain"
	"github.com/dom/tablebook/internal/event"
	"github.com/dom/tablebook/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage is an in-memory Storage for store tests.
type memStorage struct {
	values map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{values: make(map[string]string)}
}

func (m *memStorage) Get(key string) (string, bool) {
	value, ok := m.values[key]
	return value, ok
}

func (m *memStorage) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memStorage) Clear(keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func seedSession(t *testing.T, storage *memStorage, user domain.User, issuedAt time.Time) {
	t.Helper()
	userJSON, err := json.Marshal(user)
	require.NoError(t, err)
	storage.values[session.KeyToken] = "token-abc"
	storage.values[session.KeyUser] = string(userJSON)
	storage.values[session.KeyIssuedAt] = strconv.FormatInt(issuedAt.UnixMilli(), 10)
}

func TestStore_LoginPersistsEverything(t *testing.T) {
	storage := newMemStorage()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := session.New(storage, event.NewSignal(), session.WithClock(fixedClock(now)))

	user := domain.User{ID: 1, Name: "Alice", Phone: "+79001112233"}
	require.NoError(t, store.Login("token-abc", user))

	assert.True(t, store.Authenticated())
	credential, ok := store.Credential()
	assert.True(t, ok)
	assert.Equal(t, "token-abc", credential)
	got, ok := store.User()
	assert.True(t, ok)
	assert.Equal(t, user, got)

	assert.Equal(t, "token-abc", storage.values[session.KeyToken])
	assert.JSONEq(t, `{"id":1,"name":"Alice","phone":"+79001112233"}`, storage.values[session.KeyUser])
	assert.Equal(t, strconv.FormatInt(now.UnixMilli(), 10), storage.values[session.KeyIssuedAt])
}

func TestStore_RestoreWithinLifetime(t *testing.T) {
	storage := newMemStorage()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	user := domain.User{ID: 7, Name: "Bob", Phone: "+79005556677"}
	seedSession(t, storage, user, now.Add(-23*time.Hour))

	store := session.New(storage, event.NewSignal(), session.WithClock(fixedClock(now)))
	store.Restore()

	assert.True(t, store.Authenticated())
	got, ok := store.User()
	assert.True(t, ok)
	assert.Equal(t, user, got)
}

func TestStore_RestoreExpired(t *testing.T) {
	storage := newMemStorage()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seedSession(t, storage, domain.User{ID: 7}, now.Add(-24*time.Hour-time.Millisecond))

	store := session.New(storage, event.NewSignal(), session.WithClock(fixedClock(now)))
	store.Restore()

	assert.False(t, store.Authenticated())
	assert.Empty(t, storage.values, "expired session must clear persisted keys")
}

func TestStore_RestoreExactlyAtLifetimeStillValid(t *testing.T) {
	storage := newMemStorage()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seedSession(t, storage, domain.User{ID: 7}, now.Add(-24*time.Hour))

	store := session.New(storage, event.NewSignal(), session.WithClock(fixedClock(now)))
	store.Restore()

	assert.True(t, store.Authenticated())
}

func TestStore_RestoreMissingOrMalformed(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		setup func(*memStorage)
	}{
		{
			name:  "empty storage",
			setup: func(m *memStorage) {},
		},
		{
			name: "token without user",
			setup: func(m *memStorage) {
				m.values[session.KeyToken] = "token-abc"
				m.values[session.KeyIssuedAt] = strconv.FormatInt(now.UnixMilli(), 10)
			},
		},
		{
			name: "malformed timestamp",
			setup: func(m *memStorage) {
				m.values[session.KeyToken] = "token-abc"
				m.values[session.KeyUser] = `{"id":1}`
				m.values[session.KeyIssuedAt] = "not-a-number"
			},
		},
		{
			name: "malformed user record",
			setup: func(m *memStorage) {
				m.values[session.KeyToken] = "token-abc"
				m.values[session.KeyUser] = "{{{"
				m.values[session.KeyIssuedAt] = strconv.FormatInt(now.UnixMilli(), 10)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newMemStorage()
			tt.setup(storage)

			store := session.New(storage, event.NewSignal(), session.WithClock(fixedClock(now)))
			store.Restore()

			assert.False(t, store.Authenticated())
			assert.Empty(t, storage.values, "partial state must be cleared")
			_, ok := store.Credential()
			assert.False(t, ok)
			_, ok = store.User()
			assert.False(t, ok)
		})
	}
}

func TestStore_LogoutIdempotent(t *testing.T) {
	storage := newMemStorage()
	store := session.New(storage, event.NewSignal())
	require.NoError(t, store.Login("token-abc", domain.User{ID: 1}))

	store.Logout()
	assert.False(t, store.Authenticated())
	assert.Empty(t, storage.values)

	store.Logout()
	assert.False(t, store.Authenticated())
	assert.Empty(t, storage.values)
}

func TestStore_UnauthorizedSignalLogsOut(t *testing.T) {
	storage := newMemStorage()
	logout := event.NewSignal()
	store := session.New(storage, logout)
	require.NoError(t, store.Login("token-abc", domain.User{ID: 1}))

	logout.Emit()
	assert.False(t, store.Authenticated())
	assert.Empty(t, storage.values)

	// A second signal, from another in-flight request, is harmless.
	logout.Emit()
	assert.False(t, store.Authenticated())
}
