package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if _, ok := f.data[key]; !ok {
		return false, nil
	}
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
		delete(f.ttls, k)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) SessionKey(id string) string { return "sb:session:" + id }

func newTestManager(store *fakeStore) *Manager {
	return &Manager{store: store, keyer: fakeKeyer{}, idle: 2 * time.Hour}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	mgr := newTestManager(store)

	userID := uuid.New()
	sessionID := NewSessionID()

	require.NoError(t, mgr.Start(ctx, sessionID, userID))
	require.Equal(t, 2*time.Hour, store.ttls["sb:session:"+sessionID])

	owner, err := mgr.Owner(ctx, sessionID)
	require.NoError(t, err)
	require.Equal(t, userID, owner)

	alive, err := mgr.Touch(ctx, sessionID)
	require.NoError(t, err)
	require.True(t, alive)

	require.NoError(t, mgr.Revoke(ctx, sessionID))

	alive, err = mgr.Touch(ctx, sessionID)
	require.NoError(t, err)
	require.False(t, alive)

	_, err = mgr.Owner(ctx, sessionID)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestTouchUnknownSession(t *testing.T) {
	mgr := newTestManager(newFakeStore())

	alive, err := mgr.Touch(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, alive)
}

func TestStartRequiresSessionID(t *testing.T) {
	mgr := newTestManager(newFakeStore())
	require.Error(t, mgr.Start(context.Background(), "  ", uuid.New()))
}
