package auth

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
)

type slowAdminFinder struct {
	admin   *models.AdminUser
	lookups atomic.Int64
	delay   time.Duration
}

func (f *slowAdminFinder) FindAdmin(_ context.Context, _ uuid.UUID, _ string) (*models.AdminUser, error) {
	f.lookups.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.admin == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.admin, nil
}

type fakeStatusCache struct {
	mu      sync.Mutex
	values  map[string]string
	lastTTL time.Duration
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{values: map[string]string{}}
}

var errCacheMiss = gorm.ErrRecordNotFound

func (c *fakeStatusCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	return "", errCacheMiss
}

func (c *fakeStatusCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value.(string)
	c.lastTTL = ttl
	return nil
}

func (c *fakeStatusCache) AdminStatusKey(email string) string {
	return "sb:admin_status:" + email
}

func (c *fakeStatusCache) IsNil(err error) bool {
	return err == errCacheMiss
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
}

func TestResolveStaffWithLegacyLabel(t *testing.T) {
	finder := &slowAdminFinder{admin: &models.AdminUser{
		ID:       uuid.New(),
		Email:    "gerente@lojaexemplo.com.br",
		Role:     enums.Role("Super_Admin"),
		IsActive: true,
	}}
	resolver, err := NewStatusResolver(finder, newFakeStatusCache(), 5*time.Minute, testLogger())
	require.NoError(t, err)

	status, err := resolver.Resolve(context.Background(), uuid.New(), "gerente@lojaexemplo.com.br")
	require.NoError(t, err)
	require.True(t, status.IsStaff)
	require.Equal(t, enums.RoleAdmin, status.Role)
}

func TestResolveNonStaffCached(t *testing.T) {
	finder := &slowAdminFinder{}
	cache := newFakeStatusCache()
	resolver, err := NewStatusResolver(finder, cache, 5*time.Minute, testLogger())
	require.NoError(t, err)

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		status, err := resolver.Resolve(context.Background(), userID, "cliente@exemplo.com")
		require.NoError(t, err)
		require.False(t, status.IsStaff)
	}
	require.Equal(t, int64(1), finder.lookups.Load())
}

func TestResolveCachesWithConfiguredTTL(t *testing.T) {
	ttl := (config.SessionConfig{}).AdminCacheTTL()
	require.Equal(t, 5*time.Minute, ttl)

	finder := &slowAdminFinder{}
	cache := newFakeStatusCache()
	resolver, err := NewStatusResolver(finder, cache, ttl, testLogger())
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), uuid.New(), "cliente@exemplo.com")
	require.NoError(t, err)

	cache.mu.Lock()
	defer cache.mu.Unlock()
	require.Equal(t, ttl, cache.lastTTL)
}

func TestResolveInactiveAdminIsNotStaff(t *testing.T) {
	finder := &slowAdminFinder{admin: &models.AdminUser{
		ID:       uuid.New(),
		Role:     enums.RoleAdmin,
		IsActive: false,
	}}
	resolver, err := NewStatusResolver(finder, nil, time.Minute, testLogger())
	require.NoError(t, err)

	status, err := resolver.Resolve(context.Background(), uuid.New(), "ex@exemplo.com")
	require.NoError(t, err)
	require.False(t, status.IsStaff)
}

func TestResolveCollapsesConcurrentLookups(t *testing.T) {
	finder := &slowAdminFinder{
		admin: &models.AdminUser{ID: uuid.New(), Role: enums.RoleAtendente, IsActive: true},
		delay: 50 * time.Millisecond,
	}
	resolver, err := NewStatusResolver(finder, nil, time.Minute, testLogger())
	require.NoError(t, err)

	userID := uuid.New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := resolver.Resolve(context.Background(), userID, "atendente@exemplo.com")
			require.NoError(t, err)
			require.True(t, status.IsStaff)
			require.Equal(t, enums.RoleAtendente, status.Role)
		}()
	}
	wg.Wait()
	require.Equal(t, int64(1), finder.lookups.Load())
}

func TestStatusRoundTripEncoding(t *testing.T) {
	id := uuid.New()
	staff := AdminStatus{IsStaff: true, Role: enums.RoleAdmin, AdminID: id}
	require.Equal(t, staff, decodeStatus(encodeStatus(staff)))
	require.Equal(t, AdminStatus{}, decodeStatus(encodeStatus(AdminStatus{})))
	require.Equal(t, AdminStatus{}, decodeStatus("lixo"))
}
