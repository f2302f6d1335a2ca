package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/db/models"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
)

const adminLookupTimeout = 5 * time.Second

// cacheMiss marks a negative lookup so absent admins are cached too.
const cacheMiss = "none"

// AdminStatus is the resolved back-office standing for an identity.
type AdminStatus struct {
	IsStaff bool
	Role    enums.Role
	AdminID uuid.UUID
}

type statusCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	AdminStatusKey(email string) string
	IsNil(err error) bool
}

type adminFinder interface {
	FindAdmin(ctx context.Context, userID uuid.UUID, email string) (*models.AdminUser, error)
}

// StatusResolver answers "is this identity staff" with a bounded lookup,
// a short shared cache, and in-flight de-duplication so a burst of
// requests costs one query.
type StatusResolver struct {
	finder adminFinder
	cache  statusCache
	ttl    time.Duration
	group  singleflight.Group
	logg   *logger.Logger
}

// NewStatusResolver builds the resolver. Cache may be nil, which disables
// caching but keeps the singleflight collapse.
func NewStatusResolver(finder adminFinder, cache statusCache, ttl time.Duration, logg *logger.Logger) (*StatusResolver, error) {
	if finder == nil {
		return nil, fmt.Errorf("admin finder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &StatusResolver{finder: finder, cache: cache, ttl: ttl, logg: logg}, nil
}

// Resolve returns the staff standing for a (userID, email) pair.
func (r *StatusResolver) Resolve(ctx context.Context, userID uuid.UUID, email string) (AdminStatus, error) {
	cacheKey := ""
	if r.cache != nil {
		cacheKey = r.cache.AdminStatusKey(userID.String() + "|" + email)
		if cached, err := r.cache.Get(ctx, cacheKey); err == nil {
			return decodeStatus(cached), nil
		} else if !r.cache.IsNil(err) {
			r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "admin status cache read failed")
		}
	}

	result, err, _ := r.group.Do(userID.String()+"|"+email, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(ctx, adminLookupTimeout)
		defer cancel()

		admin, err := r.finder.FindAdmin(lookupCtx, userID, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return AdminStatus{}, nil
			}
			return AdminStatus{}, err
		}
		if !admin.IsActive {
			return AdminStatus{}, nil
		}
		role, ok := enums.NormalizeAdminRole(string(admin.Role))
		if !ok {
			return AdminStatus{}, nil
		}
		return AdminStatus{IsStaff: true, Role: role, AdminID: admin.ID}, nil
	})
	if err != nil {
		return AdminStatus{}, err
	}
	status := result.(AdminStatus)

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, encodeStatus(status), r.ttl); err != nil {
			r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "admin status cache write failed")
		}
	}
	return status, nil
}

func encodeStatus(status AdminStatus) string {
	if !status.IsStaff {
		return cacheMiss
	}
	return status.Role.String() + "|" + status.AdminID.String()
}

func decodeStatus(value string) AdminStatus {
	if value == cacheMiss || value == "" {
		return AdminStatus{}
	}
	for i := 0; i < len(value); i++ {
		if value[i] == '|' {
			role, ok := enums.NormalizeAdminRole(value[:i])
			if !ok {
				return AdminStatus{}
			}
			id, err := uuid.Parse(value[i+1:])
			if err != nil {
				return AdminStatus{}
			}
			return AdminStatus{IsStaff: true, Role: role, AdminID: id}
		}
	}
	return AdminStatus{}
}
