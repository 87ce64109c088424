package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/worksite"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Works and suppliers are managed by another service and change rarely, so
// their read models are cached with a short TTL. Cache failures degrade to
// the underlying repository rather than surfacing an error.

// CachedWorkRepository decorates a WorkRepository with a Redis cache
type CachedWorkRepository struct {
	inner  worksite.WorkRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedWorkRepository creates a new CachedWorkRepository
func NewCachedWorkRepository(inner worksite.WorkRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedWorkRepository {
	return &CachedWorkRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

// FindByID finds a work by ID, preferring the cache
func (r *CachedWorkRepository) FindByID(ctx context.Context, id uuid.UUID) (*worksite.Work, error) {
	key := "work:" + id.String()

	payload, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var work worksite.Work
		if err := json.Unmarshal(payload, &work); err == nil {
			return &work, nil
		}
		// Corrupt entry, fall through to the source.
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("work cache lookup failed", zap.Error(err))
	}

	work, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(work); err == nil {
		if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("work cache write failed", zap.Error(err))
		}
	}
	return work, nil
}

// CachedSupplierRepository decorates a SupplierRepository with a Redis cache
type CachedSupplierRepository struct {
	inner  worksite.SupplierRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSupplierRepository creates a new CachedSupplierRepository
func NewCachedSupplierRepository(inner worksite.SupplierRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSupplierRepository {
	return &CachedSupplierRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

// FindByID finds a supplier by ID, preferring the cache
func (r *CachedSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*worksite.Supplier, error) {
	key := "supplier:" + id.String()

	payload, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var supplier worksite.Supplier
		if err := json.Unmarshal(payload, &supplier); err == nil {
			return &supplier, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("supplier cache lookup failed", zap.Error(err))
	}

	supplier, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(supplier); err == nil {
		if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("supplier cache write failed", zap.Error(err))
		}
	}
	return supplier, nil
}

var (
	_ worksite.WorkRepository     = (*CachedWorkRepository)(nil)
	_ worksite.SupplierRepository = (*CachedSupplierRepository)(nil)
)
