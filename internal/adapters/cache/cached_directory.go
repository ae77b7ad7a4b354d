package cache

import (
	"context"
	"errors"
	"log"

	"transport-routing-service/internal/domain"
	"transport-routing-service/internal/ports"

	"github.com/google/uuid"
)

// CachedCustomerDirectory decorates a CustomerDirectory with the Redis
// location cache. Cache failures are logged and fall through to the backing
// directory; a not-found customer is never cached.
type CachedCustomerDirectory struct {
	Next  ports.CustomerDirectory
	Cache *RedisLocationCache
}

func NewCachedCustomerDirectory(next ports.CustomerDirectory, cache *RedisLocationCache) *CachedCustomerDirectory {
	return &CachedCustomerDirectory{Next: next, Cache: cache}
}

func (d *CachedCustomerDirectory) Locate(ctx context.Context, customerID uuid.UUID) (domain.CustomerLocation, error) {
	loc, ok, err := d.Cache.Get(ctx, customerID)
	if err != nil {
		log.Printf("location cache read failed customer=%s err=%v", customerID, err)
	}
	if ok {
		return loc, nil
	}

	loc, err = d.Next.Locate(ctx, customerID)
	if err != nil {
		return domain.CustomerLocation{}, err
	}

	if err := d.Cache.Put(ctx, customerID, loc); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("location cache write failed customer=%s err=%v", customerID, err)
	}
	return loc, nil
}
