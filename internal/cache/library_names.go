package cache

import (
	"context"
	"errors"
	"time"

	"weeklygrind/plan-tracker/internal/metrics"
	"weeklygrind/plan-tracker/internal/service"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	megabyte = 1024 * 1024
	// freecache refuses anything below 512KB
	minSizeMB = 1
)

// LibraryNames caches library exercise names in front of another lookup.
// Entries are only expired by the TTL, so a re-seed shows up once it lapses.
// Misses are not cached: an id missing from the library is asked for again.
type LibraryNames struct {
	next       service.LibraryLookup
	cache      *freecache.Cache
	expireSecs int
	metrics    *metrics.Manager
}

var _ service.LibraryLookup = (*LibraryNames)(nil)

func NewLibraryNames(next service.LibraryLookup, sizeMB int, ttl time.Duration, metricsManager *metrics.Manager) *LibraryNames {
	if sizeMB < minSizeMB {
		sizeMB = minSizeMB
	}
	return &LibraryNames{
		next:       next,
		cache:      freecache.NewCache(sizeMB * megabyte),
		expireSecs: int(ttl / time.Second),
		metrics:    metricsManager,
	}
}

func (l *LibraryNames) LibraryNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string, len(ids))
	var missing []primitive.ObjectID
	for _, id := range ids {
		value, err := l.cache.Get(id[:])
		switch {
		case err == nil:
			names[id] = string(value)
			l.metrics.CounterNameCacheLookups.WithLabelValues("hit").Inc()
		case errors.Is(err, freecache.ErrNotFound):
			missing = append(missing, id)
			l.metrics.CounterNameCacheLookups.WithLabelValues("miss").Inc()
		default:
			log.Errorf("read library name %s from cache: %s", id.Hex(), err)
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return names, nil
	}

	fetched, err := l.next.LibraryNames(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, name := range fetched {
		names[id] = name
		if err := l.cache.Set(id[:], []byte(name), l.expireSecs); err != nil {
			log.Errorf("cache library name %s: %s", id.Hex(), err)
		}
	}
	return names, nil
}
