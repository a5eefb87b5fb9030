package gate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"ssequote/internal/logging"
	"ssequote/internal/services"
	"ssequote/internal/storage"
)

// Gate decides whether a pipeline stage can be skipped because its artifact
// is already stored, and makes sure buckets exist before uploads.
type Gate struct {
	store  storage.Store
	logger *slog.Logger

	mu      sync.Mutex
	buckets map[string]*bucketState
}

type bucketState struct {
	once sync.Once
	err  error
	done bool
}

// New creates a Gate backed by store.
func New(store storage.Store, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Gate{
		store:   store,
		logger:  logger,
		buckets: make(map[string]*bucketState),
	}
}

// ExistsAt reports whether bucket/key is stored. A confirmed miss returns
// false; any other failure is a storage error and never counts as a miss.
func (g *Gate) ExistsAt(ctx context.Context, bucket, key string) (bool, error) {
	err := g.store.HeadObject(ctx, bucket, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, services.Wrap(services.ErrStorage, "gate", "head object", bucket+"/"+key, err)
	}
}

// EnsureBucket creates bucket when it does not exist. Losing a create race
// to another caller counts as success. Confirmed buckets are remembered so
// concurrent episodes probe each bucket once per process.
func (g *Gate) EnsureBucket(ctx context.Context, bucket string) error {
	g.mu.Lock()
	state, ok := g.buckets[bucket]
	if ok && state.done && state.err == nil {
		g.mu.Unlock()
		return nil
	}
	if !ok || state.done {
		state = &bucketState{}
		g.buckets[bucket] = state
	}
	g.mu.Unlock()

	state.once.Do(func() {
		state.err = g.ensure(ctx, bucket)
		g.mu.Lock()
		state.done = true
		g.mu.Unlock()
	})
	return state.err
}

func (g *Gate) ensure(ctx context.Context, bucket string) error {
	err := g.store.HeadBucket(ctx, bucket)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return services.Wrap(services.ErrStorage, "gate", "head bucket", bucket, err)
	}

	err = g.store.CreateBucket(ctx, bucket)
	switch {
	case err == nil:
		g.logger.Info("bucket created", logging.Bucket(bucket))
		return nil
	case errors.Is(err, storage.ErrBucketExists):
		g.logger.Debug("bucket created concurrently", logging.Bucket(bucket))
		return nil
	default:
		return services.Wrap(services.ErrStorage, "gate", "create bucket", bucket, err)
	}
}
