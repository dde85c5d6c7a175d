package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// storageKey is the single key the serialized notification list lives under.
const storageKey = "in_app_notifications"

// Blobs is the subset of the key-value store the repository needs.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// KVRepo persists the notification list as one JSON array under a single
// storage key. Every mutation is a full read, in-memory transform, and full
// write-back; the mutex serializes those cycles so concurrent mutations
// cannot lose each other's writes.
type KVRepo struct {
	blobs  Blobs
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewKVRepo creates a KVRepo over the given key-value store.
func NewKVRepo(blobs Blobs, logger zerolog.Logger) *KVRepo {
	return &KVRepo{blobs: blobs, logger: logger}
}

// List implements Repository.
func (r *KVRepo) List(ctx context.Context) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// SaveAll implements Repository.
func (r *KVRepo) SaveAll(ctx context.Context, records []Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, records)
}

// Update implements Repository.
func (r *KVRepo) Update(ctx context.Context, transform func([]Record) []Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	return r.save(ctx, transform(records))
}

func (r *KVRepo) load(ctx context.Context) ([]Record, error) {
	raw, err := r.blobs.Get(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("reading notification list: %w", err)
	}
	if len(raw) == 0 {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		// A corrupt stored value degrades to an empty list rather than
		// wedging the notification subsystem.
		r.logger.Error().Err(err).Msg("stored notification list is undecodable; treating as empty")
		return []Record{}, nil
	}
	return records, nil
}

func (r *KVRepo) save(ctx context.Context, records []Record) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding notification list: %w", err)
	}
	if err := r.blobs.Put(ctx, storageKey, raw); err != nil {
		return fmt.Errorf("writing notification list: %w", err)
	}
	return nil
}
