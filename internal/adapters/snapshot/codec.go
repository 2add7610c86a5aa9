package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/heatboard/heatboard/internal/domain/model"
	"github.com/heatboard/heatboard/pkg/logger"
	"github.com/heatboard/heatboard/pkg/metrics"
)

// Defaults matching the legacy cookie persistence.
const (
	defaultChunkSize = 4000
	defaultTTL       = 28 * 24 * time.Hour
)

// Codec serializes the standings snapshot to the store in size-capped
// chunks. All keys are scoped by the task ID so concurrently tracked tasks
// never collide.
type Codec struct {
	store     Store
	taskID    string
	chunkSize int
	ttl       time.Duration
	log       logger.Logger
}

// CodecOption applies a configuration option to the Codec.
type CodecOption func(*Codec)

// WithChunkSize caps each stored chunk, in bytes.
func WithChunkSize(size int) CodecOption {
	return func(c *Codec) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithTTL sets the shared expiry for all of a snapshot's keys.
func WithTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger for the codec.
func WithLogger(log logger.Logger) CodecOption {
	return func(c *Codec) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCodec creates a Codec persisting snapshots for taskID through store.
func NewCodec(store Store, taskID string, opts ...CodecOption) *Codec {
	c := &Codec{
		store:     store,
		taskID:    taskID,
		chunkSize: defaultChunkSize,
		ttl:       defaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("snapshot")
	}
	return c
}

// Write serializes entries to one JSON blob, splits it into the minimum
// number of size-capped chunks and stores the chunk count plus every chunk
// under task-scoped keys sharing one expiry.
func (c *Codec) Write(ctx context.Context, entries []model.SnapshotEntry) error {
	blob, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	numChunks := (len(blob) + c.chunkSize - 1) / c.chunkSize
	if numChunks == 0 {
		numChunks = 1
	}

	if err := c.store.Set(ctx, c.countKey(), strconv.Itoa(numChunks), c.ttl); err != nil {
		metrics.RecordSnapshotWriteError()
		return fmt.Errorf("store chunk count: %w", err)
	}
	for i := 0; i < numChunks; i++ {
		start := i * c.chunkSize
		end := start + c.chunkSize
		if end > len(blob) {
			end = len(blob)
		}
		if err := c.store.Set(ctx, c.chunkKey(i), string(blob[start:end]), c.ttl); err != nil {
			metrics.RecordSnapshotWriteError()
			return fmt.Errorf("store chunk %d: %w", i, err)
		}
	}

	metrics.UpdateSnapshotChunks(numChunks)
	metrics.UpdateSnapshotBytes(len(blob))
	c.log.Debug(ctx, "snapshot written",
		logger.String("task", c.taskID),
		logger.Int("chunks", numChunks),
		logger.Int("bytes", len(blob)))
	return nil
}

// Read reassembles and decodes the persisted snapshot. Any lookup or parse
// failure yields an empty snapshot: absence of prior data is the expected
// "no history yet" state, never an error.
func (c *Codec) Read(ctx context.Context) []model.SnapshotEntry {
	countStr, err := c.store.Get(ctx, c.countKey())
	if err != nil {
		return c.miss(ctx, "chunk count missing", err)
	}
	numChunks, err := strconv.Atoi(countStr)
	if err != nil || numChunks < 1 {
		return c.miss(ctx, "chunk count unparsable", err)
	}

	var blob []byte
	for i := 0; i < numChunks; i++ {
		chunk, err := c.store.Get(ctx, c.chunkKey(i))
		if err != nil {
			return c.miss(ctx, "chunk missing", err)
		}
		blob = append(blob, chunk...)
	}

	var entries []model.SnapshotEntry
	if err := json.Unmarshal(blob, &entries); err != nil {
		return c.miss(ctx, "snapshot unparsable", err)
	}
	return entries
}

func (c *Codec) miss(ctx context.Context, reason string, err error) []model.SnapshotEntry {
	metrics.RecordSnapshotReadMiss()
	c.log.Debug(ctx, "no prior snapshot",
		logger.String("task", c.taskID),
		logger.String("reason", reason),
		logger.Error(err))
	return nil
}

func (c *Codec) countKey() string {
	return fmt.Sprintf("numChunk-%s", c.taskID)
}

func (c *Codec) chunkKey(i int) string {
	return fmt.Sprintf("standings-%s-%d", c.taskID, i)
}
