package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custos-grc/custos/internal/domain/directory"
	"github.com/custos-grc/custos/internal/shared/logger"
)

const directoryGroupsKeyPrefix = "custos:directory:groups:"

// DirectorySnapshotCache is a read-through cache in front of the external
// directory. Drift recomputes for a whole tenant hammer the same lookups, so
// group snapshots are held in redis for a short TTL. A cache failure degrades
// to the upstream call, never to an error.
type DirectorySnapshotCache struct {
	upstream directory.Directory
	client   *redis.Client
	ttl      time.Duration
	logger   logger.Interface
}

// NewDirectorySnapshotCache wraps the upstream directory with a redis cache.
func NewDirectorySnapshotCache(
	upstream directory.Directory,
	client *redis.Client,
	ttl time.Duration,
	log logger.Interface,
) *DirectorySnapshotCache {
	return &DirectorySnapshotCache{
		upstream: upstream,
		client:   client,
		ttl:      ttl,
		logger:   log,
	}
}

var (
	_ directory.Directory           = (*DirectorySnapshotCache)(nil)
	_ directory.SnapshotInvalidator = (*DirectorySnapshotCache)(nil)
)

// GetGroupsForUser returns the cached snapshot when fresh, otherwise reads
// from the upstream directory and stores the result.
func (c *DirectorySnapshotCache) GetGroupsForUser(ctx context.Context, userID string) ([]string, error) {
	key := directoryGroupsKeyPrefix + userID

	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var groups []string
		if jsonErr := json.Unmarshal([]byte(val), &groups); jsonErr == nil {
			return groups, nil
		}
		// Unreadable entry; fall through to the upstream and overwrite it.
		c.logger.Warnw("corrupt directory snapshot entry, refetching", "user_id", userID)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warnw("directory snapshot cache read failed, going upstream",
			"user_id", userID,
			"error", err,
		)
	}

	groups, err := c.upstream.GetGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(groups)
	if err != nil {
		return groups, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warnw("failed to store directory snapshot",
			"user_id", userID,
			"error", err,
		)
	}
	return groups, nil
}

// InvalidateUser drops the cached snapshot for a user.
func (c *DirectorySnapshotCache) InvalidateUser(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, directoryGroupsKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate directory snapshot: %w", err)
	}
	return nil
}
