package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

const DefaultChangeLogKey = "graphadmin:schema_change_logs"

// ChangeLog keeps the audit trail in a Redis list, newest at the head. Append pushes and trims
// in one MULTI so the list never exceeds capacity.
type ChangeLog struct {
	rdb      goredis.UniversalClient
	log      *logger.Logger
	key      string
	capacity int
}

func NewChangeLog(rdb goredis.UniversalClient, baseLog *logger.Logger, key string, capacity int) *ChangeLog {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultChangeLogKey
	}
	if capacity <= 0 {
		capacity = domain.DefaultChangeLogCapacity
	}
	return &ChangeLog{
		rdb:      rdb,
		log:      baseLog.With("service", "RedisChangeLog"),
		key:      key,
		capacity: capacity,
	}
}

func (c *ChangeLog) Capacity() int { return c.capacity }

func (c *ChangeLog) Append(ctx context.Context, entry domain.SchemaChangeLog) error {
	const op = "RedisChangeLog.Append"
	raw, err := json.Marshal(entry)
	if err != nil {
		return domain.NewError(domain.CodeInternal, op, "encode change log entry", err)
	}
	_, err = c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.LPush(ctx, c.key, raw)
		p.LTrim(ctx, c.key, 0, int64(c.capacity-1))
		return nil
	})
	if err != nil {
		return domain.UnavailableError(op, err)
	}
	return nil
}

func (c *ChangeLog) ReadRecent(ctx context.Context, limit int) ([]domain.SchemaChangeLog, error) {
	const op = "RedisChangeLog.ReadRecent"
	if limit <= 0 || limit > c.capacity {
		limit = c.capacity
	}
	vals, err := c.rdb.LRange(ctx, c.key, 0, int64(limit-1)).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, domain.UnavailableError(op, err)
	}
	out := make([]domain.SchemaChangeLog, 0, len(vals))
	for _, v := range vals {
		var e domain.SchemaChangeLog
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			c.log.Warn("skipping undecodable change log entry", "key", c.key, "error", err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
