// Package cache is a read-through cache with an in-process level (ccache)
// in front of an optional shared level (Redis). Values are stored as JSON
// so both levels hold the same bytes.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/poofware/rental-service/internal/utils"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLocalMaxSize = 1000
	defaultLocalTTL     = 30 * time.Second
	redisPingTimeout    = 3 * time.Second
	redisScanCount      = 200
)

// Store is what services depend on. Misses and backend failures look the
// same to callers; failures are logged here.
type Store interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	DeletePrefix(ctx context.Context, prefix string)
}

type TwoLevelCache struct {
	local    *ccache.Cache[[]byte]
	remote   *redis.Client
	localTTL time.Duration
}

// New builds the cache. An empty redisURL yields a local-only cache.
func New(redisURL string) (*TwoLevelCache, error) {
	c := &TwoLevelCache{
		local:    ccache.New(ccache.Configure[[]byte]().MaxSize(defaultLocalMaxSize)),
		localTTL: defaultLocalTTL,
	}
	if redisURL == "" {
		utils.Logger.Info("REDIS_URL not set; using in-process cache only")
		return c, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	c.remote = client
	utils.Logger.Infof("Cache connected to Redis at %s", opts.Addr)
	return c, nil
}

func (c *TwoLevelCache) Get(ctx context.Context, key string, dest any) bool {
	if item := c.local.Get(key); item != nil && !item.Expired() {
		if err := json.Unmarshal(item.Value(), dest); err == nil {
			return true
		}
		c.local.Delete(key)
	}
	if c.remote == nil {
		return false
	}

	data, err := c.remote.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		utils.Logger.WithError(err).Warnf("Redis GET failed for %s", key)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		utils.Logger.WithError(err).Warnf("Discarding undecodable cache entry %s", key)
		return false
	}
	c.local.Set(key, data, c.localTTL)
	return true
}

func (c *TwoLevelCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		utils.Logger.WithError(err).Warnf("Cannot encode cache entry %s", key)
		return
	}
	c.local.Set(key, data, min(ttl, c.localTTL))
	if c.remote == nil {
		return
	}
	if err := c.remote.Set(ctx, key, data, ttl).Err(); err != nil {
		utils.Logger.WithError(err).Warnf("Redis SET failed for %s", key)
	}
}

// DeletePrefix drops every entry whose key starts with prefix from both
// levels. Other replicas keep their local copies until localTTL expires.
func (c *TwoLevelCache) DeletePrefix(ctx context.Context, prefix string) {
	c.local.DeletePrefix(prefix)
	if c.remote == nil {
		return
	}

	var keys []string
	iter := c.remote.Scan(ctx, 0, prefix+"*", redisScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		utils.Logger.WithError(err).Warnf("Redis SCAN failed for prefix %s", prefix)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.remote.Del(ctx, keys...).Err(); err != nil {
		utils.Logger.WithError(err).Warnf("Redis DEL failed for prefix %s", prefix)
	}
}

func (c *TwoLevelCache) Close() {
	c.local.Stop()
	if c.remote != nil {
		_ = c.remote.Close()
	}
}

// Key builds a stable key from a prefix and a parameter set, independent
// of map iteration order.
func Key(prefix string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(":")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}

	sum := md5.Sum([]byte(b.String()))
	return prefix + hex.EncodeToString(sum[:])
}
