package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/scheduler"
)

// OutcomeCache 缓存同步排班的结果，只有固定了随机数种子的请求才可以被缓存
type OutcomeCache interface {
	Get(ctx context.Context, key string) (*domain.SchedulingOutcome, bool, error)
	Set(ctx context.Context, key string, outcome *domain.SchedulingOutcome) error
}

// Key 根据排班输入和优化器参数计算缓存键
func Key(params *scheduler.Parameters, productivity, slopes []domain.Category, quotas []float64) (string, error) {
	payload, err := json.Marshal(struct {
		Parameters   *scheduler.Parameters `json:"parameters"`
		Productivity []domain.Category     `json:"productivity"`
		Slopes       []domain.Category     `json:"slopes"`
		Quotas       []float64             `json:"quotas"`
	}{params, productivity, slopes, quotas})
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(payload)
	return "schedule_outcome_" + hex.EncodeToString(sum[:]), nil
}

type RedisCache struct {
	client     *redis.Client
	expiration time.Duration
}

func NewRedisCache(client *redis.Client, expiration time.Duration) *RedisCache {
	return &RedisCache{client: client, expiration: expiration}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*domain.SchedulingOutcome, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	outcome := &domain.SchedulingOutcome{}
	if err := json.Unmarshal(raw, outcome); err != nil {
		return nil, false, fmt.Errorf("缓存内容无法解析: %w", err)
	}

	return outcome, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, outcome *domain.SchedulingOutcome) error {
	raw, err := json.Marshal(outcome)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, raw, c.expiration).Err()
}

// MemoryCache 未配置 redis 时使用的进程内缓存
type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(expiration time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(expiration, 2*expiration)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*domain.SchedulingOutcome, bool, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false, nil
	}

	outcome, ok := v.(*domain.SchedulingOutcome)
	if !ok {
		return nil, false, fmt.Errorf("缓存中 %s 的类型不正确", key)
	}

	return outcome, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, outcome *domain.SchedulingOutcome) error {
	c.store.SetDefault(key, outcome)
	return nil
}
