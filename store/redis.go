package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/persokit/core"
)

// Redis 键布局：
//   persokit:profile:<user_id>  → 画像 JSON
//   persokit:profiles           → 画像 ID 集合
//   persokit:product:<id>       → 商品 JSON
//   persokit:products           → 商品 ID 集合
const (
	profileKeyPrefix = "persokit:profile:"
	profileSetKey    = "persokit:profiles"
	productKeyPrefix = "persokit:product:"
	productSetKey    = "persokit:products"
)

// RedisStore 是 Redis 实现的画像/目录存储，生产环境常用。
// 全量列举先取 ID 集合再 MGET，ID 排序后返回保证可复现。
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient 复用外部已有连接（集群/哨兵场景由调用方配置）。
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Name() string { return "redis" }

// PutProfile 写入画像并登记 ID。
func (r *RedisStore) PutProfile(ctx context.Context, p *core.UserProfile) error {
	if p == nil || p.UserID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput,
			"put profile: empty user id")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, profileKeyPrefix+p.UserID, data, 0)
	pipe.SAdd(ctx, profileSetKey, p.UserID)
	_, err = pipe.Exec(ctx)
	return err
}

// PutProduct 写入商品并登记 ID。
func (r *RedisStore) PutProduct(ctx context.Context, p core.Product) error {
	if p.ID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput,
			"put product: empty product id")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, productKeyPrefix+p.ID, data, 0)
	pipe.SAdd(ctx, productSetKey, p.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) GetProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	data, err := r.client.Get(ctx, profileKeyPrefix+userID).Bytes()
	if err == redis.Nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound,
			"profile not found: "+userID)
	}
	if err != nil {
		return nil, err
	}
	var p core.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RedisStore) ListProfiles(ctx context.Context) ([]*core.UserProfile, error) {
	ids, err := r.sortedMembers(ctx, profileSetKey)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKeyPrefix + id
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*core.UserProfile, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var p core.UserProfile
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, nil
}

func (r *RedisStore) GetProduct(ctx context.Context, productID string) (*core.Product, error) {
	data, err := r.client.Get(ctx, productKeyPrefix+productID).Bytes()
	if err == redis.Nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound,
			"product not found: "+productID)
	}
	if err != nil {
		return nil, err
	}
	var p core.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RedisStore) ListProducts(ctx context.Context) ([]core.Product, error) {
	ids, err := r.sortedMembers(ctx, productSetKey)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKeyPrefix + id
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]core.Product, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var p core.Product
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *RedisStore) sortedMembers(ctx context.Context, key string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}
