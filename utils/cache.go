package utils

import (
	"GoVault/config"
	"GoVault/internal/dto"
	"GoVault/internal/repo"
	"GoVault/model"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis cache client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// Get reads a cached value.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Set writes a cached value.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, string(data), expiration).Err()
}

// Delete removes a cache entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeleteByPattern deletes cache entries by pattern.
func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

// Exists checks whether a cache key exists.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	count, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type CacheManager struct {
	cache Cache
}

var globalCacheManager *CacheManager
var cacheManagerOnce sync.Once

// InitCacheManager initializes the cache manager.
func InitCacheManager() {
	cacheManagerOnce.Do(func() {
		globalCacheManager = &CacheManager{
			cache: NewRedisCache(repo.Redis),
		}
	})
}

// GetCacheManager returns the cache manager.
func GetCacheManager() *CacheManager {
	if globalCacheManager == nil {
		InitCacheManager()
	}
	return globalCacheManager
}

// BuildCacheKey builds a cache key.
func BuildCacheKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += fmt.Sprintf(":%v", param)
	}
	return key
}

const (
	CacheKeyFileList  = "file:list"
	CacheKeyShareInfo = "share:info"
)

type FileListCache struct {
	Files []model.File `json:"files"`
	Total int64        `json:"total"`
}

// GetFileListFromCache reads a cached file listing page.
func GetFileListFromCache(
	ctx context.Context,
	userID uint64,
	folderID uint64,
	includeDeleted bool,
	limit int,
	offset int,
) (*FileListCache, bool) {
	manager := GetCacheManager()
	key := BuildCacheKey(CacheKeyFileList, userID, folderID, includeDeleted, limit, offset)

	var result FileListCache
	if err := manager.cache.Get(ctx, key, &result); err != nil {
		return nil, false
	}
	return &result, true
}

// SetFileListToCache writes a cached file listing page.
func SetFileListToCache(
	ctx context.Context,
	userID uint64,
	folderID uint64,
	includeDeleted bool,
	limit int,
	offset int,
	data *FileListCache,
) error {
	manager := GetCacheManager()
	key := BuildCacheKey(CacheKeyFileList, userID, folderID, includeDeleted, limit, offset)
	return manager.cache.Set(ctx, key, data, config.AppConfig.FileListCacheTTL)
}

// InvalidateFileListCache clears cached listings for one folder of a user.
// Every page variant under that folder goes, deleted-view pages included.
func InvalidateFileListCache(ctx context.Context, userID uint64, folderID uint64) error {
	manager := GetCacheManager()
	keyPattern := BuildCacheKey(CacheKeyFileList, userID, folderID) + ":*"
	cache, ok := manager.cache.(*RedisCache)
	if !ok {
		return manager.cache.Delete(ctx, keyPattern)
	}
	return cache.DeleteByPattern(ctx, keyPattern)
}

// InvalidateAllFileListCache clears every cached listing a user has.
func InvalidateAllFileListCache(ctx context.Context, userID uint64) error {
	manager := GetCacheManager()
	keyPattern := BuildCacheKey(CacheKeyFileList, userID) + ":*"
	cache, ok := manager.cache.(*RedisCache)
	if !ok {
		return manager.cache.Delete(ctx, keyPattern)
	}
	return cache.DeleteByPattern(ctx, keyPattern)
}

// GetShareInfoFromCache reads cached public share metadata.
func GetShareInfoFromCache(ctx context.Context, token string) (*dto.ShareInfo, bool) {
	manager := GetCacheManager()
	key := BuildCacheKey(CacheKeyShareInfo, token)

	var result dto.ShareInfo
	if err := manager.cache.Get(ctx, key, &result); err != nil {
		return nil, false
	}
	return &result, true
}

// SetShareInfoToCache writes cached public share metadata. Entries expiring
// with the link keep a stale cache from outliving the share itself.
func SetShareInfoToCache(ctx context.Context, token string, info *dto.ShareInfo) error {
	manager := GetCacheManager()
	key := BuildCacheKey(CacheKeyShareInfo, token)
	ttl := config.AppConfig.ShareInfoCacheTTL
	if info.ExpireAt != nil {
		remaining := time.Until(*info.ExpireAt)
		if remaining <= 0 {
			return nil
		}
		if remaining < ttl {
			ttl = remaining
		}
	}
	return manager.cache.Set(ctx, key, info, ttl)
}

// InvalidateShareInfoCache drops cached metadata for a token.
func InvalidateShareInfoCache(ctx context.Context, token string) error {
	manager := GetCacheManager()
	return manager.cache.Delete(ctx, BuildCacheKey(CacheKeyShareInfo, token))
}
