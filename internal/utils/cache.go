package utils

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// SeenStore 已分配的 ID 集合
type SeenStore interface {
	// Add 未出现过时加入并返回 true
	Add(id string) bool
	Contains(id string) bool
	Len() int
}

// MemorySeenStore 进程内集合，条目永不过期
type MemorySeenStore struct {
	items *cache.Cache
}

func NewMemorySeenStore() *MemorySeenStore {
	// 清理间隔为 0 时不启动后台清理协程
	return &MemorySeenStore{items: cache.New(cache.NoExpiration, 0)}
}

func (s *MemorySeenStore) Add(id string) bool {
	// go-cache 的 Add 在键已存在时返回错误
	return s.items.Add(id, struct{}{}, cache.NoExpiration) == nil
}

func (s *MemorySeenStore) Contains(id string) bool {
	_, ok := s.items.Get(id)
	return ok
}

func (s *MemorySeenStore) Len() int {
	return s.items.ItemCount()
}

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// ResponseCache 生成结果缓存，ttl 为 0 时不过期
type ResponseCache[T any] struct {
	storage *lru.Cache[string, CacheItem[T]]
	ttl     time.Duration
}

// NewResponseCache size 是最大缓存条数
func NewResponseCache[T any](size int, ttl time.Duration) (*ResponseCache[T], error) {
	c, err := lru.New[string, CacheItem[T]](size)
	if err != nil {
		return nil, fmt.Errorf("创建 LRU 缓存失败: %w", err)
	}
	return &ResponseCache[T]{storage: c, ttl: ttl}, nil
}

func (c *ResponseCache[T]) Set(key string, value T) {
	item := CacheItem[T]{Value: value}
	if c.ttl > 0 {
		item.ExpiredAt = time.Now().Add(c.ttl)
	}
	c.storage.Add(key, item)
}

// Get 带过期检查
func (c *ResponseCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}
	if !item.ExpiredAt.IsZero() && time.Now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}
	return item.Value, true
}

func (c *ResponseCache[T]) Len() int {
	return c.storage.Len()
}
