package utils

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// IDCharset 随机 ID 字符集：ASCII 字母 + 数字 + 标点
const IDCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

const (
	DefaultIDLength   = 7
	maxRandomAttempts = 1000
)

var (
	ErrEmptyIdentity    = errors.New("标题为空，无法生成内容 ID")
	ErrIDSpaceExhausted = errors.New("随机 ID 空间已耗尽")
	ErrUnknownIDPolicy  = errors.New("未知的 ID 策略")
)

// IDPolicy 记录 ID 生成策略
type IDPolicy interface {
	NextID(title, year string) (string, error)
}

// NewIDPolicy 按名称创建策略：random 或 content
func NewIDPolicy(name string, length int, seen SeenStore) (IDPolicy, error) {
	switch name {
	case "", "random":
		return NewRandomIDPolicy(length, nil, seen), nil
	case "content":
		return NewContentIDPolicy(seen), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownIDPolicy, name)
	}
}

// ContentID 由标题与年份生成确定性 ID，如 ("The Godfather", "1972") -> "the_godfather_1972"
func ContentID(title, year string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(title), "_"))
	if year == "" {
		return slug
	}
	return slug + "_" + year
}

// ContentIDPolicy 基于内容的 ID，重复时只计数，远端以最后一次写入为准
type ContentIDPolicy struct {
	seen       SeenStore
	collisions []string
}

func NewContentIDPolicy(seen SeenStore) *ContentIDPolicy {
	if seen == nil {
		seen = NewMemorySeenStore()
	}
	return &ContentIDPolicy{seen: seen}
}

func (p *ContentIDPolicy) NextID(title, year string) (string, error) {
	id := ContentID(title, year)
	if id == "" {
		return "", ErrEmptyIdentity
	}
	if !p.seen.Add(id) {
		p.collisions = append(p.collisions, id)
	}
	return id, nil
}

// Collisions 本次运行中重复出现的 ID
func (p *ContentIDPolicy) Collisions() []string {
	return p.collisions
}

// RandomIDPolicy 定长随机 ID，重复时重新抽取
type RandomIDPolicy struct {
	length int
	rng    *rand.Rand
	seen   SeenStore
}

// NewRandomIDPolicy rng 为 nil 时使用随机种子
func NewRandomIDPolicy(length int, rng *rand.Rand, seen SeenStore) *RandomIDPolicy {
	if length <= 0 {
		length = DefaultIDLength
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if seen == nil {
		seen = NewMemorySeenStore()
	}
	return &RandomIDPolicy{length: length, rng: rng, seen: seen}
}

func (p *RandomIDPolicy) NextID(_, _ string) (string, error) {
	for attempt := 0; attempt < maxRandomAttempts; attempt++ {
		id := p.draw()
		if p.seen.Add(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: 长度 %d，已尝试 %d 次", ErrIDSpaceExhausted, p.length, maxRandomAttempts)
}

func (p *RandomIDPolicy) draw() string {
	var b strings.Builder
	b.Grow(p.length)
	for i := 0; i < p.length; i++ {
		b.WriteByte(IDCharset[p.rng.IntN(len(IDCharset))])
	}
	return b.String()
}
