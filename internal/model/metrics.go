package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Criteria 指标的规范顺序
var Criteria = []string{
	"action",
	"comedy",
	"suspense",
	"drama",
	"horror",
	"romance",
	"fantasy",
	"story_telling",
	"cinematography",
	"writing",
	"directing",
	"acting",
}

// Metrics 单部电影的评分指标，键为指标名
type Metrics map[string]float64

// NormalizeKey 统一指标名："story telling" -> "story_telling"
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.Join(strings.Fields(key), "_")
}

// Normalize 返回键名规范化后的副本。规范化后重名时，本身已是规范写法的键优先，
// 其余按原键名排序后取最后一个
func (m Metrics) Normalize() Metrics {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Metrics, len(m))
	canonical := make(map[string]bool, len(m))
	for _, k := range keys {
		nk := NormalizeKey(k)
		if canonical[nk] {
			continue
		}
		out[nk] = m[k]
		canonical[nk] = k == nk
	}
	return out
}

// Vector 按给定键顺序展开为向量，键集合必须完全一致
func (m Metrics) Vector(keys []string) ([]float64, error) {
	if len(m) != len(keys) {
		return nil, fmt.Errorf("指标数量 %d 与期望 %d 不符", len(m), len(keys))
	}
	vec := make([]float64, len(keys))
	for i, k := range keys {
		v, ok := m[k]
		if !ok {
			return nil, fmt.Errorf("缺少指标 %q", k)
		}
		vec[i] = v
	}
	return vec, nil
}

// CanonicalVector 按 Criteria 顺序展开，缺项时返回 false
func (m Metrics) CanonicalVector() ([]float32, bool) {
	vec := make([]float32, len(Criteria))
	for i, k := range Criteria {
		v, ok := m[k]
		if !ok {
			return nil, false
		}
		vec[i] = float32(v)
	}
	return vec, true
}

// ToScore 将 JSON 解码出的值转换为分数，允许数字字符串（如 "85" 或 "85%"）
func ToScore(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case json.Number:
		return val.Float64()
	case int:
		return float64(val), nil
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(val), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("无法解析数值 %q", val)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("不支持的数值类型 %T", v)
	}
}

// MetricsSet 按文件顺序累积的指标集合
type MetricsSet struct {
	IDs  []string
	Keys []string // 第一条记录的键顺序
	ByID map[string]Metrics
}

func NewMetricsSet() *MetricsSet {
	return &MetricsSet{ByID: make(map[string]Metrics)}
}

// Add 添加或覆盖一条记录，保持首次出现的位置
func (s *MetricsSet) Add(id string, m Metrics) {
	if _, ok := s.ByID[id]; !ok {
		s.IDs = append(s.IDs, id)
	}
	s.ByID[id] = m
}

func (s *MetricsSet) Has(id string) bool {
	_, ok := s.ByID[id]
	return ok
}

func (s *MetricsSet) Len() int { return len(s.IDs) }
