package repository

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/user/bluckboster/internal/model"
	"gonum.org/v1/gonum/floats"
)

// MemoryStore 进程内存储，用于试运行与测试
type MemoryStore struct {
	mu      sync.Mutex
	tables  map[string]map[string]map[string]any
	Puts    int
	Updates int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]map[string]map[string]any)}
}

func (s *MemoryStore) table(name string) map[string]map[string]any {
	t, ok := s.tables[name]
	if !ok {
		t = make(map[string]map[string]any)
		s.tables[name] = t
	}
	return t
}

func (s *MemoryStore) PutItems(_ context.Context, table model.Table, items []map[string]any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := lastByKey(table, items)
	if err != nil {
		return 0, err
	}
	t := s.table(table.Name)
	for _, item := range items {
		t[fmt.Sprint(item[table.Key])] = maps.Clone(item)
		s.Puts++
	}
	return len(items), nil
}

func (s *MemoryStore) UpdateFields(_ context.Context, table model.Table, id string, fields map[string]any) error {
	if id == "" {
		return ErrMissingKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(table.Name)
	item, ok := t[id]
	if !ok {
		item = map[string]any{table.Key: id}
		t[id] = item
	}
	maps.Copy(item, fields)
	s.Updates++
	return nil
}

func (s *MemoryStore) GetItem(_ context.Context, table model.Table, id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.table(table.Name)[id]
	if !ok {
		return nil, nil
	}
	return maps.Clone(item), nil
}

// Items 返回表中全部记录，按主键排序
func (s *MemoryStore) Items(table model.Table) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(table.Name)
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, maps.Clone(t[k]))
	}
	return out
}

// FindNearest 按 mets 的欧氏距离排序
func (s *MemoryStore) FindNearest(_ context.Context, table model.Table, id string, limit int) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(table.Name)
	src, ok := t[id]
	if !ok {
		return nil, nil
	}
	target, ok := metricsVector(src[model.FieldMets])
	if !ok {
		return nil, fmt.Errorf("记录 %s 没有完整的指标", id)
	}

	type candidate struct {
		id   string
		dist float64
	}
	var candidates []candidate
	for otherID, item := range t {
		if otherID == id {
			continue
		}
		vec, ok := metricsVector(item[model.FieldMets])
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{id: otherID, dist: floats.Distance(target, vec, 2)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist == candidates[j].dist {
			return candidates[i].id < candidates[j].id
		}
		return candidates[i].dist < candidates[j].dist
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]map[string]any, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, maps.Clone(t[c.id]))
	}
	return out, nil
}

// metricsVector 将 mets 字段按规范顺序展开
func metricsVector(v any) ([]float64, bool) {
	var m model.Metrics
	switch val := v.(type) {
	case model.Metrics:
		m = val
	case map[string]float64:
		m = val
	case map[string]any:
		m = make(model.Metrics, len(val))
		for k, raw := range val {
			f, err := model.ToScore(raw)
			if err != nil {
				return nil, false
			}
			m[k] = f
		}
	default:
		return nil, false
	}
	vec, err := m.Vector(model.Criteria)
	if err != nil {
		return nil, false
	}
	return vec, true
}
