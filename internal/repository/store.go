package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/user/bluckboster/internal/model"
)

var (
	ErrUnsupported = errors.New("当前存储后端不支持该操作")
	ErrMissingKey  = errors.New("记录缺少主键")
)

// RecordStore 远端记录存储
type RecordStore interface {
	// PutItems 批量写入完整记录，返回写入条数
	PutItems(ctx context.Context, table model.Table, items []map[string]any) (int, error)
	// UpdateFields 按主键部分更新，只覆盖给定字段；记录不存在时创建
	UpdateFields(ctx context.Context, table model.Table, id string, fields map[string]any) error
	// GetItem 读取单条记录，不存在时返回 nil, nil
	GetItem(ctx context.Context, table model.Table, id string) (map[string]any, error)
}

// NearestFinder 按指标向量查找相似记录
type NearestFinder interface {
	FindNearest(ctx context.Context, table model.Table, id string, limit int) ([]map[string]any, error)
}

// keyOf 取出条目的主键值
func keyOf(table model.Table, item map[string]any) (any, error) {
	v, ok := item[table.Key]
	if !ok || v == nil || v == "" {
		return nil, ErrMissingKey
	}
	return v, nil
}

// lastByKey 同一主键只保留最后一条，位置取首次出现处
func lastByKey(table model.Table, items []map[string]any) ([]map[string]any, error) {
	pos := make(map[string]int, len(items))
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		key, err := keyOf(table, item)
		if err != nil {
			return nil, fmt.Errorf("第 %d 条记录: %w", i, err)
		}
		k := fmt.Sprint(key)
		if p, ok := pos[k]; ok {
			out[p] = item
			continue
		}
		pos[k] = len(out)
		out = append(out, item)
	}
	return out, nil
}

// jsonValue 精确小数以无引号数字编码
func jsonValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return json.Number(val.String())
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = jsonValue(inner)
		}
		return out
	default:
		return v
	}
}
