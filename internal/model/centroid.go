package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Centroid 聚类中心，Values 与 Keys 一一对应
type Centroid struct {
	ID     int
	Keys   []string
	Values []decimal.Decimal
}

// NewCentroid 将浮点中心转换为精确小数
func NewCentroid(id int, keys []string, center []float64) Centroid {
	values := make([]decimal.Decimal, len(center))
	for i, v := range center {
		values[i] = decimal.NewFromFloat(v)
	}
	return Centroid{ID: id, Keys: keys, Values: values}
}

// Item 远端存储使用的条目，数值保持 decimal.Decimal
func (c Centroid) Item() map[string]any {
	item := map[string]any{FieldID: c.ID}
	for i, k := range c.Keys {
		item[k] = c.Values[i]
	}
	return item
}

// JSONItem 本地文件使用的条目，数值以无引号数字输出
func (c Centroid) JSONItem() map[string]any {
	item := map[string]any{FieldID: c.ID}
	for i, k := range c.Keys {
		item[k] = json.Number(c.Values[i].String())
	}
	return item
}
