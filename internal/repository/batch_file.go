package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/utils"
)

// ReadBatch 读取本地批次文件
func ReadBatch[T any](path string) ([]T, error) {
	var items []T
	if err := utils.ReadJSONFile(path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// WriteBatch 整体覆盖写入批次文件
func WriteBatch[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}
	return utils.WriteJSONFile(path, items)
}

// MergeBatch 将新批次追加到已暂存批次之后再写回，不去重；文件不存在时等同于 WriteBatch
func MergeBatch[T any](path string, items []T) ([]T, error) {
	staged, err := ReadBatch[T](path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	merged := append(staged, items...)
	if err := WriteBatch(path, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// ReadItems 以通用结构读取批次文件，用于批量导入
func ReadItems(path string) ([]map[string]any, error) {
	return ReadBatch[map[string]any](path)
}

// WriteMetrics 覆盖写入指标检查点
func WriteMetrics(path string, set *model.MetricsSet) error {
	return utils.WriteJSONFile(path, set.ByID)
}

// WriteCentroids 写入本地聚类中心文件
func WriteCentroids(path string, centroids []model.Centroid) error {
	items := make([]map[string]any, 0, len(centroids))
	for _, c := range centroids {
		items = append(items, c.JSONItem())
	}
	return utils.WriteJSONFile(path, items)
}

// ReadMetricsSet 按文件顺序读取指标，键名会被规范化
func ReadMetricsSet(path string) (*model.MetricsSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
	}

	set := model.NewMetricsSet()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
		}
		id, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("解析 %s 的 %s 失败: %w", path, id, err)
		}
		keys, metrics, err := decodeOrderedMetrics(raw)
		if err != nil {
			return nil, fmt.Errorf("解析 %s 的 %s 失败: %w", path, id, err)
		}
		if set.Len() == 0 {
			set.Keys = keys
		}
		set.Add(id, metrics)
	}
	return set, nil
}

// decodeOrderedMetrics 保留对象内键的顺序
func decodeOrderedMetrics(raw json.RawMessage) ([]string, model.Metrics, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}

	var keys []string
	metrics := make(model.Metrics)
	canonical := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		rawKey := fmt.Sprint(tok)
		key := model.NormalizeKey(rawKey)

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		score, err := model.ToScore(v)
		if err != nil {
			return nil, nil, fmt.Errorf("指标 %q: %w", key, err)
		}
		// 重名时规范写法优先，否则文件中靠后的为准
		if _, dup := metrics[key]; !dup {
			keys = append(keys, key)
		} else if canonical[key] {
			continue
		}
		metrics[key] = score
		canonical[key] = rawKey == key
	}
	return keys, metrics, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("期望 %q，实际 %v", want, tok)
	}
	return nil
}
