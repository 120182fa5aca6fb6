package service

import (
	"context"
	"fmt"

	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/repository"
	"go.uber.org/zap"
)

// Loader 将本地批次文件批量导入远端表
type Loader struct {
	store  repository.RecordStore
	logger *zap.Logger
}

func NewLoader(store repository.RecordStore, logger *zap.Logger) *Loader {
	return &Loader{store: store, logger: logger.Named("load")}
}

// LoadResult 导入统计
type LoadResult struct {
	Table   string   `json:"table"`
	Read    int      `json:"read"`
	Written int      `json:"written"`
	Missing []string `json:"missing,omitempty"`
}

// Load 读取 path 并整批写入；verify 为 true 时逐条回读，只报告缺失不修复
func (l *Loader) Load(ctx context.Context, path string, table model.Table, verify bool) (*LoadResult, error) {
	items, err := repository.ReadItems(path)
	if err != nil {
		return nil, err
	}
	result := &LoadResult{Table: table.Name, Read: len(items)}

	written, err := l.store.PutItems(ctx, table, items)
	result.Written = written
	if err != nil {
		return result, fmt.Errorf("导入 %s 失败: %w", table.Name, err)
	}
	l.logger.Info("导入完成", zap.String("table", table.Name), zap.Int("written", written))

	if !verify {
		return result, nil
	}
	for _, item := range items {
		id := fmt.Sprint(item[table.Key])
		got, err := l.store.GetItem(ctx, table, id)
		if err != nil {
			return result, err
		}
		if got == nil {
			result.Missing = append(result.Missing, id)
		}
	}
	if len(result.Missing) > 0 {
		l.logger.Warn("回读发现缺失记录", zap.String("table", table.Name), zap.Strings("ids", result.Missing))
	}
	return result, nil
}
