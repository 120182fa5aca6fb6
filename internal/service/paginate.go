package service

import (
	"context"

	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/repository"
	"go.uber.org/zap"
)

// PaginateKey 标题首字符为 ASCII 字母时返回该字母，否则返回 "#"
func PaginateKey(title string) string {
	if title == "" {
		return "#"
	}
	c := title[0]
	if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
		return string(c)
	}
	return "#"
}

// Paginator 为电影写入分页键
type Paginator struct {
	store  repository.RecordStore
	table  model.Table
	logger *zap.Logger
}

func NewPaginator(store repository.RecordStore, table model.Table, logger *zap.Logger) *Paginator {
	return &Paginator{store: store, table: table, logger: logger.Named("paginate")}
}

// Run 跳过没有 ID 的记录，返回更新条数
func (p *Paginator) Run(ctx context.Context, movies []*model.Movie) (int, error) {
	updated := 0
	for i, movie := range movies {
		if movie.ID == "" {
			continue
		}
		key := PaginateKey(movie.Title)
		if err := p.store.UpdateFields(ctx, p.table, movie.ID, map[string]any{model.FieldPaginateKey: key}); err != nil {
			return updated, err
		}
		updated++
		p.logger.Debug("分页键已写入", zap.Int("n", i), zap.String("id", movie.ID), zap.String("key", key))
	}
	p.logger.Info("分页键写入完成", zap.Int("updated", updated))
	return updated, nil
}
