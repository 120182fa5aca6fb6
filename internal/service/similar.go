package service

import (
	"context"

	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/repository"
)

// SimilarFinder 按指标向量查找相似电影
type SimilarFinder struct {
	store repository.RecordStore
	table model.Table
}

func NewSimilarFinder(store repository.RecordStore, table model.Table) *SimilarFinder {
	return &SimilarFinder{store: store, table: table}
}

// Find 存储不支持向量查询时返回 repository.ErrUnsupported
func (s *SimilarFinder) Find(ctx context.Context, id string, limit int) ([]map[string]any, error) {
	finder, ok := s.store.(repository.NearestFinder)
	if !ok {
		return nil, repository.ErrUnsupported
	}
	return finder.FindNearest(ctx, s.table, id, limit)
}
