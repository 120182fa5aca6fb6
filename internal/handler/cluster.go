package handler

import (
	"context"

	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/repository"
	"github.com/user/bluckboster/internal/service"
)

// Cluster 读取 metrics.json 聚类并写回分组与聚类中心
func (h *Handler) Cluster(ctx context.Context, opts service.ClusterOptions) error {
	set, err := repository.ReadMetricsSet(h.Config.Path(h.Config.MetricsFile))
	if err != nil {
		return err
	}
	repos, err := h.repos(ctx)
	if err != nil {
		return err
	}

	clusterer := service.NewClusterer(repos.Store, repos.Movies, repos.Centroids,
		h.Config.Path(h.Config.CentroidsFile), h.logger)
	report, err := clusterer.Run(ctx, set, opts)
	if err != nil {
		return err
	}
	return h.report("cluster", report)
}

// Paginate 为每部电影写入 paginate_key
func (h *Handler) Paginate(ctx context.Context) error {
	movies, err := repository.ReadBatch[*model.Movie](h.Config.Path(h.Config.MoviesFile))
	if err != nil {
		return err
	}
	repos, err := h.repos(ctx)
	if err != nil {
		return err
	}

	updated, err := service.NewPaginator(repos.Store, repos.Movies, h.logger).Run(ctx, movies)
	if err != nil {
		return err
	}
	return h.report("paginate", map[string]int{"updated": updated})
}

// Similar 按指标向量查找最相近的电影
func (h *Handler) Similar(ctx context.Context, id string, limit int) error {
	repos, err := h.repos(ctx)
	if err != nil {
		return err
	}
	items, err := service.NewSimilarFinder(repos.Store, repos.Movies).Find(ctx, id, limit)
	if err != nil {
		return err
	}
	return h.report("similar", map[string]any{"id": id, "movies": items})
}
