package handler

import (
	"context"
	"time"

	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/repository"
	"github.com/user/bluckboster/internal/service"
	"github.com/user/bluckboster/internal/utils"
)

// enrichment 补充阶段共用的依赖
type enrichment struct {
	movies   []*model.Movie
	repos    *repository.Repositories
	gen      utils.Generator
	throttle utils.Throttle
}

// EnrichMetrics 为 movies.json 中的电影生成评分指标
func (h *Handler) EnrichMetrics(ctx context.Context, opts service.EnrichOptions) error {
	deps, err := h.enrichment(ctx, h.Config.MetricsInterval)
	if err != nil {
		return err
	}

	enricher := service.NewMetricsEnricher(deps.repos.Store, deps.gen, deps.throttle, deps.repos.Movies,
		h.Config.Path(h.Config.MetricsFile), h.logger)
	report, err := enricher.Run(ctx, deps.movies, opts)
	if err != nil {
		return err
	}
	return h.report("enrich metrics", report)
}

// EnrichTrivia 为 movies.json 中的电影生成问答
func (h *Handler) EnrichTrivia(ctx context.Context, opts service.EnrichOptions) error {
	strategy, err := utils.NewTriviaStrategy(h.Config.TriviaStrategy)
	if err != nil {
		return err
	}
	deps, err := h.enrichment(ctx, h.Config.TriviaInterval)
	if err != nil {
		return err
	}

	enricher := service.NewTriviaEnricher(deps.repos.Store, deps.gen, deps.throttle, strategy,
		deps.repos.Movies, h.logger)
	report, err := enricher.Run(ctx, deps.movies, opts)
	if err != nil {
		return err
	}
	return h.report("enrich trivia", report)
}

func (h *Handler) enrichment(ctx context.Context, interval time.Duration) (*enrichment, error) {
	movies, err := repository.ReadBatch[*model.Movie](h.Config.Path(h.Config.MoviesFile))
	if err != nil {
		return nil, err
	}
	throttle, err := utils.NewThrottle(h.Config.RatePolicy, interval, h.Config.RateBurst)
	if err != nil {
		return nil, err
	}
	repos, err := h.repos(ctx)
	if err != nil {
		return nil, err
	}
	gen, err := h.generator(ctx)
	if err != nil {
		return nil, err
	}
	return &enrichment{movies: movies, repos: repos, gen: gen, throttle: throttle}, nil
}
