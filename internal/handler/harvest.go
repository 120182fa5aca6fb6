package handler

import (
	"context"

	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/service"
	"github.com/user/bluckboster/internal/utils"
	"go.uber.org/zap"
)

// HarvestMovies 收割电影榜单并写入 movies.json
func (h *Handler) HarvestMovies(ctx context.Context, merge bool) error {
	spider := service.NewMovieSpider(h.Config.MovieURLs...)
	result, err := harvest[*model.Movie](ctx, h, spider, h.Config.MoviesFile, merge)
	if err != nil {
		return err
	}
	return h.report("harvest movies", result)
}

// HarvestSimpsons 收割辛普森角色并写入 simpsons.json
func (h *Handler) HarvestSimpsons(ctx context.Context, merge bool) error {
	spider := service.NewSimpsonsSpider(h.Config.SimpsonsURLs...)
	result, err := harvest[*model.Member](ctx, h, spider, h.Config.MembersFile, merge)
	if err != nil {
		return err
	}
	return h.report("harvest simpsons", result)
}

// LoadMovies 导入 movies.json
func (h *Handler) LoadMovies(ctx context.Context, verify bool) error {
	repos, err := h.repos(ctx)
	if err != nil {
		return err
	}
	result, err := service.NewLoader(repos.Store, h.logger).
		Load(ctx, h.Config.Path(h.Config.MoviesFile), repos.Movies, verify)
	if err != nil {
		return err
	}
	return h.report("load movies", result)
}

// LoadMembers 导入 simpsons.json
func (h *Handler) LoadMembers(ctx context.Context, verify bool) error {
	repos, err := h.repos(ctx)
	if err != nil {
		return err
	}
	result, err := service.NewLoader(repos.Store, h.logger).
		Load(ctx, h.Config.Path(h.Config.MembersFile), repos.Members, verify)
	if err != nil {
		return err
	}
	return h.report("load members", result)
}

// Build 依次收割并导入电影与会员
func (h *Handler) Build(ctx context.Context) error {
	steps := []func(context.Context) error{
		func(ctx context.Context) error { return h.HarvestMovies(ctx, false) },
		func(ctx context.Context) error { return h.LoadMovies(ctx, false) },
		func(ctx context.Context) error { return h.HarvestSimpsons(ctx, false) },
		func(ctx context.Context) error { return h.LoadMembers(ctx, false) },
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// harvest 合并时先用已暂存批次的 ID 填充已用集合
func harvest[T model.Record](ctx context.Context, h *Handler, spider service.Spider[T], file string, merge bool) (*service.HarvestResult, error) {
	path := h.Config.Path(file)
	seen := utils.NewMemorySeenStore()
	if merge {
		n, err := service.SeedSeen[T](seen, path)
		if err != nil {
			return nil, err
		}
		h.logger.Info("已载入暂存批次的 ID", zap.String("path", path), zap.Int("ids", n))
	}

	ids, err := utils.NewIDPolicy(h.Config.IDPolicy, h.Config.IDLength, seen)
	if err != nil {
		return nil, err
	}
	harvester := service.NewHarvester(utils.CollectorOptions{
		Delay:   h.Config.CrawlDelay,
		Timeout: h.Config.CrawlTimeout,
	}, h.logger)
	return service.HarvestToFile[T](ctx, harvester, spider, ids, path, merge)
}
