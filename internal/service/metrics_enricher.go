package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/repository"
	"github.com/user/bluckboster/internal/utils"
	"go.uber.org/zap"
)

const metricsPrompt = "grade the %s movie %s on the following criteria from 0 to 100 in json format: " +
	"action, comedy, suspense, drama, horror, romance, fantasy, story telling, cinematography, " +
	"writing, directing, and acting"

// EnrichOptions 补充阶段的运行选项
type EnrichOptions struct {
	Resume        bool // 跳过检查点中已有的记录
	Limit         int  // 最多处理条数，0 表示不限
	SkipMalformed bool // 问答解析失败时跳过而不是中止
}

// MetricsEnricher 为电影生成评分指标
type MetricsEnricher struct {
	store      repository.RecordStore
	gen        utils.Generator
	throttle   utils.Throttle
	table      model.Table
	checkpoint string
	logger     *zap.Logger
}

func NewMetricsEnricher(store repository.RecordStore, gen utils.Generator, throttle utils.Throttle,
	table model.Table, checkpoint string, logger *zap.Logger) *MetricsEnricher {
	return &MetricsEnricher{
		store:      store,
		gen:        gen,
		throttle:   throttle,
		table:      table,
		checkpoint: checkpoint,
		logger:     logger.Named("metrics"),
	}
}

// MetricsReport 指标补充统计
type MetricsReport struct {
	Processed   int            `json:"processed"`
	Enriched    int            `json:"enriched"`
	AlreadyDone int            `json:"already_done"`
	Skipped     map[string]int `json:"skipped"`
}

// MetricsPrompt 指标提示词
func MetricsPrompt(movie *model.Movie) string {
	return fmt.Sprintf(metricsPrompt, movie.Year, movie.Title)
}

// Run 逐部处理；每次成功都会更新远端并重写本地检查点
func (e *MetricsEnricher) Run(ctx context.Context, movies []*model.Movie, opts EnrichOptions) (*MetricsReport, error) {
	report := &MetricsReport{Skipped: make(map[string]int)}

	acc := model.NewMetricsSet()
	if opts.Resume {
		existing, err := repository.ReadMetricsSet(e.checkpoint)
		switch {
		case err == nil:
			acc = existing
			e.logger.Info("从检查点恢复", zap.Int("records", acc.Len()))
		case errors.Is(err, fs.ErrNotExist):
		default:
			return report, err
		}
	}

	for _, movie := range movies {
		if opts.Limit > 0 && report.Processed >= opts.Limit {
			break
		}
		if movie.ID == "" {
			report.Skipped["missing_id"]++
			continue
		}
		if opts.Resume && acc.Has(movie.ID) {
			report.AlreadyDone++
			continue
		}
		if err := e.throttle.Wait(ctx); err != nil {
			return report, err
		}

		report.Processed++
		result, err := e.Enrich(ctx, movie)
		if err != nil {
			return report, err
		}
		if !result.OK() {
			report.Skipped[result.Outcome.String()]++
			e.logger.Warn("指标解析失败，已跳过",
				zap.String("id", movie.ID),
				zap.String("movie", movie.Label()),
				zap.Stringer("outcome", result.Outcome),
				zap.NamedError("reason", result.Err))
			continue
		}

		acc.Add(movie.ID, result.Metrics)
		if err := repository.WriteMetrics(e.checkpoint, acc); err != nil {
			return report, err
		}
		report.Enriched++
		e.logger.Info("指标已更新", zap.String("id", movie.ID), zap.String("movie", movie.Label()))
	}
	return report, nil
}

// Enrich 生成并解析单部电影的指标，解析成功时写入远端
func (e *MetricsEnricher) Enrich(ctx context.Context, movie *model.Movie) (utils.MetricsResult, error) {
	text, err := e.gen.Generate(ctx, MetricsPrompt(movie))
	if err != nil {
		return utils.MetricsResult{}, fmt.Errorf("生成 %s 的指标失败: %w", movie.Label(), err)
	}

	result := utils.ParseMetrics(text)
	if !result.OK() {
		return result, nil
	}

	fields := map[string]any{model.FieldMets: result.Metrics}
	if err := e.store.UpdateFields(ctx, e.table, movie.ID, fields); err != nil {
		return result, err
	}
	return result, nil
}
