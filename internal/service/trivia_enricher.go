package service

import (
	"context"
	"fmt"

	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/repository"
	"github.com/user/bluckboster/internal/utils"
	"go.uber.org/zap"
)

const triviaPrompt = "give me 3 trivia questions and answers on the %s movie %s"

// TriviaEnricher 为电影生成问答
type TriviaEnricher struct {
	store    repository.RecordStore
	gen      utils.Generator
	throttle utils.Throttle
	strategy utils.TriviaStrategy
	table    model.Table
	logger   *zap.Logger
}

func NewTriviaEnricher(store repository.RecordStore, gen utils.Generator, throttle utils.Throttle,
	strategy utils.TriviaStrategy, table model.Table, logger *zap.Logger) *TriviaEnricher {
	return &TriviaEnricher{
		store:    store,
		gen:      gen,
		throttle: throttle,
		strategy: strategy,
		table:    table,
		logger:   logger.Named("trivia"),
	}
}

// TriviaReport 问答补充统计
type TriviaReport struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Empty     int `json:"empty"`
	Malformed int `json:"malformed"`
}

func TriviaPrompt(movie *model.Movie) string {
	return fmt.Sprintf(triviaPrompt, movie.Year, movie.Title)
}

// Run 逐部处理；解析失败默认中止，SkipMalformed 时记录并继续
func (e *TriviaEnricher) Run(ctx context.Context, movies []*model.Movie, opts EnrichOptions) (*TriviaReport, error) {
	report := &TriviaReport{}
	for _, movie := range movies {
		if opts.Limit > 0 && report.Processed >= opts.Limit {
			break
		}
		if movie.ID == "" {
			continue
		}
		if err := e.throttle.Wait(ctx); err != nil {
			return report, err
		}

		report.Processed++
		trivia, err := e.Fetch(ctx, movie)
		if err != nil {
			if opts.SkipMalformed && utils.IsTriviaParseError(err) {
				report.Malformed++
				e.logger.Warn("问答解析失败，已跳过", zap.String("id", movie.ID), zap.Error(err))
				continue
			}
			return report, err
		}

		encoded := trivia.Encode()
		if encoded == "" {
			report.Empty++
			continue
		}
		if err := e.store.UpdateFields(ctx, e.table, movie.ID, map[string]any{model.FieldTrivia: encoded}); err != nil {
			return report, err
		}
		report.Updated++
		e.logger.Info("问答已更新", zap.String("id", movie.ID), zap.String("movie", movie.Label()))
	}
	return report, nil
}

// Fetch 生成并解析单部电影的问答
func (e *TriviaEnricher) Fetch(ctx context.Context, movie *model.Movie) (model.Trivia, error) {
	text, err := e.gen.Generate(ctx, TriviaPrompt(movie))
	if err != nil {
		return nil, fmt.Errorf("生成 %s 的问答失败: %w", movie.Label(), err)
	}
	trivia, err := utils.ParseTrivia(text, e.strategy)
	if err != nil {
		return nil, fmt.Errorf("解析 %s 的问答失败: %w", movie.Label(), err)
	}
	return trivia, nil
}
