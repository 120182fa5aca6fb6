package handler

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/user/bluckboster/internal/config"
	"github.com/user/bluckboster/internal/repository"
	"github.com/user/bluckboster/internal/utils"
	"go.uber.org/zap"
)

// Handler 命令处理器，存储与生成服务在首次使用时创建
type Handler struct {
	Config    *config.Config
	Repos     *repository.Repositories
	Generator utils.Generator
	Out       io.Writer

	logger *zap.Logger
}

// NewHandler 创建处理器
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{
		Config: cfg,
		Out:    os.Stdout,
		logger: zap.NewNop(),
	}
}

// SetLogger 在配置加载完成后替换日志器
func (h *Handler) SetLogger(logger *zap.Logger) {
	h.logger = logger
}

func (h *Handler) Log() *zap.Logger {
	return h.logger
}

// Close 释放存储连接
func (h *Handler) Close() error {
	return h.Repos.Close()
}

func (h *Handler) repos(ctx context.Context) (*repository.Repositories, error) {
	if h.Repos != nil {
		return h.Repos, nil
	}
	repos, err := repository.NewRepositories(ctx, h.Config, h.logger)
	if err != nil {
		return nil, err
	}
	h.Repos = repos
	return repos, nil
}

func (h *Handler) generator(ctx context.Context) (utils.Generator, error) {
	if h.Generator != nil {
		return h.Generator, nil
	}
	key, err := h.Config.GeminiKey()
	if err != nil {
		if errors.Is(err, config.ErrMissingGeminiKey) {
			h.logger.Error("缺少 Gemini 密钥", zap.String("key_file", h.Config.GeminiKeyFile))
		}
		return nil, err
	}
	gen, err := utils.NewGeminiClient(ctx, utils.GeminiConfig{
		APIKey:    key,
		Model:     h.Config.GeminiModel,
		CacheSize: h.Config.GeminiCacheSize,
	}, h.logger)
	if err != nil {
		return nil, err
	}
	h.Generator = gen
	return gen, nil
}

// report 输出阶段结果
func (h *Handler) report(stage string, data any) error {
	return utils.WriteReport(h.Out, stage, data)
}
