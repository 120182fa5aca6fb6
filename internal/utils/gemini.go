package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

var ErrMissingAPIKey = errors.New("GEMINI_API_KEY 未设置")

// Generator 文本生成服务
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiConfig Gemini 客户端配置
type GeminiConfig struct {
	APIKey    string
	Model     string
	CacheSize int // 0 表示不缓存
	CacheTTL  time.Duration
}

// GeminiClient 基于 genai SDK 的生成客户端，相同提示词的结果会被缓存
type GeminiClient struct {
	client *genai.Client
	model  string
	cache  *ResponseCache[string]
	logger *zap.Logger
}

// NewGeminiClient 创建 Gemini 客户端
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 gemini 客户端失败: %w", err)
	}

	c := &GeminiClient{client: client, model: cfg.Model, logger: logger.Named("gemini")}
	if cfg.CacheSize > 0 {
		if c.cache, err = NewResponseCache[string](cfg.CacheSize, cfg.CacheTTL); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Generate 调用 generateContent，返回拼接后的文本；空响应返回空字符串
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cache != nil {
		if text, ok := c.cache.Get(prompt); ok {
			c.logger.Debug("命中生成缓存", zap.Int("prompt_len", len(prompt)))
			return text, nil
		}
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini 调用失败: %w", err)
	}
	text := resp.Text()

	c.logger.Debug("gemini 调用完成",
		zap.String("model", c.model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("text_len", len(text)))

	if c.cache != nil && text != "" {
		c.cache.Set(prompt, text)
	}
	return text, nil
}
