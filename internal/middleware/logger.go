package middleware

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RunE cobra 子命令的执行函数
type RunE func(cmd *cobra.Command, args []string) error

// LoggerSource 提供当前命令使用的日志器
type LoggerSource interface {
	Log() *zap.Logger
}

// StageLogger 阶段日志中间件：记录开始、耗时与错误
func StageLogger(src LoggerSource, stage string, next RunE) RunE {
	return func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		logger := src.Log().With(zap.String("stage", stage))
		logger.Info("阶段开始", zap.Strings("args", args))

		// 执行阶段
		err := next(cmd, args)

		latency := time.Since(start)
		if err != nil {
			logger.Error("阶段失败", zap.Duration("latency", latency), zap.Error(err))
			return err
		}
		logger.Info("阶段完成", zap.Duration("latency", latency))
		return nil
	}
}
