package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/user/bluckboster/internal/config"
	"github.com/user/bluckboster/internal/handler"
	"github.com/user/bluckboster/internal/router"
	"github.com/user/bluckboster/internal/utils"
	"go.uber.org/zap"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg := config.Load()
	h := handler.NewHandler(cfg)

	root := newRootCommand(cfg, h)
	router.RegisterCommands(root, h)

	// 收到中断信号时取消当前阶段
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	cancel()

	if cerr := h.Close(); cerr != nil {
		h.Log().Warn("关闭存储失败", zap.Error(cerr))
	}
	_ = h.Log().Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.Config, h *handler.Handler) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "dbbuilder",
		Short:         "BluckBoster 数据集构建工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := cfg.ApplyFile(configFile); err != nil {
					return err
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
			if err != nil {
				return err
			}
			h.SetLogger(logger.With(zap.String("run_id", utils.NewRunID())))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			h.Log().Info("done", zap.String("command", cmd.CommandPath()))
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML 配置文件，覆盖环境变量")
	return root
}
