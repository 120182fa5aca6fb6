package router

import (
	"github.com/spf13/cobra"
	"github.com/user/bluckboster/internal/handler"
	"github.com/user/bluckboster/internal/middleware"
	"github.com/user/bluckboster/internal/service"
)

// RegisterCommands 注册所有子命令
func RegisterCommands(root *cobra.Command, h *handler.Handler) {
	// ==================== 收割 ====================
	harvest := &cobra.Command{Use: "harvest", Short: "抓取数据并写入本地批次文件"}
	var merge bool
	harvest.PersistentFlags().BoolVar(&merge, "merge", false, "追加到已暂存的批次之后")
	harvest.AddCommand(
		&cobra.Command{
			Use:   "movies",
			Short: "抓取烂番茄电影榜单",
			Args:  cobra.NoArgs,
			RunE: middleware.StageLogger(h, "harvest movies", func(cmd *cobra.Command, _ []string) error {
				return h.HarvestMovies(cmd.Context(), merge)
			}),
		},
		&cobra.Command{
			Use:   "simpsons",
			Short: "抓取辛普森常驻角色",
			Args:  cobra.NoArgs,
			RunE: middleware.StageLogger(h, "harvest simpsons", func(cmd *cobra.Command, _ []string) error {
				return h.HarvestSimpsons(cmd.Context(), merge)
			}),
		},
	)

	// ==================== 导入 ====================
	load := &cobra.Command{Use: "load", Short: "将本地批次导入远端表"}
	var verify bool
	load.PersistentFlags().BoolVar(&verify, "verify", false, "导入后逐条回读并报告缺失")
	load.AddCommand(
		&cobra.Command{
			Use:   "movies",
			Short: "导入 movies.json",
			Args:  cobra.NoArgs,
			RunE: middleware.StageLogger(h, "load movies", func(cmd *cobra.Command, _ []string) error {
				return h.LoadMovies(cmd.Context(), verify)
			}),
		},
		&cobra.Command{
			Use:   "members",
			Short: "导入 simpsons.json",
			Args:  cobra.NoArgs,
			RunE: middleware.StageLogger(h, "load members", func(cmd *cobra.Command, _ []string) error {
				return h.LoadMembers(cmd.Context(), verify)
			}),
		},
	)

	build := &cobra.Command{
		Use:   "build",
		Short: "依次收割并导入电影与会员",
		Args:  cobra.NoArgs,
		RunE: middleware.StageLogger(h, "build", func(cmd *cobra.Command, _ []string) error {
			return h.Build(cmd.Context())
		}),
	}

	// ==================== 补充 ====================
	enrich := &cobra.Command{Use: "enrich", Short: "调用生成服务补充电影数据"}
	var opts service.EnrichOptions
	enrich.PersistentFlags().BoolVar(&opts.Resume, "resume", false, "跳过检查点中已有的记录")
	enrich.PersistentFlags().IntVar(&opts.Limit, "limit", 0, "最多处理条数，0 表示不限")
	enrich.PersistentFlags().BoolVar(&opts.SkipMalformed, "skip-malformed", false, "问答解析失败时跳过")
	enrich.AddCommand(
		&cobra.Command{
			Use:   "metrics",
			Short: "生成 12 项评分指标",
			Args:  cobra.NoArgs,
			RunE: middleware.StageLogger(h, "enrich metrics", func(cmd *cobra.Command, _ []string) error {
				return h.EnrichMetrics(cmd.Context(), opts)
			}),
		},
		&cobra.Command{
			Use:   "trivia",
			Short: "生成 3 组问答",
			Args:  cobra.NoArgs,
			RunE: middleware.StageLogger(h, "enrich trivia", func(cmd *cobra.Command, _ []string) error {
				return h.EnrichTrivia(cmd.Context(), opts)
			}),
		},
	)

	// ==================== 聚类 ====================
	var (
		clusters int
		seed     uint64
		nInit    int
	)
	cluster := &cobra.Command{
		Use:   "cluster",
		Short: "对 metrics.json 做 k-means 聚类并写回",
		Args:  cobra.NoArgs,
		RunE: middleware.StageLogger(h, "cluster", func(cmd *cobra.Command, _ []string) error {
			o := service.ClusterOptions{K: h.Config.Clusters, Seed: h.Config.ClusterSeed, NInit: h.Config.ClusterInitRuns}
			if cmd.Flags().Changed("k") {
				o.K = clusters
			}
			if cmd.Flags().Changed("seed") {
				o.Seed = seed
			}
			if cmd.Flags().Changed("n-init") {
				o.NInit = nInit
			}
			return h.Cluster(cmd.Context(), o)
		}),
	}
	cluster.Flags().IntVarP(&clusters, "k", "k", 0, "聚类数（默认取 CLUSTERS）")
	cluster.Flags().Uint64Var(&seed, "seed", 0, "随机种子（默认取 CLUSTER_SEED）")
	cluster.Flags().IntVar(&nInit, "n-init", 0, "初始化次数（默认取 CLUSTER_INIT_RUNS）")

	paginate := &cobra.Command{
		Use:   "paginate",
		Short: "为电影写入 paginate_key",
		Args:  cobra.NoArgs,
		RunE: middleware.StageLogger(h, "paginate", func(cmd *cobra.Command, _ []string) error {
			return h.Paginate(cmd.Context())
		}),
	}

	var limit int
	similar := &cobra.Command{
		Use:   "similar <id>",
		Short: "按指标向量查找相似电影",
		Args:  cobra.ExactArgs(1),
		RunE: middleware.StageLogger(h, "similar", func(cmd *cobra.Command, args []string) error {
			return h.Similar(cmd.Context(), args[0], limit)
		}),
	}
	similar.Flags().IntVar(&limit, "limit", 10, "返回条数")

	root.AddCommand(harvest, load, build, enrich, cluster, paginate, similar)
}
