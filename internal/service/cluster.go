package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/repository"
	"go.uber.org/zap"
)

var ErrInconsistentCriteria = errors.New("各记录的指标键不一致")

// ClusterOptions 聚类参数
type ClusterOptions struct {
	K     int
	Seed  uint64
	NInit int
}

// ClusterResult 纯计算结果，不含任何写入
type ClusterResult struct {
	Keys      []string
	IDs       []string
	Labels    []int
	Centroids []model.Centroid
	Inertia   float64
}

// ClusterMetrics 对指标集合做 k-means；指标顺序取第一条记录的键顺序
func ClusterMetrics(set *model.MetricsSet, opts ClusterOptions) (*ClusterResult, error) {
	if set.Len() == 0 {
		return nil, errors.New("指标文件为空")
	}

	keys := set.Keys
	matrix := make([][]float64, 0, set.Len())
	for _, id := range set.IDs {
		vec, err := set.ByID[id].Vector(keys)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInconsistentCriteria, id, err)
		}
		matrix = append(matrix, vec)
	}

	km := NewKMeans(opts.K, opts.Seed, opts.NInit)
	if _, err := km.Fit(matrix); err != nil {
		return nil, err
	}

	result := &ClusterResult{
		Keys:    keys,
		IDs:     set.IDs,
		Labels:  make([]int, len(matrix)),
		Inertia: km.Inertia,
	}
	for i, vec := range matrix {
		result.Labels[i] = km.Predict(vec)
	}
	for c, center := range km.Centroids {
		result.Centroids = append(result.Centroids, model.NewCentroid(c, keys, center))
	}
	return result, nil
}

// Clusterer 聚类阶段：写回每部电影的分组与指标，并写入聚类中心表
type Clusterer struct {
	store         repository.RecordStore
	movies        model.Table
	centroids     model.Table
	centroidsFile string
	logger        *zap.Logger
}

func NewClusterer(store repository.RecordStore, movies, centroids model.Table, centroidsFile string, logger *zap.Logger) *Clusterer {
	return &Clusterer{
		store:         store,
		movies:        movies,
		centroids:     centroids,
		centroidsFile: centroidsFile,
		logger:        logger.Named("cluster"),
	}
}

// ClusterReport 聚类统计
type ClusterReport struct {
	Records int         `json:"records"`
	Groups  int         `json:"groups"`
	Inertia float64     `json:"inertia"`
	Sizes   map[int]int `json:"sizes"`
	Keys    []string    `json:"keys"`
}

func (c *Clusterer) Run(ctx context.Context, set *model.MetricsSet, opts ClusterOptions) (*ClusterReport, error) {
	result, err := ClusterMetrics(set, opts)
	if err != nil {
		return nil, err
	}

	report := &ClusterReport{
		Records: len(result.IDs),
		Groups:  len(result.Centroids),
		Inertia: result.Inertia,
		Sizes:   make(map[int]int),
		Keys:    result.Keys,
	}

	for i, id := range result.IDs {
		group := result.Labels[i]
		report.Sizes[group]++
		fields := map[string]any{
			model.FieldCentroid: group,
			model.FieldMets:     set.ByID[id],
		}
		if err := c.store.UpdateFields(ctx, c.movies, id, fields); err != nil {
			return report, err
		}
		c.logger.Debug("分组已写入", zap.String("id", id), zap.Int("centroid", group))
	}

	items := make([]map[string]any, 0, len(result.Centroids))
	for _, centroid := range result.Centroids {
		items = append(items, centroid.Item())
	}
	if _, err := c.store.PutItems(ctx, c.centroids, items); err != nil {
		return report, fmt.Errorf("写入聚类中心失败: %w", err)
	}
	if err := repository.WriteCentroids(c.centroidsFile, result.Centroids); err != nil {
		return report, err
	}

	c.logger.Info("聚类完成",
		zap.Int("records", report.Records),
		zap.Int("groups", report.Groups),
		zap.Float64("inertia", report.Inertia))
	return report, nil
}
