package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/gocolly/colly/v2"
	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/repository"
	"github.com/user/bluckboster/internal/utils"
	"go.uber.org/zap"
)

// Harvester 抓取器
type Harvester struct {
	opts   utils.CollectorOptions
	logger *zap.Logger
}

func NewHarvester(opts utils.CollectorOptions, logger *zap.Logger) *Harvester {
	return &Harvester{opts: opts, logger: logger.Named("harvest")}
}

// HarvestResult 一次收割的统计
type HarvestResult struct {
	Spider    string `json:"spider"`
	Pages     int    `json:"pages"`
	Harvested int    `json:"harvested"`
	Skipped   int    `json:"skipped"`
	Total     int    `json:"total"` // 写入文件的总条数（合并时包含已暂存的记录）
	Path      string `json:"path,omitempty"`
}

// Harvest 依次抓取起始页，为每条记录分配 ID；任一页面失败即中止
func Harvest[T model.Record](ctx context.Context, h *Harvester, spider Spider[T], ids utils.IDPolicy) ([]T, *HarvestResult, error) {
	c := utils.NewCollector(ctx, h.opts)
	result := &HarvestResult{Spider: spider.Name()}

	var (
		items   []T
		itemErr error
		pageErr error
	)

	c.OnHTML(spider.ItemSelector(), func(e *colly.HTMLElement) {
		if itemErr != nil {
			return
		}
		item, ok := spider.ParseItem(e.DOM)
		if !ok {
			result.Skipped++
			return
		}
		title, year := item.IdentityParts()
		id, err := ids.NextID(title, year)
		if err != nil {
			itemErr = fmt.Errorf("为 %q 分配 ID 失败: %w", title, err)
			return
		}
		item.SetID(id)
		items = append(items, item)
	})

	c.OnResponse(func(r *colly.Response) {
		result.Pages++
		h.logger.Debug("页面已获取", zap.String("url", r.Request.URL.String()), zap.Int("bytes", len(r.Body)))
	})

	c.OnError(func(r *colly.Response, err error) {
		pageErr = fmt.Errorf("抓取 %s 失败 (状态码 %d): %w", r.Request.URL, r.StatusCode, err)
	})

	for _, u := range spider.StartURLs() {
		if err := c.Visit(u); err != nil && pageErr == nil {
			pageErr = fmt.Errorf("抓取 %s 失败: %w", u, err)
		}
		c.Wait()
		if pageErr != nil {
			return nil, result, pageErr
		}
		if itemErr != nil {
			return nil, result, itemErr
		}
	}

	if policy, ok := ids.(*utils.ContentIDPolicy); ok && len(policy.Collisions()) > 0 {
		h.logger.Warn("内容 ID 重复，远端将以最后一次写入为准",
			zap.String("spider", spider.Name()),
			zap.Strings("ids", policy.Collisions()))
	}

	result.Harvested = len(items)
	h.logger.Info("收割完成",
		zap.String("spider", spider.Name()),
		zap.Int("pages", result.Pages),
		zap.Int("harvested", result.Harvested),
		zap.Int("skipped", result.Skipped))
	return items, result, nil
}

// HarvestToFile 收割并写入本地批次文件；merge 为 true 时追加到已暂存批次之后
func HarvestToFile[T model.Record](ctx context.Context, h *Harvester, spider Spider[T], ids utils.IDPolicy, path string, merge bool) (*HarvestResult, error) {
	items, result, err := Harvest(ctx, h, spider, ids)
	if err != nil {
		return result, err
	}

	result.Path = path
	if merge {
		merged, err := repository.MergeBatch(path, items)
		if err != nil {
			return result, err
		}
		result.Total = len(merged)
	} else {
		if err := repository.WriteBatch(path, items); err != nil {
			return result, err
		}
		result.Total = len(items)
	}

	h.logger.Info("批次已写入", zap.String("path", path), zap.Int("total", result.Total), zap.Bool("merge", merge))
	return result, nil
}

// SeedSeen 将已暂存批次的 ID 加入已用集合，合并时避免跨运行重复
func SeedSeen[T model.Record](seen utils.SeenStore, path string) (int, error) {
	staged, err := repository.ReadBatch[T](path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, item := range staged {
		if id := item.GetID(); id != "" {
			seen.Add(id)
			n++
		}
	}
	return n, nil
}
