package utils

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/121.0",
}

// CollectorOptions 抓取器配置
type CollectorOptions struct {
	UserAgents []string
	Delay      time.Duration // 同一域名两次请求的间隔
	Timeout    time.Duration
}

// NewCollector 创建 colly 抓取器，每个请求随机选择浏览器 UA
func NewCollector(ctx context.Context, opts CollectorOptions) *colly.Collector {
	agents := opts.UserAgents
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	c := colly.NewCollector(colly.StdlibContext(ctx))
	c.SetRequestTimeout(opts.Timeout)
	if opts.Delay > 0 {
		_ = c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Parallelism: 1,
			Delay:       opts.Delay,
		})
	}

	c.OnRequest(func(r *colly.Request) {
		setBrowserHeaders(r.Headers, agents[rand.IntN(len(agents))])
	})
	return c
}

// setBrowserHeaders 设置反爬虫请求头，压缩由 Transport 自动处理
func setBrowserHeaders(h *http.Header, userAgent string) {
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("DNT", "1")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Cache-Control", "max-age=0")
	h.Set("Referer", "https://www.google.com/")
}
