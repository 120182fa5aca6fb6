package service

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/bluckboster/internal/model"
	"github.com/user/bluckboster/internal/utils"
)

var (
	defaultMovieURLs = []string{
		"https://editorial.rottentomatoes.com/guide/best-movies-of-all-time/",
		"https://editorial.rottentomatoes.com/guide/best-movies-of-all-time/2/",
	}
	defaultSimpsonsURLs = []string{
		"https://en.wikipedia.org/wiki/List_of_recurring_The_Simpsons_characters",
	}
)

// Spider 页面解析规则：ItemSelector 命中的每个节点交给 ParseItem
type Spider[T model.Record] interface {
	Name() string
	StartURLs() []string
	ItemSelector() string
	ParseItem(sel *goquery.Selection) (T, bool)
}

// MovieSpider 烂番茄榜单
type MovieSpider struct {
	urls []string
}

// NewMovieSpider urls 为空时使用默认的两页榜单
func NewMovieSpider(urls ...string) *MovieSpider {
	if len(urls) == 0 {
		urls = defaultMovieURLs
	}
	return &MovieSpider{urls: urls}
}

func (s *MovieSpider) Name() string        { return "movies" }
func (s *MovieSpider) StartURLs() []string { return s.urls }
func (s *MovieSpider) ItemSelector() string {
	return `div[class="row countdown-item"]`
}

// ParseItem 解析单个榜单条目，没有标题时视为无效
func (s *MovieSpider) ParseItem(sel *goquery.Selection) (*model.Movie, bool) {
	header := sel.Find(`div[class="row countdown-item-title-bar"]`).First()
	heading := header.Find(`div[class="article_movie_title"] div h2`).First()

	movie := &model.Movie{
		Title:  ownText(heading.Find("a").First()),
		Year:   strings.Trim(ownText(heading.Find(`span[class="subtle start-year"]`).First()), "()"),
		Rating: ownText(heading.Find(`span[class="tMeterScore"]`).First()),
		Cast:   []string{},
	}
	if movie.Title == "" {
		return nil, false
	}

	details := sel.Find(`div[class="row countdown-item-details"]`).First()
	movie.Review = ownText(details.Find(`div div[class="info critics-consensus"]`).First())
	movie.Synopsis = ownText(details.Find(`div div[class="info synopsis"]`).First())
	movie.Director = ownText(details.Find(`div div[class="info director"] a`).First())
	details.Find(`div div[class="info cast"] a`).Each(func(_ int, a *goquery.Selection) {
		if name := ownText(a); name != "" {
			movie.Cast = append(movie.Cast, name)
		}
	})
	return movie, true
}

// SimpsonsSpider 维基百科辛普森常驻角色列表，每个三级标题是一个角色
type SimpsonsSpider struct {
	urls []string
}

func NewSimpsonsSpider(urls ...string) *SimpsonsSpider {
	if len(urls) == 0 {
		urls = defaultSimpsonsURLs
	}
	return &SimpsonsSpider{urls: urls}
}

func (s *SimpsonsSpider) Name() string        { return "simpsons" }
func (s *SimpsonsSpider) StartURLs() []string { return s.urls }
func (s *SimpsonsSpider) ItemSelector() string {
	return `div[class="mw-heading mw-heading3"] h3`
}

func (s *SimpsonsSpider) ParseItem(sel *goquery.Selection) (*model.Member, bool) {
	name := ownText(sel)
	if name == "" {
		name = utils.CleanText(sel.Text())
	}
	member := model.NewMemberFromName(name)
	if member == nil {
		return nil, false
	}
	return member, true
}

// ownText 只取节点自身的文本子节点，不含子元素的文本
func ownText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return utils.CleanText(b.String())
}
