package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/search"
)

// 图片搜索结果中需要跳过的缩略图域名
var excludedLogoHosts = []string{"gstatic"}

// Logo 先尝试 favicon，再退回图片搜索，取第一个可用地址
func (c *Collector) Logo(ctx context.Context, s model.Subject, websiteURL string) model.SourceResult {
	log := logger.ForSource(model.KindLogo, s.Name)

	if favicon := faviconURL(websiteURL); favicon != "" {
		if c.reachable(ctx, favicon) {
			return logoResult(favicon)
		}
		log.Debugf("favicon 不可用: %s", favicon)
	}

	is, ok := c.searcher.(search.ImageSearcher)
	if !ok {
		return model.Failed(model.KindLogo)
	}
	images, err := is.SearchImages(ctx, s.Name+" logo")
	if err != nil {
		log.Warnf("图片搜索失败: %v", err)
		return model.Failed(model.KindLogo)
	}
	for _, src := range images {
		if isHTTPURL(src) && !excludedLogo(src) {
			return logoResult(src)
		}
	}
	return model.Failed(model.KindLogo)
}

func logoResult(u string) model.SourceResult {
	res := model.Succeed(model.KindLogo, u)
	res.URL = u
	return res
}

func faviconURL(websiteURL string) string {
	if websiteURL == "" {
		return ""
	}
	u, err := url.Parse(websiteURL)
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + u.Host + "/favicon.ico"
}

func excludedLogo(src string) bool {
	for _, h := range excludedLogoHosts {
		if strings.Contains(src, h) {
			return true
		}
	}
	return false
}

func (c *Collector) reachable(ctx context.Context, target string) bool {
	req, err := c.newRequest(ctx, target)
	if err != nil {
		return false
	}
	resp, err := c.logoClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
