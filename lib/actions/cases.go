package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/feed"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/samber/lo"
)

// ExecuteListCases 查询案例列表
// Featured 固定返回最新的 5 个案例，Mine 只返回当前用户的案例
func ExecuteListCases(ctx context.Context, p lib.Platform, in ListCasesInput) ListCasesResult {
	q := in.Query
	if in.Featured {
		q = lib.CaseQuery{
			Page:      1,
			Limit:     meta.FeaturedLimit,
			SortBy:    meta.SortByTimeHour,
			SortOrder: meta.SortOrderDesc,
		}
	}
	if in.Mine {
		if in.ViewerId == 0 {
			return ListCasesResult{Error: lib.WithStep("listar casos", lib.ErrNotLoggedIn)}
		}
		q.OwnerId = in.ViewerId
	}
	if q.SortBy != "" && !lo.Contains(meta.SortFields, q.SortBy) {
		return ListCasesResult{
			Error: lib.WithStep("listar casos", lib.NewValidationError(fmt.Sprintf("campo de orden inválido: %s, permitidos: %s", q.SortBy, meta.SortFieldsStr))),
		}
	}

	page, err := p.QueryCases(ctx, q)
	if err != nil {
		return ListCasesResult{Error: lib.WithStep("listar casos", err)}
	}
	return ListCasesResult{Page: page}
}

// FeedFetcher 数据平台查询作为 feed 缓存的数据源
func FeedFetcher(p lib.Platform) feed.Fetcher {
	return func(ctx context.Context, q lib.CaseQuery) (lib.CasePage, error) {
		return p.QueryCases(ctx, q)
	}
}

// ExecuteListCaseTypes 查询全部案例类型
func ExecuteListCaseTypes(ctx context.Context, p lib.Platform) ([]lib.CaseType, error) {
	types, err := p.ListCaseTypes(ctx)
	if err != nil {
		return nil, lib.WithStep("tipos de caso", err)
	}
	return types, nil
}

// ResolveCaseType 按 id 或名称（不区分大小写）匹配案例类型
func ResolveCaseType(types []lib.CaseType, value string) (lib.CaseType, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return lib.CaseType{}, lib.NewFieldError("caseType", meta.MsgSelectCaseType)
	}
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		if t, ok := lo.Find(types, func(t lib.CaseType) bool { return t.Id == id }); ok {
			return t, nil
		}
	}
	if t, ok := lo.Find(types, func(t lib.CaseType) bool { return strings.EqualFold(t.Name, value) }); ok {
		return t, nil
	}
	names := lo.Map(types, func(t lib.CaseType, _ int) string { return t.Name })
	return lib.CaseType{}, lib.NewFieldError("caseType", fmt.Sprintf("tipo de caso desconocido: %s, disponibles: %s", value, strings.Join(names, ", ")))
}

// ExecuteGetCase 查询案例详情，并为每个媒体文件签发访问地址
// 单个文件签名失败不影响整体，错误记录在对应的 MediaItem 上
func ExecuteGetCase(ctx context.Context, p lib.Platform, resolver *MediaResolver, id int64) CaseDetailResult {
	c, err := p.GetCase(ctx, id)
	if err != nil {
		return CaseDetailResult{Error: lib.WithStep("detalle del caso", err)}
	}
	items := lo.Map(c.Files, func(f lib.MediaFile, _ int) MediaItem {
		return MediaItem{File: f, Kind: lib.KindFromRecord(f.Type, f.Url)}
	})
	if resolver != nil {
		for i := range items {
			url, err := resolver.Sign(ctx, items[i].File)
			if err != nil {
				logs.Warnf("sign %s: %v\n", items[i].File.Url, err)
				items[i].Err = err
				continue
			}
			items[i].URL = url
		}
	}
	return CaseDetailResult{Case: c, Media: items}
}

// MediaResolver 把 Files.url 中的存储路径换成短期有效的访问地址
type MediaResolver struct {
	Blobs  lib.BlobStore
	Bucket string
	TTL    time.Duration
}

// Sign 为文件签发新的访问地址；旧数据中无法识别的完整地址原样返回
func (r *MediaResolver) Sign(ctx context.Context, f lib.MediaFile) (string, error) {
	path := lib.StoragePath(f.Url, r.Bucket)
	if path == "" {
		return f.Url, nil
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = meta.DefaultSignedURLTTL
	}
	return r.Blobs.SignURL(ctx, r.Bucket, path, ttl)
}

// Fetch 用当前地址加载媒体，失败后只重新签发一次地址并重试
// 第二次仍失败时返回 lib.ErrMediaUnavailable，item.Err 同步记录
func (r *MediaResolver) Fetch(ctx context.Context, item *MediaItem, load func(ctx context.Context, url string) error) error {
	if item.URL != "" {
		err := load(ctx, item.URL)
		if err == nil {
			item.Err = nil
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logs.Debugf("load %s failed, refreshing signed url: %v\n", item.Name(), err)
	}

	fresh, err := r.Sign(ctx, item.File)
	if err != nil {
		item.Err = fmt.Errorf("%w: %v", lib.ErrMediaUnavailable, err)
		return item.Err
	}
	item.URL = fresh
	if err := load(ctx, fresh); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		item.Err = fmt.Errorf("%w: %v", lib.ErrMediaUnavailable, err)
		return item.Err
	}
	item.Err = nil
	return nil
}

// ExecuteDownloadMedia 下载案例的全部媒体到 dir/caso_{id}/
// 不可用的文件不会中断其余下载
func ExecuteDownloadMedia(ctx context.Context, p lib.Platform, resolver *MediaResolver, caseId int64, dir string, progress func(item MediaItem, consumed, total int64)) DownloadMediaResult {
	detail := ExecuteGetCase(ctx, p, resolver, caseId)
	if detail.Error != nil {
		return DownloadMediaResult{Error: detail.Error}
	}
	target := filepath.Join(dir, fmt.Sprintf("caso_%d", caseId))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return DownloadMediaResult{Error: lib.WithStep("descargar", err)}
	}

	var result DownloadMediaResult
	for i := range detail.Media {
		item := &detail.Media[i]
		dest := filepath.Join(target, item.Name())
		err := resolver.Fetch(ctx, item, func(ctx context.Context, url string) error {
			var cb lib.ProgressCallback
			if progress != nil {
				cb = func(consumed, total int64) { progress(*item, consumed, total) }
			}
			_, err := lib.DownloadMedia(ctx, lib.DownloadMediaOptions{URL: url, DestPath: dest, Progress: cb})
			return err
		})
		switch {
		case err == nil:
			result.Saved = append(result.Saved, dest)
		case errors.Is(err, lib.ErrMediaUnavailable):
			result.Unavailable = append(result.Unavailable, *item)
		default:
			result.Error = lib.WithStep("descargar", err)
			return result
		}
	}
	return result
}

// ExecuteOpenMedia 在系统浏览器中打开媒体，打开前确认地址仍然有效
func ExecuteOpenMedia(ctx context.Context, resolver *MediaResolver, item *MediaItem) (string, error) {
	err := resolver.Fetch(ctx, item, func(ctx context.Context, url string) error {
		body, _, err := lib.OpenMedia(ctx, url)
		if err != nil {
			return err
		}
		return body.Close()
	})
	if err != nil {
		return "", err
	}
	return lib.OpenBrowser(item.URL)
}
