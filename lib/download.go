package lib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/cmd/hz/util/logs"
)

// ErrURLExpired 签名地址已过期
var ErrURLExpired = errors.New("signed url expired")

var mediaHTTPClient = &http.Client{Timeout: 30 * time.Minute}

// OpenMedia 打开 http(s) 或 file:// 形式的媒体地址，file:// 会校验 expires 参数
func OpenMedia(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid media url: %w", err)
	}
	switch u.Scheme {
	case "file":
		if exp := u.Query().Get("expires"); exp != "" {
			unix, err := strconv.ParseInt(exp, 10, 64)
			if err != nil || time.Now().Unix() > unix {
				return nil, 0, ErrURLExpired
			}
		}
		f, err := os.Open(filepath.FromSlash(u.Path))
		if err != nil {
			return nil, 0, err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, err
		}
		return f, info.Size(), nil
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, 0, err
		}
		resp, err := mediaHTTPClient.Do(req)
		if err != nil {
			return nil, 0, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, 0, fmt.Errorf("bad status: %s", resp.Status)
		}
		return resp.Body, resp.ContentLength, nil
	}
	return nil, 0, fmt.Errorf("unsupported media url scheme: %q", u.Scheme)
}

// DownloadMediaOptions 下载选项
type DownloadMediaOptions struct {
	URL      string
	DestPath string
	Progress ProgressCallback
}

// DownloadMedia 先写入临时文件，成功后再重命名，失败不会留下残缺文件
func DownloadMedia(ctx context.Context, opts DownloadMediaOptions) (int64, error) {
	body, size, err := OpenMedia(ctx, opts.URL)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(opts.DestPath), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(opts.DestPath), ".download-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: NewProgressReader(body, size, opts.Progress)})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", filepath.Base(opts.DestPath), err)
	}
	if err := os.Rename(tmp.Name(), opts.DestPath); err != nil {
		return 0, err
	}
	logs.Debugf("downloaded %d bytes to %s\n", written, opts.DestPath)
	return written, nil
}
