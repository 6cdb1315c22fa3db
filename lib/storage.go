package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
)

// PlatformStorage 数据平台自带的对象存储 API
type PlatformStorage struct {
	client *Client
}

var _ BlobStore = (*PlatformStorage)(nil)

func NewPlatformStorage(client *Client) *PlatformStorage {
	return &PlatformStorage{client: client}
}

func (s *PlatformStorage) Upload(ctx context.Context, bucket, path, contentType string, body io.Reader, size int64) (string, error) {
	c := s.client
	req, err := http.NewRequestWithContext(ctx, meta.HTTPPost, c.storageURL("object", bucket, path), body)
	if err != nil {
		return "", err
	}
	if size > 0 {
		req.ContentLength = size
	}
	for k, v := range c.authHeader() {
		req.Header.Set(k, v)
	}
	req.Header.Set(meta.HeaderContentType, contentType)
	req.Header.Set(meta.HeaderUpsert, "false")
	req.Header.Set(meta.HeaderCasosVersion, meta.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", path, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if !isSuccess(resp.StatusCode) {
		return "", handleError(respBody, resp.StatusCode)
	}
	logs.Debugf("uploaded object %s/%s\n", bucket, path)
	return c.storageURL("object", bucket, path), nil
}

func (s *PlatformStorage) SignURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	c := s.client
	body, _, statusCode, err := c.doPost(ctx, c.storageURL("object", "sign", bucket, path), nil, map[string]int{
		"expiresIn": int(ttl.Seconds()),
	}, c.authHeader())
	if err != nil {
		return "", err
	}
	if !isSuccess(statusCode) {
		return "", handleError(body, statusCode)
	}
	var signed struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.Unmarshal(body, &signed); err != nil {
		return "", fmt.Errorf("decode signed url: %w", err)
	}
	if signed.SignedURL == "" {
		return "", fmt.Errorf("empty signed url for %s", path)
	}
	return fmt.Sprintf("%s/%s/%s", c.Domain, meta.StoragePrefix, strings.TrimLeft(signed.SignedURL, "/")), nil
}

// LocalBlobStore 本地目录中的对象存储，供 local 后端使用
type LocalBlobStore struct {
	Root string
	now  func() time.Time
}

var _ BlobStore = (*LocalBlobStore)(nil)

func NewLocalBlobStore(root string) *LocalBlobStore {
	return &LocalBlobStore{Root: root, now: time.Now}
}

func (l *LocalBlobStore) objectPath(bucket, path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object path: %s", path)
	}
	return filepath.Join(l.Root, bucket, clean), nil
}

func (l *LocalBlobStore) Upload(ctx context.Context, bucket, path, contentType string, body io.Reader, size int64) (string, error) {
	dest, err := l.objectPath(bucket, path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("object already exists: %s", path)
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, &ctxReader{ctx: ctx, r: body}); err != nil {
		os.Remove(dest)
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(dest)}).String(), nil
}

// SignURL 本地签名 URL 带过期时间参数，读取时校验
func (l *LocalBlobStore) SignURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	dest, err := l.objectPath(bucket, path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(dest); err != nil {
		return "", ErrNotFound
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(dest)}
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(l.now().Add(ttl).Unix(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// StoragePath 将 Files.url 还原为桶内路径，兼容旧数据中保存的完整公开地址
func StoragePath(stored, bucket string) string {
	stored = stripQuery(stored)
	u, err := url.Parse(stored)
	if err != nil || u.Scheme == "" {
		return strings.TrimLeft(stored, "/")
	}
	for _, marker := range []string{"/object/public/" + bucket + "/", "/object/sign/" + bucket + "/", "/object/" + bucket + "/"} {
		if idx := strings.Index(u.Path, marker); idx >= 0 {
			return u.Path[idx+len(marker):]
		}
	}
	return ""
}

// ObjectName 存储路径的文件名部分
func ObjectName(stored string) string {
	stored = stripQuery(stored)
	if idx := strings.LastIndex(stored, "/"); idx >= 0 {
		return stored[idx+1:]
	}
	return stored
}
