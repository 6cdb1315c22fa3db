package lib

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
)

// Client 托管数据平台（PostgREST 兼容）客户端
type Client struct {
	Domain string
	ApiKey string

	httpClient *http.Client
}

// Response 平台响应，Count 仅在请求了精确计数时有值
type Response[T any] struct {
	Data       T
	Count      int
	StatusCode int
}

// NewClient New Client
func NewClient(domain string, apiKey string) *Client {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{},
	}
	return &Client{
		Domain:     strings.TrimRight(domain, "/"),
		ApiKey:     apiKey,
		httpClient: &http.Client{Transport: tr, Timeout: 2 * time.Minute},
	}
}

func (c *Client) restURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.Domain, meta.RestPrefix, url.PathEscape(table))
}

func (c *Client) storageURL(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		for _, seg := range strings.Split(p, "/") {
			if seg != "" {
				escaped = append(escaped, url.PathEscape(seg))
			}
		}
	}
	return fmt.Sprintf("%s/%s/%s", c.Domain, meta.StoragePrefix, strings.Join(escaped, "/"))
}

func (c *Client) authHeader() map[string]string {
	header := make(map[string]string)
	header[meta.HeaderAPIKey] = c.ApiKey
	header[meta.HeaderAuthorization] = fmt.Sprintf("Bearer %s", c.ApiKey)
	return header
}

func (c *Client) headerWith(kv ...string) map[string]string {
	header := c.authHeader()
	for i := 0; i+1 < len(kv); i += 2 {
		header[kv[i]] = kv[i+1]
	}
	return header
}

// doGet do get request
func (c *Client) doGet(ctx context.Context, urlStr string, query url.Values, header map[string]string) ([]byte, http.Header, int, error) {
	return c.do(ctx, meta.HTTPGet, urlStr, query, nil, header)
}

// doPost do post request
func (c *Client) doPost(ctx context.Context, urlStr string, query url.Values, data interface{}, header map[string]string) ([]byte, http.Header, int, error) {
	// 将数据编码为JSON
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, nil, -1, err
	}
	return c.do(ctx, meta.HTTPPost, urlStr, query, bytes.NewReader(jsonData), header)
}

// doPatch do patch request
func (c *Client) doPatch(ctx context.Context, urlStr string, query url.Values, data interface{}, header map[string]string) ([]byte, http.Header, int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, nil, -1, err
	}
	return c.do(ctx, meta.HTTPPatch, urlStr, query, bytes.NewReader(jsonData), header)
}

// doDelete do delete request
func (c *Client) doDelete(ctx context.Context, urlStr string, query url.Values, header map[string]string) ([]byte, http.Header, int, error) {
	return c.do(ctx, meta.HTTPDelete, urlStr, query, nil, header)
}

func (c *Client) do(ctx context.Context, method, urlStr string, query url.Values, body io.Reader, header map[string]string) ([]byte, http.Header, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, nil, -1, err
	}
	if len(query) > 0 {
		parsedURL.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, parsedURL.String(), body)
	if err != nil {
		return nil, nil, -1, err
	}

	for key, value := range header {
		req.Header.Set(key, value)
	}
	req.Header.Set(meta.HeaderCasosVersion, meta.Version)
	if body != nil && req.Header.Get(meta.HeaderContentType) == "" {
		req.Header.Set(meta.HeaderContentType, meta.JsonContentType)
	}

	logs.Debugf("%s %s\n", method, parsedURL.String())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, -1, err
	}
	defer resp.Body.Close()

	// 读取响应体
	respBody, err := io.ReadAll(resp.Body)
	return respBody, resp.Header, resp.StatusCode, err
}

func handleError(responseBody []byte, statusCode int) error {
	rawMessage := string(responseBody)
	var parsed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
		Hint    string `json:"hint"`
		Error   string `json:"error"`
	}
	err := json.Unmarshal(responseBody, &parsed)
	if err != nil {
		rawMessage = strings.TrimFunc(rawMessage, func(r rune) bool {
			return unicode.Is(unicode.Quotation_Mark, r) || unicode.IsSpace(r)
		})
		if rawMessage == "" {
			rawMessage = meta.NewErrNo("Unknown server error").Error()
		}
		return &PlatformError{StatusCode: statusCode, Message: rawMessage}
	}

	pe := &PlatformError{
		StatusCode: statusCode,
		Code:       parsed.Code,
		Message:    parsed.Message,
		Details:    parsed.Details,
		Hint:       parsed.Hint,
	}
	if pe.Message == "" {
		pe.Message = parsed.Error
	}
	if errno, exists := meta.ServerErrors[parsed.Code]; exists && pe.Message == "" {
		pe.Message = errno.Message
	}
	if statusCode == http.StatusNotFound && pe.Message == "" {
		pe.Message = "server not found, you can use \"--base_domain\" to specify the target domain"
	}
	return pe
}

func handleResponse[T any](responseBody []byte, header http.Header, statusCode int) (*Response[T], error) {
	parsed := Response[T]{StatusCode: statusCode}
	if len(bytes.TrimSpace(responseBody)) > 0 {
		if err := json.Unmarshal(responseBody, &parsed.Data); err != nil {
			logs.Debugf("error: %s\n", err)
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	if header != nil {
		parsed.Count = parseContentRangeTotal(header.Get(meta.HeaderContentRange))
	}
	return &parsed, nil
}

// parseContentRangeTotal 解析 "0-5/42" 或 "*/0" 中的总数
func parseContentRangeTotal(v string) int {
	idx := strings.LastIndex(v, "/")
	if idx < 0 {
		return 0
	}
	total, err := strconv.Atoi(strings.TrimSpace(v[idx+1:]))
	if err != nil {
		return 0
	}
	return total
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// quoteFilterValue 为 or=() 等逻辑过滤器中的值加引号，避免逗号与括号被解析
func quoteFilterValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern 生成不区分大小写的子串匹配模式，% 与 _ 按字面匹配
// PostgREST 会把 * 一律替换为 %，输入中的 * 无法转义
func likePattern(v string) string {
	return "*" + likeEscaper.Replace(v) + "*"
}
