package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"
)

// HTTPClassifier 通过 HTTP 调用 NSFW 分类服务
// 服务接收原始图片字节，返回 [{className, probability}] 或 {"predictions": [...]}
type HTTPClassifier struct {
	Endpoint   string
	httpClient *http.Client
}

func NewHTTPClassifier(endpoint string) *HTTPClassifier {
	return &HTTPClassifier{Endpoint: endpoint, httpClient: &http.Client{}}
}

func (h *HTTPClassifier) Classify(ctx context.Context, image []byte) ([]Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(image))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", http.DetectContentType(image))

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimFunc(string(body), func(r rune) bool {
			return unicode.IsSpace(r) || unicode.Is(unicode.Quotation_Mark, r)
		})
		return nil, fmt.Errorf("classifier status %d: %s", resp.StatusCode, msg)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Predictions []Prediction `json:"predictions"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("decode predictions: %w", err)
		}
		return wrapped.Predictions, nil
	}
	var predictions []Prediction
	if err := json.Unmarshal(trimmed, &predictions); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	return predictions, nil
}
