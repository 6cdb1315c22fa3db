package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/hertz/cmd/hz/util/logs"
)

// Classifier 外部图片分类能力
type Classifier interface {
	Classify(ctx context.Context, image []byte) ([]Prediction, error)
}

// ErrNoClassifier 未配置分类服务时所有图片都会被拒绝
var ErrNoClassifier = errors.New("no hay un servicio de moderación configurado")

// Gate 图片进入附件列表前的审核关口
type Gate struct {
	classifier Classifier
	timeout    time.Duration
}

func NewGate(classifier Classifier, timeout time.Duration) *Gate {
	return &Gate{classifier: classifier, timeout: timeout}
}

// Check 分类失败一律按拒绝处理
func (g *Gate) Check(ctx context.Context, name string, image []byte) Verdict {
	if g == nil || g.classifier == nil {
		return Verdict{Status: StatusError, Err: ErrNoClassifier}
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	predictions, err := g.classifier.Classify(ctx, image)
	if err != nil {
		logs.Warnf("moderation failed for %s: %v\n", name, err)
		return Verdict{Status: StatusError, Err: err}
	}
	v := Evaluate(predictions)
	logs.Debugf("moderation %s: status=%s unsafe=%.3f top=%s(%.3f)\n", name, v.Status, v.UnsafeScore, v.Top.ClassName, v.Top.Probability)
	return v
}

// NeutralClassifier 仅在显式关闭审核时使用
type NeutralClassifier struct{}

func (NeutralClassifier) Classify(ctx context.Context, image []byte) ([]Prediction, error) {
	return []Prediction{{ClassName: "Neutral", Probability: 1}}, nil
}
