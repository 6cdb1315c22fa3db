package moderation

import (
	"fmt"

	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/samber/lo"
)

// Prediction 分类器输出的单个类别得分
type Prediction struct {
	ClassName   string  `json:"className"`
	Probability float64 `json:"probability"`
}

// Status 图片审核状态，除 Pending 外均为终态
type Status int

const (
	StatusPending Status = iota
	StatusApproved
	StatusRejected
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Verdict 审核结论
type Verdict struct {
	Status      Status
	UnsafeScore float64
	Top         Prediction
	Predictions []Prediction
	Err         error
}

// Allowed 只有 approved 的图片可以进入附件列表
func (v Verdict) Allowed() bool {
	return v.Status == StatusApproved
}

func isUnsafe(className string) bool {
	return lo.Contains(meta.UnsafeCategories, className)
}

// Evaluate 不安全类别得分之和超过 0.5，或最高分类别为不安全类别且得分超过 0.4 时拒绝
func Evaluate(predictions []Prediction) Verdict {
	v := Verdict{Predictions: predictions}
	if len(predictions) == 0 {
		v.Status = StatusError
		v.Err = fmt.Errorf("el clasificador no devolvió resultados")
		return v
	}

	v.Top = lo.MaxBy(predictions, func(a, b Prediction) bool {
		return a.Probability > b.Probability
	})
	v.UnsafeScore = lo.SumBy(predictions, func(p Prediction) float64 {
		if isUnsafe(p.ClassName) {
			return p.Probability
		}
		return 0
	})

	aggregate := v.UnsafeScore > meta.ModerationAggregateThreshold
	topUnsafe := isUnsafe(v.Top.ClassName) && v.Top.Probability > meta.ModerationTopThreshold
	if aggregate || topUnsafe {
		v.Status = StatusRejected
	} else {
		v.Status = StatusApproved
	}
	return v
}
