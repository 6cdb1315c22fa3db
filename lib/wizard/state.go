// Package wizard 案例提交向导：分步校验、附件审核与提交状态
package wizard

import (
	"fmt"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/moderation"
	"github.com/casos-paranormales/casos-cli/lib/validate"
)

// 向导步骤
const (
	StepBasics = iota + 1
	StepLocation
	StepDescription
	StepFiles
)

// StepCount 步骤总数
const StepCount = StepFiles

// StepTitles 步骤标题
var StepTitles = map[int]string{
	StepBasics:      "Información básica",
	StepLocation:    "Ubicación",
	StepDescription: "Descripción",
	StepFiles:       "Archivos multimedia",
}

// StepFields 每一步需要校验的字段
var StepFields = map[int][]string{
	StepBasics:      {validate.FieldCaseType, validate.FieldCaseName},
	StepLocation:    {validate.FieldCountry, validate.FieldRegion, validate.FieldAddress},
	StepDescription: {validate.FieldDescription},
	StepFiles:       {validate.FieldFiles},
}

// Phase 提交阶段
type Phase int

const (
	Idle Phase = iota
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// SubmissionState 提交状态，CaseId 仅在成功时有值，Message 仅在失败时有值
type SubmissionState struct {
	Phase   Phase
	CaseId  int64
	Message string
}

func (s SubmissionState) String() string {
	switch s.Phase {
	case Succeeded:
		return fmt.Sprintf("succeeded(%d)", s.CaseId)
	case Failed:
		return fmt.Sprintf("failed(%s)", s.Message)
	}
	return s.Phase.String()
}

// AttachedFile 向导中的附件，只存在于本次会话
type AttachedFile struct {
	lib.Attachment
	// Moderation 仅图片有效
	Moderation moderation.Status
}

// Pending 图片审核尚未结束
func (f AttachedFile) Pending() bool {
	_, isImage := f.Kind.(lib.Image)
	return isImage && f.Moderation == moderation.StatusPending
}

// State 向导状态快照
type State struct {
	Step        int
	Fields      validate.Form
	Files       []AttachedFile
	FieldErrors map[string]string
	Submission  SubmissionState
}
