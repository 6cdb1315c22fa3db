package wizard

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/moderation"
	"github.com/casos-paranormales/casos-cli/lib/validate"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	// ErrBusy 提交进行中，导航被禁用
	ErrBusy = errors.New("envío en curso")
	// ErrNotFinalStep 只能在最后一步提交
	ErrNotFinalStep = errors.New("solo se puede enviar desde el último paso")
	// ErrAttachmentPending 审核中的附件不能操作
	ErrAttachmentPending = errors.New(meta.MsgAnalyzing)
	// ErrNoSubmitter 未配置提交函数
	ErrNoSubmitter = errors.New("no submitter configured")
)

// Submitter 执行提交，返回新案例 id
type Submitter func(ctx context.Context, s lib.CaseSubmission) (int64, error)

// Wizard 向导状态与步骤控制器
type Wizard struct {
	mu         sync.Mutex
	step       int
	fields     validate.Form
	files      []AttachedFile
	errs       map[string]string
	submission SubmissionState

	userId   int64
	gate     *moderation.Gate
	submit   Submitter
	newId    func() string
	readFile func(string) ([]byte, error)
}

// New 创建向导；gate 为 nil 时所有图片都会被拒绝
func New(userId int64, gate *moderation.Gate, submit Submitter) *Wizard {
	return &Wizard{
		step:     StepBasics,
		fields:   validate.Form{},
		errs:     map[string]string{},
		userId:   userId,
		gate:     gate,
		submit:   submit,
		newId:    uuid.NewString,
		readFile: os.ReadFile,
	}
}

// State 返回当前状态的副本
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Step:        w.step,
		Fields:      maps.Clone(w.fields),
		Files:       append([]AttachedFile(nil), w.files...),
		FieldErrors: maps.Clone(w.errs),
		Submission:  w.submission,
	}
}

func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Set 更新字段并实时校验该字段
func (w *Wizard) Set(field, value string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fields[field] = value
	msg := validate.Field(field, value, w.fields)
	if msg == "" {
		delete(w.errs, field)
	} else {
		w.errs[field] = msg
	}
	return msg
}

func (w *Wizard) validateStep(step int) map[string]string {
	if step == StepFiles {
		errs := map[string]string{}
		if msg := w.filesError(); msg != "" {
			errs[validate.FieldFiles] = msg
		}
		return errs
	}
	return validate.Fields(StepFields[step], w.fields)
}

func (w *Wizard) filesError() string {
	if lo.ContainsBy(w.files, func(f AttachedFile) bool { return f.Pending() }) {
		return meta.MsgModerationPending
	}
	refs := lo.Map(w.files, func(f AttachedFile, _ int) validate.FileRef {
		return validate.FileRef{Name: f.Name, Kind: f.Kind}
	})
	errs, _ := validate.Files(refs)
	return strings.Join(errs, "\n")
}

// Next 当前步骤全部通过时前进一步，否则停留并返回错误
func (w *Wizard) Next() (map[string]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submission.Phase == Submitting {
		return nil, ErrBusy
	}
	for _, f := range StepFields[w.step] {
		delete(w.errs, f)
	}
	errs := w.validateStep(w.step)
	if len(errs) > 0 {
		maps.Copy(w.errs, errs)
		return maps.Clone(errs), nil
	}
	if w.step < StepCount {
		w.step++
	}
	return nil, nil
}

// Previous 后退一步并清除错误
func (w *Wizard) Previous() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submission.Phase == Submitting {
		return ErrBusy
	}
	if w.step > StepBasics {
		w.step--
	}
	clear(w.errs)
	return nil
}

// Attach 添加附件；图片需通过审核，未通过时从列表中移除
func (w *Wizard) Attach(ctx context.Context, path string) (AttachedFile, error) {
	info, err := validate.AttachablePath(path)
	if err != nil {
		return AttachedFile{}, lib.NewFieldError(validate.FieldFiles, err.Error())
	}
	name := filepath.Base(path)
	kind := lib.DetectKind(name, "")
	if _, unknown := kind.(lib.Unknown); unknown {
		return AttachedFile{}, lib.NewFieldError(validate.FieldFiles, fmt.Sprintf(meta.MsgFileTypeNotAllowed, name))
	}

	file := AttachedFile{
		Attachment: lib.Attachment{
			LocalId: w.newId(),
			Path:    path,
			Name:    name,
			Size:    info.Size(),
			Kind:    kind,
		},
	}
	_, isImage := kind.(lib.Image)
	if isImage {
		file.Moderation = moderation.StatusPending
	} else {
		file.Moderation = moderation.StatusApproved
	}

	w.mu.Lock()
	if w.submission.Phase == Submitting {
		w.mu.Unlock()
		return AttachedFile{}, ErrBusy
	}
	w.files = append(w.files, file)
	delete(w.errs, validate.FieldFiles)
	w.mu.Unlock()

	if !isImage {
		return file, nil
	}

	var verdict moderation.Verdict
	data, err := w.readFile(path)
	if err != nil {
		verdict = moderation.Verdict{Status: moderation.StatusError, Err: err}
	} else {
		verdict = w.gate.Check(ctx, name, data)
	}
	return w.settle(file.LocalId, verdict)
}

// settle 写入审核结果，拒绝或出错的图片被移出列表
func (w *Wizard) settle(localId string, v moderation.Verdict) (AttachedFile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	file, idx, ok := lo.FindIndexOf(w.files, func(f AttachedFile) bool { return f.LocalId == localId })
	if !ok {
		return AttachedFile{}, fmt.Errorf("attachment %s removed", localId)
	}
	file.Moderation = v.Status
	if v.Allowed() {
		w.files[idx] = file
		return file, nil
	}

	w.files = append(w.files[:idx], w.files[idx+1:]...)
	var err error
	if v.Status == moderation.StatusError {
		err = &lib.ModerationError{File: file.Name, Err: v.Err}
	} else {
		err = lib.NewFieldError(validate.FieldFiles, fmt.Sprintf(meta.MsgImageRejected, file.Name))
	}
	w.errs[validate.FieldFiles] = err.Error()
	logs.Infof("image %s dropped: %s\n", file.Name, v.Status)
	return file, err
}

// Remove 移除附件，审核中的图片不可移除
func (w *Wizard) Remove(localId string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submission.Phase == Submitting {
		return ErrBusy
	}
	for i, f := range w.files {
		if f.LocalId != localId {
			continue
		}
		if f.Pending() {
			return ErrAttachmentPending
		}
		w.files = append(w.files[:i], w.files[i+1:]...)
		return nil
	}
	return lib.ErrNotFound
}

// Reset 回到初始状态
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	w.submission = SubmissionState{}
}

func (w *Wizard) reset() {
	w.step = StepBasics
	w.fields = validate.Form{}
	w.files = nil
	w.errs = map[string]string{}
}

// Submit 在最后一步再次校验全部步骤并执行提交；失败时保留表单内容
func (w *Wizard) Submit(ctx context.Context) (SubmissionState, error) {
	w.mu.Lock()
	if w.submission.Phase == Submitting {
		w.mu.Unlock()
		return w.submission, ErrBusy
	}
	if w.step != StepCount {
		w.mu.Unlock()
		return w.submission, ErrNotFinalStep
	}
	if w.submit == nil {
		w.mu.Unlock()
		return w.submission, ErrNoSubmitter
	}
	for step := StepBasics; step <= StepCount; step++ {
		if errs := w.validateStep(step); len(errs) > 0 {
			maps.Copy(w.errs, errs)
			w.step = step
			state := w.submission
			w.mu.Unlock()
			return state, firstError(step, errs)
		}
	}
	sub, err := w.buildSubmission()
	if err != nil {
		w.mu.Unlock()
		return w.submission, err
	}
	w.submission = SubmissionState{Phase: Submitting}
	w.mu.Unlock()

	caseId, err := w.submit(ctx, sub)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.submission = SubmissionState{Phase: Failed, Message: err.Error()}
		return w.submission, err
	}
	w.reset()
	w.submission = SubmissionState{Phase: Succeeded, CaseId: caseId}
	return w.submission, nil
}

func (w *Wizard) buildSubmission() (lib.CaseSubmission, error) {
	typeId, err := strconv.ParseInt(strings.TrimSpace(w.fields[validate.FieldCaseType]), 10, 64)
	if err != nil {
		return lib.CaseSubmission{}, lib.NewFieldError(validate.FieldCaseType, meta.MsgSelectCaseType)
	}
	approved := lo.Filter(w.files, func(f AttachedFile, _ int) bool {
		_, isImage := f.Kind.(lib.Image)
		return !isImage || f.Moderation == moderation.StatusApproved
	})
	return lib.CaseSubmission{
		UserId:      w.userId,
		CaseTypeId:  typeId,
		CaseName:    strings.TrimSpace(w.fields[validate.FieldCaseName]),
		Country:     strings.TrimSpace(w.fields[validate.FieldCountry]),
		Region:      strings.TrimSpace(w.fields[validate.FieldRegion]),
		Address:     strings.TrimSpace(w.fields[validate.FieldAddress]),
		Description: strings.TrimSpace(w.fields[validate.FieldDescription]),
		Files: lo.Map(approved, func(f AttachedFile, _ int) lib.Attachment {
			return f.Attachment
		}),
	}, nil
}

// firstError 按字段顺序取第一个错误
func firstError(step int, errs map[string]string) error {
	for _, field := range StepFields[step] {
		if msg, ok := errs[field]; ok {
			return lib.NewFieldError(field, msg)
		}
	}
	return lib.NewValidationError(meta.MsgSubmitFailed)
}
