package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/filehash"
	"github.com/casos-paranormales/casos-cli/lib/moderation"
	"github.com/casos-paranormales/casos-cli/lib/validate"
	"github.com/casos-paranormales/casos-cli/lib/wizard"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// 编排步骤名称，失败时通过 lib.GetStep 取回
const (
	StepModeration  = "moderación"
	StepValidate    = "validación"
	StepLocation    = "ubicación"
	StepCreateCase  = "crear caso"
	StepUpload      = "subir archivos"
	StepRecordFiles = "registrar archivos"
)

// Submitter 案例提交编排：地点 → 案例 → 并发上传 → 文件记录
// 任一步失败立即停止，之前已写入的数据保留
type Submitter struct {
	Platform        lib.Platform
	Blobs           lib.BlobStore
	Bucket          string
	LocationTimeout time.Duration
	Concurrency     int
	ConvertWebp     bool

	now func() time.Time
}

// Execute 执行提交，调用方负责保证附件已通过审核
func (s *Submitter) Execute(ctx context.Context, sub lib.CaseSubmission, callback SubmitCallback) SubmitResult {
	if callback == nil {
		callback = noopCallback{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. 参数验证
	if err := validateSubmission(sub); err != nil {
		return SubmitResult{Error: lib.WithStep(StepValidate, err)}
	}

	// 2. 查找或创建地点
	callback.OnStep(StepLocation)
	loc, err := s.resolveLocation(ctx, sub)
	if err != nil {
		return SubmitResult{Error: lib.WithStep(StepLocation, err)}
	}

	// 3. 创建案例
	callback.OnStep(StepCreateCase)
	created, err := s.Platform.CreateCase(ctx, lib.CaseInput{
		UserId:      sub.UserId,
		CaseTypeId:  sub.CaseTypeId,
		CaseName:    strings.TrimSpace(sub.CaseName),
		Description: strings.TrimSpace(sub.Description),
		TimeHour:    lib.NewTimestamp(s.clock()),
		LocationId:  loc.Id,
	})
	if err != nil {
		return SubmitResult{LocationId: loc.Id, Error: lib.WithStep(StepCreateCase, err)}
	}
	logs.Infof("case %d created at location %d\n", created.Id, loc.Id)

	// 4. 并发上传附件
	callback.OnStep(StepUpload)
	records, err := s.uploadAll(ctx, created.Id, sub.Files, callback)
	if err != nil {
		logs.Warnf("case %d left without files: %v\n", created.Id, err)
		return SubmitResult{CaseId: created.Id, LocationId: loc.Id, Error: lib.WithStep(StepUpload, err)}
	}

	// 5. 记录文件
	callback.OnStep(StepRecordFiles)
	if err := s.Platform.CreateFiles(ctx, records); err != nil {
		logs.Warnf("case %d files uploaded but not recorded: %v\n", created.Id, err)
		return SubmitResult{CaseId: created.Id, LocationId: loc.Id, Error: lib.WithStep(StepRecordFiles, err)}
	}

	return SubmitResult{
		Success:    true,
		CaseId:     created.Id,
		LocationId: loc.Id,
		Files:      records,
	}
}

// WizardSubmitter 供向导使用的提交函数
func (s *Submitter) WizardSubmitter(callback SubmitCallback) wizard.Submitter {
	return func(ctx context.Context, sub lib.CaseSubmission) (int64, error) {
		result := s.Execute(ctx, sub, callback)
		if result.Error != nil {
			return 0, result.Error
		}
		return result.CaseId, nil
	}
}

func (s *Submitter) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// validateSubmission 在任何写入之前复核全部字段
func validateSubmission(sub lib.CaseSubmission) error {
	if sub.UserId == 0 {
		return lib.ErrNotLoggedIn
	}
	if sub.CaseTypeId == 0 {
		return lib.NewFieldError(validate.FieldCaseType, meta.MsgSelectCaseType)
	}
	form := validate.Form{
		validate.FieldCaseName:    sub.CaseName,
		validate.FieldCountry:     sub.Country,
		validate.FieldAddress:     sub.Address,
		validate.FieldDescription: sub.Description,
	}
	for _, name := range []string{validate.FieldCaseName, validate.FieldCountry, validate.FieldAddress, validate.FieldDescription} {
		if msg := validate.Field(name, form[name], form); msg != "" {
			return lib.NewFieldError(name, msg)
		}
	}
	refs := lo.Map(sub.Files, func(f lib.Attachment, _ int) validate.FileRef {
		return validate.FileRef{Name: f.Name, Kind: f.Kind}
	})
	if errs, _ := validate.Files(refs); len(errs) > 0 {
		return lib.NewFieldError(validate.FieldFiles, strings.Join(errs, "\n"))
	}
	return nil
}

type lookupResult struct {
	loc *lib.Location
	err error
}

// resolveLocation 查找已有地点，超时或未找到时创建新地点
func (s *Submitter) resolveLocation(ctx context.Context, sub lib.CaseSubmission) (*lib.Location, error) {
	country := strings.TrimSpace(sub.Country)
	address := strings.TrimSpace(sub.Address)

	timeout := s.LocationTimeout
	if timeout <= 0 {
		timeout = meta.DefaultLocationLookupTimeout
	}
	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan lookupResult, 1)
	go func() {
		loc, err := s.Platform.FindLocation(lookupCtx, country, address)
		ch <- lookupResult{loc: loc, err: err}
	}()

	select {
	case r := <-ch:
		switch {
		case r.err == nil && r.loc != nil:
			logs.Debugf("reusing location %d for %q\n", r.loc.Id, address)
			return r.loc, nil
		case r.err == nil, errors.Is(r.err, lib.ErrNotFound):
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(r.err, context.DeadlineExceeded):
			logs.Warnf("location lookup timed out after %s\n", timeout)
		default:
			return nil, r.err
		}
	case <-lookupCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logs.Warnf("location lookup timed out after %s\n", timeout)
	}

	return s.Platform.CreateLocation(ctx, lib.LocationInput{
		Country: country,
		Region:  strings.TrimSpace(sub.Region),
		Address: address,
	})
}

// ObjectPath 对象存储路径：caso_{id}/{目录}/{毫秒时间戳}_{序号}_{内容哈希前缀}{扩展名}
func ObjectPath(caseId int64, kind lib.MediaKind, stamp int64, index int, hash, ext string) string {
	return fmt.Sprintf("caso_%d/%s/%d_%d_%s%s", caseId, lib.StorageFolder(kind), stamp, index, filehash.Short(hash, 8), strings.ToLower(ext))
}

// uploadAll 并发上传，任一失败则取消其余上传并返回第一个错误
func (s *Submitter) uploadAll(ctx context.Context, caseId int64, files []lib.Attachment, callback SubmitCallback) ([]lib.FileInput, error) {
	total := len(files)
	records := make([]lib.FileInput, total)
	stamp := s.clock().UnixMilli()

	limit := s.Concurrency
	if limit <= 0 {
		limit = meta.UploadConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, f := range files {
		g.Go(func() error {
			callback.OnFileStart(i, total, f.Name)
			rec, err := s.uploadOne(gctx, caseId, stamp, i, total, f, callback)
			callback.OnFileComplete(i, total, f.Name, err)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Submitter) uploadOne(ctx context.Context, caseId, stamp int64, index, total int, f lib.Attachment, callback SubmitCallback) (lib.FileInput, error) {
	src, name := f.Path, f.Name
	if s.ConvertWebp && lib.WebPConvertible(name) {
		if _, ok := f.Kind.(lib.Image); ok {
			callback.OnConvertStatus(index, total, "converting", name)
			converted, cleanup, err := lib.ConvertToWebP(src, lib.DefaultWebPQuality)
			if err != nil {
				logs.Warnf("webp conversion failed for %s, uploading original: %v\n", name, err)
				callback.OnConvertStatus(index, total, "fallback", err.Error())
			} else {
				defer cleanup()
				src = converted
				name = strings.TrimSuffix(name, filepath.Ext(name)) + ".webp"
				callback.OnConvertStatus(index, total, "done", name)
			}
		}
	}

	hash, err := filehash.CalculateHash(src)
	if err != nil {
		return lib.FileInput{}, err
	}
	file, err := os.Open(src)
	if err != nil {
		return lib.FileInput{}, err
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return lib.FileInput{}, err
	}

	contentType := lib.ContentTypeFor(name)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectPath := ObjectPath(caseId, f.Kind, stamp, index, hash, filepath.Ext(name))
	reader := lib.NewProgressReader(file, stat.Size(), func(consumed, size int64) {
		callback.OnProgress(SubmitProgress{
			FileIndex: index,
			FileTotal: total,
			FileName:  name,
			Consumed:  consumed,
			Total:     size,
		})
	})
	if _, err := s.Blobs.Upload(ctx, s.Bucket, objectPath, contentType, reader, stat.Size()); err != nil {
		return lib.FileInput{}, err
	}
	logs.Debugf("uploaded %s as %s\n", f.Name, objectPath)

	return lib.FileInput{
		CaseId: caseId,
		Url:    objectPath,
		Type:   f.Kind.String(),
	}, nil
}

// ExecuteModeration 命令行提交前逐张审核图片，任意一张未通过都不会发起写入
func ExecuteModeration(ctx context.Context, gate *moderation.Gate, files []lib.Attachment, onVerdict func(f lib.Attachment, v moderation.Verdict)) error {
	for _, f := range files {
		if _, ok := f.Kind.(lib.Image); !ok {
			continue
		}
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return lib.WithStep(StepModeration, err)
		}
		v := gate.Check(ctx, f.Name, data)
		if onVerdict != nil {
			onVerdict(f, v)
		}
		switch v.Status {
		case moderation.StatusApproved:
		case moderation.StatusRejected:
			return lib.WithStep(StepModeration, lib.NewFieldError(validate.FieldFiles, fmt.Sprintf(meta.MsgImageRejected, f.Name)))
		default:
			return lib.WithStep(StepModeration, &lib.ModerationError{File: f.Name, Err: v.Err})
		}
	}
	return nil
}
