package actions

import (
	"fmt"

	"github.com/casos-paranormales/casos-cli/lib"
)

// LoginResult 登录操作的结果
type LoginResult struct {
	Success bool
	User    *lib.User
	Error   error
}

// RegisterInput 注册表单
type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	Email           string
	FirstName       string
	LastName        string
	Birthday        string
}

// RegisterResult 注册结果，FieldErrors 为本地校验失败的字段
type RegisterResult struct {
	Success     bool
	User        *lib.User
	FieldErrors map[string]string
	Error       error
}

// WhoamiResult 当前会话用户
type WhoamiResult struct {
	User  *lib.User
	Error error
}

// ListCasesInput 查询案例列表的输入参数
type ListCasesInput struct {
	Query    lib.CaseQuery
	Mine     bool
	Featured bool
	ViewerId int64
}

// ListCasesResult 查询案例列表的结果
type ListCasesResult struct {
	Page  lib.CasePage
	Error error
}

// MediaItem 详情页中的一个媒体文件
type MediaItem struct {
	File lib.MediaFile
	Kind lib.MediaKind
	URL  string
	Err  error
}

// Name 媒体文件名（存储路径的最后一段）
func (m MediaItem) Name() string {
	if name := lib.ObjectName(m.File.Url); name != "" {
		return name
	}
	return fmt.Sprintf("archivo_%d", m.File.Id)
}

// CaseDetailResult 案例详情
type CaseDetailResult struct {
	Case  *lib.Case
	Media []MediaItem
	Error error
}

// DownloadMediaResult 批量下载结果
type DownloadMediaResult struct {
	Saved       []string
	Unavailable []MediaItem
	Error       error
}

// CommentsResult 评论列表
type CommentsResult struct {
	Comments []lib.Comment
	Error    error
}

// SubmitProgress 上传进度信息
type SubmitProgress struct {
	FileIndex int    // 当前文件索引（0-based）
	FileTotal int    // 总文件数
	FileName  string // 文件名
	Consumed  int64  // 已上传字节数
	Total     int64  // 文件总大小
}

// SubmitResult 提交操作的结果
// 失败时 CaseId 非零表示案例已创建但后续步骤失败
type SubmitResult struct {
	Success    bool
	CaseId     int64
	LocationId int64
	Files      []lib.FileInput
	Error      error
}

// SubmitCallback 提交过程的回调接口
// CLI和TUI需要实现此接口来接收进度和状态更新
type SubmitCallback interface {
	// OnStep 进入编排的某一步
	OnStep(step string)

	// OnProgress 上传进度更新
	OnProgress(progress SubmitProgress)

	// OnFileStart 某个文件开始上传
	OnFileStart(index, total int, fileName string)

	// OnFileComplete 某个文件上传完成（成功或失败）
	OnFileComplete(index, total int, fileName string, err error)

	// OnConvertStatus 图片转换状态更新
	// status: "converting" (转换中), "fallback" (回退原格式), "done" (完成)
	OnConvertStatus(index, total int, status, message string)
}

type noopCallback struct{}

func (noopCallback) OnStep(string)                            {}
func (noopCallback) OnProgress(SubmitProgress)                {}
func (noopCallback) OnFileStart(int, int, string)             {}
func (noopCallback) OnFileComplete(int, int, string, error)   {}
func (noopCallback) OnConvertStatus(int, int, string, string) {}
