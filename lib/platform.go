package lib

import (
	"context"
	"io"
	"time"
)

// Platform 托管数据平台的能力集合，REST 客户端与本地 SQLite 实现都满足该接口
type Platform interface {
	FindUserByUsername(ctx context.Context, username string) (*UserRecord, error)
	CreateUser(ctx context.Context, user NewUser) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)

	FindLocation(ctx context.Context, country, address string) (*Location, error)
	CreateLocation(ctx context.Context, input LocationInput) (*Location, error)

	ListCaseTypes(ctx context.Context) ([]CaseType, error)
	CreateCase(ctx context.Context, input CaseInput) (*Case, error)
	QueryCases(ctx context.Context, query CaseQuery) (CasePage, error)
	GetCase(ctx context.Context, id int64) (*Case, error)

	CreateFiles(ctx context.Context, files []FileInput) error

	ListComments(ctx context.Context, caseId int64) ([]Comment, error)
	CreateComment(ctx context.Context, input CommentInput) (*Comment, error)
	UpdateCommentCounters(ctx context.Context, id int64, likes int, dislikes *int) (*Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// BlobStore 对象存储
type BlobStore interface {
	// Upload 上传对象，返回对象的访问地址
	Upload(ctx context.Context, bucket, path, contentType string, body io.Reader, size int64) (string, error)
	// SignURL 为对象签发短期有效的访问地址
	SignURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
}
