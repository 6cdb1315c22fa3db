package lib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Timestamp 兼容 Postgres 带/不带时区的时间格式
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp: %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// User 用户（不含密码）
type User struct {
	Id        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Birthday  string `json:"birthday,omitempty"`
}

// DisplayName 展示用名称
func (u *User) DisplayName() string {
	if u == nil {
		return "-"
	}
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return fmt.Sprintf("%s (@%s)", full, u.Username)
}

// UserRecord 含密码哈希的完整用户行，仅用于登录校验
type UserRecord struct {
	User
	PasswordHash string `json:"password"`
}

type NewUser struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Birthday     string `json:"birthday,omitempty"`
}

type CaseType struct {
	Id   int64  `json:"id"`
	Name string `json:"nombre_Caso"`
}

type Location struct {
	Id      int64  `json:"id"`
	Country string `json:"country"`
	Region  string `json:"region,omitempty"`
	Address string `json:"address"`
}

func (l *Location) String() string {
	if l == nil {
		return "-"
	}
	parts := []string{l.Address}
	if l.Region != "" {
		parts = append(parts, l.Region)
	}
	parts = append(parts, l.Country)
	return strings.Join(parts, ", ")
}

type LocationInput struct {
	Country string `json:"country"`
	Region  string `json:"region,omitempty"`
	Address string `json:"address"`
}

// MediaFile Files 表中的一行，url 保存的是存储路径
type MediaFile struct {
	Id     int64  `json:"id"`
	CaseId int64  `json:"Case,omitempty"`
	Url    string `json:"url"`
	Type   string `json:"type_multimedia"`
}

type FileInput struct {
	CaseId int64  `json:"Case"`
	Url    string `json:"url"`
	Type   string `json:"type_multimedia"`
}

// Case 案例及其关联数据
type Case struct {
	Id          int64       `json:"id"`
	UserId      int64       `json:"user"`
	CaseTypeId  int64       `json:"caseType"`
	CaseName    string      `json:"caseName"`
	Description string      `json:"description"`
	TimeHour    Timestamp   `json:"timeHour"`
	LocationId  int64       `json:"location"`
	CaseType    *CaseType   `json:"Case_Type,omitempty"`
	Location    *Location   `json:"Location,omitempty"`
	Owner       *User       `json:"User,omitempty"`
	Files       []MediaFile `json:"Files,omitempty"`
}

// TypeName 案例类型名称
func (c *Case) TypeName() string {
	if c.CaseType == nil {
		return "-"
	}
	return c.CaseType.Name
}

type CaseInput struct {
	UserId      int64     `json:"user"`
	CaseTypeId  int64     `json:"caseType"`
	CaseName    string    `json:"caseName"`
	Description string    `json:"description"`
	TimeHour    Timestamp `json:"timeHour"`
	LocationId  int64     `json:"location"`
}

// CaseQuery 列表查询参数
type CaseQuery struct {
	Page       int
	Limit      int
	Search     string
	CaseTypeId int64
	OwnerId    int64
	SortBy     string
	SortOrder  string
}

// CasePage 分页结果
type CasePage struct {
	Cases       []Case `json:"cases"`
	TotalCount  int    `json:"totalCount"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	HasNextPage bool   `json:"hasNextPage"`
	HasPrevPage bool   `json:"hasPrevPage"`
}

// NewCasePage 根据总数计算分页信息
func NewCasePage(cases []Case, total, page, limit int) CasePage {
	if cases == nil {
		cases = []Case{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return CasePage{
		Cases:       cases,
		TotalCount:  total,
		CurrentPage: page,
		TotalPages:  totalPages,
		HasNextPage: page*limit < total,
		HasPrevPage: page > 1,
	}
}

type Comment struct {
	Id        int64     `json:"id"`
	CaseId    int64     `json:"caseId"`
	Text      string    `json:"commentText"`
	UserId    int64     `json:"user_id"`
	Likes     int       `json:"likes"`
	Dislikes  *int      `json:"dislikes"`
	CreatedAt Timestamp `json:"createdAt"`
	Author    *User     `json:"User,omitempty"`
}

// DislikeCount dislikes 可为空
func (c *Comment) DislikeCount() int {
	if c.Dislikes == nil {
		return 0
	}
	return *c.Dislikes
}

type CommentInput struct {
	CaseId   int64  `json:"caseId"`
	Text     string `json:"commentText"`
	UserId   int64  `json:"user_id"`
	Likes    int    `json:"likes"`
	Dislikes *int   `json:"dislikes"`
}

// Attachment 待上传的本地附件
type Attachment struct {
	LocalId string
	Path    string
	Name    string
	Size    int64
	Kind    MediaKind
}

// CaseSubmission 提交一个案例所需的全部输入
type CaseSubmission struct {
	UserId      int64
	CaseTypeId  int64
	CaseName    string
	Country     string
	Region      string
	Address     string
	Description string
	Files       []Attachment
}
