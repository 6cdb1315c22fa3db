package lib

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/casos-paranormales/casos-cli/meta"
)

const (
	userColumns    = "id,username,email,first_name,last_name,birthday"
	authorColumns  = "id,username,first_name,last_name"
	caseSelect     = "*,Case_Type!inner(id,nombre_Caso),Location!inner(id,address,country,region),User!inner(" + authorColumns + "),Files(id,url,type_multimedia)"
	commentSelect  = "*,User(" + authorColumns + ")"
	preferReturn   = "return=representation"
	preferMinimal  = "return=minimal"
	preferCountAll = "count=exact"
)

var _ Platform = (*Client)(nil)

// call 发送请求并解析响应
func call[T any](ctx context.Context, c *Client, method, table string, query url.Values, data interface{}, header map[string]string) (*Response[T], error) {
	var (
		body       []byte
		respHeader http.Header
		statusCode int
		err        error
	)
	urlStr := c.restURL(table)
	switch method {
	case meta.HTTPGet:
		body, respHeader, statusCode, err = c.doGet(ctx, urlStr, query, header)
	case meta.HTTPPost:
		body, respHeader, statusCode, err = c.doPost(ctx, urlStr, query, data, header)
	case meta.HTTPPatch:
		body, respHeader, statusCode, err = c.doPatch(ctx, urlStr, query, data, header)
	case meta.HTTPDelete:
		body, respHeader, statusCode, err = c.doDelete(ctx, urlStr, query, header)
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}
	if err != nil {
		return nil, err
	}
	if !isSuccess(statusCode) {
		return nil, handleError(body, statusCode)
	}
	return handleResponse[T](body, respHeader, statusCode)
}

func first[T any](rows []T) (*T, error) {
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func eq(v interface{}) string {
	return fmt.Sprintf("eq.%v", v)
}

func (c *Client) FindUserByUsername(ctx context.Context, username string) (*UserRecord, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("username", eq(username))
	resp, err := call[[]UserRecord](ctx, c, meta.HTTPGet, meta.TableUser, q, nil, c.authHeader())
	if err != nil {
		return nil, err
	}
	return first(resp.Data)
}

func (c *Client) CreateUser(ctx context.Context, user NewUser) (*User, error) {
	q := url.Values{}
	q.Set("select", userColumns)
	resp, err := call[[]User](ctx, c, meta.HTTPPost, meta.TableUser, q, []NewUser{user}, c.headerWith(meta.HeaderPrefer, preferReturn))
	if err != nil {
		return nil, err
	}
	return first(resp.Data)
}

func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	q := url.Values{}
	q.Set("select", userColumns)
	q.Set("id", eq(id))
	resp, err := call[[]User](ctx, c, meta.HTTPGet, meta.TableUser, q, nil, c.authHeader())
	if err != nil {
		return nil, err
	}
	return first(resp.Data)
}

// FindLocation 国家精确匹配，地址不区分大小写的子串匹配
func (c *Client) FindLocation(ctx context.Context, country, address string) (*Location, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("country", eq(country))
	q.Set("address", "ilike."+likePattern(address))
	q.Set("limit", "1")
	resp, err := call[[]Location](ctx, c, meta.HTTPGet, meta.TableLocation, q, nil, c.authHeader())
	if err != nil {
		return nil, err
	}
	return first(resp.Data)
}

func (c *Client) CreateLocation(ctx context.Context, input LocationInput) (*Location, error) {
	q := url.Values{}
	q.Set("select", "*")
	resp, err := call[[]Location](ctx, c, meta.HTTPPost, meta.TableLocation, q, []LocationInput{input}, c.headerWith(meta.HeaderPrefer, preferReturn))
	if err != nil {
		return nil, err
	}
	return first(resp.Data)
}

func (c *Client) ListCaseTypes(ctx context.Context) ([]CaseType, error) {
	q := url.Values{}
	q.Set("select", "id,nombre_Caso")
	q.Set("order", "nombre_Caso.asc")
	resp, err := call[[]CaseType](ctx, c, meta.HTTPGet, meta.TableCaseType, q, nil, c.authHeader())
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) CreateCase(ctx context.Context, input CaseInput) (*Case, error) {
	q := url.Values{}
	q.Set("select", "*")
	resp, err := call[[]Case](ctx, c, meta.HTTPPost, meta.TableCase, q, []CaseInput{input}, c.headerWith(meta.HeaderPrefer, preferReturn))
	if err != nil {
		return nil, err
	}
	return first(resp.Data)
}

// QueryCases 分页查询案例，返回精确总数
func (c *Client) QueryCases(ctx context.Context, query CaseQuery) (CasePage, error) {
	query = NormalizeCaseQuery(query)
	q := url.Values{}
	q.Set("select", caseSelect)
	q.Set("order", fmt.Sprintf("%s.%s", query.SortBy, query.SortOrder))
	q.Set("offset", strconv.Itoa((query.Page-1)*query.Limit))
	q.Set("limit", strconv.Itoa(query.Limit))
	if query.CaseTypeId > 0 {
		q.Set("caseType", eq(query.CaseTypeId))
	}
	if query.OwnerId > 0 {
		q.Set("user", eq(query.OwnerId))
	}
	if query.Search != "" {
		pattern := quoteFilterValue(likePattern(query.Search))
		q.Set("or", fmt.Sprintf("(caseName.ilike.%s,description.ilike.%s)", pattern, pattern))
	}
	resp, err := call[[]Case](ctx, c, meta.HTTPGet, meta.TableCase, q, nil, c.headerWith(meta.HeaderPrefer, preferCountAll))
	if err != nil {
		return CasePage{}, err
	}
	return NewCasePage(resp.Data, resp.Count, query.Page, query.Limit), nil
}

func (c *Client) GetCase(ctx context.Context, id int64) (*Case, error) {
	q := url.Values{}
	q.Set("select", caseSelect)
	q.Set("id", eq(id))
	resp, err := call[[]Case](ctx, c, meta.HTTPGet, meta.TableCase, q, nil, c.authHeader())
	if err != nil {
		return nil, err
	}
	return first(resp.Data)
}

func (c *Client) CreateFiles(ctx context.Context, files []FileInput) error {
	if len(files) == 0 {
		return nil
	}
	_, err := call[interface{}](ctx, c, meta.HTTPPost, meta.TableFiles, nil, files, c.headerWith(meta.HeaderPrefer, preferMinimal))
	return err
}

func (c *Client) ListComments(ctx context.Context, caseId int64) ([]Comment, error) {
	q := url.Values{}
	q.Set("select", commentSelect)
	q.Set("caseId", eq(caseId))
	q.Set("order", "createdAt.desc")
	resp, err := call[[]Comment](ctx, c, meta.HTTPGet, meta.TableComments, q, nil, c.authHeader())
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) CreateComment(ctx context.Context, input CommentInput) (*Comment, error) {
	q := url.Values{}
	q.Set("select", commentSelect)
	resp, err := call[[]Comment](ctx, c, meta.HTTPPost, meta.TableComments, q, []CommentInput{input}, c.headerWith(meta.HeaderPrefer, preferReturn))
	if err != nil {
		return nil, err
	}
	return first(resp.Data)
}

func (c *Client) UpdateCommentCounters(ctx context.Context, id int64, likes int, dislikes *int) (*Comment, error) {
	q := url.Values{}
	q.Set("select", commentSelect)
	q.Set("id", eq(id))
	body := map[string]interface{}{"likes": likes}
	// 旧表没有 dislikes 列时不写该字段
	if dislikes != nil {
		body["dislikes"] = *dislikes
	}
	resp, err := call[[]Comment](ctx, c, meta.HTTPPatch, meta.TableComments, q, body, c.headerWith(meta.HeaderPrefer, preferReturn))
	if err != nil {
		return nil, err
	}
	return first(resp.Data)
}

func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	q := url.Values{}
	q.Set("id", eq(id))
	_, err := call[interface{}](ctx, c, meta.HTTPDelete, meta.TableComments, q, nil, c.authHeader())
	return err
}

// NormalizeCaseQuery 补齐默认分页与排序
func NormalizeCaseQuery(q CaseQuery) CaseQuery {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = meta.DefaultPageSize
	}
	if q.SortBy == "" {
		q.SortBy = meta.SortByTimeHour
	}
	if q.SortOrder != meta.SortOrderAsc {
		q.SortOrder = meta.SortOrderDesc
	}
	return q
}
