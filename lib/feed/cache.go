// Package feed 案例列表的查询缓存：按查询条件缓存分页结果，丢弃过期响应
package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
)

// Fetcher 远端查询
type Fetcher func(ctx context.Context, q lib.CaseQuery) (lib.CasePage, error)

// Key 查询条件的确定性序列化
func Key(q lib.CaseQuery) string {
	q = lib.NormalizeCaseQuery(q)
	return fmt.Sprintf("page=%d|limit=%d|search=%q|type=%d|owner=%d|sortBy=%s|sortOrder=%s",
		q.Page, q.Limit, q.Search, q.CaseTypeId, q.OwnerId, q.SortBy, q.SortOrder)
}

// Ticket 一次已发出的请求
type Ticket struct {
	Seq   uint64
	Key   string
	Query lib.CaseQuery
}

// State 当前可见状态
type State struct {
	Query   lib.CaseQuery
	Page    lib.CasePage
	Loading bool
	Err     error
	Seq     uint64
}

// Feed 查询缓存，不淘汰、不过期，生命周期与所在视图一致
type Feed struct {
	mu      sync.Mutex
	fetch   Fetcher
	entries map[string]lib.CasePage
	latest  uint64
	state   State
}

func New(fetch Fetcher) *Feed {
	return &Feed{
		fetch:   fetch,
		entries: make(map[string]lib.CasePage),
	}
}

// Begin 发出一次请求；命中缓存时立即更新可见状态并返回 hit=true
func (f *Feed) Begin(q lib.CaseQuery) (Ticket, bool) {
	q = lib.NormalizeCaseQuery(q)
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest++
	t := Ticket{Seq: f.latest, Key: Key(q), Query: q}
	if page, ok := f.entries[t.Key]; ok {
		f.state = State{Query: q, Page: page, Seq: t.Seq}
		return t, true
	}
	f.state.Query = q
	f.state.Loading = true
	f.state.Err = nil
	f.state.Seq = t.Seq
	return t, false
}

// Complete 应用响应；比最新请求旧的响应直接丢弃，返回是否被应用
func (f *Feed) Complete(t Ticket, page lib.CasePage, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t.Seq < f.latest {
		logs.Debugf("discard stale feed response seq=%d latest=%d key=%s\n", t.Seq, f.latest, t.Key)
		return false
	}
	if err != nil {
		f.state = State{Query: t.Query, Page: f.state.Page, Err: err, Seq: t.Seq}
		return true
	}
	f.entries[t.Key] = page
	f.state = State{Query: t.Query, Page: page, Seq: t.Seq}
	return true
}

// Load 命中缓存直接返回，否则远端查询后写入缓存
func (f *Feed) Load(ctx context.Context, q lib.CaseQuery) State {
	t, hit := f.Begin(q)
	if hit {
		return f.State()
	}
	page, err := f.fetch(ctx, t.Query)
	f.Complete(t, page, err)
	return f.State()
}

// Fetch 执行 ticket 对应的远端查询，供 UI 在后台调用
func (f *Feed) Fetch(ctx context.Context, t Ticket) (lib.CasePage, error) {
	return f.fetch(ctx, t.Query)
}

func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Cached 查询是否已缓存
func (f *Feed) Cached(q lib.CaseQuery) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[Key(q)]
	return ok
}

// Reset 清空缓存，用于用户主动刷新
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[string]lib.CasePage)
}
