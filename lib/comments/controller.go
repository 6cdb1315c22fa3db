package comments

import (
	"context"
	"errors"
	"sync"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
)

var (
	// ErrPending 同一条评论上一次操作尚未确认
	ErrPending = errors.New("operación en curso")
	// ErrNotAuthor 只有作者可以删除评论
	ErrNotAuthor = errors.New("solo el autor puede eliminar este comentario")
	// ErrUnknownComment 未加载的评论
	ErrUnknownComment = errors.New("comentario no encontrado")
)

// Store 评论的远端持久化
type Store interface {
	UpdateCommentCounters(ctx context.Context, id int64, likes int, dislikes *int) (*lib.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// Controller 管理一组评论的本地状态：先乐观更新，持久化失败时执行补偿
type Controller struct {
	mu       sync.Mutex
	store    Store
	viewerId int64
	entries  map[int64]Entry
	authors  map[int64]int64
	pending  map[int64]bool
	onChange func(id int64, e Entry)
}

func NewController(store Store, viewerId int64) *Controller {
	return &Controller{
		store:    store,
		viewerId: viewerId,
		entries:  make(map[int64]Entry),
		authors:  make(map[int64]int64),
		pending:  make(map[int64]bool),
	}
}

// OnChange 注册状态变化回调
func (c *Controller) OnChange(fn func(id int64, e Entry)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Track 载入评论，已有的本地态度保持不变
func (c *Controller) Track(list []lib.Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cm := range list {
		e := c.entries[cm.Id]
		e.Likes = cm.Likes
		e.Dislikes = cm.DislikeCount()
		c.entries[cm.Id] = e
		c.authors[cm.Id] = cm.UserId
	}
}

func (c *Controller) Entry(id int64) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return e, ok
}

// Pending 是否有未确认的操作
func (c *Controller) Pending(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[id]
}

func (c *Controller) apply(id int64, e Entry) func(int64, Entry) {
	c.entries[id] = e
	return c.onChange
}

func notify(fn func(int64, Entry), id int64, e Entry) {
	if fn != nil {
		fn(id, e)
	}
}

// Toggle 乐观地应用操作并持久化两个计数；失败时应用补偿迁移并返回错误
func (c *Controller) Toggle(ctx context.Context, id int64, a Action) (Entry, error) {
	c.mu.Lock()
	cur, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		return Entry{}, ErrUnknownComment
	}
	if c.pending[id] {
		c.mu.Unlock()
		return cur, ErrPending
	}
	t := Toggle(cur, a)
	c.pending[id] = true
	fn := c.apply(id, t.To)
	c.mu.Unlock()
	notify(fn, id, t.To)

	dislikes := t.To.Dislikes
	_, err := c.store.UpdateCommentCounters(ctx, id, t.To.Likes, &dislikes)

	c.mu.Lock()
	delete(c.pending, id)
	if err != nil {
		back := t.Compensate()
		logs.Debugf("compensate %s on comment %d: %v\n", a, id, err)
		fn = c.apply(id, back.To)
		c.mu.Unlock()
		notify(fn, id, back.To)
		return back.To, err
	}
	c.mu.Unlock()
	return t.To, nil
}

// CanDelete 只在客户端校验作者身份
func (c *Controller) CanDelete(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	author, ok := c.authors[id]
	return ok && c.viewerId != 0 && author == c.viewerId
}

// Delete 作者确认后删除评论；未确认时返回 false 且不发起请求
func (c *Controller) Delete(ctx context.Context, id int64, confirm func(prompt string) bool) (bool, error) {
	if !c.CanDelete(id) {
		return false, ErrNotAuthor
	}
	if confirm == nil || !confirm(meta.MsgConfirmDelete) {
		return false, nil
	}
	if err := c.store.DeleteComment(ctx, id); err != nil {
		return false, err
	}
	c.mu.Lock()
	delete(c.entries, id)
	delete(c.authors, id)
	c.mu.Unlock()
	return true, nil
}
