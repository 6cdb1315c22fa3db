package actions

import (
	"context"
	"strings"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/comments"
	"github.com/casos-paranormales/casos-cli/lib/validate"
)

// ExecuteListComments 查询案例评论，最新的在前
func ExecuteListComments(ctx context.Context, p lib.Platform, caseId int64) CommentsResult {
	list, err := p.ListComments(ctx, caseId)
	if err != nil {
		return CommentsResult{Error: lib.WithStep("comentarios", err)}
	}
	return CommentsResult{Comments: list}
}

// ExecuteAddComment 发表评论，空内容在本地拒绝
func ExecuteAddComment(ctx context.Context, p lib.Platform, viewer *lib.User, caseId int64, text string) (*lib.Comment, error) {
	if viewer == nil || viewer.Id == 0 {
		return nil, lib.WithStep("comentar", lib.ErrNotLoggedIn)
	}
	if msg := validate.Field(validate.FieldComment, text, nil); msg != "" {
		return nil, lib.WithStep("comentar", lib.NewFieldError(validate.FieldComment, msg))
	}
	zero := 0
	c, err := p.CreateComment(ctx, lib.CommentInput{
		CaseId:   caseId,
		Text:     strings.TrimSpace(text),
		UserId:   viewer.Id,
		Likes:    0,
		Dislikes: &zero,
	})
	if err != nil {
		return nil, lib.WithStep("comentar", err)
	}
	if c.Author == nil {
		c.Author = viewer
	}
	return c, nil
}

// NewCommentController 载入案例评论并返回交互控制器
func NewCommentController(ctx context.Context, p lib.Platform, viewerId, caseId int64) (*comments.Controller, []lib.Comment, error) {
	res := ExecuteListComments(ctx, p, caseId)
	if res.Error != nil {
		return nil, nil, res.Error
	}
	ctrl := comments.NewController(p, viewerId)
	ctrl.Track(res.Comments)
	return ctrl, res.Comments, nil
}

// ExecuteReact 对单条评论点赞或点踩，命令行每次调用都从无态度开始
func ExecuteReact(ctx context.Context, p lib.Platform, viewerId, caseId, commentId int64, a comments.Action) (comments.Entry, error) {
	ctrl, _, err := NewCommentController(ctx, p, viewerId, caseId)
	if err != nil {
		return comments.Entry{}, err
	}
	entry, err := ctrl.Toggle(ctx, commentId, a)
	if err != nil {
		return entry, lib.WithStep(a.String(), err)
	}
	return entry, nil
}

// ExecuteDeleteComment 作者确认后删除评论
func ExecuteDeleteComment(ctx context.Context, p lib.Platform, viewerId, caseId, commentId int64, confirm func(prompt string) bool) (bool, error) {
	ctrl, _, err := NewCommentController(ctx, p, viewerId, caseId)
	if err != nil {
		return false, err
	}
	deleted, err := ctrl.Delete(ctx, commentId, confirm)
	if err != nil {
		return false, lib.WithStep("eliminar comentario", err)
	}
	return deleted, nil
}
