package tui

import (
	"context"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/actions"
	"github.com/casos-paranormales/casos-cli/lib/comments"
	"github.com/casos-paranormales/casos-cli/lib/feed"
	"github.com/casos-paranormales/casos-cli/lib/location"
	tea "github.com/charmbracelet/bubbletea"
)

func loadCaseTypes(ctx context.Context, env *actions.Env) tea.Cmd {
	return func() tea.Msg {
		types, err := actions.ExecuteListCaseTypes(ctx, env.Platform)
		return typesLoadedMsg{types: types, err: err}
	}
}

// loadCountries 国家目录不可用时得到内置列表
func loadCountries(ctx context.Context, env *actions.Env) tea.Cmd {
	if env.Countries == nil {
		return nil
	}
	return func() tea.Msg {
		countries, _ := env.Countries.Countries(ctx)
		return countriesLoadedMsg{names: location.Names(countries)}
	}
}

// fetchFeed 后台执行 ticket 对应的查询，结果由 Feed.Complete 决定是否采用
func fetchFeed(ctx context.Context, fd *feed.Feed, t feed.Ticket) tea.Cmd {
	return func() tea.Msg {
		page, err := fd.Fetch(ctx, t)
		if err != nil {
			err = lib.WithStep("listar casos", err)
		}
		return feedLoadedMsg{ticket: t, page: page, err: err}
	}
}

// loadDetail 详情与评论一起加载
func loadDetail(ctx context.Context, env *actions.Env, caseId, viewerId int64) tea.Cmd {
	return func() tea.Msg {
		detail := actions.ExecuteGetCase(ctx, env.Platform, env.Media(), caseId)
		if detail.Error != nil {
			return detailLoadedMsg{err: detail.Error}
		}
		ctrl, list, err := actions.NewCommentController(ctx, env.Platform, viewerId, caseId)
		if err != nil {
			return detailLoadedMsg{err: lib.WithStep("comentarios", err)}
		}
		return detailLoadedMsg{detail: detail, ctrl: ctrl, list: list}
	}
}

// openMedia 地址失效时重新签名一次后再打开
func openMedia(ctx context.Context, resolver *actions.MediaResolver, index int, item actions.MediaItem) tea.Cmd {
	return func() tea.Msg {
		_, err := actions.ExecuteOpenMedia(ctx, resolver, &item)
		return mediaOpenedMsg{index: index, item: item, err: err}
	}
}

func toggleReaction(ctx context.Context, ctrl *comments.Controller, commentId int64, a comments.Action) tea.Cmd {
	return func() tea.Msg {
		entry, err := ctrl.Toggle(ctx, commentId, a)
		return reactionDoneMsg{commentId: commentId, entry: entry, err: err}
	}
}

func addComment(ctx context.Context, env *actions.Env, viewer *lib.User, caseId int64, text string) tea.Cmd {
	return func() tea.Msg {
		c, err := actions.ExecuteAddComment(ctx, env.Platform, viewer, caseId, text)
		return commentAddedMsg{comment: c, err: err}
	}
}

// deleteComment 界面已完成确认
func deleteComment(ctx context.Context, ctrl *comments.Controller, commentId int64) tea.Cmd {
	return func() tea.Msg {
		deleted, err := ctrl.Delete(ctx, commentId, func(string) bool { return true })
		if err != nil {
			err = lib.WithStep("eliminar comentario", err)
		}
		return commentDeletedMsg{commentId: commentId, deleted: deleted, err: err}
	}
}
