package tui

import (
	"fmt"
	"strings"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/comments"
	"github.com/casos-paranormales/casos-cli/lib/validate"
	"github.com/casos-paranormales/casos-cli/meta"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *mainModel) openDetail(cs lib.Case) tea.Cmd {
	m.fview = feedViewDetail
	m.loadingDetail = true
	m.detail = nil
	m.ctrl = nil
	m.commentList = nil
	m.focus = focusMedia
	m.notice = ""
	var viewerId int64
	if m.user != nil {
		viewerId = m.user.Id
	}
	return loadDetail(m.ctx, m.env, cs.Id, viewerId)
}

func (m *mainModel) closeDetail() {
	m.fview = feedViewTable
	m.detail = nil
	m.descRendered = ""
	m.ctrl = nil
	m.commentList = nil
	m.composing = false
	m.confirmDeleteId = 0
	m.notice = ""
	m.inpComment.Blur()
	m.inpComment.SetValue("")
}

func (m *mainModel) selectedComment() (lib.Comment, bool) {
	if m.commentCursor < 0 || m.commentCursor >= len(m.commentList) {
		return lib.Comment{}, false
	}
	return m.commentList[m.commentCursor], true
}

func (m *mainModel) removeComment(id int64) {
	for i, c := range m.commentList {
		if c.Id == id {
			m.commentList = append(m.commentList[:i], m.commentList[i+1:]...)
			break
		}
	}
	if m.commentCursor >= len(m.commentList) {
		m.commentCursor = max(len(m.commentList)-1, 0)
	}
}

func (m *mainModel) updateDetail(msg tea.KeyMsg) tea.Cmd {
	if m.loadingDetail || m.detail == nil {
		if msg.String() == "esc" || msg.String() == "q" {
			m.loadingDetail = false
			m.closeDetail()
		}
		return nil
	}

	// 撰写评论
	if m.composing {
		switch msg.String() {
		case "esc":
			m.composing = false
			m.inpComment.Blur()
			return nil
		case "enter":
			if m.running {
				return nil
			}
			text := strings.TrimSpace(m.inpComment.Value())
			if msg := validate.Field(validate.FieldComment, text, nil); msg != "" {
				m.notice = m.errStyle.Render(msg)
				return nil
			}
			m.composing = false
			m.inpComment.Blur()
			m.inpComment.SetValue("")
			m.running = true
			return addComment(m.ctx, m.env, m.user, m.detail.Case.Id, text)
		}
		var cmd tea.Cmd
		m.inpComment, cmd = m.inpComment.Update(msg)
		return cmd
	}

	// 删除确认
	if m.confirmDeleteId != 0 {
		switch msg.String() {
		case "y", "s", "enter":
			if m.running {
				return nil
			}
			m.running = true
			return deleteComment(m.ctx, m.ctrl, m.confirmDeleteId)
		case "n", "esc":
			m.confirmDeleteId = 0
		}
		return nil
	}

	switch msg.String() {
	case "esc", "q":
		m.closeDetail()
		return nil
	case "tab":
		if m.focus == focusMedia {
			m.focus = focusComments
		} else {
			m.focus = focusMedia
		}
		return nil
	case "up", "k":
		if m.focus == focusMedia {
			m.mediaCursor = max(m.mediaCursor-1, 0)
		} else {
			m.commentCursor = max(m.commentCursor-1, 0)
		}
		return nil
	case "down", "j":
		if m.focus == focusMedia {
			m.mediaCursor = min(m.mediaCursor+1, max(len(m.detail.Media)-1, 0))
		} else {
			m.commentCursor = min(m.commentCursor+1, max(len(m.commentList)-1, 0))
		}
		return nil
	case "o", "enter":
		if m.focus != focusMedia || m.running || m.mediaCursor >= len(m.detail.Media) {
			return nil
		}
		item := m.detail.Media[m.mediaCursor]
		if item.Err != nil {
			m.notice = m.errStyle.Render(meta.MsgMediaUnavailable)
			return nil
		}
		m.running = true
		return openMedia(m.ctx, m.env.Media(), m.mediaCursor, item)
	case "l", "d":
		c, ok := m.selectedComment()
		if !ok || m.ctrl == nil {
			return nil
		}
		if m.user == nil {
			m.notice = m.errStyle.Render(lib.ErrNotLoggedIn.Error())
			return nil
		}
		if m.ctrl.Pending(c.Id) {
			return nil
		}
		a := comments.Like
		if msg.String() == "d" {
			a = comments.Dislike
		}
		m.notice = ""
		return toggleReaction(m.ctx, m.ctrl, c.Id, a)
	case "c":
		if m.user == nil {
			m.notice = m.errStyle.Render(lib.ErrNotLoggedIn.Error())
			return nil
		}
		m.composing = true
		m.focus = focusComments
		return m.inpComment.Focus()
	case "x":
		c, ok := m.selectedComment()
		if !ok || m.ctrl == nil {
			return nil
		}
		if !m.ctrl.CanDelete(c.Id) {
			m.notice = m.errStyle.Render(comments.ErrNotAuthor.Error())
			return nil
		}
		m.confirmDeleteId = c.Id
		return nil
	}
	return nil
}

func (m *mainModel) renderDetailView() string {
	if m.loadingDetail || m.detail == nil {
		return m.titleStyle.Render("Detalle del caso") + "\n\n" + m.sp.View() + " Cargando…"
	}
	cs := m.detail.Case
	var b strings.Builder
	b.WriteString(m.titleStyle.Render(fmt.Sprintf("%s %s", lib.CaseIcon(cs.TypeName()), cs.CaseName)))
	b.WriteString("\n")
	b.WriteString(m.hintStyle.Render(fmt.Sprintf("%s · %s · %s · por %s",
		cs.TypeName(), cs.Location.String(), cs.TimeHour.Format("2006-01-02 15:04"), cs.Owner.DisplayName())))
	b.WriteString("\n")
	b.WriteString(m.descRendered)

	b.WriteString("\n" + m.sectionTitle(fmt.Sprintf("Archivos (%d)", len(m.detail.Media)), m.focus == focusMedia) + "\n")
	if len(m.detail.Media) == 0 {
		b.WriteString(m.hintStyle.Render("Sin archivos") + "\n")
	}
	for i, item := range m.detail.Media {
		cursor := "  "
		if m.focus == focusMedia && i == m.mediaCursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s %s", cursor, lib.MediaIcon(item.Kind), item.Name())
		if item.Err != nil {
			line += "  " + m.errStyle.Render(meta.MsgMediaUnavailable)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + m.sectionTitle(fmt.Sprintf("Comentarios (%d)", len(m.commentList)), m.focus == focusComments) + "\n")
	if len(m.commentList) == 0 {
		b.WriteString(m.hintStyle.Render("Sé el primero en comentar") + "\n")
	}
	for i, c := range m.commentList {
		cursor := "  "
		if m.focus == focusComments && i == m.commentCursor {
			cursor = "> "
		}
		b.WriteString(cursor + m.renderComment(c) + "\n")
		if m.confirmDeleteId == c.Id {
			b.WriteString("    " + m.errStyle.Render(meta.MsgConfirmDelete+" [s/N]") + "\n")
		}
	}
	if m.composing {
		b.WriteString("\n" + m.inpComment.View() + "\n")
	}
	if m.running {
		b.WriteString("\n" + m.sp.View() + " Procesando…")
	}
	if m.notice != "" {
		b.WriteString("\n" + m.notice)
	}
	return b.String()
}

func (m *mainModel) sectionTitle(title string, focused bool) string {
	if focused {
		return m.titleStyle.Render(title)
	}
	return m.hintStyle.Render(title)
}

// renderComment 计数与反应取自本地控制器
func (m *mainModel) renderComment(c lib.Comment) string {
	e := comments.Entry{Likes: c.Likes, Dislikes: c.DislikeCount()}
	pending := false
	if m.ctrl != nil {
		if got, ok := m.ctrl.Entry(c.Id); ok {
			e = got
		}
		pending = m.ctrl.Pending(c.Id)
	}
	like, dislike := "👍", "👎"
	switch e.Reaction {
	case comments.Liked:
		like = m.okStyle.Render("👍")
	case comments.Disliked:
		dislike = m.errStyle.Render("👎")
	}
	author := ""
	if c.Author != nil {
		author = c.Author.Username
	}
	line := fmt.Sprintf("%s  %s %d  %s %d  %s",
		m.hintStyle.Render("@"+dash(author)), like, e.Likes, dislike, e.Dislikes, c.Text)
	if pending {
		line += " " + m.sp.View()
	}
	return line
}
