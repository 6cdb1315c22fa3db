package tui

import (
	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/actions"
	"github.com/casos-paranormales/casos-cli/lib/comments"
	"github.com/casos-paranormales/casos-cli/lib/feed"
	"github.com/casos-paranormales/casos-cli/lib/session"
	"github.com/casos-paranormales/casos-cli/lib/wizard"
	tea "github.com/charmbracelet/bubbletea"
)

// 菜单/流程步骤
type mainStep int

const (
	mainStepLogin mainStep = iota
	mainStepMenu
	mainStepAction
	mainStepOutput
)

type actionKind string

const (
	actionFeed     actionKind = "feed"
	actionMine     actionKind = "mine"
	actionFeatured actionKind = "featured"
	actionUpload   actionKind = "upload"
	actionWhoami   actionKind = "whoami"
	actionLogout   actionKind = "logout"
	actionExit     actionKind = "exit"
)

// 列表视图内的子页面
type feedView int

const (
	feedViewTable feedView = iota
	feedViewDetail
)

// 详情页焦点
type detailFocus int

const (
	focusMedia detailFocus = iota
	focusComments
)

// 消息类型
type loginDoneMsg struct {
	user *lib.User
	err  error
}

type actionDoneMsg struct {
	out string
	err error
}

// sessionChangedMsg 本地或其他终端的会话变化
type sessionChangedMsg struct {
	event session.Event
}

type typesLoadedMsg struct {
	types []lib.CaseType
	err   error
}

type countriesLoadedMsg struct {
	names []string
}

type feedLoadedMsg struct {
	ticket feed.Ticket
	page   lib.CasePage
	err    error
}

type detailLoadedMsg struct {
	detail actions.CaseDetailResult
	ctrl   *comments.Controller
	list   []lib.Comment
	err    error
}

type mediaOpenedMsg struct {
	index int
	item  actions.MediaItem
	err   error
}

type reactionDoneMsg struct {
	commentId int64
	entry     comments.Entry
	err       error
}

type commentAddedMsg struct {
	comment *lib.Comment
	err     error
}

type commentDeletedMsg struct {
	commentId int64
	deleted   bool
	err       error
}

type attachDoneMsg struct {
	file wizard.AttachedFile
	err  error
}

type submitStartMsg struct {
	ch     <-chan tea.Msg
	cancel func()
}

type submitStepMsg struct {
	step string
}

type submitProgMsg struct {
	progress actions.SubmitProgress
}

type submitDoneMsg struct {
	state wizard.SubmissionState
	err   error
}

// 列表项（与 bubbles/list 兼容）
type listItem struct{ title, desc string }

func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.desc }
func (i listItem) FilterValue() string { return i.title }

// 菜单项
type menuEntry struct {
	listItem
	key actionKind
}

// 案例类型选项
type typeEntry struct {
	listItem
	caseType lib.CaseType
}
