package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/actions"
	"github.com/casos-paranormales/casos-cli/lib/comments"
	"github.com/casos-paranormales/casos-cli/lib/feed"
	"github.com/casos-paranormales/casos-cli/lib/session"
	"github.com/casos-paranormales/casos-cli/lib/wizard"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
)

type mainModel struct {
	ctx context.Context
	env *actions.Env

	step          mainStep
	user          *lib.User
	err           error
	currentAction actionKind

	width  int
	height int

	menu        list.Model
	inpUser     textinput.Model
	inpPass     textinput.Model
	passFocused bool

	types []lib.CaseType

	// 案例列表
	fd            *feed.Feed
	fview         feedView
	caseTable     table.Model
	cases         []lib.Case
	inpSearch     textinput.Model
	searching     bool
	typeFilter    int
	nameColWidth  int
	placeColWidth int

	// 案例详情
	detail          *actions.CaseDetailResult
	descRendered    string
	loadingDetail   bool
	ctrl            *comments.Controller
	commentList     []lib.Comment
	focus           detailFocus
	mediaCursor     int
	commentCursor   int
	composing       bool
	inpComment      textinput.Model
	confirmDeleteId int64
	notice          string

	// 提交向导
	wiz          *wizard.Wizard
	typeList     list.Model
	inpName      textinput.Model
	inpCountry   textinput.Model
	inpRegion    textinput.Model
	inpAddress   textinput.Model
	taDesc       textarea.Model
	fieldFocus   int
	filepicker   filepicker.Model
	inpPath      textinput.Model
	pathFocused  bool
	attaching    int
	submitCb     *tuiSubmitCallback
	submitCh     <-chan tea.Msg
	cancelFn     func()
	submitStep   string
	submitProg   actions.SubmitProgress
	submitFailed string

	running  bool
	output   string
	sp       spinner.Model
	progress progress.Model

	titleStyle lipgloss.Style
	hintStyle  lipgloss.Style
	panelStyle lipgloss.Style
	errStyle   lipgloss.Style
	okStyle    lipgloss.Style

	framePadX int
	framePadY int

	logo      string
	smallLogo string
}

func newMainModel(ctx context.Context, env *actions.Env) mainModel {
	mItems := []list.Item{
		menuEntry{listItem{title: "Explorar casos", desc: "Todos los casos reportados"}, actionFeed},
		menuEntry{listItem{title: "Casos destacados", desc: "Los 5 casos más recientes"}, actionFeatured},
		menuEntry{listItem{title: "Mis casos", desc: "Casos que has reportado"}, actionMine},
		menuEntry{listItem{title: "Reportar un caso", desc: "Asistente de 4 pasos"}, actionUpload},
		menuEntry{listItem{title: "Mi cuenta", desc: "Mostrar el usuario actual"}, actionWhoami},
		menuEntry{listItem{title: "Cerrar sesión", desc: "Eliminar la sesión local"}, actionLogout},
		menuEntry{listItem{title: "Salir", desc: "Cerrar la aplicación"}, actionExit},
	}
	d := newDelegate()
	menuList := list.New(mItems, d, 30, len(mItems)*3)
	menuList.Title = "¿Qué quieres hacer?"
	menuList.SetShowStatusBar(false)
	menuList.SetShowPagination(false)

	typeList := list.New(nil, d, 30, 10)
	typeList.Title = "Tipo de caso"
	typeList.SetShowStatusBar(false)
	typeList.SetShowPagination(false)
	typeList.SetFilteringEnabled(false)

	inUser := textinput.New()
	inUser.Placeholder = "Usuario"
	inPass := textinput.New()
	inPass.Placeholder = "Contraseña"
	inPass.EchoMode = textinput.EchoPassword
	inPass.EchoCharacter = '•'

	inSearch := textinput.New()
	inSearch.Placeholder = "Buscar por nombre o descripción"
	inComment := textinput.New()
	inComment.Placeholder = "Escribe un comentario"
	inComment.CharLimit = meta.CommentMaxChars

	inName := textinput.New()
	inName.Placeholder = "Nombre del caso"
	inCountry := textinput.New()
	inCountry.Placeholder = "País"
	inCountry.ShowSuggestions = true
	inRegion := textinput.New()
	inRegion.Placeholder = "Región o estado (opcional)"
	inAddress := textinput.New()
	inAddress.Placeholder = "Dirección o lugar"
	ta := textarea.New()
	ta.Placeholder = "Describe lo que ocurrió (mínimo 50 caracteres, admite Markdown)"
	ta.ShowLineNumbers = false
	ta.SetHeight(8)
	inPath := textinput.New()
	inPath.Placeholder = "Ruta de imagen, video o audio"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := mainModel{
		ctx:        ctx,
		env:        env,
		step:       mainStepLogin,
		menu:       menuList,
		inpUser:    inUser,
		inpPass:    inPass,
		inpSearch:  inSearch,
		inpComment: inComment,
		typeList:   typeList,
		inpName:    inName,
		inpCountry: inCountry,
		inpRegion:  inRegion,
		inpAddress: inAddress,
		taDesc:     ta,
		filepicker: newFilePicker(),
		inpPath:    inPath,
		caseTable:  newCaseTable(),
		fd:         feed.New(actions.FeedFetcher(env.Platform)),
		sp:         sp,
		progress:   progress.New(progress.WithDefaultGradient()),
		titleStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accentColor)),
		hintStyle:  lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("244")),
		panelStyle: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(1, 2),
		errStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		okStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")),
		logo: strings.Join([]string{
			`  ██████╗ █████╗ ███████╗ ██████╗ ███████╗`,
			` ██╔════╝██╔══██╗██╔════╝██╔═══██╗██╔════╝`,
			` ██║     ███████║███████╗██║   ██║███████╗`,
			` ██║     ██╔══██║╚════██║██║   ██║╚════██║`,
			` ╚██████╗██║  ██║███████║╚██████╔╝███████║`,
			`  ╚═════╝╚═╝  ╚═╝╚══════╝ ╚═════╝ ╚══════╝`,
			`        p a r a n o r m a l e s`,
		}, "\n"),
		smallLogo: "👻 casos paranormales",
		framePadX: 2,
		framePadY: 1,
	}
	if user, ok := env.Session.Current(); ok {
		m.user = user
		m.step = mainStepMenu
	} else {
		m.inpUser.Focus()
	}
	return m
}

func newDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	cSel := lipgloss.Color(okColor)
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(cSel).BorderLeftForeground(cSel)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(cSel)
	return d
}

func (m mainModel) Init() tea.Cmd {
	return tea.Batch(m.sp.Tick, loadCaseTypes(m.ctx, m.env), loadCountries(m.ctx, m.env), textinput.Blink)
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.cancelFn != nil {
				m.cancelFn()
				m.cancelFn = nil
				return m, nil
			}
			return m, tea.Quit
		}
		if m.err != nil && m.step != mainStepOutput {
			m.err = nil
			return m, nil
		}
		switch m.step {
		case mainStepLogin:
			return m, m.updateLogin(msg)
		case mainStepMenu:
			return m, m.updateMenu(msg)
		case mainStepAction:
			return m, m.updateActionInputs(msg)
		case mainStepOutput:
			switch msg.String() {
			case "enter", "esc", "q":
				m.backToMenu()
			}
			return m, nil
		}
	case loginDoneMsg:
		m.running = false
		if msg.err != nil {
			m.err = msg.err
			m.inpPass.SetValue("")
			return m, nil
		}
		m.user = msg.user
		m.inpUser.Blur()
		m.inpPass.Blur()
		m.inpPass.SetValue("")
		m.step = mainStepMenu
		return m, nil
	case sessionChangedMsg:
		return m, m.applySession(msg.event)
	case typesLoadedMsg:
		if msg.err != nil {
			logs.Warnf("load case types: %v\n", msg.err)
			return m, nil
		}
		m.types = msg.types
		m.typeList.SetItems(typeItems(msg.types))
		return m, nil
	case countriesLoadedMsg:
		m.inpCountry.SetSuggestions(msg.names)
		return m, nil
	case actionDoneMsg:
		m.running = false
		if m.user == nil && msg.err == nil {
			// 登出：已由会话事件切回登录页
			return m, nil
		}
		m.output = msg.out
		m.err = msg.err
		m.step = mainStepOutput
		return m, nil
	case feedLoadedMsg:
		if m.fd.Complete(msg.ticket, msg.page, msg.err) {
			m.syncFeed()
		}
		return m, nil
	case detailLoadedMsg:
		m.loadingDetail = false
		if msg.err != nil {
			m.err = msg.err
			m.fview = feedViewTable
			return m, nil
		}
		m.detail = &msg.detail
		innerW, _ := m.innerSize()
		m.descRendered = lib.RenderMarkdown(msg.detail.Case.Description, max(innerW-10, 40))
		m.ctrl = msg.ctrl
		m.commentList = msg.list
		m.mediaCursor, m.commentCursor = 0, 0
		return m, nil
	case mediaOpenedMsg:
		m.running = false
		if m.detail != nil && msg.index < len(m.detail.Media) {
			m.detail.Media[msg.index] = msg.item
		}
		if msg.err != nil {
			m.notice = m.errStyle.Render(fmt.Sprintf("%s: %v", msg.item.Name(), msg.err))
		} else {
			m.notice = m.okStyle.Render("Abierto en el navegador: " + msg.item.Name())
		}
		return m, nil
	case reactionDoneMsg:
		if msg.err != nil {
			m.notice = m.errStyle.Render(fmt.Sprintf("No se pudo registrar tu reacción: %v", msg.err))
		}
		return m, nil
	case commentAddedMsg:
		m.running = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.commentList = append(m.commentList, *msg.comment)
		m.ctrl.Track([]lib.Comment{*msg.comment})
		m.commentCursor = len(m.commentList) - 1
		m.notice = m.okStyle.Render("Comentario publicado")
		return m, nil
	case commentDeletedMsg:
		m.running = false
		m.confirmDeleteId = 0
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.deleted {
			m.removeComment(msg.commentId)
			m.notice = m.okStyle.Render("Comentario eliminado")
		}
		return m, nil
	case attachDoneMsg:
		if m.attaching > 0 {
			m.attaching--
		}
		if msg.err != nil {
			m.notice = m.errStyle.Render(msg.err.Error())
		} else {
			m.notice = m.okStyle.Render(fmt.Sprintf("%s %s listo", lib.MediaIcon(msg.file.Kind), msg.file.Name))
		}
		return m, nil
	case submitStartMsg:
		m.submitCh = msg.ch
		m.cancelFn = msg.cancel
		return m, waitForSubmitEvent(m.submitCh)
	case submitStepMsg:
		m.submitStep = msg.step
		return m, waitForSubmitEvent(m.submitCh)
	case submitProgMsg:
		m.submitProg = msg.progress
		return m, waitForSubmitEvent(m.submitCh)
	case submitDoneMsg:
		return m, m.finishSubmit(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.sp, cmd = m.sp.Update(msg)
	cmds = append(cmds, cmd)
	if m.step == mainStepAction && m.currentAction == actionUpload && m.wiz != nil && m.wiz.Step() == wizard.StepFiles {
		m.filepicker, cmd = m.filepicker.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// applySession 会话变化后重新读取会话文件
func (m *mainModel) applySession(e session.Event) tea.Cmd {
	logs.Debugf("session event: %s from %s\n", e.Kind, e.Origin)
	user, ok := m.env.Session.Current()
	if !ok {
		m.user = nil
		m.resetAll()
		m.step = mainStepLogin
		m.notice = ""
		return m.inpUser.Focus()
	}
	m.user = user
	if m.step == mainStepLogin {
		m.step = mainStepMenu
	}
	return nil
}

func (m *mainModel) updateLogin(msg tea.KeyMsg) tea.Cmd {
	if m.running {
		return nil
	}
	switch msg.String() {
	case "esc":
		return tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.passFocused = !m.passFocused
		if m.passFocused {
			m.inpUser.Blur()
			return m.inpPass.Focus()
		}
		m.inpPass.Blur()
		return m.inpUser.Focus()
	case "enter":
		if !m.passFocused {
			m.passFocused = true
			m.inpUser.Blur()
			return m.inpPass.Focus()
		}
		m.running = true
		return loginCmd(m.ctx, m.env, m.inpUser.Value(), m.inpPass.Value())
	}
	var cmd tea.Cmd
	if m.passFocused {
		m.inpPass, cmd = m.inpPass.Update(msg)
	} else {
		m.inpUser, cmd = m.inpUser.Update(msg)
	}
	return cmd
}

func (m *mainModel) updateMenu(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "enter":
		it, ok := m.menu.SelectedItem().(menuEntry)
		if !ok {
			return nil
		}
		m.currentAction = it.key
		m.notice = ""
		switch it.key {
		case actionExit:
			return tea.Quit
		case actionLogout:
			m.running = true
			return runLogout(m.env)
		case actionWhoami:
			m.running = true
			return runWhoami(m.ctx, m.env)
		case actionFeed, actionMine, actionFeatured:
			m.step = mainStepAction
			m.fview = feedViewTable
			m.typeFilter = 0
			m.inpSearch.SetValue("")
			return m.requestFeed(1)
		case actionUpload:
			m.step = mainStepAction
			return m.startWizard()
		}
		return nil
	}
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return cmd
}

func (m *mainModel) updateActionInputs(msg tea.KeyMsg) tea.Cmd {
	switch m.currentAction {
	case actionUpload:
		return m.updateWizard(msg)
	default:
		return m.updateFeed(msg)
	}
}

func (m *mainModel) backToMenu() {
	m.step = mainStepMenu
	m.output = ""
	m.err = nil
	m.notice = ""
	m.resetAll()
	if m.user == nil {
		m.step = mainStepLogin
		m.inpUser.Focus()
	}
}

func (m *mainModel) resetAll() {
	m.fview = feedViewTable
	m.detail = nil
	m.ctrl = nil
	m.commentList = nil
	m.composing = false
	m.confirmDeleteId = 0
	m.searching = false
	m.resetWizardState()
}

func (m *mainModel) resize() {
	innerW, innerH := m.innerSize()
	lw := innerW - 8
	if lw < 20 {
		lw = 20
	}
	m.menu.SetWidth(lw)
	m.typeList.SetWidth(lw)
	for _, in := range []*textinput.Model{&m.inpUser, &m.inpPass, &m.inpSearch, &m.inpComment, &m.inpName, &m.inpCountry, &m.inpRegion, &m.inpAddress, &m.inpPath} {
		in.Width = lw
	}
	m.taDesc.SetWidth(lw)
	m.progress.Width = lw
	if innerH > 18 {
		m.filepicker.SetHeight(innerH - 18)
	} else {
		m.filepicker.SetHeight(5)
	}
	m.resizeCaseTable(innerW, innerH)
}

func (m mainModel) View() string {
	innerW, innerH := m.innerSize()
	if innerW < 10 {
		innerW = 10
	}
	if innerH < 5 {
		innerH = 5
	}
	panelW := innerW - 4
	if panelW < 40 {
		panelW = 40
	}
	panel := m.panelStyle.Width(panelW)
	header := lipgloss.PlaceHorizontal(innerW, lipgloss.Left, m.titleStyle.Render(m.smallLogo)+m.hintStyle.Render("  "+m.userLabel()))

	if m.err != nil && m.step != mainStepOutput {
		return m.renderFrame(header + "\n" + panel.Render(m.titleStyle.Render("Error")+"\n"+renderError(m.err)+"\n\n"+m.hintStyle.Render("Presiona cualquier tecla para continuar…")))
	}
	if m.running && m.step != mainStepAction {
		return m.renderFrame(header + "\n" + panel.Render(m.titleStyle.Render("Procesando")+"\n\n"+m.sp.View()+" Esperando respuesta…"))
	}

	switch m.step {
	case mainStepLogin:
		body := m.titleStyle.Render("Iniciar sesión") + "\n\n" + m.inpUser.View() + "\n" + m.inpPass.View() +
			"\n\n" + m.hintStyle.Render("¿No tienes cuenta? Ejecuta: casos register")
		return m.renderFrame(m.gradientLogo() + "\n\n" + panel.Render(body) + "\n" + m.hintStyle.Render(m.contextualHint()))
	case mainStepMenu:
		logo := m.gradientLogo()
		h := innerH - strings.Count(logo, "\n") - 8
		if h < 6 {
			h = 6
		}
		m.menu.SetHeight(h)
		return m.renderFrame(logo + "\n\n" + m.menu.View() + "\n" + m.hintStyle.Render(m.contextualHint()))
	case mainStepAction:
		return m.renderFrame(header + "\n" + panel.Render(m.renderActionView()) + "\n" + m.hintStyle.Render(m.contextualHint()))
	case mainStepOutput:
		if m.err != nil {
			body := m.output
			if strings.TrimSpace(body) != "" {
				body += "\n"
			}
			body += renderError(m.err)
			return m.renderFrame(header + "\n" + panel.Render(m.titleStyle.Render("Terminado con errores")+"\n\n"+body+"\n\n"+m.hintStyle.Render("Enter para volver al menú")))
		}
		return m.renderFrame(header + "\n" + panel.Render(m.titleStyle.Render("Listo")+"\n\n"+m.output+"\n\n"+m.hintStyle.Render("Enter para volver al menú")))
	}
	return m.renderFrame(header)
}

func (m *mainModel) renderActionView() string {
	switch m.currentAction {
	case actionUpload:
		return m.renderWizardView()
	default:
		return m.renderFeedView()
	}
}

func (m *mainModel) userLabel() string {
	if m.user == nil {
		return "sin sesión"
	}
	return m.user.DisplayName()
}

// renderError 带步骤信息的错误
func renderError(err error) string {
	var b strings.Builder
	if step := lib.GetStep(err); step != "" {
		b.WriteString(fmt.Sprintf("Paso: %s\n", step))
	}
	b.WriteString(fmt.Sprintf("Error: %v", err))
	return b.String()
}

// Run 启动交互界面；会话变化（包括其他终端通过总线广播的）会让界面回到对应状态
func Run(ctx context.Context, env *actions.Env) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newMainModel(ctx, env), tea.WithAltScreen(), tea.WithContext(ctx))
	unsubscribe := env.Session.Subscribe(func(e session.Event) {
		p.Send(sessionChangedMsg{event: e})
	})
	defer unsubscribe()

	if b := env.Broadcaster(); b != nil {
		go func() {
			if err := env.Session.Listen(ctx, b); err != nil {
				logs.Warnf("session bus listener stopped: %v\n", err)
			}
		}()
	}

	_, err := p.Run()
	return err
}
