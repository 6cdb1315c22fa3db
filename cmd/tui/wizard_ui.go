package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/actions"
	"github.com/casos-paranormales/casos-cli/lib/validate"
	"github.com/casos-paranormales/casos-cli/lib/wizard"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
)

func newFilePicker() filepicker.Model {
	fp := filepicker.New()
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	fp.CurrentDirectory = homeDir
	// 扩展名匹配区分大小写
	fp.AllowedTypes = lo.FlatMap(lib.MediaExtensions(), func(ext string, _ int) []string {
		return []string{ext, strings.ToUpper(ext)}
	})
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.Height = 10
	fp.AutoHeight = false
	fp.Styles.EmptyDirectory = fp.Styles.EmptyDirectory.SetString("No hay archivos multimedia en este directorio.")
	return fp
}

func (m *mainModel) startWizard() tea.Cmd {
	m.resetWizardState()
	if m.user == nil {
		m.err = lib.ErrNotLoggedIn
		return nil
	}
	m.submitCb = newTuiSubmitCallback()
	m.wiz = wizard.New(m.user.Id, m.env.Gate, m.env.Submitter().WizardSubmitter(m.submitCb))
	if len(m.types) == 0 {
		return loadCaseTypes(m.ctx, m.env)
	}
	return nil
}

func (m *mainModel) resetWizardState() {
	if m.wiz != nil {
		m.wiz.Reset()
	}
	m.wiz = nil
	m.submitCb = nil
	m.submitCh = nil
	m.cancelFn = nil
	m.submitStep = ""
	m.submitProg = actions.SubmitProgress{}
	m.submitFailed = ""
	m.attaching = 0
	m.fieldFocus = 0
	m.pathFocused = true
	m.typeList.Select(0)
	for _, in := range m.wizardInputs() {
		in.SetValue("")
		in.Blur()
	}
	m.taDesc.SetValue("")
	m.taDesc.Blur()
}

func (m *mainModel) wizardInputs() []*textinput.Model {
	return []*textinput.Model{&m.inpName, &m.inpCountry, &m.inpRegion, &m.inpAddress, &m.inpPath}
}

// locationInputs 第二步的输入框及其字段
func (m *mainModel) locationInputs() ([]*textinput.Model, []string) {
	return []*textinput.Model{&m.inpCountry, &m.inpRegion, &m.inpAddress},
		[]string{validate.FieldCountry, validate.FieldRegion, validate.FieldAddress}
}

// focusStep 切换步骤后把焦点放到该步第一个输入
func (m *mainModel) focusStep() tea.Cmd {
	for _, in := range m.wizardInputs() {
		in.Blur()
	}
	m.taDesc.Blur()
	m.fieldFocus = 0
	switch m.wiz.Step() {
	case wizard.StepLocation:
		return m.inpCountry.Focus()
	case wizard.StepDescription:
		return m.taDesc.Focus()
	case wizard.StepFiles:
		m.pathFocused = true
		return tea.Batch(m.inpPath.Focus(), m.filepicker.Init())
	}
	return nil
}

func (m *mainModel) nextStep() tea.Cmd {
	errs, err := m.wiz.Next()
	if err != nil {
		m.notice = m.errStyle.Render(err.Error())
		return nil
	}
	if len(errs) > 0 {
		m.notice = ""
		return nil
	}
	m.notice = ""
	return m.focusStep()
}

func (m *mainModel) updateWizard(msg tea.KeyMsg) tea.Cmd {
	if m.wiz == nil {
		if msg.String() == "esc" {
			m.backToMenu()
		}
		return nil
	}
	// 提交中只响应 ctrl+c
	if m.running {
		return nil
	}

	step := m.wiz.Step()
	switch msg.String() {
	case "esc":
		if step == wizard.StepBasics {
			m.backToMenu()
			return nil
		}
		if err := m.wiz.Previous(); err != nil {
			m.notice = m.errStyle.Render(err.Error())
			return nil
		}
		m.notice = ""
		return m.focusStep()
	case "ctrl+n":
		if step < wizard.StepFiles {
			return m.nextStep()
		}
	case "ctrl+s":
		if step == wizard.StepFiles {
			return m.startSubmit()
		}
		return nil
	}

	switch step {
	case wizard.StepBasics:
		return m.updateBasics(msg)
	case wizard.StepLocation:
		return m.updateLocation(msg)
	case wizard.StepDescription:
		var cmd tea.Cmd
		m.taDesc, cmd = m.taDesc.Update(msg)
		m.wiz.Set(validate.FieldDescription, m.taDesc.Value())
		return cmd
	case wizard.StepFiles:
		return m.updateFiles(msg)
	}
	return nil
}

func (m *mainModel) updateBasics(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "shift+tab":
		if m.fieldFocus == 0 {
			m.fieldFocus = 1
			return m.inpName.Focus()
		}
		m.fieldFocus = 0
		m.inpName.Blur()
		return nil
	case "enter":
		if m.fieldFocus == 0 {
			it, ok := m.typeList.SelectedItem().(typeEntry)
			if !ok {
				return nil
			}
			m.wiz.Set(validate.FieldCaseType, strconv.FormatInt(it.caseType.Id, 10))
			m.fieldFocus = 1
			return m.inpName.Focus()
		}
		return m.nextStep()
	}
	var cmd tea.Cmd
	if m.fieldFocus == 0 {
		m.typeList, cmd = m.typeList.Update(msg)
		return cmd
	}
	m.inpName, cmd = m.inpName.Update(msg)
	m.wiz.Set(validate.FieldCaseName, m.inpName.Value())
	return cmd
}

func (m *mainModel) updateLocation(msg tea.KeyMsg) tea.Cmd {
	inputs, fields := m.locationInputs()
	switch msg.String() {
	case "tab", "down":
		m.acceptCountrySuggestion()
		return m.moveLocationFocus(inputs, 1)
	case "shift+tab", "up":
		return m.moveLocationFocus(inputs, len(inputs)-1)
	case "enter":
		m.acceptCountrySuggestion()
		if m.fieldFocus < len(inputs)-1 {
			return m.moveLocationFocus(inputs, 1)
		}
		return m.nextStep()
	}
	var cmd tea.Cmd
	in := inputs[m.fieldFocus]
	*in, cmd = in.Update(msg)
	m.wiz.Set(fields[m.fieldFocus], in.Value())
	return cmd
}

// acceptCountrySuggestion 离开国家输入框时采用当前补全
func (m *mainModel) acceptCountrySuggestion() {
	if m.fieldFocus != 0 {
		return
	}
	s := m.inpCountry.CurrentSuggestion()
	if s == "" || s == m.inpCountry.Value() {
		return
	}
	m.inpCountry.SetValue(s)
	m.inpCountry.CursorEnd()
	m.wiz.Set(validate.FieldCountry, s)
}

func (m *mainModel) moveLocationFocus(inputs []*textinput.Model, delta int) tea.Cmd {
	inputs[m.fieldFocus].Blur()
	m.fieldFocus = (m.fieldFocus + delta) % len(inputs)
	return inputs[m.fieldFocus].Focus()
}

func (m *mainModel) updateFiles(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		m.pathFocused = !m.pathFocused
		if m.pathFocused {
			return m.inpPath.Focus()
		}
		m.inpPath.Blur()
		return nil
	case "ctrl+x":
		return m.removeLastAttachment()
	}

	if m.pathFocused {
		if msg.String() == "enter" {
			p := strings.TrimSpace(m.inpPath.Value())
			if p == "" {
				return nil
			}
			p = validate.ExpandHome(p)
			if info, err := os.Stat(p); err == nil && info.IsDir() {
				m.filepicker.CurrentDirectory = p
				m.pathFocused = false
				m.inpPath.Blur()
				return m.filepicker.Init()
			}
			m.inpPath.SetValue("")
			return m.attach(p)
		}
		var cmd tea.Cmd
		m.inpPath, cmd = m.inpPath.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)
	if did, p := m.filepicker.DidSelectFile(msg); did {
		return tea.Batch(cmd, m.attach(p))
	}
	if did, p := m.filepicker.DidSelectDisabledFile(msg); did {
		m.notice = m.errStyle.Render(fmt.Sprintf(meta.MsgFileTypeNotAllowed, filepath.Base(p)))
	}
	return cmd
}

func (m *mainModel) attach(path string) tea.Cmd {
	m.attaching++
	m.notice = ""
	return attachFile(m.ctx, m.wiz, path)
}

// removeLastAttachment 审核中的图片不可移除
func (m *mainModel) removeLastAttachment() tea.Cmd {
	files := m.wiz.State().Files
	if len(files) == 0 {
		return nil
	}
	last := files[len(files)-1]
	if err := m.wiz.Remove(last.LocalId); err != nil {
		m.notice = m.errStyle.Render(err.Error())
		return nil
	}
	m.notice = m.hintStyle.Render("Eliminado: " + last.Name)
	return nil
}

func (m *mainModel) startSubmit() tea.Cmd {
	if m.attaching > 0 {
		m.notice = m.errStyle.Render(meta.MsgModerationPending)
		return nil
	}
	m.running = true
	m.notice = ""
	m.submitFailed = ""
	m.submitStep = ""
	m.submitProg = actions.SubmitProgress{}
	return submitWizard(m.ctx, m.wiz, m.submitCb)
}

// finishSubmit 成功后清空表单并刷新列表缓存；失败时保留表单内容
func (m *mainModel) finishSubmit(msg submitDoneMsg) tea.Cmd {
	m.running = false
	m.cancelFn = nil
	m.submitCh = nil
	if msg.err != nil {
		var ve *lib.ValidationError
		if errors.As(msg.err, &ve) {
			m.notice = m.errStyle.Render(ve.Message)
			return m.focusStep()
		}
		if errors.Is(msg.err, wizard.ErrBusy) {
			m.notice = m.errStyle.Render(msg.err.Error())
			return nil
		}
		m.submitFailed = renderError(msg.err)
		return nil
	}
	m.fd.Reset()
	m.output = m.okStyle.Render(submittedMessage(msg.state))
	m.err = nil
	m.step = mainStepOutput
	return nil
}

func (m *mainModel) renderWizardView() string {
	if m.wiz == nil {
		return m.titleStyle.Render("Reportar un caso")
	}
	st := m.wiz.State()
	var b strings.Builder
	b.WriteString(m.titleStyle.Render(fmt.Sprintf("Reportar un caso · Paso %d de %d: %s", st.Step, wizard.StepCount, wizard.StepTitles[st.Step])))
	b.WriteString("\n")
	b.WriteString(m.renderStepDots(st.Step))
	b.WriteString("\n\n")

	if m.running {
		b.WriteString(m.renderSubmitting())
		return b.String()
	}

	fieldErr := func(field string) string {
		if msg := st.FieldErrors[field]; msg != "" {
			return "\n" + m.errStyle.Render(msg)
		}
		return ""
	}

	switch st.Step {
	case wizard.StepBasics:
		if len(m.types) == 0 {
			b.WriteString(m.sp.View() + " Cargando tipos de caso…\n")
		} else {
			selected := "ninguno"
			if id := st.Fields[validate.FieldCaseType]; id != "" {
				for _, t := range m.types {
					if strconv.FormatInt(t.Id, 10) == id {
						selected = lib.CaseIcon(t.Name) + " " + t.Name
					}
				}
			}
			b.WriteString(m.typeList.View())
			b.WriteString("\n" + m.hintStyle.Render("Seleccionado: "+selected))
		}
		b.WriteString(fieldErr(validate.FieldCaseType))
		b.WriteString("\n\n" + m.inpName.View())
		b.WriteString(fieldErr(validate.FieldCaseName))
	case wizard.StepLocation:
		inputs, fields := m.locationInputs()
		for i, in := range inputs {
			b.WriteString(in.View())
			b.WriteString(fieldErr(fields[i]))
			b.WriteString("\n")
		}
	case wizard.StepDescription:
		b.WriteString(m.taDesc.View())
		count := utf8.RuneCountInString(strings.TrimSpace(m.taDesc.Value()))
		b.WriteString("\n" + m.hintStyle.Render(fmt.Sprintf("%d/%d caracteres", count, meta.DescriptionMinChars)))
		b.WriteString(fieldErr(validate.FieldDescription))
	case wizard.StepFiles:
		b.WriteString(m.renderAttachments(st.Files))
		b.WriteString(fieldErr(validate.FieldFiles))
		b.WriteString("\n\n" + m.inpPath.View() + "\n")
		if !m.pathFocused {
			b.WriteString(m.hintStyle.Render(m.filepicker.CurrentDirectory) + "\n")
			b.WriteString(m.filepicker.View())
		}
		if m.submitFailed != "" {
			b.WriteString("\n" + m.errStyle.Render(meta.MsgSubmitFailed) + "\n" + m.submitFailed)
		}
	}
	if m.notice != "" {
		b.WriteString("\n" + m.notice)
	}
	return b.String()
}

func (m *mainModel) renderStepDots(current int) string {
	parts := make([]string, 0, wizard.StepCount)
	for s := wizard.StepBasics; s <= wizard.StepCount; s++ {
		switch {
		case s < current:
			parts = append(parts, m.okStyle.Render("●"))
		case s == current:
			parts = append(parts, m.titleStyle.Render("●"))
		default:
			parts = append(parts, m.hintStyle.Render("○"))
		}
	}
	return strings.Join(parts, " ")
}

func (m *mainModel) renderAttachments(files []wizard.AttachedFile) string {
	if len(files) == 0 {
		return m.hintStyle.Render("Sin archivos adjuntos")
	}
	var b strings.Builder
	for i, f := range files {
		line := fmt.Sprintf("%s %s  %s", lib.MediaIcon(f.Kind), f.Name, m.hintStyle.Render(humanize.Bytes(uint64(max(f.Size, 0)))))
		if f.Pending() {
			line += "  " + m.sp.View() + " " + meta.MsgAnalyzing
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	return b.String()
}

func (m *mainModel) renderSubmitting() string {
	var b strings.Builder
	b.WriteString(m.sp.View() + " " + meta.MsgSubmitting + "\n")
	if m.submitStep != "" {
		b.WriteString(m.hintStyle.Render("Paso: "+m.submitStep) + "\n")
	}
	p := m.submitProg
	if p.FileName != "" {
		pct := 0.0
		if p.Total > 0 {
			pct = float64(p.Consumed) / float64(p.Total)
		}
		b.WriteString(fmt.Sprintf("\n[%d/%d] %s\n", p.FileIndex+1, p.FileTotal, p.FileName))
		b.WriteString(m.progress.ViewAs(min(pct, 1)))
		if p.Total > 0 {
			b.WriteString(fmt.Sprintf("  %s / %s", humanize.Bytes(uint64(p.Consumed)), humanize.Bytes(uint64(p.Total))))
		}
	}
	b.WriteString("\n\n" + m.hintStyle.Render("Ctrl+C para cancelar"))
	return b.String()
}
