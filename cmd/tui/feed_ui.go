package tui

import (
	"fmt"
	"strings"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func newCaseTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Tipo", Width: 16},
		{Title: "Nombre", Width: 30},
		{Title: "Ubicación", Width: 30},
		{Title: "Fecha", Width: 16},
		{Title: "Archivos", Width: 8},
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(10))
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color(accentColor))
	s.Cell = s.Cell.PaddingLeft(0).PaddingRight(0)
	s.Header = s.Header.PaddingLeft(0).PaddingRight(0)
	s.Selected = s.Selected.PaddingLeft(0).PaddingRight(0)
	s.Selected = s.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(false)
	t.SetStyles(s)
	return t
}

func (m *mainModel) resizeCaseTable(totalWidth, totalHeight int) {
	if totalWidth <= 0 {
		return
	}
	usable := max(totalWidth-8, 60)
	idW, typeW, dateW, filesW := 6, 16, 16, 8
	remaining := max(usable-(idW+typeW+dateW+filesW), 30)
	nameW := remaining / 2
	placeW := remaining - nameW
	m.nameColWidth = max(5, nameW-1)
	m.placeColWidth = max(5, placeW-1)

	m.caseTable.SetColumns([]table.Column{
		{Title: "ID", Width: idW},
		{Title: "Tipo", Width: typeW},
		{Title: "Nombre", Width: nameW},
		{Title: "Ubicación", Width: placeW},
		{Title: "Fecha", Width: dateW},
		{Title: "Archivos", Width: filesW},
	})
	if totalHeight > 0 {
		m.caseTable.SetHeight(max(totalHeight-14, 5))
	}
	m.rebuildCaseRows()
}

func (m *mainModel) rebuildCaseRows() {
	rows := make([]table.Row, 0, len(m.cases))
	for _, cs := range m.cases {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", cs.Id),
			truncate(lib.CaseIcon(cs.TypeName())+" "+cs.TypeName(), 15),
			truncate(cs.CaseName, m.nameColWidth),
			truncate(cs.Location.String(), m.placeColWidth),
			cs.TimeHour.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", len(cs.Files)),
		})
	}
	m.caseTable.SetRows(rows)
}

func typeItems(types []lib.CaseType) []list.Item {
	items := make([]list.Item, 0, len(types))
	for _, t := range types {
		items = append(items, typeEntry{
			listItem: listItem{title: lib.CaseIcon(t.Name) + " " + t.Name, desc: fmt.Sprintf("id %d", t.Id)},
			caseType: t,
		})
	}
	return items
}

// feedQuery 当前视图对应的查询
func (m *mainModel) feedQuery(page int) lib.CaseQuery {
	q := lib.CaseQuery{
		Page:   page,
		Limit:  m.env.Config.Feed.PageSize,
		Search: strings.TrimSpace(m.inpSearch.Value()),
	}
	if m.typeFilter > 0 && m.typeFilter <= len(m.types) {
		q.CaseTypeId = m.types[m.typeFilter-1].Id
	}
	switch m.currentAction {
	case actionFeatured:
		return lib.CaseQuery{Page: 1, Limit: meta.FeaturedLimit}
	case actionMine:
		if m.user != nil {
			q.OwnerId = m.user.Id
		}
	}
	return q
}

// requestFeed 命中缓存时同步展示，否则后台加载
func (m *mainModel) requestFeed(page int) tea.Cmd {
	t, hit := m.fd.Begin(m.feedQuery(page))
	m.syncFeed()
	if hit {
		return nil
	}
	return fetchFeed(m.ctx, m.fd, t)
}

func (m *mainModel) syncFeed() {
	st := m.fd.State()
	m.cases = st.Page.Cases
	m.rebuildCaseRows()
	if m.caseTable.Cursor() >= len(m.cases) {
		m.caseTable.SetCursor(0)
	}
}

func (m *mainModel) updateFeed(msg tea.KeyMsg) tea.Cmd {
	if m.fview == feedViewDetail {
		return m.updateDetail(msg)
	}
	if m.searching {
		switch msg.String() {
		case "enter":
			m.searching = false
			m.inpSearch.Blur()
			return m.requestFeed(1)
		case "esc":
			m.searching = false
			m.inpSearch.Blur()
			return nil
		}
		var cmd tea.Cmd
		m.inpSearch, cmd = m.inpSearch.Update(msg)
		return cmd
	}

	st := m.fd.State()
	featured := m.currentAction == actionFeatured
	switch msg.String() {
	case "esc", "q":
		m.backToMenu()
		return nil
	case "/":
		if featured {
			return nil
		}
		m.searching = true
		return m.inpSearch.Focus()
	case "t":
		if featured || len(m.types) == 0 {
			return nil
		}
		m.typeFilter = (m.typeFilter + 1) % (len(m.types) + 1)
		return m.requestFeed(1)
	case "n", "right":
		if featured || st.Loading || !st.Page.HasNextPage {
			return nil
		}
		return m.requestFeed(st.Query.Page + 1)
	case "p", "left":
		if featured || st.Loading || !st.Page.HasPrevPage {
			return nil
		}
		return m.requestFeed(st.Query.Page - 1)
	case "r":
		m.fd.Reset()
		return m.requestFeed(max(st.Query.Page, 1))
	case "enter":
		i := m.caseTable.Cursor()
		if st.Loading || i < 0 || i >= len(m.cases) {
			return nil
		}
		return m.openDetail(m.cases[i])
	}
	var cmd tea.Cmd
	m.caseTable, cmd = m.caseTable.Update(msg)
	return cmd
}

func (m *mainModel) feedTitle() string {
	switch m.currentAction {
	case actionFeatured:
		return "Casos destacados"
	case actionMine:
		return "Mis casos"
	}
	return "Explorar casos"
}

func (m *mainModel) renderFeedView() string {
	if m.fview == feedViewDetail {
		return m.renderDetailView()
	}
	st := m.fd.State()
	var b strings.Builder
	b.WriteString(m.titleStyle.Render(m.feedTitle()))
	b.WriteString("\n")

	if m.currentAction != actionFeatured {
		filter := "todos"
		if m.typeFilter > 0 && m.typeFilter <= len(m.types) {
			filter = m.types[m.typeFilter-1].Name
		}
		search := st.Query.Search
		if m.searching {
			b.WriteString(m.inpSearch.View() + "\n")
		} else if search != "" {
			b.WriteString(m.hintStyle.Render(fmt.Sprintf("Búsqueda: %q", search)) + "\n")
		}
		b.WriteString(m.hintStyle.Render("Tipo: "+filter) + "\n")
	}
	b.WriteString("\n")

	switch {
	case st.Loading && len(m.cases) == 0:
		b.WriteString(m.sp.View() + " Cargando casos…")
	case st.Err != nil:
		b.WriteString(renderError(st.Err))
	case len(m.cases) == 0:
		b.WriteString("No se encontraron casos")
	default:
		b.WriteString(m.caseTable.View())
		if st.Loading {
			b.WriteString("\n" + m.sp.View() + " Actualizando…")
		}
	}

	if m.currentAction != actionFeatured && st.Page.TotalPages > 0 {
		b.WriteString("\n\n" + m.hintStyle.Render(fmt.Sprintf("Página %d de %d (%d casos)", st.Page.CurrentPage, st.Page.TotalPages, st.Page.TotalCount)))
	}
	if m.notice != "" {
		b.WriteString("\n" + m.notice)
	}
	return b.String()
}
