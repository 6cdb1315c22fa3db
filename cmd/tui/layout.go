package tui

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	accentColor   = "#A78BFA"
	okColor       = "#22C55E"
	gradientStart = "#7C3AED"
	gradientEnd   = "#10B981"
)

func (m *mainModel) computeInnerSizeFor(totalW, totalH int) (int, int) {
	iw := totalW - 2 - m.framePadX*2
	ih := totalH - 2 - m.framePadY*2
	return max(iw, 1), max(ih, 1)
}

func (m *mainModel) innerSize() (int, int) { return m.computeInnerSizeFor(m.width, m.height) }

func clipToWidth(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// gradientLogo 逐行渐变的大号标志
func (m *mainModel) gradientLogo() string {
	lines := strings.Split(m.logo, "\n")
	n := len(lines)
	sr, sg, sb := hexToRGB(gradientStart)
	er, eg, eb := hexToRGB(gradientEnd)
	var b strings.Builder
	for i, line := range lines {
		var t float64
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		color := rgbToHex(lerpInt(sr, er, t), lerpInt(sg, eg, t), lerpInt(sb, eb, t))
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(line))
		if i < n-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// 全屏渐变外框
func (m *mainModel) renderFrame(inner string) string {
	w, h := m.width, m.height
	if w <= 0 || h <= 0 {
		return inner
	}
	iw, ih := m.innerSize()
	padX, padY := m.framePadX, m.framePadY

	lines := strings.Split(inner, "\n")
	content := make([]string, ih)
	for i := range content {
		if i < len(lines) {
			content[i] = clipToWidth(lines[i], iw)
		} else {
			content[i] = clipToWidth("", iw)
		}
	}

	sr, sg, sb := hexToRGB(gradientStart)
	er, eg, eb := hexToRGB(gradientEnd)
	edge := func(t float64) lipgloss.Style {
		c := rgbToHex(lerpInt(sr, er, t), lerpInt(sg, eg, t), lerpInt(sb, eb, t))
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}

	var b strings.Builder
	if w < 2 {
		return inner
	}
	b.WriteString(edge(0).Render("╭" + strings.Repeat("─", w-2) + "╮"))
	b.WriteString("\n")

	for y := 1; y <= h-2; y++ {
		t := float64(y) / float64(max(h-1, 1))
		middle := strings.Repeat(" ", w-2)
		if row := y - 1 - padY; row >= 0 && row < ih {
			middle = strings.Repeat(" ", padX) + content[row] + strings.Repeat(" ", padX)
		}
		s := edge(t)
		b.WriteString(s.Render("│") + middle + s.Render("│"))
		b.WriteString("\n")
	}

	if h >= 2 {
		b.WriteString(edge(1).Render("╰" + strings.Repeat("─", w-2) + "╯"))
	}
	return b.String()
}

func rgbToHex(r, g, b int) string { return "#" + toHex(r) + toHex(g) + toHex(b) }

func toHex(v int) string {
	h := strconv.FormatInt(int64(v), 16)
	if len(h) == 1 {
		h = "0" + h
	}
	return strings.ToUpper(h)
}

func hexToRGB(hex string) (int, int, int) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return 255, 255, 255
	}
	r, _ := strconv.ParseInt(s[0:2], 16, 0)
	g, _ := strconv.ParseInt(s[2:4], 16, 0)
	b, _ := strconv.ParseInt(s[4:6], 16, 0)
	return int(r), int(g), int(b)
}

func lerpInt(a, b int, t float64) int {
	x := float64(a) + (float64(b)-float64(a))*t
	return int(math.Round(math.Min(math.Max(x, 0), 255)))
}

// truncate 按字符截断
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen < 4 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
