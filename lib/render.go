package lib

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
)

// RenderMarkdown 按终端宽度渲染案例描述，渲染失败时原样返回
func RenderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logs.Debugf("markdown renderer unavailable: %v\n", err)
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		logs.Debugf("markdown render failed: %v\n", err)
		return text
	}
	return strings.TrimRight(out, "\n")
}
