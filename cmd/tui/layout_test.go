package tui

import (
	"testing"

	"github.com/casos-paranormales/casos-cli/lib/actions"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hola", truncate("hola", 10))
	assert.Equal(t, "Aparició…", truncate("Aparición en Toledo", 9))
	// 宽度过小时不截断
	assert.Equal(t, "fantasma", truncate("fantasma", 3))
}

func TestDash(t *testing.T) {
	assert.Equal(t, "-", dash(""))
	assert.Equal(t, "-", dash("   "))
	assert.Equal(t, "ana", dash("ana"))
}

func TestHexRoundTrip(t *testing.T) {
	r, g, b := hexToRGB("#7D56F4")
	assert.Equal(t, []int{125, 86, 244}, []int{r, g, b})
	assert.Equal(t, "#7D56F4", rgbToHex(r, g, b))

	r, g, b = hexToRGB("nope")
	assert.Equal(t, []int{255, 255, 255}, []int{r, g, b})
	assert.Equal(t, 255, lerpInt(200, 400, 1))
	assert.Equal(t, 50, lerpInt(0, 100, 0.5))
}

func TestSubmitCallbackDelivery(t *testing.T) {
	cb := newTuiSubmitCallback()
	// 未绑定时直接丢弃
	cb.OnStep("crear caso")

	ch := make(chan tea.Msg, 4)
	cb.bind(ch)
	cb.OnStep("subir archivos")
	cb.OnProgress(actions.SubmitProgress{FileName: "a.jpg", Consumed: 10, Total: 10})

	require.Len(t, ch, 2)
	assert.Equal(t, submitStepMsg{step: "subir archivos"}, <-ch)
	prog, ok := (<-ch).(submitProgMsg)
	require.True(t, ok)
	assert.Equal(t, int64(10), prog.progress.Consumed)

	cb.bind(nil)
	cb.OnStep("ignorado")
	assert.Len(t, ch, 0)
}

func TestSubmitCallbackDropsWhenFull(t *testing.T) {
	cb := newTuiSubmitCallback()
	ch := make(chan tea.Msg)
	cb.bind(ch)
	// 中间进度在通道阻塞时被丢弃，不会卡住上传
	cb.OnProgress(actions.SubmitProgress{Consumed: 1, Total: 10})
	assert.Len(t, ch, 0)
}

func TestWaitForSubmitEventClosed(t *testing.T) {
	ch := make(chan tea.Msg)
	close(ch)
	assert.Nil(t, waitForSubmitEvent(ch)())
	assert.Nil(t, waitForSubmitEvent(nil)())
}
