package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/actions"
	"github.com/casos-paranormales/casos-cli/lib/wizard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
)

// tuiSubmitCallback 把提交进度转成界面消息；每次提交绑定新的通道
type tuiSubmitCallback struct {
	mu       sync.Mutex
	ch       chan<- tea.Msg
	progress func(actions.SubmitProgress)
}

func newTuiSubmitCallback() *tuiSubmitCallback {
	c := &tuiSubmitCallback{}
	c.progress = lib.Throttle(func(p actions.SubmitProgress) {
		c.send(submitProgMsg{progress: p}, false)
	}, 50*time.Millisecond)
	return c
}

func (c *tuiSubmitCallback) bind(ch chan<- tea.Msg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ch = ch
}

func (c *tuiSubmitCallback) send(msg tea.Msg, mustDeliver bool) {
	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()
	if ch == nil {
		return
	}
	if mustDeliver {
		ch <- msg
		return
	}
	select {
	case ch <- msg:
	default:
	}
}

func (c *tuiSubmitCallback) OnStep(step string) {
	c.send(submitStepMsg{step: step}, true)
}

func (c *tuiSubmitCallback) OnProgress(p actions.SubmitProgress) {
	if p.Consumed >= p.Total {
		c.send(submitProgMsg{progress: p}, true)
		return
	}
	c.progress(p)
}

func (c *tuiSubmitCallback) OnFileStart(index, total int, fileName string) {
	c.send(submitProgMsg{progress: actions.SubmitProgress{FileIndex: index, FileTotal: total, FileName: fileName}}, true)
}

func (c *tuiSubmitCallback) OnFileComplete(index, total int, fileName string, err error) {
	if err != nil {
		logs.Warnf("upload %s (%d/%d) failed: %v\n", fileName, index+1, total, err)
	}
}

func (c *tuiSubmitCallback) OnConvertStatus(index, total int, status, message string) {
	logs.Debugf("convert %d/%d %s: %s\n", index+1, total, status, message)
}

// attachFile 图片在后台审核，期间附件处于"分析中"
func attachFile(ctx context.Context, wiz *wizard.Wizard, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := wiz.Attach(ctx, path)
		return attachDoneMsg{file: f, err: err}
	}
}

// submitWizard 后台提交，进度通过通道回传
func submitWizard(ctx context.Context, wiz *wizard.Wizard, cb *tuiSubmitCallback) tea.Cmd {
	return func() tea.Msg {
		ch := make(chan tea.Msg, 64)
		ctx, cancel := context.WithCancel(ctx)
		cb.bind(ch)

		go func() {
			defer close(ch)
			defer cancel()
			state, err := wiz.Submit(ctx)
			cb.bind(nil)
			if err != nil {
				logs.Warnf("submit failed: %v\n", err)
			} else {
				logs.Infof("case %d submitted\n", state.CaseId)
			}
			ch <- submitDoneMsg{state: state, err: err}
		}()

		return submitStartMsg{ch: ch, cancel: cancel}
	}
}

func waitForSubmitEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		if ch == nil {
			return nil
		}
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func submittedMessage(state wizard.SubmissionState) string {
	return fmt.Sprintf("Caso #%d publicado. Gracias por tu reporte.", state.CaseId)
}
