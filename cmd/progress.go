package cmd

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/actions"
)

// cliSubmitCallback 命令行提交进度，上传是并发的，输出需要加锁
type cliSubmitCallback struct {
	mu       sync.Mutex
	progress func(actions.SubmitProgress)
}

func newCliSubmitCallback() *cliSubmitCallback {
	c := &cliSubmitCallback{}
	c.progress = lib.Throttle(c.printProgress, 100*time.Millisecond)
	return c
}

var _ actions.SubmitCallback = (*cliSubmitCallback)(nil)

func (c *cliSubmitCallback) OnStep(step string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(os.Stdout, "→ %s\n", step)
}

func (c *cliSubmitCallback) OnProgress(p actions.SubmitProgress) {
	if p.Total <= 0 {
		return
	}
	if p.Consumed >= p.Total || c.progress == nil {
		c.printProgress(p)
		return
	}
	c.progress(p)
}

func (c *cliSubmitCallback) printProgress(p actions.SubmitProgress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	percent := float64(p.Consumed) / float64(p.Total)
	fmt.Fprintf(os.Stdout, "\r(%d/%d) %s %s %.1f%% (%s/%s)",
		p.FileIndex+1,
		p.FileTotal,
		p.FileName,
		renderProgressBar(percent),
		percent*100,
		formatBytes(p.Consumed),
		formatBytes(p.Total))
}

func (c *cliSubmitCallback) OnFileStart(index, total int, fileName string) {}

func (c *cliSubmitCallback) OnFileComplete(index, total int, fileName string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		fmt.Fprintf(os.Stdout, "\n(%d/%d) %s ✗ %v\n", index+1, total, fileName, err)
		return
	}
	fmt.Fprintf(os.Stdout, "\n(%d/%d) %s ✓\n", index+1, total, fileName)
}

func (c *cliSubmitCallback) OnConvertStatus(index, total int, status, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch status {
	case "converting":
		fmt.Fprintf(os.Stdout, "(%d/%d) convirtiendo %s a webp...\n", index+1, total, message)
	case "fallback":
		fmt.Fprintf(os.Stdout, "(%d/%d) conversión fallida, se sube el original: %s\n", index+1, total, message)
	case "done":
		fmt.Fprintf(os.Stdout, "(%d/%d) convertido: %s\n", index+1, total, message)
	}
}

// 格式化字节数
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// 渲染简单的进度条
func renderProgressBar(percent float64) string {
	width := 20
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
