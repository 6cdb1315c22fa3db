package lib

import (
	"io"
	"time"
)

// ProgressCallback 进度回调函数类型
type ProgressCallback func(consumed, total int64)

// progressReader 包装 io.Reader 以提供进度回调
type progressReader struct {
	reader      io.Reader
	total       int64
	progress    ProgressCallback
	readBytes   int64
	lastTime    time.Time
	minInterval time.Duration
}

// NewProgressReader 读取过程中按最小间隔回调进度，读完时保证回调一次 100%
func NewProgressReader(r io.Reader, total int64, progress ProgressCallback) io.Reader {
	if progress == nil {
		return r
	}
	return &progressReader{
		reader:      r,
		total:       total,
		progress:    progress,
		lastTime:    time.Now(),
		minInterval: 50 * time.Millisecond,
	}
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 {
		pr.readBytes += int64(n)
		now := time.Now()
		if now.Sub(pr.lastTime) >= pr.minInterval {
			pr.progress(pr.readBytes, pr.total)
			pr.lastTime = now
		}
	}
	if err == io.EOF {
		pr.progress(pr.readBytes, pr.total)
	}
	return n, err
}
