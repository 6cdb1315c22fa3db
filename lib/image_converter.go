package lib

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nickalie/go-webpbin"
)

// DefaultWebPQuality 上传前转换图片的质量
const DefaultWebPQuality = 80

// webpVendorPath cwebp 二进制放在可执行文件旁的 .bin/webp
func webpVendorPath() string {
	exePath, err := os.Executable()
	if err != nil {
		return filepath.Join(".bin", "webp")
	}
	return filepath.Join(filepath.Dir(exePath), ".bin", "webp")
}

// WebPConvertible 只转换 jpeg/png，gif 可能是动图
func WebPConvertible(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// convertMu 转换期间会替换进程的 stdout/stderr，同一时间只允许一个转换
var convertMu sync.Mutex

// ConvertToWebP 把图片转换为临时 webp 文件，返回新路径和清理函数
func ConvertToWebP(sourcePath string, quality uint) (string, func(), error) {
	if !WebPConvertible(sourcePath) {
		return sourcePath, func() {}, nil
	}
	convertMu.Lock()
	defer convertMu.Unlock()

	tmp, err := os.CreateTemp("", "casos-*.webp")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	cleanup := func() { os.Remove(tmpPath) }

	// cwebp 首次运行会下载二进制并打印日志，避免干扰 TUI
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0o666)
	if err == nil {
		stdout, stderr := os.Stdout, os.Stderr
		os.Stdout, os.Stderr = devNull, devNull
		defer func() {
			os.Stdout, os.Stderr = stdout, stderr
			devNull.Close()
		}()
	}

	err = webpbin.NewCWebP(webpbin.SetVendorPath(webpVendorPath())).
		Quality(quality).
		InputFile(sourcePath).
		OutputFile(tmpPath).
		Run()
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("convert %s to webp: %w", filepath.Base(sourcePath), err)
	}
	return tmpPath, cleanup, nil
}
