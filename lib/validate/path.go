package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome 展开开头的 ~/
func ExpandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// EnsureAbsPath 相对路径按当前工作目录解析
func EnsureAbsPath(p string) string {
	p = ExpandHome(p)
	if filepath.IsAbs(p) {
		return p
	}
	wd, _ := os.Getwd()
	return filepath.Join(wd, p)
}

// AttachablePath 附件必须是存在的非空普通文件
func AttachablePath(p string) (os.FileInfo, error) {
	info, err := os.Stat(p)
	switch {
	case err != nil:
		return nil, fmt.Errorf("el archivo no existe: %s", p)
	case info.IsDir():
		return nil, fmt.Errorf("solo se pueden adjuntar archivos, no carpetas: %s", p)
	case info.Size() == 0:
		return nil, fmt.Errorf("el archivo está vacío: %s", p)
	}
	return info, nil
}
