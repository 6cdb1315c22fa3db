package lib

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenBrowser 用系统默认程序打开地址，返回提示信息
func OpenBrowser(target string) (string, error) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	case "linux", "freebsd":
		for _, opener := range []string{"xdg-open", "x-www-browser", "gnome-open", "kde-open"} {
			if _, err := exec.LookPath(opener); err == nil {
				cmd = exec.Command(opener, target)
				break
			}
		}
		if cmd == nil {
			return "", fmt.Errorf("no se encontró un programa para abrir %s", target)
		}
	default:
		return "", fmt.Errorf("sistema operativo no soportado: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("no se pudo abrir el navegador: %w", err)
	}
	return "Abierto en el navegador", nil
}
