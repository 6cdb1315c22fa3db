package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/casos-paranormales/casos-cli/config"
	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/actions"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
)

// loadEnv 读取配置、合并命令行参数并组装运行环境
func loadEnv(args *config.Argument) (*actions.Env, error) {
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Apply(args)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	env, err := actions.NewEnv(cfg)
	if err != nil {
		return nil, err
	}
	if err := env.ConnectBus(); err != nil {
		logs.Warnf("session bus unavailable, continuing without it: %v\n", err)
	}
	return env, nil
}

// requireUser 需要登录的命令
func requireUser(env *actions.Env) (*lib.User, error) {
	user, ok := env.Session.Current()
	if !ok {
		return nil, lib.ErrNotLoggedIn
	}
	return user, nil
}

var stdin = bufio.NewReader(os.Stdin)

// prompt 从标准输入读取一行
func prompt(label string) string {
	fmt.Fprintf(os.Stdout, "%s: ", label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

// confirm y/N 确认
func confirm(question string) bool {
	answer := strings.ToLower(prompt(question + " [s/N]"))
	return answer == "s" || answer == "si" || answer == "sí" || answer == "y" || answer == "yes"
}
