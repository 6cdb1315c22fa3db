package tui

import (
	"context"
	"fmt"

	"github.com/casos-paranormales/casos-cli/lib/actions"
	tea "github.com/charmbracelet/bubbletea"
)

// 登录校验 + 保存会话
func loginCmd(ctx context.Context, env *actions.Env, username, password string) tea.Cmd {
	return func() tea.Msg {
		result := actions.ExecuteLogin(ctx, env.Platform, env.Session, username, password)
		if !result.Success {
			return loginDoneMsg{err: result.Error}
		}
		return loginDoneMsg{user: result.User}
	}
}

func runWhoami(ctx context.Context, env *actions.Env) tea.Cmd {
	return func() tea.Msg {
		result := actions.ExecuteWhoami(ctx, env.Platform, env.Session)
		if result.Error != nil {
			return actionDoneMsg{err: result.Error}
		}
		out := fmt.Sprintf("Usuario: %s\n", result.User.DisplayName())
		if result.User.Email != "" {
			out += fmt.Sprintf("Correo: %s\n", result.User.Email)
		}
		return actionDoneMsg{out: out}
	}
}

// 登出后会话事件会把界面带回登录页
func runLogout(env *actions.Env) tea.Cmd {
	return func() tea.Msg {
		if err := actions.ExecuteLogout(env.Session); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{out: "Sesión cerrada\n"}
	}
}
