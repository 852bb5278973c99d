package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Result 返回 TUI 运行后的必要信息。
type Result struct {
	SessionID string
	Exchanges int
	SaveErr   error
}

// Run 封装 Bubble Tea 入口，返回最终的 UI 结果。
func Run(opts Options) (Result, error) {
	model := New(opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m, err := program.Run()
	// 程序异常退出时同样保存偏好。
	model.Shutdown()
	if err != nil {
		return Result{SaveErr: model.SaveErr()}, err
	}
	tuiModel, ok := m.(*Model)
	if !ok {
		return Result{}, errors.New("unexpected tui model")
	}
	return Result{
		SessionID: tuiModel.app.Log().ID(),
		Exchanges: tuiModel.app.Log().Len(),
		SaveErr:   tuiModel.SaveErr(),
	}, nil
}
