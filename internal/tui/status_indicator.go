package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// statusState 枚举状态行可显示的状态。
type statusState int

const (
	// statusIdle 表示空闲，只显示滚动位置。
	statusIdle statusState = iota
	// statusWaiting 表示等待处理器返回，计时器持续累加。
	statusWaiting
	// statusError 表示最近一次操作失败（例如复制到剪贴板）。
	statusError
)

// statusIndicator 渲染状态行：spinner + 标题 + 计时 + 滚动位置。
type statusIndicator struct {
	state   statusState
	header  string
	since   time.Time
	clock   func() time.Time
	faint   lipgloss.Style
	errText lipgloss.Style
}

func newStatusIndicator(clock func() time.Time) *statusIndicator {
	if clock == nil {
		clock = time.Now
	}
	return &statusIndicator{
		clock:   clock,
		faint:   lipgloss.NewStyle().Faint(true),
		errText: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
	}
}

// setWaiting 在进入等待时重置计时。
func (s *statusIndicator) setWaiting(waiting bool) {
	switch {
	case waiting && s.state != statusWaiting:
		s.state = statusWaiting
		s.header = "Waiting"
		s.since = s.clock()
	case !waiting && s.state == statusWaiting:
		s.state = statusIdle
		s.header = ""
	}
}

func (s *statusIndicator) setError(text string) {
	s.state = statusError
	s.header = text
}

func (s *statusIndicator) setNotice(text string) {
	if s.state == statusWaiting {
		return
	}
	s.state = statusIdle
	s.header = text
}

func (s *statusIndicator) elapsedSeconds() uint64 {
	if s.state != statusWaiting {
		return 0
	}
	return uint64(s.clock().Sub(s.since).Seconds())
}

// render 绘制状态行；spinner 为当前帧的 spinner 字符。
func (s *statusIndicator) render(spinner, position string, width int) string {
	var line string
	switch s.state {
	case statusWaiting:
		line = fmt.Sprintf("%s %s %s", spinner, s.header, s.faint.Render(fmt.Sprintf("(%s • esc to quit)", fmtElapsedCompact(s.elapsedSeconds()))))
	case statusError:
		line = s.errText.Render("! " + s.header)
	default:
		line = s.header
	}
	if position != "" {
		if line != "" {
			line += "  "
		}
		line += s.faint.Render(position)
	}
	if lipgloss.Width(line) > width {
		return lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}

// fmtElapsedCompact 将秒数格式化为友好字符串。
func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		minutes := elapsedSecs / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dm %02ds", minutes, seconds)
	default:
		hours := elapsedSecs / 3600
		minutes := (elapsedSecs % 3600) / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
}
