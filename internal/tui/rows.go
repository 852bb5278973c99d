package tui

import (
	"fmt"
	"strings"

	"console-cli/internal/scrollback"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	responseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8A8A8"))
	commandStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	pendingStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
	buttonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
)

const (
	commandPrefix  = "> "
	responsePrefix = "  "
	sendLabel      = "[SEND]"
)

// rowText 返回一行的纯文本：加前缀、折叠换行并按显示宽度截断。
func rowText(row scrollback.Row, width int) string {
	prefix := responsePrefix
	if row.Kind == scrollback.RowCommand {
		prefix = commandPrefix
	}
	text := strings.NewReplacer("\r\n", " ⏎ ", "\n", " ⏎ ", "\t", "    ").Replace(row.Text)
	line := prefix + text
	if runewidth.StringWidth(line) > width {
		return runewidth.Truncate(line, width, "…")
	}
	return line
}

// renderRows 绘制可见行并补齐到 height 行，空白行在上方，使内容贴近输入框。
func renderRows(rows []scrollback.Row, width, height int, pending string) []string {
	lines := make([]string, 0, height)
	for i := len(rows); i < height; i++ {
		lines = append(lines, "")
	}
	for _, row := range rows {
		text := rowText(row, width)
		switch {
		case row.Kind == scrollback.RowCommand:
			lines = append(lines, commandStyle.Render(text))
		case row.Text == pending:
			lines = append(lines, pendingStyle.Render(text))
		default:
			lines = append(lines, responseStyle.Render(text))
		}
	}
	return lines
}

// positionLabel 描述当前窗口在历史中的位置，例如 "rows 3-12 of 40"。
func positionLabel(first, count, total int, autoScroll bool) string {
	if total == 0 {
		return ""
	}
	label := fmt.Sprintf("rows %d-%d of %d", first+1, first+count, total)
	if autoScroll {
		label += " · follow"
	}
	return label
}
