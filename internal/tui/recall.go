package tui

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// recallCommand 在已提交的命令中模糊匹配 query，返回得分最高者；
// 得分相同取最近的一条。query 为空时返回最近一条命令。
func recallCommand(query string, commands []string) (string, bool) {
	if len(commands) == 0 {
		return "", false
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return commands[len(commands)-1], true
	}
	matches := fuzzy.Find(query, commands)
	if len(matches) == 0 {
		return "", false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Score > best.Score || (m.Score == best.Score && m.Index > best.Index) {
			best = m
		}
	}
	return commands[best.Index], true
}
