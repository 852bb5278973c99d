package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// ExchangeLogger 记录会话中每次提交、响应与失败。
type ExchangeLogger interface {
	Submitted(sessionID string, index int, command string)
	Responded(sessionID string, index int, response string)
	Failed(sessionID string, index int, err error)
}

// StdExchangeLogger 使用 logrus 输出日志。
type StdExchangeLogger struct {
	entry *logrus.Entry
}

// NewExchangeLogger 构造交互日志；entry 为 nil 时使用全局 logger 的 "exchange" 组件。
func NewExchangeLogger(entry *LogEntry) *StdExchangeLogger {
	if entry == nil {
		entry = Named("exchange")
	}
	return &StdExchangeLogger{entry: entry}
}

func (l *StdExchangeLogger) Submitted(sessionID string, index int, command string) {
	l.with(sessionID, index).WithField("command", preview(command)).Info("-> command")
}

func (l *StdExchangeLogger) Responded(sessionID string, index int, response string) {
	l.with(sessionID, index).WithField("response", preview(response)).Info("<- response")
}

func (l *StdExchangeLogger) Failed(sessionID string, index int, err error) {
	l.with(sessionID, index).WithError(err).Warn("process failed; placeholder recorded")
}

func (l *StdExchangeLogger) with(sessionID string, index int) *logrus.Entry {
	return l.entry.WithFields(logrus.Fields{"session_id": sessionID, "index": index})
}

// NopExchangeLogger 丢弃所有记录。
type NopExchangeLogger struct{}

func (NopExchangeLogger) Submitted(string, int, string) {}
func (NopExchangeLogger) Responded(string, int, string) {}
func (NopExchangeLogger) Failed(string, int, error)     {}

const previewLimit = 120

func preview(text string) string {
	text = strings.ReplaceAll(text, "\n", `\n`)
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "…"
}
