package session

import (
	"context"
	"fmt"
)

// Processor 根据命令生成响应，是会话之外的协作方。
type Processor interface {
	Process(ctx context.Context, command string) (string, error)
}

// ProcessorFunc 允许以普通函数实现 Processor。
type ProcessorFunc func(ctx context.Context, command string) (string, error)

func (f ProcessorFunc) Process(ctx context.Context, command string) (string, error) {
	return f(ctx, command)
}

// StubReply 是默认处理器对任何命令给出的回复。
const StubReply = "Did a thing!"

// Stub 不解析命令，总是返回 StubReply。
type Stub struct{}

func (Stub) Process(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return StubReply, nil
}

// 占位响应：在真实响应到达前或处理失败后占据 ResponseLog 的槽位。
const (
	PendingPlaceholder   = "…"
	CancelledPlaceholder = "[cancelled]"
)

// ErrorPlaceholder 返回处理失败时写入的可见占位文本。
func ErrorPlaceholder(err error) string {
	if err == nil {
		return "[error]"
	}
	return fmt.Sprintf("[error] %v", err)
}
