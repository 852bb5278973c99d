package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"console-cli/internal/logger"

	"github.com/google/uuid"
)

var (
	// ErrBusy 表示已有一次提交在处理中；每个会话同一时刻最多一次提交。
	ErrBusy = errors.New("submission already in flight")
	// ErrStaleTicket 表示 ticket 与当前在途提交不匹配（已完成或已放弃）。
	ErrStaleTicket = errors.New("stale submission ticket")
)

// Ticket 标识一次在途提交占用的槽位。
type Ticket struct {
	Index   int
	Command string
}

// Result 是一次处理的结果，由 Resolve 写回日志。
type Result struct {
	Ticket   Ticket
	Response string
	Err      error
}

// Options 配置 Log。
type Options struct {
	ID        string
	Processor Processor
	Exchange  logger.ExchangeLogger
}

// Log 持有两条只追加序列：命令与响应。
// 任何读者观察到的两条序列长度始终相等：二者在同一把锁内成对追加，
// 异步提交时响应槽位先由占位文本填充。
type Log struct {
	mu        sync.RWMutex
	id        string
	commands  []string
	responses []string

	processor Processor
	exchange  logger.ExchangeLogger
	log       *logger.LogEntry

	inflight    bool
	inflightIdx int
}

// New 创建空会话。会话不持久化，每次进程启动都从空开始。
func New(opts Options) *Log {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	proc := opts.Processor
	if proc == nil {
		proc = Stub{}
	}
	ex := opts.Exchange
	if ex == nil {
		ex = logger.NopExchangeLogger{}
	}
	return &Log{
		id:          id,
		processor:   proc,
		exchange:    ex,
		log:         logger.Named("session").WithField("session_id", id),
		inflightIdx: -1,
	}
}

// ID 返回会话标识。
func (l *Log) ID() string {
	return l.id
}

// Submit 同步提交：调用处理器后把命令与响应作为一对追加。
// 处理失败时追加错误占位，长度不变式不受影响。仅在已有异步提交在途时返回 ErrBusy。
func (l *Log) Submit(ctx context.Context, command string) error {
	l.mu.Lock()
	if l.inflight {
		l.mu.Unlock()
		return ErrBusy
	}
	l.inflight = true
	l.inflightIdx = len(l.commands)
	l.mu.Unlock()

	response, err := l.run(ctx, command)

	l.mu.Lock()
	index := len(l.commands)
	l.commands = append(l.commands, command)
	l.responses = append(l.responses, response)
	l.inflight = false
	l.inflightIdx = -1
	l.mu.Unlock()

	l.record(index, command, response, err)
	return nil
}

// Begin 开始一次异步提交：命令立即追加，响应槽位写入 PendingPlaceholder。
func (l *Log) Begin(command string) (Ticket, error) {
	l.mu.Lock()
	if l.inflight {
		l.mu.Unlock()
		return Ticket{}, ErrBusy
	}
	index := len(l.commands)
	l.commands = append(l.commands, command)
	l.responses = append(l.responses, PendingPlaceholder)
	l.inflight = true
	l.inflightIdx = index
	l.mu.Unlock()

	l.exchange.Submitted(l.id, index, command)
	return Ticket{Index: index, Command: command}, nil
}

// Execute 为 ticket 调用处理器，不修改日志，可在任意 goroutine 中运行。
func (l *Log) Execute(ctx context.Context, t Ticket) Result {
	response, err := l.run(ctx, t.Command)
	return Result{Ticket: t, Response: response, Err: err}
}

// Resolve 用真实响应（或错误占位）替换 ticket 槽位中的占位文本。
func (l *Log) Resolve(r Result) error {
	response := r.Response
	if r.Err != nil {
		response = ErrorPlaceholder(r.Err)
	}
	l.mu.Lock()
	if !l.inflight || l.inflightIdx != r.Ticket.Index {
		l.mu.Unlock()
		return fmt.Errorf("resolve index %d: %w", r.Ticket.Index, ErrStaleTicket)
	}
	l.responses[r.Ticket.Index] = response
	l.inflight = false
	l.inflightIdx = -1
	l.mu.Unlock()

	if r.Err != nil {
		l.exchange.Failed(l.id, r.Ticket.Index, r.Err)
	} else {
		l.exchange.Responded(l.id, r.Ticket.Index, response)
	}
	return nil
}

// Abandon 放弃在途提交（例如退出时），槽位保留 CancelledPlaceholder。
// 返回是否确实有提交被放弃。
func (l *Log) Abandon() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.inflight || l.inflightIdx < 0 || l.inflightIdx >= len(l.responses) {
		return false
	}
	l.responses[l.inflightIdx] = CancelledPlaceholder
	l.log.WithField("index", l.inflightIdx).Info("abandoned in-flight submission")
	l.inflight = false
	l.inflightIdx = -1
	return true
}

// Pending 报告是否有提交在途。
func (l *Log) Pending() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.inflight
}

// Len 返回交互对数，即任一序列的长度。
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.commands)
}

// Command 返回第 i 条命令。
func (l *Log) Command(i int) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.commands) {
		return "", false
	}
	return l.commands[i], true
}

// Response 返回第 i 条响应。
func (l *Log) Response(i int) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.responses) {
		return "", false
	}
	return l.responses[i], true
}

// Commands 返回命令序列的拷贝。
func (l *Log) Commands() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.commands...)
}

// Responses 返回响应序列的拷贝。
func (l *Log) Responses() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.responses...)
}

func (l *Log) run(ctx context.Context, command string) (response string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("processor panic: %v", p)
		}
		if err != nil {
			response = ErrorPlaceholder(err)
		}
	}()
	return l.processor.Process(ctx, command)
}

func (l *Log) record(index int, command, response string, err error) {
	l.exchange.Submitted(l.id, index, command)
	if err != nil {
		l.exchange.Failed(l.id, index, err)
		return
	}
	l.exchange.Responded(l.id, index, response)
}
