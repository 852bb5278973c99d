package app

import (
	"context"
	"errors"
	"strings"

	"console-cli/internal/input"
	"console-cli/internal/logger"
	"console-cli/internal/prefs"
	"console-cli/internal/scrollback"
	"console-cli/internal/session"
)

// SessionState 是不持久化的运行期状态：按键边沿、会话日志与滚动位置。
type SessionState struct {
	Tracker  input.Tracker
	Log      *session.Log
	View     *scrollback.View
	Viewport scrollback.Viewport
}

// Options 配置 App。
type Options struct {
	Processor session.Processor
	Exchange  logger.ExchangeLogger
	// Gate 为 nil 时偏好只保存在内存中。
	Gate *prefs.Gate
	// Async 为 true 时提交只登记命令，处理器由宿主在帧外运行（见 Execute/Complete）。
	Async bool
}

// FrameInput 是宿主每帧交给引擎的输入。
type FrameInput struct {
	Keys          input.Snapshot
	SubmitClicked bool
	Input         string
	Height        int
}

// FrameOutput 是引擎每帧返回给宿主的结果。
type FrameOutput struct {
	Delta   input.Delta
	Rows    []scrollback.Row
	First   int
	Total   int
	Input   string
	Focus   bool
	Pending bool
	// Submitted 在异步模式下非空：宿主需要 Execute 后 Complete。
	Submitted *session.Ticket
	Rejected  bool
	Busy      bool
	Err       error
}

// App 组合 SessionState 与 Preferences，二者分开保存，只有后者经由 Gate 持久化。
type App struct {
	state SessionState
	prefs prefs.Preferences
	gate  *prefs.Gate
	async bool
	log   *logger.LogEntry
}

// New 创建引擎并从 Gate 恢复偏好；会话日志总是从空开始。
func New(opts Options) *App {
	gate := opts.Gate
	if gate == nil {
		gate = prefs.NewGate(prefs.NewMemoryStorage())
	}
	log := session.New(session.Options{Processor: opts.Processor, Exchange: opts.Exchange})
	a := &App{
		gate:  gate,
		prefs: gate.Load(),
		async: opts.Async,
		log:   logger.Named("app").WithField("session_id", log.ID()),
	}
	a.state.Log = log
	a.state.View = scrollback.NewView(log)
	a.state.Viewport.AutoScroll = a.prefs.AutoScroll
	return a
}

// Preferences 返回当前偏好。
func (a *App) Preferences() prefs.Preferences {
	return a.prefs
}

// Log 返回会话日志。
func (a *App) Log() *session.Log {
	return a.state.Log
}

// View 返回滚动视图。
func (a *App) View() *scrollback.View {
	return a.state.View
}

// Viewport 返回滚动位置，宿主用它处理翻页等按键。
func (a *App) Viewport() *scrollback.Viewport {
	return &a.state.Viewport
}

// SetAutoScroll 修改贴底偏好。
func (a *App) SetAutoScroll(on bool) {
	a.prefs.AutoScroll = on
	a.state.Viewport.AutoScroll = on
	if on {
		a.state.Viewport.Appended()
	}
}

// Frame 每帧调用一次：计算按键边沿，判定提交，返回本帧可见行。
// Enter 在本帧被释放或宿主报告点击了发送按钮时触发提交。
func (a *App) Frame(ctx context.Context, in FrameInput) FrameOutput {
	out := FrameOutput{Delta: a.state.Tracker.Update(in.Keys)}
	a.prefs.UserInput = in.Input

	if out.Delta.Released.Has(input.KeyEnter) || in.SubmitClicked {
		a.submit(ctx, &out)
	}

	a.state.Viewport.Height = in.Height
	rows, first, err := a.state.View.Visible(&a.state.Viewport)
	if err != nil {
		a.log.WithError(err).Error("visible rows")
	}
	out.Rows = rows
	out.First = first
	out.Total = a.state.View.TotalRows()
	out.Err = err
	out.Input = a.prefs.UserInput
	out.Focus = a.prefs.RefocusInput
	a.prefs.RefocusInput = false
	out.Pending = a.state.Log.Pending()
	return out
}

// 空白命令在到达会话日志之前被拒绝，输入框内容保持不变；
// 其余命令原样提交，不做 trim。
func (a *App) submit(ctx context.Context, out *FrameOutput) {
	command := a.prefs.UserInput
	if strings.TrimSpace(command) == "" {
		out.Rejected = true
		return
	}
	if a.async {
		t, err := a.state.Log.Begin(command)
		if errors.Is(err, session.ErrBusy) {
			out.Busy = true
			return
		}
		out.Submitted = &t
	} else if err := a.state.Log.Submit(ctx, command); errors.Is(err, session.ErrBusy) {
		out.Busy = true
		return
	}
	a.prefs.UserInput = ""
	a.prefs.RefocusInput = true
	a.state.Viewport.Appended()
}

// Execute 在帧外运行处理器。
func (a *App) Execute(ctx context.Context, t session.Ticket) session.Result {
	return a.state.Log.Execute(ctx, t)
}

// Complete 写回异步处理结果并在贴底模式下重新贴底。
func (a *App) Complete(r session.Result) error {
	if err := a.state.Log.Resolve(r); err != nil {
		return err
	}
	a.state.Viewport.Appended()
	return nil
}

// Shutdown 放弃在途提交并保存偏好。保存失败作为非致命错误返回，调用方只需告警。
func (a *App) Shutdown() error {
	if a.state.Log.Abandon() {
		a.log.Info("dropped in-flight response on shutdown")
	}
	if err := a.gate.Save(a.prefs); err != nil {
		a.log.WithError(err).Warn("preferences not saved")
		return err
	}
	return nil
}
