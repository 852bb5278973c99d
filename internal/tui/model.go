package tui

import (
	"context"
	"strings"
	"time"

	"console-cli/internal/app"
	"console-cli/internal/input"
	"console-cli/internal/logger"
	"console-cli/internal/scrollback"
	"console-cli/internal/session"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Options struct {
	App            *app.App
	FrameInterval  time.Duration
	ProcessTimeout time.Duration
	// Clipboard 为空时使用系统剪贴板。
	Clipboard func(string) error
	Clock     func() time.Time
}

// frameMsg 驱动每帧更新。
type frameMsg time.Time

// responseMsg 携带帧外处理器的结果。
type responseMsg struct {
	Result session.Result
}

type Model struct {
	app      *app.App
	sampler  input.Sampler
	input    textinput.Model
	spin     spinner.Model
	history  promptHistory
	status   *statusIndicator
	copyText func(string) error
	log      *logger.LogEntry

	frame   time.Duration
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc

	inflight *session.Ticket
	clicked  bool
	rows     []scrollback.Row
	first    int
	total    int
	width    int
	height   int
	saveErr  error
	shutdown bool
}

const defaultFrameInterval = 33 * time.Millisecond

func New(opts Options) *Model {
	a := opts.App
	if a == nil {
		a = app.New(app.Options{Async: true})
	}
	ti := textinput.New()
	ti.Prompt = commandPrefix
	ti.Placeholder = "type a command"
	ti.CharLimit = 0
	ti.SetValue(a.Preferences().UserInput)
	ti.CursorEnd()
	ti.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	frame := opts.FrameInterval
	if frame <= 0 {
		frame = defaultFrameInterval
	}
	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		app:      a,
		input:    ti,
		spin:     spin,
		status:   newStatusIndicator(opts.Clock),
		copyText: copyText,
		log:      logger.Named("tui"),
		frame:    frame,
		timeout:  opts.ProcessTimeout,
		ctx:      ctx,
		cancel:   cancel,
		width:    80,
		height:   24,
	}
	m.resize(m.width, m.height)
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.nextFrame(), m.spin.Tick, textinput.Blink)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case frameMsg:
		cmds = append(cmds, m.runFrame()...)
		cmds = append(cmds, m.nextFrame())
	case responseMsg:
		if err := m.app.Complete(msg.Result); err != nil {
			m.log.WithError(err).Warn("dropped late response")
		}
		m.inflight = nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		m.sampler.Observe(input.Key(msg.String()))
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.history.Browsing() {
			m.history.ResetBrowsing()
		}
		cmds = append(cmds, cmd)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// runFrame 把本帧按键快照交给引擎，并把结果同步回输入框与滚动区。
func (m *Model) runFrame() []tea.Cmd {
	out := m.app.Frame(m.ctx, app.FrameInput{
		Keys:          m.sampler.Take(),
		SubmitClicked: m.clicked,
		Input:         m.input.Value(),
		Height:        m.scrollHeight(),
	})
	m.clicked = false

	var cmds []tea.Cmd
	if out.Input != m.input.Value() {
		m.input.SetValue(out.Input)
		m.input.CursorEnd()
	}
	if out.Focus {
		cmds = append(cmds, m.input.Focus())
	}
	if out.Submitted != nil {
		t := *out.Submitted
		m.inflight = &t
		m.history.Add(t.Command)
		cmds = append(cmds, m.process(t))
	}
	if out.Busy {
		m.status.setNotice("previous command still running")
	}
	m.rows = out.Rows
	m.first = out.First
	m.total = out.Total
	m.status.setWaiting(out.Pending)
	return cmds
}

func (m *Model) nextFrame() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// process 在帧外运行处理器；退出时 ctx 被取消。
func (m *Model) process(t session.Ticket) tea.Cmd {
	parent, timeout, a := m.ctx, m.timeout, m.app
	return func() tea.Msg {
		ctx := parent
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, timeout)
			defer cancel()
		}
		return responseMsg{Result: a.Execute(ctx, t)}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	vp := m.app.Viewport()
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Shutdown()
		return tea.Quit, true
	case "enter":
		return nil, true
	case "pgup":
		vp.ScrollUp(max(1, m.scrollHeight()-1), m.total)
	case "pgdown":
		vp.ScrollDown(max(1, m.scrollHeight()-1), m.total)
	case "up":
		vp.ScrollUp(1, m.total)
	case "down":
		vp.ScrollDown(1, m.total)
	case "ctrl+home":
		vp.GotoTop(m.total)
	case "ctrl+end":
		vp.GotoBottom(m.total)
	case "ctrl+s":
		on := !m.app.Preferences().AutoScroll
		m.app.SetAutoScroll(on)
		if on {
			m.status.setNotice("follow on")
		} else {
			m.status.setNotice("follow off")
		}
	case "ctrl+p":
		if text, ok := m.history.Prev(m.input.Value()); ok {
			m.setInput(text)
		}
	case "ctrl+n":
		if text, ok := m.history.Next(); ok {
			m.setInput(text)
		}
	case "ctrl+r":
		if text, ok := recallCommand(m.input.Value(), m.app.Log().Commands()); ok {
			m.setInput(text)
		} else {
			m.status.setNotice("no matching command")
		}
	case "ctrl+y":
		m.copyLastResponse()
	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	vp := m.app.Viewport()
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		vp.ScrollUp(3, m.total)
	case tea.MouseButtonWheelDown:
		vp.ScrollDown(3, m.total)
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionRelease && m.onSendButton(msg.X, msg.Y) {
			m.clicked = true
		}
	}
}

func (m *Model) onSendButton(x, y int) bool {
	start := m.width - lipgloss.Width(sendLabel)
	return y == m.height-1 && x >= start && x < m.width
}

func (m *Model) setInput(text string) {
	m.input.SetValue(text)
	m.input.CursorEnd()
}

func (m *Model) copyLastResponse() {
	responses := m.app.Log().Responses()
	if len(responses) == 0 {
		m.status.setNotice("nothing to copy")
		return
	}
	if err := m.copyText(responses[len(responses)-1]); err != nil {
		m.log.WithError(err).Warn("clipboard write failed")
		m.status.setError("copy failed")
		return
	}
	m.status.setNotice("copied last response")
}

func (m *Model) resize(width, height int) {
	m.width = max(width, lipgloss.Width(sendLabel)+4)
	m.height = max(height, 3)
	m.input.Width = m.width - lipgloss.Width(sendLabel) - lipgloss.Width(commandPrefix) - 2
}

// scrollHeight 是滚动区高度：总高度减去状态行与输入行。
func (m *Model) scrollHeight() int {
	return max(1, m.height-2)
}

// Shutdown 取消在途处理并保存偏好，可重复调用。
func (m *Model) Shutdown() {
	if m.shutdown {
		return
	}
	m.shutdown = true
	m.cancel()
	m.saveErr = m.app.Shutdown()
}

// SaveErr 返回退出时保存偏好的错误（非致命）。
func (m *Model) SaveErr() error {
	return m.saveErr
}

func (m *Model) View() string {
	lines := renderRows(m.rows, m.width, m.scrollHeight(), session.PendingPlaceholder)
	position := positionLabel(m.first, len(m.rows), m.total, m.app.Preferences().AutoScroll)
	lines = append(lines, m.status.render(m.spin.View(), position, m.width))

	inputWidth := m.width - lipgloss.Width(sendLabel)
	inputLine := lipgloss.NewStyle().Width(inputWidth).MaxWidth(inputWidth).Render(m.input.View())
	lines = append(lines, inputLine+buttonStyle.Render(sendLabel))
	return strings.Join(lines, "\n")
}
