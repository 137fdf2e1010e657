package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/taskpilot/internal/assistant"
	"github.com/balkashynov/taskpilot/internal/models"
	"github.com/balkashynov/taskpilot/internal/parser"
)

const undoCommand = "/undo"

// ChatSession is the part of assistant.Session the chat screen drives
type ChatSession interface {
	Messages() []models.ChatMessage
	CanUndo() bool
	SetInput(value string)
	SubmitInput(ctx context.Context) (assistant.Result, error)
	Undo(ctx context.Context) (models.Task, error)
}

// TaskLister feeds the side panel
type TaskLister interface {
	List(ctx context.Context) ([]models.Task, error)
}

// turnDoneMsg carries the outcome of a submission or an undo together
// with the task list as it is afterwards
type turnDoneMsg struct {
	result    *assistant.Result
	err       error
	tasks     []models.Task
	refreshed bool
}

type tasksLoadedMsg struct {
	tasks []models.Task
	err   error
}

// ChatModel is the chat screen: transcript on the left, task panel on
// the right, input at the bottom
type ChatModel struct {
	ctx     context.Context
	session ChatSession
	tasks   TaskLister

	width  int
	height int

	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model
	shimmer    *Shimmer

	taskList []models.Task
	view     PanelView
	loading  bool
	notice   string // one-line feedback under the input
	quitting bool
}

func NewChatModel(ctx context.Context, session ChatSession, tasks TaskLister) ChatModel {
	input := textinput.New()
	input.Placeholder = `Try "add a task to review the Q3 budget by Friday, high priority"`
	input.Prompt = "› "
	input.CharLimit = 500
	input.Focus()

	return ChatModel{
		ctx:        ctx,
		session:    session,
		tasks:      tasks,
		input:      input,
		transcript: viewport.New(0, 0),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))),
		),
		shimmer: NewShimmer(DefaultShimmerConfig()),
		view:    ViewBoard,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadTasks)
}

func (m ChatModel) loadTasks() tea.Msg {
	tasks, err := m.tasks.List(m.ctx)
	return tasksLoadedMsg{tasks: tasks, err: err}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tasksLoadedMsg:
		if msg.err != nil {
			m.notice = "Could not load tasks: " + msg.err.Error()
			return m, nil
		}
		m.taskList = msg.tasks
		return m, nil

	case turnDoneMsg:
		m.loading = false
		m.notice = ""
		if msg.err != nil {
			m.notice = describeError(msg.err)
		}
		if msg.refreshed {
			m.taskList = msg.tasks
		}
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and mouse events
	var inputCmd, viewportCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.transcript, viewportCmd = m.transcript.Update(msg)
	return m, tea.Batch(inputCmd, viewportCmd)
}

func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.view = m.view.Toggle()
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}

	// The input is frozen while a message is being processed
	if m.loading {
		return m, nil
	}

	if msg.String() == "enter" {
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetInput(m.input.Value())
	return m, cmd
}

// submit starts a chat turn or an undo for the current input
func (m ChatModel) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}

	var work tea.Cmd
	if strings.EqualFold(value, undoCommand) {
		m.session.SetInput("")
		work = m.undo
	} else {
		work = m.send
	}

	m.input.Reset()
	m.loading = true
	m.notice = ""
	m.shimmer.Start()
	m.refreshTranscript()
	return m, tea.Batch(m.spinner.Tick, work)
}

func (m ChatModel) send() tea.Msg {
	result, err := m.session.SubmitInput(m.ctx)
	done := turnDoneMsg{err: err}
	if err == nil {
		done.result = &result
	}
	m.refresh(&done)
	return done
}

func (m ChatModel) undo() tea.Msg {
	_, err := m.session.Undo(m.ctx)
	done := turnDoneMsg{err: err}
	m.refresh(&done)
	return done
}

// refresh attaches the current task list; on failure the panel keeps
// showing the previous list
func (m ChatModel) refresh(done *turnDoneMsg) {
	tasks, err := m.tasks.List(m.ctx)
	if err != nil {
		return
	}
	done.tasks = tasks
	done.refreshed = true
}

func describeError(err error) string {
	switch {
	case errors.Is(err, assistant.ErrNothingToUndo):
		return "Nothing to undo."
	case errors.Is(err, assistant.ErrBusy):
		return "Still working on the previous message."
	case errors.Is(err, assistant.ErrEmptyMessage):
		return "Type a message first."
	default:
		return "Error: " + err.Error()
	}
}

// layout returns the transcript and panel widths
func (m ChatModel) layout() (int, int) {
	panel := m.width * 40 / 100
	if m.width < 80 {
		panel = 0
	}
	return m.width - panel, panel
}

func (m *ChatModel) resize() {
	chatWidth, _ := m.layout()
	m.input.Width = max(chatWidth-6, 10)
	m.transcript.Width = max(chatWidth-4, 10)
	// title, input box, notice and help
	m.transcript.Height = max(m.height-9, 3)
	m.refreshTranscript()
}

func (m *ChatModel) refreshTranscript() {
	m.transcript.SetContent(renderTranscript(m.session.Messages(), m.transcript.Width))
	m.transcript.GotoBottom()
}

func (m ChatModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	chatWidth, panelWidth := m.layout()

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentMain)).
		Render("taskpilot")

	status := ""
	if m.loading {
		status = m.spinner.View() + " " + m.shimmer.Render("Thinking...")
	}

	chat := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(chatWidth - 2).
		Render(m.transcript.View())

	inputBorder := ColorAccentMain
	if m.loading {
		inputBorder = ColorDisabledText
	}
	input := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(inputBorder)).
		Width(chatWidth - 2).
		Render(m.input.View())

	left := lipgloss.JoinVertical(lipgloss.Left,
		title+"  "+status,
		chat,
		input,
		m.renderNotice(),
	)

	content := left
	if panelWidth > 0 {
		panel := renderPanel(m.view, m.taskList, panelWidth, m.height-2)
		content = lipgloss.JoinHorizontal(lipgloss.Top, left, panel)
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderHelpBar())
}

func (m ChatModel) renderNotice() string {
	if m.notice == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)).
		Render(m.notice)
}

func (m ChatModel) renderHelpBar() string {
	help := "enter send · tab board/list · pgup/pgdown scroll · esc quit"
	if m.session.CanUndo() {
		help = "/undo restore deleted task · " + help
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Width(m.width).
		Align(lipgloss.Center).
		Render(help)
}

// renderTranscript renders the chat history wrapped to width
func renderTranscript(messages []models.ChatMessage, width int) string {
	if len(messages) == 0 {
		return emptyStyle.Render("Ask me to create, update or delete tasks.")
	}

	userLabel := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText)).Render("You")
	botLabel := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright)).Render("Copilot")
	body := lipgloss.NewStyle().Width(max(width, 10))

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		label := userLabel
		if msg.Role == models.RoleAssistant {
			label = botLabel
		}
		fmt.Fprintf(&b, "%s %s\n", label, lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorDisabledText)).
			Render(msg.Timestamp.Format("15:04")))
		b.WriteString(body.Render(msg.Content))
		b.WriteString("\n")

		for _, task := range msg.Tasks {
			b.WriteString(renderCreatedTask(task, width))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderCreatedTask(task models.Task, width int) string {
	priority := lipgloss.NewStyle().
		Foreground(lipgloss.Color(priorityColor(task.Priority))).
		Render(task.Priority.Label())
	details := fmt.Sprintf("%s · %s · %s", task.Status.Label(), priority, parser.FormatDueDate(task.DueDate))

	card := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		PaddingLeft(1).
		Width(max(width-2, 10))
	return card.Render(truncate(task.Title, width-4) + "\n" + details)
}
