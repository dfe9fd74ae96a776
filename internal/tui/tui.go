// Package tui provides the popout: a compact terminal mirror of the active
// project's task list, built with Bubble Tea. It reloads whenever the
// document changes on the storage medium, including writes made by other
// processes.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/baiirun/simplrtask/internal/activity"
	"github.com/baiirun/simplrtask/internal/model"
	"github.com/baiirun/simplrtask/internal/storage"
	"github.com/baiirun/simplrtask/internal/store"
)

// InputMode represents what kind of text input is active.
type InputMode int

const (
	InputNone   InputMode = iota
	InputCreate           // Entering new task content
	InputEdit             // Editing the selected task
)

// Status icons
const (
	iconPending    = "○"
	iconInProgress = "◐"
	iconDone       = "●"
)

// Model is the Bubble Tea model for the popout.
type Model struct {
	store   *store.Store
	adapter *storage.Adapter
	changes <-chan string

	project  string
	tasks    []model.Task
	colors   model.StatusColors
	position model.PopoutPosition
	cursor   int

	inputMode  InputMode
	inputText  string
	inputLabel string
	editID     string

	showHistory bool

	width   int
	height  int
	err     error
	message string // temporary status message
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// Content area padding
	contentPadding = 1

	// Widest the task list grows; wider terminals leave room to place the panel.
	maxListWidth = 72
)

func statusIcon(s model.Status) string {
	switch s {
	case model.StatusPending:
		return iconPending
	case model.StatusInProgress:
		return iconInProgress
	case model.StatusDone:
		return iconDone
	default:
		return "?"
	}
}

// New creates a popout model showing the store's active project.
func New(s *store.Store, a *storage.Adapter) Model {
	m := Model{store: s, adapter: a}
	m.load()
	m.position = a.PopoutPosition()
	return m
}

// Messages
type changeMsg struct {
	key string
}

type actionMsg struct {
	message string
	err     error
}

// load copies the active project out of the store.
func (m *Model) load() {
	m.colors = m.store.Settings().StatusColors
	p, ok := m.store.ActiveProject()
	if !ok {
		m.project = ""
		m.tasks = nil
	} else {
		m.project = p.Name
		m.tasks = p.Tasks
	}
	if m.cursor >= len(m.tasks) {
		m.cursor = max(0, len(m.tasks)-1)
	}
}

// waitForChange delivers the next storage notification as a changeMsg.
func waitForChange(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		key, ok := <-ch
		if !ok {
			return nil
		}
		return changeMsg{key: key}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Clear message on any key
		m.message = ""
		m.err = nil
		if m.inputMode != InputNone {
			return m.handleInputKey(msg)
		}
		return m.handleListKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case changeMsg:
		switch msg.key {
		case storage.AppDataKey:
			m.store.Reload()
			m.load()
		case storage.PopoutPositionKey:
			m.position = m.adapter.PopoutPosition()
		}
		return m, waitForChange(m.changes)

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.message = msg.message
		}
		m.load()
		return m, nil
	}

	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputMode = InputNone
		m.inputText = ""
		return m, nil

	case tea.KeyEnter:
		return m.submitInput()

	case tea.KeyBackspace:
		if m.inputText != "" {
			_, size := utf8.DecodeLastRuneInString(m.inputText)
			m.inputText = m.inputText[:len(m.inputText)-size]
		}

	case tea.KeySpace:
		m.appendInput(" ")

	case tea.KeyRunes:
		m.appendInput(string(msg.Runes))
	}
	return m, nil
}

func (m *Model) appendInput(s string) {
	if utf8.RuneCountInString(m.inputText)+utf8.RuneCountInString(s) > model.MaxContentLength {
		m.message = fmt.Sprintf("Tasks are limited to %d characters", model.MaxContentLength)
		return
	}
	m.inputText += s
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := m.inputText
	mode := m.inputMode
	id := m.editID
	m.inputMode = InputNone
	m.inputText = ""
	m.editID = ""

	switch mode {
	case InputCreate:
		return m, func() tea.Msg {
			newID, ok := m.store.CreateTask(text)
			if !ok {
				return actionMsg{message: "Nothing added"}
			}
			return actionMsg{message: fmt.Sprintf("Added %s", newID)}
		}

	case InputEdit:
		return m, func() tea.Msg {
			if !m.store.UpdateTask(id, text) {
				return actionMsg{message: "No changes"}
			}
			return actionMsg{message: fmt.Sprintf("Updated %s", id)}
		}
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}

	case "g", "home":
		m.cursor = 0

	case "G", "end":
		m.cursor = max(0, len(m.tasks)-1)

	case "h":
		m.showHistory = !m.showHistory

	case "r":
		m.store.Reload()
		m.load()

	// Actions
	case " ", "s":
		return m.doCycleStatus()
	case "x", "D":
		return m.doDelete()
	case "n", "a":
		if m.project == "" {
			m.err = store.ErrNoActiveProject
			return m, nil
		}
		return m.startInput(InputCreate, fmt.Sprintf("New task [%s]: ", m.project), "", "")
	case "e":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.startInput(InputEdit, "Edit: ", task.Content, task.ID)
	}

	return m, nil
}

func (m Model) startInput(mode InputMode, label, text, id string) (Model, tea.Cmd) {
	m.inputMode = mode
	m.inputLabel = label
	m.inputText = text
	m.editID = id
	return m, nil
}

func (m Model) selected() (model.Task, bool) {
	if len(m.tasks) == 0 || m.cursor >= len(m.tasks) {
		return model.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m Model) doCycleStatus() (Model, tea.Cmd) {
	task, ok := m.selected()
	if !ok {
		return m, nil
	}
	next := task.Status.Next()
	return m, func() tea.Msg {
		if !m.store.UpdateTaskStatus(task.ID, next) {
			return actionMsg{err: fmt.Errorf("task not found: %s", task.ID)}
		}
		return actionMsg{message: fmt.Sprintf("%s → %s", task.ID, next)}
	}
}

func (m Model) doDelete() (Model, tea.Cmd) {
	task, ok := m.selected()
	if !ok {
		return m, nil
	}
	return m, func() tea.Msg {
		if !m.store.DeleteTask(task.ID) {
			return actionMsg{err: fmt.Errorf("task not found: %s", task.ID)}
		}
		return actionMsg{message: fmt.Sprintf("Deleted %s", task.ID)}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.listView())

	if m.showHistory {
		b.WriteString("\n")
		b.WriteString(m.historyView())
	}

	// Input line
	if m.inputMode != InputNone {
		b.WriteString("\n")
		b.WriteString(inputStyle.Render(m.inputLabel + m.inputText + "█"))
	}

	// Status message
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	} else if m.message != "" {
		b.WriteString("\n")
		b.WriteString(messageStyle.Render(m.message))
	}

	padStyle := lipgloss.NewStyle().
		PaddingLeft(contentPadding).
		PaddingRight(contentPadding)

	return m.place(padStyle.Render(b.String()))
}

// place positions the panel inside the terminal at the saved popout position.
func (m Model) place(panel string) string {
	if m.width == 0 || m.height == 0 {
		return panel
	}
	top, left := m.position.Placement(m.width, m.height, lipgloss.Width(panel), lipgloss.Height(panel))
	return lipgloss.NewStyle().
		MarginTop(max(top, 0)).
		MarginLeft(max(left, 0)).
		Render(panel)
}

func (m Model) listView() string {
	var b strings.Builder

	if m.project == "" {
		b.WriteString(titleStyle.Render("No project selected"))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("Use 'tasks project use <id>' to pick one.  q:quit"))
		return b.String()
	}

	done := 0
	for _, t := range m.tasks {
		if t.Status == model.StatusDone {
			done++
		}
	}
	b.WriteString(titleStyle.Render(m.project))
	b.WriteString(fmt.Sprintf("  %d tasks, %d done", len(m.tasks), done))
	b.WriteString(dimStyle.Render("  [" + string(m.position) + "]"))
	b.WriteString("\n\n")

	width := min(m.width-contentPadding*2, maxListWidth)
	if width < 30 {
		width = 40
	}

	if len(m.tasks) == 0 {
		b.WriteString("No tasks yet!\n")
		b.WriteString(dimStyle.Render("Press n to add one."))
		b.WriteString("\n")
	} else {
		visible := m.height - 6
		if m.showHistory {
			visible -= 8
		}
		if visible < 3 {
			visible = len(m.tasks)
		}
		start := 0
		if m.cursor >= visible {
			start = m.cursor - visible + 1
		}
		end := min(start+visible, len(m.tasks))

		for i := start; i < end; i++ {
			task := m.tasks[i]
			if i == m.cursor {
				b.WriteString(selectedRowStyle.Width(width).Render(formatTaskLine(task, width, "")))
			} else {
				b.WriteString(formatTaskLine(task, width, m.colors[task.Status]))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k:nav  space:status  n:new e:edit x:delete  h:history  q:quit"))
	return b.String()
}

// formatTaskLine renders one task. A non-empty color styles the icon and
// status; the selected row passes "" and is highlighted as a whole.
func formatTaskLine(task model.Task, width int, color string) string {
	icon := statusIcon(task.Status)
	status := string(task.Status)
	if color != "" {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		icon = style.Render(icon)
		status = style.Render(status)
	}

	// icon(1) + space(1) + status(10) + space(2)
	contentWidth := width - 14
	if contentWidth < 20 {
		contentWidth = 20
	}
	content := task.Content
	if utf8.RuneCountInString(content) > contentWidth {
		content = string([]rune(content)[:contentWidth-3]) + "..."
	}

	return fmt.Sprintf("%s %s  %s", icon, padToWidth(status, 10), content)
}

func (m Model) historyView() string {
	var b strings.Builder
	task, ok := m.selected()
	if !ok {
		return dimStyle.Render("No task selected")
	}

	b.WriteString(detailLabelStyle.Render("History"))
	b.WriteString(dimStyle.Render("  created " + task.CreatedAt.Local().Format(activity.DisplayTimeLayout)))
	b.WriteString("\n")
	if len(task.Modifications) == 0 {
		b.WriteString(dimStyle.Render("No changes yet"))
		return b.String()
	}
	for _, mod := range task.Modifications {
		b.WriteString(dimStyle.Render(mod.Timestamp.Local().Format(activity.DisplayTimeLayout)))
		b.WriteString(fmt.Sprintf("  %s: %s → %s\n", mod.Type, mod.From, mod.To))
	}
	return strings.TrimRight(b.String(), "\n")
}

// padToWidth pads a string to the specified width with spaces.
// Accounts for ANSI escape codes when calculating visible width.
func padToWidth(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}

// Run starts the popout and blocks until the user quits. While it runs the
// adapter is polled every interval for writes from other processes.
func Run(ctx context.Context, s *store.Store, a *storage.Adapter, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes, unsubscribe := a.Subscribe()
	defer unsubscribe()

	watchErr := make(chan error, 1)
	go func() { watchErr <- a.Watch(ctx, interval) }()

	m := New(s, a)
	m.changes = changes
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}

	cancel()
	if werr := <-watchErr; werr != nil && !errors.Is(werr, context.Canceled) && !errors.Is(werr, storage.ErrNotVersioned) {
		return werr
	}
	return err
}
