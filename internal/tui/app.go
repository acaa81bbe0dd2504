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

	"github.com/satriahrh/dijiang/domain/entities"
	"github.com/satriahrh/dijiang/usecase"
)

// Controller is the session surface driven by the terminal
type Controller interface {
	Subscribe() (<-chan usecase.State, func())
	SetInput(text string) error
	Submit(ctx context.Context) (entities.Message, error)
	StartRecording(ctx context.Context) error
	StopRecording() error
	Speak(messageID string) error
}

type stateMsg usecase.State

type alertMsg string

type sessionClosedMsg struct{}

type actionErrMsg struct {
	err error
}

type Model struct {
	ctx         context.Context
	controller  Controller
	updates     <-chan usecase.State
	unsubscribe func()
	alerts      <-chan string

	state    usecase.State
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	lastSent string
	selected string // id of the selected assistant turn
	rendered int    // timeline length at the last refresh
	status   string
	width    int
	height   int
	quitting bool
}

func NewModel(ctx context.Context, controller Controller, alerts <-chan string) Model {
	updates, unsubscribe := controller.Subscribe()

	ti := textinput.New()
	ti.Placeholder = "Ask Dijiang..."
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = transmittingStyle

	m := Model{
		ctx:         ctx,
		controller:  controller,
		updates:     updates,
		unsubscribe: unsubscribe,
		alerts:      alerts,
		input:       ti,
		spinner:     sp,
		viewport:    viewport.New(100, 20),
		width:       100,
		height:      30,
	}
	// Subscribe delivers the current state immediately
	if state, ok := <-updates; ok {
		m.state = state
	}
	m.resize()
	m.refreshTimeline()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.updates),
		waitForAlert(m.alerts),
		textinput.Blink,
		m.spinner.Tick,
	)
}

func waitForState(updates <-chan usecase.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return sessionClosedMsg{}
		}
		return stateMsg(state)
	}
}

func waitForAlert(alerts <-chan string) tea.Cmd {
	if alerts == nil {
		return nil
	}
	return func() tea.Msg {
		return alertMsg(<-alerts)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshTimeline()
		return m, nil

	case stateMsg:
		m.applyState(usecase.State(msg))
		return m, waitForState(m.updates)

	case alertMsg:
		m.status = string(msg)
		return m, waitForAlert(m.alerts)

	case actionErrMsg:
		m.status = msg.err.Error()
		return m, nil

	case sessionClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// alerts stay until the next key
	m.status = ""

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		m.unsubscribe()
		return m, tea.Quit

	case "enter":
		if m.state.Busy() || strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		m.input.SetValue("")
		m.lastSent = ""
		m.state.RequestInFlight = true
		m.refreshTimeline()
		return m, m.submit()

	case "ctrl+r":
		if m.state.Recording {
			if err := m.controller.StopRecording(); err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.state.Recording = false
			m.state.Transcribing = true
			m.input.Blur()
			return m, nil
		}
		if m.state.Busy() {
			return m, nil
		}
		return m, m.startRecording()

	case "up":
		m.moveSelection(-1)
		return m, nil

	case "down":
		m.moveSelection(1)
		return m, nil

	case "ctrl+p":
		id := m.selected
		if id == "" {
			id = m.lastAssistantID()
		}
		if id == "" {
			return m, nil
		}
		if err := m.controller.Speak(id); err != nil {
			m.status = err.Error()
		}
		return m, nil
	}

	if m.state.Busy() {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != m.lastSent {
		if err := m.controller.SetInput(value); err == nil {
			m.lastSent = value
		}
	}
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		if _, err := controller.Submit(ctx); err != nil && !errors.Is(err, usecase.ErrEmptyInput) {
			return actionErrMsg{err: err}
		}
		return nil
	}
}

func (m Model) startRecording() tea.Cmd {
	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		if err := controller.StartRecording(ctx); err != nil {
			return actionErrMsg{err: fmt.Errorf("microphone unavailable: %w", err)}
		}
		return nil
	}
}

// applyState adopts a controller snapshot. The input buffer is only taken
// over when a transcription finishes; otherwise local edits win.
func (m *Model) applyState(state usecase.State) {
	transcribed := m.state.Transcribing && !state.Transcribing
	m.state = state

	if transcribed && state.Input != m.input.Value() {
		m.input.SetValue(state.Input)
		m.input.CursorEnd()
		m.lastSent = state.Input
	}

	if state.Busy() {
		m.input.Blur()
	} else {
		m.input.Focus()
	}

	if m.selected != "" {
		if _, ok := m.findMessage(m.selected); !ok {
			m.selected = ""
		}
	}
	m.refreshTimeline()
}

func (m *Model) moveSelection(delta int) {
	ids := m.assistantIDs()
	if len(ids) == 0 {
		return
	}

	current := len(ids)
	for i, id := range ids {
		if id == m.selected {
			current = i
			break
		}
	}

	next := current + delta
	if next < 0 {
		next = 0
	}
	if next >= len(ids) {
		next = len(ids) - 1
	}
	m.selected = ids[next]
	m.refreshTimeline()
}

func (m Model) assistantIDs() []string {
	var ids []string
	for _, msg := range m.state.Timeline {
		if msg.Role == entities.RoleAssistant {
			ids = append(ids, msg.ID)
		}
	}
	return ids
}

func (m Model) lastAssistantID() string {
	ids := m.assistantIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[len(ids)-1]
}

func (m Model) findMessage(id string) (entities.Message, bool) {
	for _, msg := range m.state.Timeline {
		if msg.ID == id {
			return msg, true
		}
	}
	return entities.Message{}, false
}

func (m *Model) resize() {
	m.viewport.Width = m.width
	// title, status line, input, help
	height := m.height - 5
	if height < 3 {
		height = 3
	}
	m.viewport.Height = height
	m.input.Width = m.width - 6
}

// refreshTimeline follows new turns, and otherwise keeps the selected turn
// in view.
func (m *Model) refreshTimeline() {
	content, top, bottom := m.renderTimeline()
	m.viewport.SetContent(content)

	grew := len(m.state.Timeline) != m.rendered
	m.rendered = len(m.state.Timeline)
	if grew || m.selected == "" || top < 0 {
		m.viewport.GotoBottom()
		return
	}

	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height + 1)
	}
}

// renderTimeline draws every turn after the system prompt and reports the
// first and last line of the selected turn, or -1 when nothing is selected.
func (m Model) renderTimeline() (content string, top, bottom int) {
	top, bottom = -1, -1
	if len(m.state.Timeline) <= 1 {
		return dimStyle.Render("  Speak or type to begin."), top, bottom
	}

	bodyWidth := m.width - 4
	if bodyWidth < 20 {
		bodyWidth = 20
	}

	var b strings.Builder
	for _, msg := range m.state.Timeline[1:] {
		header := assistantRoleStyle.Render("Dijiang")
		if msg.Role == entities.RoleUser {
			header = userRoleStyle.Render("You")
		}
		if msg.CreatedAt != nil {
			header += dimStyle.Render(" " + msg.CreatedAt.Format("15:04:05"))
		}
		if msg.Transient && m.state.RequestInFlight && m.isLastUserTurn(msg.ID) {
			header += " " + transmittingStyle.Render("transmitting...")
		}

		body := messageStyle.Width(bodyWidth).Render(msg.Content)
		block := header + "\n" + body
		if msg.ID == m.selected {
			block = selectedStyle.Render(block)
			top = strings.Count(b.String(), "\n")
			bottom = top + strings.Count(block, "\n")
		}
		b.WriteString(block + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n"), top, bottom
}

func (m Model) isLastUserTurn(id string) bool {
	for i := len(m.state.Timeline) - 1; i >= 0; i-- {
		if m.state.Timeline[i].Role == entities.RoleUser {
			return m.state.Timeline[i].ID == id
		}
	}
	return false
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Dijiang") + dimStyle.Render(fmt.Sprintf("  %d turns", max(len(m.state.Timeline)-1, 0))) + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(m.renderStatus() + "\n")
	b.WriteString(m.input.View() + "\n")
	b.WriteString(helpStyle.Render("  Enter: send  Ctrl+R: record  Up/Down: select  Ctrl+P: speak  Ctrl+C: quit"))
	return b.String()
}

func (m Model) renderStatus() string {
	switch {
	case m.status != "":
		return alertStyle.Render(m.status)
	case m.state.Recording:
		return recordingStyle.Render("● Recording") + dimStyle.Render("  Ctrl+R to stop")
	case m.state.Transcribing:
		return statusBarStyle.Render(m.spinner.View() + " Transcribing...")
	case m.state.RequestInFlight:
		return statusBarStyle.Render(m.spinner.View() + " Dijiang is reflecting...")
	default:
		return ""
	}
}
