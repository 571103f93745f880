package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/StoreStation/vibebot/pkg/bot"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// dashboard is a read-only view over one client's dispatched events: it
// never issues goto/stop commands itself, matching the spec's scoping of
// the chat-command parser (and any operator-input surface) as an
// external collaborator.
type dashboard struct {
	username string
	events   <-chan bot.Event
	spin     spinner.Model

	joined          bool
	entityID        int32
	x, y, z         float64
	health          float32
	food            int32
	lastChat        string
	lastErr         string
	disconnected    bool
	disconnectCause string
}

func newDashboard(username string, events <-chan bot.Event) dashboard {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return dashboard{username: username, events: events, spin: s}
}

func runDashboard(username string, events <-chan bot.Event) {
	m := newDashboard(username, events)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Println("vibebot: dashboard error:", err)
	}
}

type eventMsg bot.Event
type channelClosedMsg struct{}

func waitForEvent(ch <-chan bot.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return channelClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m dashboard) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForEvent(m.events))
}

func (m dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case eventMsg:
		m.apply(bot.Event(msg))
		return m, waitForEvent(m.events)

	case channelClosedMsg:
		m.disconnected = true
		return m, tea.Quit

	default:
		return m, nil
	}
}

func (m *dashboard) apply(ev bot.Event) {
	switch ev.Type {
	case bot.EventLogin:
		m.joined = true
		m.entityID = ev.EntityID
	case bot.EventPosition:
		m.x, m.y, m.z = ev.X, ev.Y, ev.Z
	case bot.EventHealth:
		m.health, m.food = ev.Health, ev.Food
	case bot.EventChat:
		m.lastChat = ev.Text
	case bot.EventError:
		if ev.Err != nil {
			m.lastErr = ev.Err.Error()
		}
	case bot.EventDisconnect:
		m.disconnected = true
		m.disconnectCause = ev.Reason
	}
}

func (m dashboard) View() string {
	if m.disconnected {
		return errorStyle.Render(fmt.Sprintf("disconnected: %s\n", m.disconnectCause))
	}

	status := "connecting"
	if m.joined {
		status = "joined"
	}

	out := titleStyle.Render(fmt.Sprintf("%s %s  [%s]", m.spin.View(), m.username, status)) + "\n\n"
	out += labelStyle.Render("position") + fmt.Sprintf("  %.2f %.2f %.2f\n", m.x, m.y, m.z)
	out += labelStyle.Render("health  ") + fmt.Sprintf("  %.1f (food %d)\n", m.health, m.food)
	if m.lastChat != "" {
		out += labelStyle.Render("chat    ") + fmt.Sprintf("  %s\n", m.lastChat)
	}
	if m.lastErr != "" {
		out += errorStyle.Render(fmt.Sprintf("error     %s\n", m.lastErr))
	}
	out += "\n" + labelStyle.Render("press q to quit")
	return out
}
