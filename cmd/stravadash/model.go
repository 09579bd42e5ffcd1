package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stravadash/clients/strava"
	"stravadash/internal/models"
)

const buildTimeout = 30 * time.Second

type dashboardBuilder interface {
	Build(context.Context, strava.Token) (models.Dashboard, error)
}

type tickMsg struct{}

type model struct {
	builder  dashboardBuilder
	token    strava.Token
	refresh  time.Duration
	width    int
	height   int
	styles   styles
	dash     models.Dashboard
	err      error
	content  string
	viewport viewport.Model
	ready    bool
}

func newModel(b dashboardBuilder, token strava.Token, refresh time.Duration, width, height int, renderer *lipgloss.Renderer) model {
	return model{
		builder: b,
		token:   token,
		refresh: refresh,
		width:   width,
		height:  height,
		styles:  newStyles(renderer),
	}
}

func (m model) updateState() (model, error) {
	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()

	d, err := m.builder.Build(ctx, m.token)
	if err != nil {
		return m, fmt.Errorf("error building dashboard: %w", err)
	}
	m.dash = d
	m.err = nil
	return m, nil
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m model) Init() tea.Cmd {
	return m.tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height)
			m.ready = true
		} else {
			m.viewport.Height = msg.Height
			m.viewport.Width = msg.Width
		}
		slog.Debug("window update", "height", m.height, "width", m.width)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m = m.refreshState()
		}
	case tickMsg:
		m = m.refreshState()
		m.content = m.updateContent()
		m.viewport.SetContent(m.content)
		return m, m.tick()
	}
	m.content = m.updateContent()
	m.viewport.SetContent(m.content)
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refreshState keeps the last good dashboard when a rebuild fails.
func (m model) refreshState() model {
	next, err := m.updateState()
	if err != nil {
		slog.Error("error updating state", "err", err)
		m.err = err
		return m
	}
	return next
}

func (m model) updateContent() string {
	body := renderDashboard(m.dash, m.styles, m.width)
	if m.err != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, m.styles.warn.Render(m.err.Error()), body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.styles.muted.Render("r refresh • q quit"))
}

func (m model) View() string {
	return m.viewport.View()
}
