// Package tui renders the rankings view in the terminal.
package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/okian/fideboard/internal/domain/types"
	"github.com/okian/fideboard/internal/rankview"
	"github.com/okian/fideboard/pkg/logger"
)

const (
	defaultWidth  = 100
	defaultHeight = 40
)

// resultMsg carries a completed page fetch back into the update loop.
type resultMsg rankview.Result

// Model is the Bubble Tea model for the rankings view.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View.
type Model struct {
	ctx  context.Context
	svc  rankview.QueryService
	ctrl *rankview.Controller

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model
	editing bool

	width  int
	height int
}

type options struct {
	pageSize int
	logger   logger.Logger
}

// Option configures a Model.
type Option func(*options)

// WithPageSize sets the rows shown per page.
func WithPageSize(n int) Option {
	return func(o *options) { o.pageSize = n }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New builds the view over svc.
func New(ctx context.Context, svc rankview.QueryService, opts ...Option) Model {
	o := options{pageSize: types.DefaultPageSize, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	m := Model{
		ctx:    ctx,
		svc:    svc,
		ctrl:   rankview.New(rankview.WithPageSize(o.pageSize), rankview.WithLogger(o.logger)),
		keys:   defaultKeyMap(),
		help:   help.New(),
		width:  defaultWidth,
		height: defaultHeight,
	}

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(mutedStyle))

	m.input = textinput.New()
	m.input.Prompt = "page: "
	m.input.CharLimit = 6
	m.input.Width = 6
	m.input.Placeholder = "1"
	m.input.Cursor.SetMode(cursor.CursorStatic)
	return m
}

// Controller exposes the state machine behind the view.
func (m Model) Controller() *rankview.Controller { return m.ctrl }

// Init fetches the first page (Bubble Tea interface).
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(m.ctrl.Mount()))
}

func (m Model) fetch(req rankview.Request) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		return resultMsg(rankview.Fetch(ctx, svc, req))
	}
}

func (m Model) issue(req rankview.Request, ok bool) (tea.Model, tea.Cmd) {
	if !ok {
		return m, nil
	}
	return m, m.fetch(req)
}

// Update handles messages (Bubble Tea interface).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case resultMsg:
		if !m.ctrl.Receive(rankview.Result(msg)) {
			return m, nil
		}
		if m.editing {
			// keep what is being typed
			m.ctrl.EditPageInput(m.input.Value())
		} else {
			m.input.SetValue(m.ctrl.PageInput())
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.SortRank):
		return m.issue(m.ctrl.SetSort(types.SortRank))
	case key.Matches(msg, m.keys.SortMonth):
		return m.issue(m.ctrl.SetSort(types.SortDeltaMonth))
	case key.Matches(msg, m.keys.SortYear):
		return m.issue(m.ctrl.SetSort(types.SortDeltaYear))
	case key.Matches(msg, m.keys.Prev):
		return m.issue(m.ctrl.PrevPage())
	case key.Matches(msg, m.keys.Next):
		return m.issue(m.ctrl.NextPage())
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetch(m.ctrl.Refresh())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.GoTo):
		m.editing = true
		m.input.SetValue("")
		m.ctrl.EditPageInput("")
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Commit):
		m.editing = false
		m.input.Blur()
		req, ok := m.ctrl.CommitPageInput(m.input.Value())
		m.input.SetValue(m.ctrl.PageInput())
		return m.issue(req, ok)
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.input.Blur()
		current := strconv.Itoa(m.ctrl.Page().CurrentPage)
		m.ctrl.EditPageInput(current)
		m.input.SetValue(current)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.EditPageInput(m.input.Value())
	return m, cmd
}
