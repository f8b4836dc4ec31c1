// Package ui is the interactive terminal tree view: a lazily expanded SARIF
// forest on the left, a source preview or task output on the right.
package ui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/dkoosis/sarifview/internal/command"
	"github.com/dkoosis/sarifview/internal/config"
	"github.com/dkoosis/sarifview/internal/navigate"
	"github.com/dkoosis/sarifview/internal/tasks"
	"github.com/dkoosis/sarifview/internal/tree"
	"github.com/dkoosis/sarifview/internal/watch"
	"github.com/dkoosis/sarifview/pkg/sarif"
)

// Command names registered by the view. Tree items carry
// tree.ShowLocationCommand; the rest back key bindings.
const (
	CmdRefresh       = "sarifview.refresh"
	CmdRunTask       = "sarifview.runTask"
	CmdSelectTask    = "sarifview.selectTask"
	CmdOpenTasksJSON = "sarifview.openTasksJson"
)

const outputBufferLines = 5000

type pane int

const (
	paneTree pane = iota
	panePreview
	panePicker
)

type previewMode int

const (
	modeDocument previewMode = iota
	modeOutput
)

// Options wires the view to the rest of the application.
type Options struct {
	Provider          *tree.Provider
	Registry          *command.Registry
	Shower            *navigate.Shower
	Editor            *navigate.Editor
	FS                afero.Fs
	Roots             []string
	LoadTasks         func() *tasks.Set
	Runner            *tasks.Runner
	Selection         *tasks.Selection
	Changes           <-chan watch.Change // nil disables live refresh
	Policy            tasks.RefreshPolicy
	FocusAfterRefresh bool
	Theme             *Theme
	Logger            *zap.Logger
}

// Model is the bubbletea model of the tree view.
type Model struct {
	ctx  context.Context
	opts Options
	keys keyMap
	th   *Theme

	tree        *treeState
	forest      *tree.Forest
	unsubscribe func()
	scanning    int

	taskSet     *tasks.Set
	taskUpdates <-chan tasks.Update
	running     string
	output      []string
	lastRun     *tasks.Completion
	pendingRun  bool

	doc      *navigate.Document
	mode     previewMode
	focus    pane
	viewport viewport.Model
	picker   list.Model
	spinner  spinner.Model

	flash   string
	pending []tea.Cmd

	ready      bool
	width      int
	height     int
	treeWidth  int
	paneHeight int
	treeOffset int
}

// New creates the view and registers its commands.
func New(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = command.NewRegistry()
	}
	if opts.Selection == nil {
		opts.Selection = &tasks.Selection{}
	}
	if opts.Theme == nil {
		opts.Theme = Compile(config.DefaultTheme())
	}
	if opts.LoadTasks == nil {
		opts.LoadTasks = func() *tasks.Set { return &tasks.Set{} }
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	picker := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	picker.Title = "Select task"
	picker.SetShowStatusBar(false)

	vp := viewport.New(0, 0)
	vp.SetContent("Select a result and press enter to preview its location")

	m := &Model{
		ctx:      ctx,
		opts:     opts,
		keys:     defaultKeys(),
		th:       opts.Theme,
		tree:     newTreeState(opts.Provider),
		forest:   &tree.Forest{},
		taskSet:  &tasks.Set{},
		viewport: vp,
		picker:   picker,
		spinner:  sp,
	}

	m.unsubscribe = opts.Provider.OnDidChange(func() {
		m.pending = append(m.pending, m.scan(false))
	})

	reg := opts.Registry
	reg.Register(tree.ShowLocationCommand, m.showLocation)
	reg.Register(CmdRefresh, func(context.Context, ...any) error {
		m.opts.Provider.Refresh()
		return nil
	})
	reg.Register(CmdRunTask, func(context.Context, ...any) error { return m.runSelectedTask() })
	reg.Register(CmdSelectTask, func(context.Context, ...any) error { return m.openPicker(false) })
	reg.Register(CmdOpenTasksJSON, func(ctx context.Context, _ ...any) error { return m.openTasksJSON(ctx) })
	return m
}

// Run starts the view on the terminal and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type scanDoneMsg struct {
	roots  []tree.Node
	forest *tree.Forest
	focus  bool
}

type watchMsg watch.Change
type watchClosedMsg struct{}
type tasksLoadedMsg struct{ set *tasks.Set }
type taskUpdateMsg tasks.Update
type taskClosedMsg struct{}
type editorDoneMsg struct{ err error }

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.scan(false), m.loadTasks()}
	if m.opts.Changes != nil {
		cmds = append(cmds, m.listenWatch())
	}
	return tea.Batch(cmds...)
}

// scan rescans through the provider off the UI goroutine. When focus is set
// and the new forest is non-empty the tree pane takes focus.
func (m *Model) scan(focus bool) tea.Cmd {
	m.scanning++
	p, ctx := m.opts.Provider, m.ctx
	return tea.Batch(func() tea.Msg {
		roots := p.GetChildren(ctx, nil)
		return scanDoneMsg{roots: roots, forest: p.Forest(), focus: focus}
	}, m.spinner.Tick)
}

func (m *Model) loadTasks() tea.Cmd {
	load := m.opts.LoadTasks
	return func() tea.Msg { return tasksLoadedMsg{set: load()} }
}

func (m *Model) listenWatch() tea.Cmd {
	changes := m.opts.Changes
	return func() tea.Msg {
		c, ok := <-changes
		if !ok {
			return watchClosedMsg{}
		}
		return watchMsg(c)
	}
}

func (m *Model) listenTask() tea.Cmd {
	updates := m.taskUpdates
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return taskClosedMsg{}
		}
		return taskUpdateMsg(u)
	}
}

// execute runs a registered command and collects any follow-up tea commands
// its handler queued.
func (m *Model) execute(name string, args ...any) tea.Cmd {
	if err := m.opts.Registry.Execute(m.ctx, name, args...); err != nil {
		m.warn(name, err)
	}
	return m.drain()
}

func (m *Model) drain() tea.Cmd {
	if len(m.pending) == 0 {
		return nil
	}
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}

func (m *Model) warn(what string, err error) {
	m.opts.Logger.Warn("command failed", zap.String("command", what), zap.Error(err))
	m.flash = err.Error()
}

func (m *Model) showLocation(_ context.Context, args ...any) error {
	if len(args) != 2 {
		return fmt.Errorf("%s: want 2 arguments, got %d", tree.ShowLocationCommand, len(args))
	}
	loc, ok := args[0].(sarif.PhysicalLocation)
	if !ok {
		return fmt.Errorf("%s: first argument is %T", tree.ShowLocationCommand, args[0])
	}
	baseIDs, _ := args[1].(sarif.BaseIDs)

	doc, err := m.opts.Shower.Show(loc, baseIDs)
	if err != nil {
		return err
	}
	m.doc = doc
	m.mode = modeDocument
	m.syncPreview()
	return nil
}

func (m *Model) runSelectedTask() error {
	label, pick, err := m.opts.Selection.Choose(m.taskSet.Labels())
	if err != nil {
		return err
	}
	if pick {
		if err := m.openPicker(true); err != nil {
			return err
		}
		m.selectInPicker(label)
		return nil
	}
	return m.startTask(label)
}

func (m *Model) startTask(label string) error {
	if m.running != "" {
		return fmt.Errorf("task %s is still running", m.running)
	}
	entry, err := m.taskSet.Find(label)
	if err != nil {
		return err
	}
	m.running = label
	m.output = nil
	m.lastRun = nil
	m.mode = modeOutput
	m.taskUpdates = m.opts.Runner.Start(m.ctx, entry)
	m.syncPreview()
	m.pending = append(m.pending, m.listenTask(), m.spinner.Tick)
	return nil
}

func (m *Model) openTasksJSON(ctx context.Context) error {
	if len(m.opts.Roots) == 0 {
		return errors.New("no workspace root to create tasks.json in")
	}
	path, err := tasks.EnsureTasksFile(m.opts.FS, m.opts.Roots[0])
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	target := sarif.Target{URI: &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}}
	return m.launchEditor(ctx, target)
}

func (m *Model) launchEditor(ctx context.Context, target sarif.Target) error {
	if m.opts.Editor == nil {
		return errors.New("no editor configured")
	}
	c, err := m.opts.Editor.Cmd(ctx, target)
	if err != nil {
		return err
	}
	m.opts.Logger.Debug("launching editor",
		zap.String("editor", m.opts.Editor.Command()),
		zap.Strings("argv", c.Args))
	m.pending = append(m.pending, tea.ExecProcess(c, func(err error) tea.Msg { return editorDoneMsg{err: err} }))
	return nil
}

// editorTarget is the open document, or else the selected row's location.
func (m *Model) editorTarget() (sarif.Target, error) {
	if m.doc != nil && (m.focus == panePreview || m.mode == modeDocument) {
		if r, ok := m.tree.selected(); !ok || m.focus == panePreview || r.item.Command == nil {
			return m.doc.Target, nil
		}
	}
	r, ok := m.tree.selected()
	if !ok || r.item.Command == nil {
		return sarif.Target{}, errors.New("nothing to open")
	}
	return sarif.Resolve(tree.CommandLocation(r.item.Command))
}
