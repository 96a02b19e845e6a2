package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/musekeep/muse/internal/db"
	"github.com/musekeep/muse/internal/models"
	"github.com/musekeep/muse/internal/ui/keys"
	"github.com/musekeep/muse/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewTasks View = iota
	ViewInspirations
	ViewBin
	ViewStats
)

// view is the shared shape of the per-view bubbletea models.
type view interface {
	Init() tea.Cmd
	Update(tea.Msg) (tea.Model, tea.Cmd)
	View() string
	Reload() tea.Cmd
	// Editing reports whether the view is capturing text input, in
	// which case global key bindings must not fire.
	Editing() bool
}

type App struct {
	store       *db.Store
	events      <-chan models.Event
	currentView View
	keys        keys.KeyMap

	tasks        *views.TaskListView
	inspirations *views.InspirationListView
	bin          *views.BinView
	stats        *views.StatsView

	width  int
	height int
}

// NewApp wires the views to the store and the worker's event stream.
func NewApp(store *db.Store, events <-chan models.Event) *App {
	return &App{
		store:        store,
		events:       events,
		keys:         keys.DefaultKeyMap(),
		tasks:        views.NewTaskListView(store),
		inspirations: views.NewInspirationListView(store),
		bin:          views.NewBinView(store),
		stats:        views.NewStatsView(store),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.tasks.Init(), a.waitForEvent())
}

// waitForEvent blocks on the worker's channel and surfaces the next
// change notification as a bubbletea message.
func (a *App) waitForEvent() tea.Cmd {
	if a.events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-a.events
		if !ok {
			return nil
		}
		return ev
	}
}

func (a *App) active() view {
	switch a.currentView {
	case ViewInspirations:
		return a.inspirations
	case ViewBin:
		return a.bin
	case ViewStats:
		return a.stats
	}
	return a.tasks
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Every view keeps its own layout state
		a.tasks.Update(msg)
		a.inspirations.Update(msg)
		a.bin.Update(msg)
		a.stats.Update(msg)
		return a, nil

	case models.Event:
		// The worker changed rows underneath us; drop the cached view
		// state and reload.
		return a, tea.Batch(a.active().Reload(), a.waitForEvent())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.active().Editing() {
			break
		}
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.NextView):
			a.currentView = (a.currentView + 1) % 4
			return a, tea.Batch(
				a.active().Init(),
				func() tea.Msg {
					return tea.WindowSizeMsg{Width: a.width, Height: a.height}
				},
			)
		}
	}

	_, cmd := a.active().Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.active().View()
}
