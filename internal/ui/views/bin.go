package views

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/musekeep/muse/internal/db"
	"github.com/musekeep/muse/internal/models"
	"github.com/musekeep/muse/internal/ui/keys"
	"github.com/musekeep/muse/internal/ui/styles"
)

// binItem is either a deleted task or a deleted inspiration.
type binItem struct {
	task *models.Task
	note *models.Inspiration
}

func (i binItem) Title() string {
	if i.task != nil {
		return i.task.Title
	}
	return i.note.Content
}

func (i binItem) Description() string {
	if i.task != nil {
		return "task • deleted " + i.task.UpdatedAt.Format(deadlineLayout)
	}
	return "inspiration • deleted " + i.note.UpdatedAt.Format(deadlineLayout)
}

func (i binItem) FilterValue() string { return i.Title() }

type binDelegate struct {
	styles *styles.Styles
	width  int
}

func (d binDelegate) Height() int                               { return 2 }
func (d binDelegate) Spacing() int                              { return 1 }
func (d binDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d binDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(binItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	lineStyle := d.styles.ListItem.Width(width)
	if selected {
		lineStyle = d.styles.ListSelected.Width(width)
	}

	title := lineStyle.Render(it.Title())
	desc := lineStyle.Foreground(styles.Current.ForegroundDim).Render(it.Description())
	fmt.Fprintf(w, "%s\n%s", title, desc)
}

// BinView is the recycle bin: soft-deleted tasks and inspirations with
// restore, purge and empty operations.
type BinView struct {
	store    *db.Store
	list     list.Model
	delegate *binDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	notice   string
}

func NewBinView(store *db.Store) *BinView {
	s := styles.NewStyles()
	delegate := &binDelegate{styles: s, width: styles.MaxWidth}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Recycle bin"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &BinView{
		store:    store,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
	}
}

// Editing always reports false; the bin has no text inputs.
func (v *BinView) Editing() bool { return false }

func (v *BinView) Init() tea.Cmd {
	return v.Reload()
}

func (v *BinView) Reload() tea.Cmd {
	return func() tea.Msg {
		tasks, err := v.store.ListDeletedTasks()
		if err != nil {
			return errMsg{err}
		}
		notes, err := v.store.ListDeletedInspirations()
		if err != nil {
			return errMsg{err}
		}
		return binLoadedMsg{tasks: tasks, notes: notes}
	}
}

type binLoadedMsg struct {
	tasks []models.Task
	notes []models.Inspiration
}

func (v *BinView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth, msg.Height-4)
		return v, nil

	case binLoadedMsg:
		var items []list.Item
		for i := range msg.tasks {
			items = append(items, binItem{task: &msg.tasks[i]})
		}
		for i := range msg.notes {
			items = append(items, binItem{note: &msg.notes[i]})
		}
		v.list.SetItems(items)
		return v, nil

	case errMsg:
		v.notice = msg.err.Error()
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Restore):
			if it, ok := v.list.SelectedItem().(binItem); ok {
				var err error
				if it.task != nil {
					err = v.store.RestoreTask(it.task.ID)
				} else {
					err = v.store.RestoreInspiration(it.note.ID)
				}
				if err != nil {
					v.notice = err.Error()
					return v, nil
				}
				return v, v.Reload()
			}

		case key.Matches(msg, v.keys.Purge):
			if it, ok := v.list.SelectedItem().(binItem); ok {
				var err error
				if it.task != nil {
					err = v.store.PurgeTask(it.task.ID)
				} else {
					err = v.store.PurgeInspiration(it.note.ID)
				}
				if err != nil {
					v.notice = err.Error()
					return v, nil
				}
				return v, v.Reload()
			}

		case key.Matches(msg, v.keys.EmptyBin):
			if _, err := v.store.EmptyTaskBin(); err != nil {
				v.notice = err.Error()
				return v, nil
			}
			if _, err := v.store.EmptyInspirationBin(); err != nil {
				v.notice = err.Error()
				return v, nil
			}
			return v, v.Reload()
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *BinView) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		v.list.View(),
		v.styles.Help.Render("r restore • X purge • E empty bin • tab view • q quit"),
		v.styles.Notice.Render(v.notice),
	)
}
