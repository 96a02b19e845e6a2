package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/musekeep/muse/internal/db"
	"github.com/musekeep/muse/internal/models"
	"github.com/musekeep/muse/internal/ui/keys"
	"github.com/musekeep/muse/internal/ui/styles"
)

type inspirationItem struct {
	note models.Inspiration
}

func (i inspirationItem) Title() string       { return i.note.Content }
func (i inspirationItem) Description() string { return i.note.Tags }
func (i inspirationItem) FilterValue() string { return i.note.Content + " " + i.note.Tags }

type inspirationDelegate struct {
	styles *styles.Styles
	width  int
}

func (d inspirationDelegate) Height() int                               { return 2 }
func (d inspirationDelegate) Spacing() int                              { return 1 }
func (d inspirationDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d inspirationDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(inspirationItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	lineStyle := d.styles.ListItem.Width(width)
	if selected {
		lineStyle = d.styles.ListSelected.Width(width)
	}

	tags := it.note.Tags
	if tags != "" {
		tags = "#" + strings.ReplaceAll(tags, ",", " #")
	}

	content := lineStyle.Render(it.note.Content)
	detail := lineStyle.Foreground(styles.Current.ForegroundDim).Render(tags)
	fmt.Fprintf(w, "%s\n%s", content, detail)
}

// InspirationListView shows live notes with substring search and a
// create form.
type InspirationListView struct {
	store    *db.Store
	list     list.Model
	delegate *inspirationDelegate
	styles   *styles.Styles
	keys     keys.KeyMap

	creating     bool
	contentInput textinput.Model
	tagsInput    textinput.Model
	focusIdx     int

	searching   bool
	searchInput textinput.Model

	notice string
}

func NewInspirationListView(store *db.Store) *InspirationListView {
	s := styles.NewStyles()

	contentInput := textinput.New()
	contentInput.Placeholder = "What's on your mind?"
	contentInput.CharLimit = 500

	tagsInput := textinput.New()
	tagsInput.Placeholder = "Tags, comma separated (optional)"
	tagsInput.CharLimit = 120

	searchInput := textinput.New()
	searchInput.Placeholder = "Search content and tags..."
	searchInput.CharLimit = 120

	delegate := &inspirationDelegate{styles: s, width: styles.MaxWidth}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Inspirations"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &InspirationListView{
		store:        store,
		list:         l,
		delegate:     delegate,
		styles:       s,
		keys:         keys.DefaultKeyMap(),
		contentInput: contentInput,
		tagsInput:    tagsInput,
		searchInput:  searchInput,
	}
}

// Editing reports whether a text input is capturing keys.
func (v *InspirationListView) Editing() bool {
	return v.creating || v.searching
}

func (v *InspirationListView) Init() tea.Cmd {
	return v.Reload()
}

func (v *InspirationListView) Reload() tea.Cmd {
	query := strings.TrimSpace(v.searchInput.Value())
	return func() tea.Msg {
		var (
			notes []models.Inspiration
			err   error
		)
		if query != "" {
			notes, err = v.store.SearchInspirations(query)
		} else {
			notes, err = v.store.ListInspirations(false)
		}
		if err != nil {
			return errMsg{err}
		}
		return inspirationsLoadedMsg{notes: notes}
	}
}

type inspirationsLoadedMsg struct {
	notes []models.Inspiration
}

func (v *InspirationListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth, msg.Height-4)
		return v, nil

	case inspirationsLoadedMsg:
		items := make([]list.Item, len(msg.notes))
		for i, n := range msg.notes {
			items[i] = inspirationItem{note: n}
		}
		v.list.SetItems(items)
		return v, nil

	case errMsg:
		v.notice = msg.err.Error()
		return v, nil

	case tea.KeyMsg:
		if v.creating {
			return v.updateCreate(msg)
		}
		if v.searching {
			switch {
			case key.Matches(msg, v.keys.Cancel):
				v.searching = false
				v.searchInput.SetValue("")
				return v, v.Reload()
			case key.Matches(msg, v.keys.Confirm):
				v.searching = false
				return v, v.Reload()
			}
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			return v, cmd
		}

		switch {
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.contentInput.SetValue("")
			v.tagsInput.SetValue("")
			return v, v.contentInput.Focus()

		case key.Matches(msg, v.keys.Search):
			v.searching = true
			return v, v.searchInput.Focus()

		case key.Matches(msg, v.keys.Delete):
			if it, ok := v.list.SelectedItem().(inspirationItem); ok {
				if err := v.store.DeleteInspiration(it.note.ID); err != nil {
					v.notice = err.Error()
					return v, nil
				}
				return v, v.Reload()
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *InspirationListView) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Cancel):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Confirm):
		if v.focusIdx == 0 {
			v.focusIdx = 1
			v.contentInput.Blur()
			return v, v.tagsInput.Focus()
		}
		return v, v.submitCreate()
	}

	var cmd tea.Cmd
	if v.focusIdx == 0 {
		v.contentInput, cmd = v.contentInput.Update(msg)
	} else {
		v.tagsInput, cmd = v.tagsInput.Update(msg)
	}
	return v, cmd
}

func (v *InspirationListView) submitCreate() tea.Cmd {
	content := strings.TrimSpace(v.contentInput.Value())
	if content == "" {
		v.notice = "content is required"
		return nil
	}

	// The edit boundary de-duplicates tags case-insensitively; the
	// repository stores the joined string as-is.
	seen := make(map[string]bool)
	var tags []string
	for _, name := range strings.Split(v.tagsInput.Value(), ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		tags = append(tags, name)
	}

	if _, err := v.store.CreateInspiration(content, strings.Join(tags, ",")); err != nil {
		v.notice = err.Error()
		return nil
	}

	v.creating = false
	v.notice = ""
	return v.Reload()
}

func (v *InspirationListView) View() string {
	if v.creating {
		return lipgloss.JoinVertical(lipgloss.Left,
			v.styles.Title.Render("New inspiration"),
			v.inputView(0, v.contentInput),
			v.inputView(1, v.tagsInput),
			v.styles.Help.Render("enter next/confirm • esc cancel"),
			v.styles.Notice.Render(v.notice),
		)
	}

	sections := []string{v.list.View()}
	if v.searching || v.searchInput.Value() != "" {
		sections = append(sections, v.styles.InputFocused.Render(v.searchInput.View()))
	}
	sections = append(sections,
		v.styles.Help.Render("n new • / search • x delete • tab view • q quit"),
		v.styles.Notice.Render(v.notice),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *InspirationListView) inputView(idx int, input textinput.Model) string {
	if idx == v.focusIdx {
		return v.styles.InputFocused.Render(input.View())
	}
	return v.styles.Input.Render(input.View())
}
