package views

import (
	"fmt"
	"io"
	"strings"
	"time"

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

const deadlineLayout = "2006-01-02 15:04"

type errMsg struct {
	err error
}

type taskItem struct {
	task models.Task
}

func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) Description() string { return i.task.Description }
func (i taskItem) FilterValue() string { return i.task.Title }

type taskDelegate struct {
	styles *styles.Styles
	width  int
}

func (d taskDelegate) Height() int                               { return 2 }
func (d taskDelegate) Spacing() int                              { return 1 }
func (d taskDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok {
		return
	}
	t := it.task

	selected := index == m.Index()
	width := max(d.width-4, 20)

	lineStyle := d.styles.ListItem.Width(width)
	if selected {
		lineStyle = d.styles.ListSelected.Width(width)
	}

	glyph := lipgloss.NewStyle().
		Foreground(styles.PriorityColor(t.Priority)).
		Render("●")
	status := lipgloss.NewStyle().
		Foreground(styles.StatusColor(t.Status)).
		Render("[" + t.Status.String() + "]")

	var meta []string
	if t.Deadline != nil {
		meta = append(meta, "due "+t.Deadline.Format(deadlineLayout))
	}
	for _, tag := range t.Tags {
		meta = append(meta, lipgloss.NewStyle().Foreground(lipgloss.Color(tag.Color)).Render("#"+tag.Name))
	}

	title := lineStyle.Render(fmt.Sprintf("%s %s %s", glyph, t.Title, status))
	detail := lineStyle.Foreground(styles.Current.ForegroundDim).Render(strings.Join(meta, "  "))

	fmt.Fprintf(w, "%s\n%s", title, detail)
}

// TaskListView shows live tasks with a cycling status filter and a
// create form.
type TaskListView struct {
	store    *db.Store
	list     list.Model
	delegate *taskDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	// nil means no status restriction
	statusFilter *models.Status

	creating      bool
	titleInput    textinput.Model
	deadlineInput textinput.Model
	tagsInput     textinput.Model
	focusIdx      int

	notice string
}

func NewTaskListView(store *db.Store) *TaskListView {
	s := styles.NewStyles()

	titleInput := textinput.New()
	titleInput.Placeholder = "Task title"
	titleInput.CharLimit = 120

	deadlineInput := textinput.New()
	deadlineInput.Placeholder = "Deadline (" + deadlineLayout + ", optional)"
	deadlineInput.CharLimit = 16

	tagsInput := textinput.New()
	tagsInput.Placeholder = "Tags, comma separated (optional)"
	tagsInput.CharLimit = 120

	delegate := &taskDelegate{styles: s, width: styles.MaxWidth}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Tasks"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &TaskListView{
		store:         store,
		list:          l,
		delegate:      delegate,
		styles:        s,
		keys:          keys.DefaultKeyMap(),
		titleInput:    titleInput,
		deadlineInput: deadlineInput,
		tagsInput:     tagsInput,
	}
}

// Editing reports whether a text input is capturing keys.
func (v *TaskListView) Editing() bool {
	return v.creating || v.list.FilterState() == list.Filtering
}

func (v *TaskListView) Init() tea.Cmd {
	return v.Reload()
}

// Reload re-queries the store; the list is always rebuilt in full.
func (v *TaskListView) Reload() tea.Cmd {
	filter := v.statusFilter
	return func() tea.Msg {
		var (
			tasks []models.Task
			err   error
		)
		if filter != nil {
			tasks, err = v.store.ListTasksByStatus(*filter)
		} else {
			tasks, err = v.store.ListTasks(false)
		}
		if err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{tasks: tasks}
	}
}

type tasksLoadedMsg struct {
	tasks []models.Task
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth, msg.Height-4)
		return v, nil

	case tasksLoadedMsg:
		items := make([]list.Item, len(msg.tasks))
		for i, t := range msg.tasks {
			items[i] = taskItem{task: t}
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
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.titleInput.SetValue("")
			v.deadlineInput.SetValue("")
			v.tagsInput.SetValue("")
			return v, v.titleInput.Focus()

		case key.Matches(msg, v.keys.ToggleDone):
			if t, ok := v.selectedTask(); ok {
				next := models.StatusDone
				if t.Status == models.StatusDone {
					next = models.StatusTodo
				}
				if err := v.store.SetTaskStatus(t.ID, next); err != nil {
					v.notice = err.Error()
					return v, nil
				}
				return v, v.Reload()
			}

		case key.Matches(msg, v.keys.Delete):
			if t, ok := v.selectedTask(); ok {
				if err := v.store.DeleteTask(t.ID); err != nil {
					v.notice = err.Error()
					return v, nil
				}
				return v, v.Reload()
			}

		case key.Matches(msg, v.keys.CycleStatus):
			v.cycleStatusFilter()
			return v, v.Reload()
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *TaskListView) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Cancel):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Confirm):
		if v.focusIdx < 2 {
			v.focusIdx++
			return v, v.focusInput()
		}
		return v, v.submitCreate()

	case msg.String() == "tab":
		v.focusIdx = (v.focusIdx + 1) % 3
		return v, v.focusInput()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.titleInput, cmd = v.titleInput.Update(msg)
	case 1:
		v.deadlineInput, cmd = v.deadlineInput.Update(msg)
	case 2:
		v.tagsInput, cmd = v.tagsInput.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) focusInput() tea.Cmd {
	inputs := []*textinput.Model{&v.titleInput, &v.deadlineInput, &v.tagsInput}
	var cmd tea.Cmd
	for i, input := range inputs {
		if i == v.focusIdx {
			cmd = input.Focus()
		} else {
			input.Blur()
		}
	}
	return cmd
}

func (v *TaskListView) submitCreate() tea.Cmd {
	title := strings.TrimSpace(v.titleInput.Value())
	if title == "" {
		v.notice = "title is required"
		return nil
	}

	task := &models.Task{Title: title, Priority: models.PriorityNormal}
	if raw := strings.TrimSpace(v.deadlineInput.Value()); raw != "" {
		deadline, err := time.ParseInLocation(deadlineLayout, raw, time.Local)
		if err != nil {
			v.notice = "bad deadline, expected " + deadlineLayout
			return nil
		}
		utc := deadline.UTC()
		task.Deadline = &utc

		minutes, _ := v.store.GetSettingInt("default_remind_minutes", 30)
		remind := utc.Add(-time.Duration(minutes) * time.Minute)
		task.RemindAt = &remind
	}

	var tagNames []string
	for _, name := range strings.Split(v.tagsInput.Value(), ",") {
		if name = strings.TrimSpace(name); name != "" {
			tagNames = append(tagNames, name)
		}
	}

	if _, err := v.store.CreateTask(task, tagNames); err != nil {
		v.notice = err.Error()
		return nil
	}

	v.creating = false
	v.notice = ""
	return v.Reload()
}

func (v *TaskListView) selectedTask() (models.Task, bool) {
	it, ok := v.list.SelectedItem().(taskItem)
	if !ok {
		return models.Task{}, false
	}
	return it.task, true
}

func (v *TaskListView) cycleStatusFilter() {
	if v.statusFilter == nil {
		todo := models.StatusTodo
		v.statusFilter = &todo
		return
	}
	next := *v.statusFilter + 1
	if !next.Valid() {
		v.statusFilter = nil
		return
	}
	v.statusFilter = &next
}

func (v *TaskListView) View() string {
	if v.creating {
		return lipgloss.JoinVertical(lipgloss.Left,
			v.styles.Title.Render("New task"),
			v.inputView(0, v.titleInput),
			v.inputView(1, v.deadlineInput),
			v.inputView(2, v.tagsInput),
			v.styles.Help.Render("enter next/confirm • tab switch field • esc cancel"),
			v.styles.Notice.Render(v.notice),
		)
	}

	filterLabel := "all"
	if v.statusFilter != nil {
		filterLabel = v.statusFilter.String()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.list.View(),
		v.styles.StatusBar.Render("filter: "+filterLabel),
		v.styles.Help.Render("n new • d done • x delete • f filter • tab view • q quit"),
		v.styles.Notice.Render(v.notice),
	)
}

func (v *TaskListView) inputView(idx int, input textinput.Model) string {
	if idx == v.focusIdx {
		return v.styles.InputFocused.Render(input.View())
	}
	return v.styles.Input.Render(input.View())
}
