package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/musekeep/muse/internal/db"
	"github.com/musekeep/muse/internal/models"
	"github.com/musekeep/muse/internal/ui/styles"
)

// StatsView renders the current month's aggregates.
type StatsView struct {
	store  *db.Store
	styles *styles.Styles
	width  int

	overview   *models.Overview
	byStatus   []models.StatusCount
	byCategory []models.CategoryCount
	notice     string
}

func NewStatsView(store *db.Store) *StatsView {
	return &StatsView{
		store:  store,
		styles: styles.NewStyles(),
	}
}

// Editing always reports false; stats is read-only.
func (v *StatsView) Editing() bool { return false }

func (v *StatsView) Init() tea.Cmd {
	return v.Reload()
}

func (v *StatsView) Reload() tea.Cmd {
	return func() tea.Msg {
		now := time.Now()
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		filter := db.StatsFilter{Start: start, End: start.AddDate(0, 1, 0)}

		overview, err := v.store.OverviewStats(filter)
		if err != nil {
			return errMsg{err}
		}
		byStatus, err := v.store.CountByStatus(filter)
		if err != nil {
			return errMsg{err}
		}
		byCategory, err := v.store.CountByCategory(filter)
		if err != nil {
			return errMsg{err}
		}
		return statsLoadedMsg{overview: overview, byStatus: byStatus, byCategory: byCategory}
	}
}

type statsLoadedMsg struct {
	overview   *models.Overview
	byStatus   []models.StatusCount
	byCategory []models.CategoryCount
}

func (v *StatsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = styles.ContentWidth(msg.Width)
		return v, nil

	case statsLoadedMsg:
		v.overview = msg.overview
		v.byStatus = msg.byStatus
		v.byCategory = msg.byCategory
		return v, nil

	case errMsg:
		v.notice = msg.err.Error()
		return v, nil
	}
	return v, nil
}

func (v *StatsView) View() string {
	if v.overview == nil {
		return v.styles.TitleMuted.Render("Loading statistics...")
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("This month") + "\n\n")
	b.WriteString(v.row("Tasks", fmt.Sprintf("%d", v.overview.Total)))
	b.WriteString(v.row("Completed", fmt.Sprintf("%d", v.overview.Completed)))
	b.WriteString(v.row("Overdue", fmt.Sprintf("%d", v.overview.Overdue)))
	b.WriteString(v.row("Completion rate", fmt.Sprintf("%.1f%%", v.overview.CompletionRate)))
	b.WriteString(v.row("Avg completion", fmt.Sprintf("%.1fh", v.overview.AvgCompletionHours)))
	b.WriteString(v.row("Inspirations", fmt.Sprintf("%d", v.overview.InspirationCount)))

	if len(v.byStatus) > 0 {
		b.WriteString("\n" + v.styles.Title.Render("By status") + "\n\n")
		for _, c := range v.byStatus {
			b.WriteString(v.row(c.Status.String(), fmt.Sprintf("%d", c.Count)))
		}
	}

	if len(v.byCategory) > 0 {
		b.WriteString("\n" + v.styles.Title.Render("By category") + "\n\n")
		for _, c := range v.byCategory {
			b.WriteString(v.row(c.Name, fmt.Sprintf("%d", c.Count)))
		}
	}

	panel := v.styles.Panel.Render(b.String())
	return lipgloss.JoinVertical(lipgloss.Left,
		panel,
		v.styles.Help.Render("tab view • q quit"),
		v.styles.Notice.Render(v.notice),
	)
}

func (v *StatsView) row(label, value string) string {
	return fmt.Sprintf("%s %s\n",
		v.styles.StatLabel.Width(20).Render(label),
		v.styles.StatValue.Render(value))
}
