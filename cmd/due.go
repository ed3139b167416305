package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/ui/theme"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List scheduled words by urgency",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		items, err := e.db.Items(ctx)
		if err != nil {
			return err
		}
		prompts := make(map[string]string, len(items))
		for _, it := range items {
			prompts[it.ID] = it.Prompt
		}
		scheds, err := e.db.Schedules(ctx, e.learner)
		if err != nil {
			return err
		}

		all, _ := cmd.Flags().GetBool("all")
		now := time.Now()
		rows := dueRows(scheds, now, all)

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			lipgloss.Fprintln(out, theme.Hint.Render("Nothing due. Come back later!"))
			return nil
		}

		lipgloss.Fprintf(out, "%-20s  %-24s  %-14s  %-8s  %s\n", "ID", "Prompt", "Level", "Status", "Urgency")
		lipgloss.Fprintln(out, strings.Repeat("─", 90))
		for _, s := range rows {
			prompt := prompts[s.ItemID]
			if len(prompt) > 24 {
				prompt = prompt[:21] + "..."
			}
			status := s.Status(now)
			u := s.Urgency(now)
			lipgloss.Fprintf(out, "%-20s  %-24s  %-14s  %s  %s %3d%%\n",
				s.ItemID, prompt, e.table.LevelName(s.Level),
				theme.Status(status).Render(fmt.Sprintf("%-8s", status)),
				theme.Bar(u, 10), u)
		}
		lipgloss.Fprintf(out, "\n%d words\n", len(rows))
		return nil
	},
}

func init() {
	dueCmd.Flags().Bool("all", false, "Include words that are not due yet")
}

// dueRows returns the schedules to list: due ones by default, every
// non-retired one with all. Most urgent first.
func dueRows(scheds []spacedrep.Schedule, now time.Time, all bool) []spacedrep.Schedule {
	var rows []spacedrep.Schedule
	for _, s := range scheds {
		if s.Retired {
			continue
		}
		if all || s.IsDue(now) {
			rows = append(rows, s)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ui, uj := rows[i].Urgency(now), rows[j].Urgency(now)
		if ui != uj {
			return ui > uj
		}
		return rows[i].DueAt.Before(rows[j].DueAt)
	})
	return rows
}
