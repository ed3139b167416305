package cmd

import (
	"fmt"
	"io"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
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
		counts, err := e.db.LevelCounts(ctx, e.learner)
		if err != nil {
			return err
		}
		scheds, err := e.db.Schedules(ctx, e.learner)
		if err != nil {
			return err
		}
		xp, err := e.rewardService().TotalXP(ctx, e.learner)
		if err != nil {
			return err
		}

		st := learnerStats{
			Items:  len(items),
			Levels: counts,
			XP:     xp,
		}
		now := time.Now()
		for _, s := range scheds {
			if s.IsDue(now) {
				st.Due++
			}
		}
		st.print(cmd.OutOrStdout(), e.table)
		return nil
	},
}

type learnerStats struct {
	Items  int
	Levels map[spacedrep.Level]int
	Due    int
	XP     int
}

func (s learnerStats) print(out io.Writer, table spacedrep.Table) {
	seen := 0
	for _, n := range s.Levels {
		seen += n
	}

	lipgloss.Fprintln(out, theme.Title.Render("Progress"))
	lipgloss.Fprintf(out, "%-16s %d\n", "Words", s.Items)
	lipgloss.Fprintf(out, "%-16s %d\n", "Never reviewed", max(s.Items-seen, 0))
	lipgloss.Fprintf(out, "%-16s %s\n", "Due now", theme.Warn.Render(fmt.Sprint(s.Due)))
	lipgloss.Fprintf(out, "%-16s %d\n\n", "Total XP", s.XP)

	for l := spacedrep.Level(0); l <= table.MaxLevel(); l++ {
		n := s.Levels[l]
		pct := 0
		if seen > 0 {
			pct = n * 100 / seen
		}
		lipgloss.Fprintf(out, "%-14s %s %d\n", table.LevelName(l), theme.Bar(pct, 20), n)
	}
}
