package cmd

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/store"
	"github.com/Lolmantran/vietlearn/internal/ui/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past review grades",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		opts := store.QueryOpts{}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		if opts.Limit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}

		events, err := e.db.ReviewEvents(cmd.Context(), e.learner, opts)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), events, e.table)
		return nil
	},
}

func init() {
	historyCmd.Flags().String("session", "", "Only show grades from this session")
	historyCmd.Flags().Int("limit", 50, "Maximum number of grades to show (0 = all)")
}

func printHistory(out io.Writer, events []store.ReviewEvent, table spacedrep.Table) {
	if len(events) == 0 {
		lipgloss.Fprintln(out, theme.Hint.Render("No reviews recorded yet."))
		return
	}

	lipgloss.Fprintf(out, "%-6s  %-16s  %-20s  %-6s  %s\n", "Seq", "Time", "ID", "Rating", "Level")
	lipgloss.Fprintln(out, strings.Repeat("─", 80))
	for _, ev := range events {
		rating := fmt.Sprintf("%-6s", ev.Rating)
		style := theme.Correct
		if !ev.Rating.Recalled() {
			style = theme.Incorrect
		}
		lipgloss.Fprintf(out, "%-6d  %-16s  %-20s  %s  %s -> %s\n",
			ev.Sequence, ev.Timestamp.Local().Format("2006-01-02 15:04"), ev.ItemID,
			style.Render(rating), table.LevelName(ev.PrevLevel), table.LevelName(ev.NewLevel))
	}
	lipgloss.Fprintf(out, "\n%d reviews\n", len(events))
}
