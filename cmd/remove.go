package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var removeCmd = &cobra.Command{
	Use:   "remove <item-id>...",
	Short: "Remove words and their review schedules",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := removeItems(cmd.Context(), e.db, cmd.OutOrStdout(), args)
		if err != nil {
			return err
		}
		e.log.Info("removed items", zap.Int("items", n))
		return nil
	},
}

// removeItems deletes the known IDs and reports unknown ones. It returns
// how many items were removed.
func removeItems(ctx context.Context, db backend, out io.Writer, ids []string) (int, error) {
	items, err := db.Items(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(items))
	for _, it := range items {
		known[it.ID] = true
	}

	n := 0
	for _, id := range ids {
		if !known[id] {
			fmt.Fprintf(out, "No word with id %q\n", id)
			continue
		}
		if err := db.DeleteItem(ctx, id); err != nil {
			return n, err
		}
		delete(known, id)
		n++
	}
	fmt.Fprintf(out, "Removed %d word(s)\n", n)
	return n, nil
}
