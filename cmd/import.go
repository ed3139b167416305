package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lolmantran/vietlearn/internal/vocab"
)

var importCmd = &cobra.Command{
	Use:   "import <deck-file>",
	Short: "Import a JSON or YAML vocabulary deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, err := vocab.LoadDeck(args[0])
		if err != nil {
			return err
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.db.UpsertItems(cmd.Context(), deck.Items)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}
		e.log.Info("imported deck", zap.String("deck", deck.Name), zap.Int("items", n))
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words from %q\n", n, deck.Name)
		return nil
	},
}
