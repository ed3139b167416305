package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Lolmantran/vietlearn/internal/config"
	"github.com/Lolmantran/vietlearn/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "vietlearn",
	Short: "Spaced-repetition Vietnamese vocabulary trainer",
	Long: "vietlearn schedules Vietnamese vocabulary reviews with a fixed interval ladder\n" +
		"and runs self-graded review sessions and quizzes in the terminal.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides VIETLEARN_DB env var)")
	rootCmd.PersistentFlags().String("learner", "", "Learner ID (overrides the learner config key)")
	rootCmd.PersistentFlags().String("config", "", "Read configuration from this file only")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the database.path config key, then VIETLEARN_DB env var, then the
// default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	return store.DefaultDBPath()
}
