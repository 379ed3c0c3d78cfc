package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/kidquest/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "kidquest",
	Short: "Mini-games that teach kids life skills",
	Long: `KidQuest is a terminal arcade of short mini-games about money, values,
health and the digital world. Pass a game to earn coins and badges and to
unlock the next one.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "SQLite file or server DSN (overrides KIDQUEST_DB)")
	flags.String("db-driver", "", "Database driver: sqlite, postgres or mysql (overrides KIDQUEST_DB_DRIVER)")
	flags.String("content-dir", "", "Directory of extra game files (overrides KIDQUEST_CONTENT_DIR)")
	flags.String("log-level", "", "Log level: trace, debug, info, warn or error (overrides KIDQUEST_LOG_LEVEL)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(walletCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// runApp launches the TUI on the home screen.
func runApp(cmd *cobra.Command) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	return launch(rt, "")
}

// launch runs the TUI, opening gameID straight away when set.
func launch(rt *runtime, gameID string) error {
	env, err := rt.env()
	if err != nil {
		return err
	}
	return app.Run(app.Options{Env: env, GameID: gameID})
}
