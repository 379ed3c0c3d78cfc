package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <game-id>",
	Short: "Play one game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		g, ok := rt.registry.Get(id)
		if !ok {
			return fmt.Errorf("unknown game %q (see kidquest games)", id)
		}
		env, err := rt.env()
		if err != nil {
			return err
		}
		w, err := env.Rewards.Wallet(cmd.Context())
		if err != nil {
			return fmt.Errorf("load wallet: %w", err)
		}
		if !w.Playable(g.ID, rt.registry.IsEntry(g.ID)) {
			if src, ok := rt.registry.UnlockedBy(g.ID); ok {
				return fmt.Errorf("%s is locked: pass %q (%s) first", g.ID, src.Title, src.ID)
			}
			return fmt.Errorf("%s is locked", g.ID)
		}
		return launch(rt, g.ID)
	},
}
