package client

import (
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/sheetform/internal/handlers/form/v1alpha1"
)

var playerID string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a character sheet form",
	Long:  `Start a new form for a player. A previous form of the same player is replaced.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return call(v1alpha1.MethodStartSession, map[string]any{
			v1alpha1.KeyPlayerID: playerID,
		})
	},
}

func init() {
	startCmd.Flags().StringVar(&playerID, "player-id", "", "Player ID (required)")
	_ = startCmd.MarkFlagRequired("player-id") // nolint:errcheck // safe to ignore in init
}
