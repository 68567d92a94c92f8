package client

import (
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/sheetform/internal/handlers/form/v1alpha1"
)

var rollMethod string

var rollCmd = &cobra.Command{
	Use:   "roll [session-id]",
	Short: "Roll the missing ability scores of a form",
	Long: `Roll dice for every ability score the form does not have yet.

  Example: roll form_abc123 --method 3d6`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return call(v1alpha1.MethodRollAbilityScores, map[string]any{
			v1alpha1.KeySessionID: args[0],
			v1alpha1.KeyMethod:    rollMethod,
		})
	},
}

func init() {
	rollCmd.Flags().StringVar(&rollMethod, "method", "", "4d6_drop_lowest (default) or 3d6")
}
