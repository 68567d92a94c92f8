package client

import (
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/sheetform/internal/handlers/form/v1alpha1"
)

var getCmd = &cobra.Command{
	Use:   "get [session-id]",
	Short: "Get a form session",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return call(v1alpha1.MethodGetSession, map[string]any{
			v1alpha1.KeySessionID: args[0],
		})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [session-id]",
	Short: "Close a form without saving",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return call(v1alpha1.MethodCancelSession, map[string]any{
			v1alpha1.KeySessionID: args[0],
		})
	},
}
