package client

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/sheetform/internal/handlers/form/v1alpha1"
)

var sendCmd = &cobra.Command{
	Use:   "send [session-id] [message...]",
	Short: "Send a message to a form",
	Long: `Send one chat message to a form session.

  Example: send form_abc123 I am Aria, an elf wizard`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		return call(v1alpha1.MethodSendMessage, map[string]any{
			v1alpha1.KeySessionID: args[0],
			v1alpha1.KeyText:      strings.Join(args[1:], " "),
		})
	},
}
