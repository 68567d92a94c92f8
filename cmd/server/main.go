// Package main is the entry point for the sheetform server and console
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/sheetform/cmd/server/client"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "sheetform",
	Short: "D&D character sheet form",
	Long:  `sheetform collects a D&D 5e character sheet through conversation, validates it and saves it as JSON.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional file of SHEETFORM_* variables")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(client.ClientCmd)
}
