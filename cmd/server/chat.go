package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/sheetform/internal/config"
	"github.com/KirkDiggler/sheetform/internal/services/form"
	"github.com/KirkDiggler/sheetform/internal/transport"
)

const rollCommand = "/roll"

var (
	chatPlayerID string
	chatMethod   string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Fill in a character sheet from the terminal",
	Long: `Start an interactive character sheet form on stdin/stdout.

Type "/roll" to roll the ability scores you have not chosen yet,
or "stop" to leave the form.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatPlayerID, "player", "console", "player ID of the session")
	chatCmd.Flags().StringVar(&chatMethod, "method", "", "dice method for /roll (4d6_drop_lowest or 3d6)")
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	setupLogger(cfg, os.Stderr, false)

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	console := transport.NewConsoleSender(out)

	application, err := newApp(ctx, cfg, console)
	if err != nil {
		return err
	}
	defer application.Close()

	started, err := application.form.StartSession(ctx, &form.StartSessionInput{PlayerID: chatPlayerID})
	if err != nil {
		return err
	}
	sessionID := started.Session.ID
	fmt.Fprintf(out, "AI: %s\n", started.Reply.Text)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var reply *form.Reply
		if text == rollCommand {
			rolled, err := application.form.RollAbilityScores(ctx, &form.RollAbilityScoresInput{
				SessionID: sessionID,
				Method:    chatMethod,
			})
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			reply = rolled.Reply
		} else {
			handled, err := application.form.HandleMessage(ctx, &form.HandleMessageInput{
				SessionID: sessionID,
				Text:      text,
			})
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			reply = handled.Reply
		}

		if err := printReply(out, console, reply); err != nil {
			return err
		}
		if reply.Kind == form.ReplySubmitted || reply.Kind == form.ReplyClosed {
			return nil
		}
	}
}

// printReply prints what was not already streamed to the console
func printReply(out io.Writer, console *transport.ConsoleSender, reply *form.Reply) error {
	if reply.Kind == form.ReplyIncomplete {
		return console.EndStream()
	}
	_, err := fmt.Fprintf(out, "AI: %s\n", reply.Text)
	return err
}
