package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/codesentry/internal/conversation"
	"github.com/codesentry/internal/session"
)

// ChatCommand returns the chat command
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Send a message or code snippet for review",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "code",
				Aliases: []string{"s"},
				Usage:   "Treat the message as source code",
			},
			&cli.StringFlag{
				Name:    "conversation",
				Aliases: []string{"r"},
				Usage:   "Resume an existing conversation by `ID`",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Start an interactive chat session",
			},
		},
		ArgsUsage: "MESSAGE",
		Action:    runChat,
	}
}

func runChat(c *cli.Context) error {
	_, gateway, store, err := buildGateway(c)
	if err != nil {
		return err
	}
	defer store.Close()

	state := gateway.Resume(c.String("conversation"))

	if c.Bool("interactive") {
		return runChatLoop(c.Context, gateway, state)
	}

	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: message")
	}

	message := strings.Join(c.Args().Slice(), " ")
	state = gateway.RunTurn(c.Context, message, c.Bool("code"), state)
	printTurn(state)
	return nil
}

func runChatLoop(ctx context.Context, gateway *session.Gateway, state conversation.ConversationState) error {
	fmt.Println("Interactive review session. Type 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		state = gateway.RunTurn(ctx, line, false, state)
		printTurn(state)
	}

	return scanner.Err()
}

// printTurn prints the assistant's latest contribution, or the single error
// sentence when the turn did not produce one.
func printTurn(state conversation.ConversationState) {
	if state.LastError != "" {
		fmt.Println(state.LastError)
		return
	}

	for i := len(state.Messages) - 1; i >= 0; i-- {
		m := state.Messages[i]
		if m.Origin != conversation.OriginAssistant {
			continue
		}
		fmt.Println(m.Content)
		for _, issue := range m.Issues {
			fmt.Printf("  [%s] %s\n", issue.Kind, issue.Description)
			if issue.Suggestion != "" {
				fmt.Printf("    suggestion: %s\n", issue.Suggestion)
			}
		}
		if len(m.SuggestedActions) > 0 {
			fmt.Printf("  next: %s\n", strings.Join(m.SuggestedActions, ", "))
		}
		break
	}

	if state.ConversationID != "" {
		fmt.Printf("\nConversation: %s\n", state.ConversationID)
	}
}
