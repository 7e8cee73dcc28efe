package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lexiguard-backend/internal/bootstrap"
	"lexiguard-backend/internal/chat"
	"lexiguard-backend/internal/shared/config"
)

var chatCmd = &cobra.Command{
	Use:   "chat <file> [question]",
	Short: "Ask questions about a document",
	Long: `Answer a single question, or read questions from stdin one per line
when no question is given. Earlier answers are kept as conversation history.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	data, mediaType, err := readDocument(args[0])
	if err != nil {
		return err
	}
	core, closeFn, err := bootstrap.OpenCore(cmd.Context(), config.Load())
	if err != nil {
		return err
	}
	defer closeFn()

	text, err := core.Extract.Extract(cmd.Context(), data, mediaType)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var history []chat.Message
	ask := func(question string) error {
		reply, err := core.Chat.Respond(cmd.Context(), chat.Turn{
			DocumentContext: text,
			Question:        question,
			History:         append([]chat.Message(nil), history...),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, reply)
		history = append(history,
			chat.Message{Role: chat.RoleUser, Content: question},
			chat.Message{Role: chat.RoleModel, Content: reply},
		)
		return nil
	}

	if len(args) == 2 {
		return ask(args[1])
	}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if err := ask(question); err != nil {
			return err
		}
	}
	return scanner.Err()
}
