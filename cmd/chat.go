package cmd

import (
	"bufio"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/session"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with Gemini",
		Long: `Chat with Gemini. With a message argument a single exchange is made;
without one an interactive prompt reads messages from standard input.

Interactive commands:
  /new          start a new conversation
  /model NAME   choose the model (before the first message only)
  /recall N     copy your Nth message into the input; send an empty line to submit it
  /quit         leave`,
		RunE: runChat,
	}

	cmd.Flags().StringP("conversation", "c", "", "Resume the conversation with this id")
	cmd.Flags().StringP("model", "m", "", "Chat model for a new conversation")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = a.cfg.Gateway.ChatModel
	}
	chat := session.NewChat(a.store, a.gateway, model, a.sessionOptions()...)

	if id, _ := cmd.Flags().GetString("conversation"); id != "" {
		if err := chat.Open(ctx, id); err != nil {
			return fmt.Errorf("opening conversation %s: %w", id, err)
		}
	}

	if len(args) > 0 {
		return chatTurn(cmd, a, chat, strings.Join(args, " "))
	}

	messages, err := chat.Messages(ctx)
	if err != nil {
		return err
	}
	for _, m := range messages {
		a.out.Message(m)
	}
	a.out.Muted("model: %s · /quit to leave", chat.Model())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/new":
			chat.Reset()
			a.out.Muted("new conversation · model: %s", chat.Model())
		case strings.HasPrefix(line, "/model"):
			name := strings.TrimSpace(strings.TrimPrefix(line, "/model"))
			if !chat.SetModel(name) {
				a.out.Warn("the model is fixed once a conversation has messages; /new to start over")
				continue
			}
			a.out.Muted("model: %s", chat.Model())
		case strings.HasPrefix(line, "/recall"):
			if err := recallChatInput(cmd, a, chat, strings.TrimSpace(strings.TrimPrefix(line, "/recall"))); err != nil {
				a.out.Warn("%v", err)
			}
		case line == "":
			if d := chat.Draft(); !d.Empty() {
				if err := chatTurn(cmd, a, chat, d.Input); err != nil {
					a.out.Warn("%v", err)
				}
			}
		default:
			if err := chatTurn(cmd, a, chat, line); err != nil {
				a.out.Warn("%v", err)
			}
		}
	}
	return scanner.Err()
}

func chatTurn(cmd *cobra.Command, a *app, chat *session.Chat, input string) error {
	turn, err := chat.Submit(cmd.Context(), input)
	if err != nil {
		return err
	}
	if !turn.Accepted {
		return nil
	}
	a.out.Message(turn.Reply)
	a.out.Muted("conversation %s", turn.ConversationID)
	return nil
}

// recallChatInput copies the user's nth message (1-based) into the draft.
func recallChatInput(cmd *cobra.Command, a *app, chat *session.Chat, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return fmt.Errorf("usage: /recall N")
	}

	messages, err := chat.Messages(cmd.Context())
	if err != nil {
		return err
	}
	users := slices.DeleteFunc(messages, func(m conversation.Message) bool {
		return m.Author != conversation.AuthorUser
	})
	if n > len(users) {
		return fmt.Errorf("only %d messages of yours to recall", len(users))
	}

	chat.Recall(users[n-1])
	a.out.Plain("input: %s", chat.Draft().Input)
	return nil
}
