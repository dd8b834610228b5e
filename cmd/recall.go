package cmd

import (
	"fmt"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/recall"
)

func newRecallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall <conversation-id> <n>",
		Short: "Print the input of an earlier entry",
		Long: `Print what was submitted in the Nth entry of a conversation: your Nth
message in a chat, the prompt and settings of the Nth generation, or the
Nth edit instruction. The conversation is not changed.`,
		Args: cobra.ExactArgs(2),
		RunE: runRecall,
	}

	cmd.Flags().Bool("copy", false, "Copy the recalled text to the clipboard")

	return cmd
}

func runRecall(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return fmt.Errorf("invalid entry number %q", args[1])
	}

	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.library.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	r := conversation.Match(rec.Content,
		func(c *conversation.Chat) recalled {
			var users []conversation.Message
			for _, m := range c.Messages {
				if m.Author == conversation.AuthorUser {
					users = append(users, m)
				}
			}
			if n > len(users) {
				return recalled{err: fmt.Errorf("conversation has %d messages of yours", len(users))}
			}
			d, _ := recall.FromMessage(users[n-1])
			return recalled{text: d.Input}
		},
		func(g *conversation.Generation) recalled {
			if n > len(g.History) {
				return recalled{err: fmt.Errorf("conversation has %d prompts", len(g.History))}
			}
			d := recall.FromGeneration(g.History[n-1])
			return recalled{text: d.Prompt, params: &d.Params}
		},
		func(e *conversation.Editing) recalled {
			if n > len(e.History) {
				return recalled{err: fmt.Errorf("conversation has %d edits", len(e.History))}
			}
			return recalled{text: recall.FromEdit(e.History[n-1]).Prompt}
		},
	)
	if r.err != nil {
		return r.err
	}

	a.out.Plain("%s", r.text)
	if r.params != nil {
		a.out.Muted("%s", describeParams(*r.params))
	}

	if cp, _ := cmd.Flags().GetBool("copy"); cp {
		if err := clipboard.WriteAll(r.text); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		a.out.Success("copied")
	}
	return nil
}

type recalled struct {
	params *conversation.GenerationParams
	err    error
	text   string
}

func describeParams(p conversation.GenerationParams) string {
	return fmt.Sprintf("model %s · aspect %s · %d image(s) · %s", p.Model, p.AspectRatio, p.NumberOfImages, p.OutputMIMEType)
}
