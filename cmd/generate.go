package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/recall"
	"github.com/guilhermegouw/atelier/internal/session"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate images from a prompt",
		Long: `Generate images from a prompt and save them to the output directory.

With --conversation the prompt is added to an existing generation
conversation. --recall N reuses the prompt and settings of its Nth prompt;
a prompt argument or setting flags override the recalled values.`,
		RunE: runGenerate,
	}

	cmd.Flags().StringP("conversation", "c", "", "Add to the generation conversation with this id")
	cmd.Flags().Int("recall", 0, "Reuse the prompt and settings of the Nth prompt of the conversation")
	cmd.Flags().String("model", "", "Image model")
	cmd.Flags().String("aspect", "", fmt.Sprintf("Aspect ratio (%s)", joinRatios()))
	cmd.Flags().IntP("count", "n", 0, fmt.Sprintf("Number of images (1-%d)", conversation.MaxNumberOfImages))
	cmd.Flags().String("format", "", "Output MIME type (image/png or image/jpeg)")
	cmd.Flags().StringP("out", "o", ".", "Directory to save images to")

	return cmd
}

func joinRatios() string {
	ratios := conversation.AspectRatios()
	s := make([]string, len(ratios))
	for i, r := range ratios {
		s[i] = string(r)
	}
	return strings.Join(s, ", ")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	gen := session.NewGeneration(a.store, a.gateway, a.cfg.GenerationParams(), a.sessionOptions()...)

	if id, _ := cmd.Flags().GetString("conversation"); id != "" {
		if err := gen.Open(ctx, id); err != nil {
			return fmt.Errorf("opening conversation %s: %w", id, err)
		}
	}

	if n, _ := cmd.Flags().GetInt("recall"); n > 0 {
		history, err := gen.History(ctx)
		if err != nil {
			return err
		}
		if n > len(history) {
			return fmt.Errorf("conversation has %d prompts", len(history))
		}
		gen.Recall(history[n-1])
	}

	draft := gen.Draft()
	if len(args) > 0 {
		draft.Prompt = strings.Join(args, " ")
	}
	applyGenerationFlags(cmd, &draft)

	if draft.Empty() {
		return errors.New("no prompt given")
	}
	if err := draft.Params.Validate(); err != nil {
		return err
	}

	res, err := gen.Submit(ctx, draft)
	if err != nil {
		return err
	}

	history, err := gen.History(ctx)
	if err != nil {
		return err
	}
	prefix := fmt.Sprintf("%s-%d", shortID(res.ConversationID), len(history))

	out, _ := cmd.Flags().GetString("out")
	for i, img := range res.Event.Images {
		path, err := writeImage(out, fmt.Sprintf("%s-%d", prefix, i+1), img)
		if err != nil {
			return err
		}
		a.out.Success("saved %s", path)
	}
	a.out.Muted("conversation %s", res.ConversationID)
	return nil
}

func applyGenerationFlags(cmd *cobra.Command, d *recall.GenerationDraft) {
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		d.Params.Model = v
	}
	if v, _ := cmd.Flags().GetString("aspect"); v != "" {
		d.Params.AspectRatio = conversation.AspectRatio(v)
	}
	if v, _ := cmd.Flags().GetInt("count"); v != 0 {
		d.Params.NumberOfImages = v
	}
	if v, _ := cmd.Flags().GetString("format"); v != "" {
		d.Params.OutputMIMEType = v
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
