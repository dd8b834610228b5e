package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/store"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved conversations, newest first",
		RunE:    runList,
	}

	cmd.Flags().BoolP("favorites", "f", false, "Only favorite conversations")
	cmd.Flags().StringP("kind", "k", "", "Only conversations of this kind (chat, imageGeneration, imageEditing)")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	var summaries []store.Summary
	if favs, _ := cmd.Flags().GetBool("favorites"); favs {
		summaries, err = a.library.Favorites(cmd.Context())
	} else {
		summaries, err = a.library.List(cmd.Context())
	}
	if err != nil {
		return err
	}

	if kind, _ := cmd.Flags().GetString("kind"); kind != "" {
		if !slices.Contains(conversation.Kinds(), conversation.Kind(kind)) {
			return fmt.Errorf("unknown kind %q", kind)
		}
		summaries = slices.DeleteFunc(summaries, func(s store.Summary) bool {
			return s.Kind != conversation.Kind(kind)
		})
	}

	if len(summaries) == 0 {
		a.out.Muted("no conversations")
		return nil
	}
	for _, s := range summaries {
		a.out.Summary(s)
	}
	return nil
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Show a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	cmd.Flags().Bool("json", false, "Print the stored record as JSON")
	cmd.Flags().StringP("save", "s", "", "Also save the conversation's images to this directory")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.library.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := conversation.Marshal(rec)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), gjson.GetBytes(data, "@pretty").Raw)
		return nil
	}

	star := ""
	if rec.IsFavorite {
		star = " *"
	}
	a.out.Title(rec.Title + star)
	a.out.Muted("%s · %s · created %s", rec.ID, rec.Kind(), rec.CreatedAt.Format("2006-01-02 15:04"))

	images := conversation.Match(rec.Content,
		func(c *conversation.Chat) []conversation.Image {
			a.out.Muted("model %s", c.Model)
			for _, m := range c.Messages {
				a.out.Message(m)
			}
			return nil
		},
		func(g *conversation.Generation) []conversation.Image {
			var all []conversation.Image
			for i, ev := range g.History {
				a.out.Plain("%d. %s", i+1, ev.Prompt)
				a.out.Muted("   %s · %d image(s)", describeParams(ev.Params), len(ev.Images))
				all = append(all, ev.Images...)
			}
			return all
		},
		func(e *conversation.Editing) []conversation.Image {
			a.out.Muted("base image %s · %d bytes", e.Base.MIMEType, len(e.Base.Data))
			if e.Analysis != nil {
				a.out.Title("Analysis")
				a.out.Plain("%s", *e.Analysis)
			}
			all := []conversation.Image{e.Base}
			for i, ev := range e.History {
				a.out.Plain("%d. %s", i+1, ev.Prompt)
				all = append(all, ev.Edited)
			}
			return all
		},
	)

	dir, _ := cmd.Flags().GetString("save")
	if dir == "" {
		return nil
	}
	for i, img := range images {
		path, err := writeImage(dir, fmt.Sprintf("%s-%d", shortID(rec.ID), i), img)
		if err != nil {
			return err
		}
		a.out.Success("saved %s", path)
	}
	return nil
}

func newFavoriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite <conversation-id>",
		Short: "Mark a conversation as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			off, _ := cmd.Flags().GetBool("off")
			if err := a.library.SetFavorite(cmd.Context(), args[0], !off); err != nil {
				return err
			}
			if off {
				a.out.Success("%s is no longer a favorite", args[0])
			} else {
				a.out.Success("%s marked as favorite", args[0])
			}
			return nil
		},
	}

	cmd.Flags().Bool("off", false, "Remove the favorite mark instead")

	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <conversation-id>...",
		Aliases: []string{"remove"},
		Short:   "Delete conversations",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, id := range args {
				if err := a.library.Remove(cmd.Context(), id); err != nil {
					return fmt.Errorf("removing %s: %w", id, err)
				}
				a.out.Success("removed %s", id)
			}
			return nil
		},
	}
}
