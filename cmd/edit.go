package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/atelier/internal/session"
)

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [image] [instruction...]",
		Short: "Edit an image with instructions",
		Long: `Upload an image and apply instructions to it one after another; each
instruction edits the result of the previous one. The final image is saved
to the output directory.

With --conversation the instructions continue an existing editing
conversation and no image argument is taken.`,
		RunE: runEdit,
	}

	cmd.Flags().StringP("conversation", "c", "", "Continue the editing conversation with this id")
	cmd.Flags().Bool("analyze", false, "Describe the uploaded image")
	cmd.Flags().StringP("out", "o", ".", "Directory to save the edited image to")

	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("conversation")
	if id == "" && len(args) == 0 {
		return errors.New("an image file or --conversation is required")
	}

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	ed := session.NewEditing(a.store, a.gateway, a.sessionOptions()...)

	instructions := args
	if id != "" {
		if err := ed.Open(ctx, id); err != nil {
			return fmt.Errorf("opening conversation %s: %w", id, err)
		}
	} else {
		img, err := readImage(args[0])
		if err != nil {
			return err
		}
		id, err = ed.Upload(ctx, img, filepath.Base(args[0]))
		if err != nil {
			return err
		}
		a.out.Muted("conversation %s", id)
		instructions = args[1:]
	}

	if analyze, _ := cmd.Flags().GetBool("analyze"); analyze {
		text, err := ed.Analyze(ctx)
		if err != nil {
			return err
		}
		a.out.Title("Analysis")
		a.out.Plain("%s", text)
	}

	edited := false
	for _, instruction := range instructions {
		res, err := ed.Edit(ctx, instruction)
		if err != nil {
			a.out.Warn("%q: %v", instruction, err)
			continue
		}
		if res.Accepted {
			a.out.Success("applied %q", instruction)
			edited = true
		}
	}
	if !edited {
		return nil
	}

	img, err := ed.Image(ctx)
	if err != nil {
		return err
	}
	history, err := ed.History(ctx)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	path, err := writeImage(out, fmt.Sprintf("%s-edit-%d", shortID(ed.ActiveID()), len(history)), img)
	if err != nil {
		return err
	}
	a.out.Success("saved %s", path)
	return nil
}
