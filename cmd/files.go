package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/guilhermegouw/atelier/internal/conversation"
)

// readImage loads an image file, detecting its type from the content.
func readImage(path string) (conversation.Image, error) {
	//nolint:gosec // G304: the user names the file to upload.
	data, err := os.ReadFile(path)
	if err != nil {
		return conversation.Image{}, fmt.Errorf("reading image: %w", err)
	}

	img := conversation.Image{MIMEType: mimetype.Detect(data).String(), Data: data}
	if err := img.Validate(); err != nil {
		return conversation.Image{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// writeImage writes img to dir as name plus the extension of its type and
// returns the path written.
func writeImage(dir, name string, img conversation.Image) (string, error) {
	ext := ".bin"
	if m := mimetype.Lookup(img.MIMEType); m != nil && m.Extension() != "" {
		ext = m.Extension()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, name+ext)
	if err := os.WriteFile(path, img.Data, 0o600); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return path, nil
}
