// Package gemini implements the AI gateway on the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/gateway"
)

// SystemInstruction is sent with every chat completion.
const SystemInstruction = "You are a helpful and creative AI assistant. Your name is Gemini."

// Config holds the client settings.
type Config struct {
	APIKey        string
	BaseURL       string
	AnalysisModel string
	EditModel     string
}

// models is the part of *genai.Models the client uses.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Client talks to the Gemini API.
type Client struct {
	models        models
	analysisModel string
	editModel     string
}

var _ gateway.Gateway = (*Client)(nil)

// New creates a client for the Gemini API.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: no API key configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	return newClient(client.Models, cfg), nil
}

func newClient(m models, cfg Config) *Client {
	c := &Client{
		models:        m,
		analysisModel: cfg.AnalysisModel,
		editModel:     cfg.EditModel,
	}
	if c.analysisModel == "" {
		c.analysisModel = conversation.DefaultAnalysisModel
	}
	if c.editModel == "" {
		c.editModel = conversation.DefaultEditModel
	}
	return c
}

// ChatComplete implements gateway.Gateway.
func (c *Client) ChatComplete(ctx context.Context, model string, history []conversation.Message) (string, error) {
	resp, err := c.models.GenerateContent(ctx, model, makeContents(history), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("gemini: chat: %w", err)
	}
	return resp.Text(), nil
}

// GenerateImages implements gateway.Gateway.
func (c *Client) GenerateImages(ctx context.Context, prompt string, params conversation.GenerationParams) ([]conversation.Image, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.models.GenerateImages(ctx, params.Model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(params.NumberOfImages), //nolint:gosec // Validated to 1..4.
		AspectRatio:    string(params.AspectRatio),
		OutputMIMEType: params.OutputMIMEType,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: generate images: %w", err)
	}

	var images []conversation.Image
	for _, generated := range resp.GeneratedImages {
		if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		mime := generated.Image.MIMEType
		if mime == "" {
			mime = params.OutputMIMEType
		}
		images = append(images, conversation.Image{MIMEType: mime, Data: generated.Image.ImageBytes})
	}
	return images, nil
}

// AnalyzeImage implements gateway.Gateway.
func (c *Client) AnalyzeImage(ctx context.Context, img conversation.Image, instruction string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.analysisModel, imageWithText(img, instruction), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: analyze image: %w", err)
	}
	return resp.Text(), nil
}

// EditImage implements gateway.Gateway. The first inline image of the first
// candidate is the result.
func (c *Client) EditImage(ctx context.Context, img conversation.Image, instruction string) (*conversation.Image, error) {
	resp, err := c.models.GenerateContent(ctx, c.editModel, imageWithText(img, instruction), &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage)},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: edit image: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil //nolint:nilnil // No image is not an error here; Safe reports it.
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := part.InlineData.MIMEType
		if mime == "" {
			mime = conversation.MIMETypePNG
		}
		return &conversation.Image{MIMEType: mime, Data: part.InlineData.Data}, nil
	}
	return nil, nil //nolint:nilnil // Text-only answer.
}

func makeContents(history []conversation.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		if m.IsPlaceholder() {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if m.Author == conversation.AuthorModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}

func imageWithText(img conversation.Image, text string) []*genai.Content {
	return []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, img.MIMEType),
			genai.NewPartFromText(text),
		}, genai.RoleUser),
	}
}
