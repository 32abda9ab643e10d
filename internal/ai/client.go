// Package ai generates short pitch preparation tips for an investor.
package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/opencrew/pitchboard/internal/models"
	"github.com/sashabaranov/go-openai"
)

var ErrTipsUnavailable = errors.NewSentinel("pitch tips unavailable")

const systemPrompt = "You are a fundraising coach. Given an investor profile, " +
	"reply with exactly three short, actionable tips for pitching them. " +
	"Each tip is one sentence on its own line, no numbering or preamble."

type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient configures the OpenAI-compatible chat client. baseURL is optional
// and exists so tests can point the client at a local server.
func NewClient(apiKey, baseURL string, logger *slog.Logger) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  openai.GPT3Dot5Turbo1106,
		logger: logger.With("source", "ai.Client"),
	}
}

func tipsPrompt(investor models.Investor) string {
	return fmt.Sprintf(
		"Investor: %s (%s)\nSector focus: %s\nStage focus: %s\nThesis: %s\nBio: %s\nPortfolio: %s\n\nHow should a founder pitch them?",
		investor.Name, investor.Fund, investor.SectorFocus, investor.StageFocus,
		investor.Thesis, investor.Bio, investor.PortfolioCompanies,
	)
}

// GenerateTips asks the model for three pitching tips tailored to the
// investor. Failures are wrapped under ErrTipsUnavailable so handlers can map
// them to a single user-facing message.
func (c *Client) GenerateTips(ctx context.Context, investor models.Investor) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 256,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: tipsPrompt(investor)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTipsUnavailable,
			errors.Wrap(err, "create chat completion", slog.Int64("investor_id", investor.ID)))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: %w", ErrTipsUnavailable, errors.New("empty completion"))
	}

	c.logger.LogAttrs(ctx, slog.LevelDebug, "generated pitch tips",
		slog.Int64("investor_id", investor.ID))
	return resp.Choices[0].Message.Content, nil
}
