package advisor

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mdewey/buywrite/internal/core"
	"github.com/mdewey/buywrite/internal/report"
)

type claudeAdvisor struct {
	client  anthropic.Client
	model   string
	topRows int
}

func newClaude(apiKey, model string, topRows int) (*claudeAdvisor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key required")
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &claudeAdvisor{client: client, model: model, topRows: topRows}, nil
}

func (a *claudeAdvisor) Name() string {
	return "claude"
}

func (a *claudeAdvisor) Advise(ctx context.Context, summary report.Summary, rows []report.Row) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(summary, rows, a.topRows))),
		},
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", core.WrapError(core.ErrAdvisorFailed, err)
	}

	if len(resp.Content) > 0 && resp.Content[0].Type == "text" {
		return resp.Content[0].Text, nil
	}
	return "", nil
}
