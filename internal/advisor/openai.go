package advisor

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/mdewey/buywrite/internal/core"
	"github.com/mdewey/buywrite/internal/report"
)

type openaiAdvisor struct {
	client  *openai.Client
	model   string
	topRows int
}

func newOpenAI(apiKey, model string, topRows int) (*openaiAdvisor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key required")
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &openaiAdvisor{client: openai.NewClient(apiKey), model: model, topRows: topRows}, nil
}

func (a *openaiAdvisor) Name() string {
	return "openai"
}

func (a *openaiAdvisor) Advise(ctx context.Context, summary report.Summary, rows []report.Row) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		MaxTokens: 1024,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(summary, rows, a.topRows)},
		},
	})
	if err != nil {
		return "", core.WrapError(core.ErrAdvisorFailed, err)
	}

	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, nil
	}
	return "", nil
}
