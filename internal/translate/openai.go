package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-5-mini"

// implements Translator using OpenAI Chat Completions
type OpenAITranslator struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAITranslator(
	ctx context.Context,
	apiKey string,
	opts Options,
	extra ...option.RequestOption,
) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, extra...)...)

	model := opts.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAITranslator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAITranslator) Translate(
	ctx context.Context,
	items []Item,
) ([]Result, error) {
	return runBatches(ctx, items, t.options, 1, t.complete)
}

func (t *OpenAITranslator) TranslateWithConcurrency(
	ctx context.Context,
	items []Item,
	concurrency int,
) ([]Result, error) {
	return runBatches(ctx, items, t.options, concurrency, t.complete)
}

func (t *OpenAITranslator) complete(ctx context.Context, prompt string) (string, error) {
	completion, err := t.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: t.model,
		},
	)
	if err != nil {
		return "", err
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	if completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no text in OpenAI response")
	}
	return completion.Choices[0].Message.Content, nil
}
