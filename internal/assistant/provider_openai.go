package assistant

import (
	"context"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func init() {
	RegisterProvider("openai", func(model, apiKey string) Provider {
		return newOpenAIProvider(model, apiKey)
	})
}

type openAIProvider struct {
	model  string
	status AuthStatus
	client openai.Client
}

func newOpenAIProvider(model, apiKey string) *openAIProvider {
	if model == "" {
		model = openai.ChatModelGPT4o
	}
	p := &openAIProvider{model: model}
	if apiKey == "" {
		p.status = AuthStatus{SignedIn: false, Provider: "openai", Detail: "no API key stored"}
		return p
	}
	p.client = openai.NewClient(option.WithAPIKey(apiKey))
	p.status = AuthStatus{SignedIn: true, Provider: "openai"}
	return p
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Status() AuthStatus { return p.status }

func (p *openAIProvider) Complete(ctx context.Context, doc Document) (CompletionResult, error) {
	if !p.status.SignedIn {
		return CompletionResult{}, ErrNoToken
	}

	prompt := "Continue the following code. Reply with only the continuation, " +
		"no explanation:\n\n" + doc.Prefix

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(256),
	})
	if err != nil {
		return CompletionResult{}, err
	}

	text := firstOpenAIChoiceText(resp)
	if text == "" {
		return CompletionResult{}, nil
	}
	return CompletionResult{
		Completions: []Completion{{Text: text, DisplayText: text, Index: 0}},
	}, nil
}

func (p *openAIProvider) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	if !p.status.SignedIn {
		return ChatResult{}, ErrNoToken
	}

	start := time.Now()
	model := req.Model
	if model == "" {
		model = p.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == "assistant" {
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		} else {
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     model,
		Messages:  msgs,
		MaxTokens: openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return ChatResult{}, err
	}

	return ChatResult{
		Text:    firstOpenAIChoiceText(resp),
		Model:   model,
		Elapsed: time.Since(start),
	}, nil
}

func firstOpenAIChoiceText(resp *openai.ChatCompletion) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}
