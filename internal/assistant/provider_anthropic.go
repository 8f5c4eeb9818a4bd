package assistant

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func init() {
	RegisterProvider("anthropic", func(model, apiKey string) Provider {
		return newAnthropicProvider(model, apiKey)
	})
}

type anthropicProvider struct {
	model  string
	status AuthStatus
	client anthropic.Client
}

func newAnthropicProvider(model, apiKey string) *anthropicProvider {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	p := &anthropicProvider{model: model}
	if apiKey == "" {
		p.status = AuthStatus{SignedIn: false, Provider: "anthropic", Detail: "no API key stored"}
		return p
	}
	p.client = anthropic.NewClient(option.WithAPIKey(apiKey))
	p.status = AuthStatus{SignedIn: true, Provider: "anthropic"}
	return p
}

func (p *anthropicProvider) Name() string { return "anthropic" }

func (p *anthropicProvider) Status() AuthStatus { return p.status }

// Complete synthesizes a single inline completion from a short chat turn,
// since Anthropic's API exposes no dedicated fill-in-the-middle endpoint.
func (p *anthropicProvider) Complete(ctx context.Context, doc Document) (CompletionResult, error) {
	if !p.status.SignedIn {
		return CompletionResult{}, ErrNoToken
	}

	prompt := "Continue the following code. Reply with only the continuation, " +
		"no explanation:\n\n" + doc.Prefix

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 256,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return CompletionResult{}, err
	}

	text := extractAnthropicText(msg)
	if text == "" {
		return CompletionResult{}, nil
	}
	return CompletionResult{
		Completions: []Completion{{
			Text:        text,
			DisplayText: text,
			Index:       0,
		}},
	}, nil
}

func (p *anthropicProvider) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
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

	msgs := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	})
	if err != nil {
		return ChatResult{}, err
	}

	return ChatResult{
		Text:    extractAnthropicText(resp),
		Model:   model,
		Elapsed: time.Since(start),
	}, nil
}

func extractAnthropicText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	var out string
	for _, block := range msg.Content {
		if text := block.Text; text != "" {
			out += text
		}
	}
	return out
}
