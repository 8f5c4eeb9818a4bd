package assistant

import (
	"context"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

func init() {
	RegisterProvider("gemini", func(model, apiKey string) Provider {
		return newGeminiProvider(model, apiKey)
	})
}

type geminiProvider struct {
	model   string
	apiKey  string
	status  AuthStatus
}

func newGeminiProvider(model, apiKey string) *geminiProvider {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	p := &geminiProvider{model: model, apiKey: apiKey}
	if apiKey == "" {
		p.status = AuthStatus{SignedIn: false, Provider: "gemini", Detail: "no API key stored"}
		return p
	}
	p.status = AuthStatus{SignedIn: true, Provider: "gemini"}
	return p
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Status() AuthStatus { return p.status }

// newClient opens a fresh genai.Client per call. The SDK's client is
// cheap to construct and does not multiplex well across goroutines with
// differing contexts, so the Copilot-style long-lived connection this
// package models elsewhere is not a fit here.
func (p *geminiProvider) newClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
}

func (p *geminiProvider) Complete(ctx context.Context, doc Document) (CompletionResult, error) {
	if !p.status.SignedIn {
		return CompletionResult{}, ErrNoToken
	}

	client, err := p.newClient(ctx)
	if err != nil {
		return CompletionResult{}, err
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)
	prompt := "Continue the following code. Reply with only the continuation, " +
		"no explanation:\n\n" + doc.Prefix

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return CompletionResult{}, err
	}

	text := firstGeminiText(resp)
	if text == "" {
		return CompletionResult{}, nil
	}
	return CompletionResult{
		Completions: []Completion{{Text: text, DisplayText: text, Index: 0}},
	}, nil
}

func (p *geminiProvider) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	if !p.status.SignedIn {
		return ChatResult{}, ErrNoToken
	}

	start := time.Now()
	client, err := p.newClient(ctx)
	if err != nil {
		return ChatResult{}, err
	}
	defer client.Close()

	model := req.Model
	if model == "" {
		model = p.model
	}
	gm := client.GenerativeModel(model)
	if req.Temperature != 0 {
		temp := float32(req.Temperature)
		gm.Temperature = &temp
	}

	cs := gm.StartChat()
	for _, m := range req.Messages[:max(0, len(req.Messages)-1)] {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Parts: []genai.Part{genai.Text(m.Content)},
			Role:  role,
		})
	}

	var last string
	if len(req.Messages) > 0 {
		last = req.Messages[len(req.Messages)-1].Content
	}

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return ChatResult{}, err
	}

	return ChatResult{
		Text:    firstGeminiText(resp),
		Model:   model,
		Elapsed: time.Since(start),
	}, nil
}

func firstGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out
}
