// internal/adapter/huggingface/translation.go

package huggingface

import (
	"context"
)

type translationRequest struct {
	Inputs  string  `json:"inputs"`
	Options Options `json:"options"`
}

type translationCandidate struct {
	TranslationText string `json:"translation_text"`
}

// Translator runs one hosted translation model
type Translator struct {
	client *Client
	model  string
}

// NewTranslator creates a new Translator for a model id such as Helsinki-NLP/opus-mt-ru-en
func NewTranslator(client *Client, model string) *Translator {
	return &Translator{client: client, model: model}
}

// Model returns the model id
func (t *Translator) Model() string { return t.model }

// Translate returns the candidate translations in model order
func (t *Translator) Translate(ctx context.Context, text string) ([]string, error) {
	var candidates []translationCandidate
	err := t.client.infer(ctx, t.model, translationRequest{Inputs: text, Options: t.client.options()}, &candidates)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.TranslationText)
	}
	return out, nil
}
