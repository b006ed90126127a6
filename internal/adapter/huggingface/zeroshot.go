// internal/adapter/huggingface/zeroshot.go

package huggingface

import (
	"context"
	"fmt"

	"tweetmood/internal/domain/pipeline"
)

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
	Options    Options            `json:"options"`
}

type zeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// ZeroShot runs a hosted zero-shot classification model
type ZeroShot struct {
	client     *Client
	model      string
	multiLabel bool
}

// NewZeroShot creates a new ZeroShot classifier
func NewZeroShot(client *Client, model string, multiLabel bool) *ZeroShot {
	return &ZeroShot{client: client, model: model, multiLabel: multiLabel}
}

// Classify scores text against every candidate label. The result maps label to score.
func (z *ZeroShot) Classify(ctx context.Context, text string, labels []string) (map[string]float64, error) {
	req := zeroShotRequest{
		Inputs: text,
		Parameters: zeroShotParameters{
			CandidateLabels: labels,
			MultiLabel:      z.multiLabel,
		},
		Options: z.client.options(),
	}

	var resp zeroShotResponse
	if err := z.client.infer(ctx, z.model, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Labels) != len(resp.Scores) {
		return nil, fmt.Errorf("%w: %d labels but %d scores", pipeline.ErrResponseInvalid, len(resp.Labels), len(resp.Scores))
	}

	scores := make(map[string]float64, len(resp.Labels))
	for i, l := range resp.Labels {
		scores[l] = resp.Scores[i]
	}
	return scores, nil
}
