// internal/adapter/onnx/nli.go

package onnx

import (
	"context"
	"fmt"

	tokenizer "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"

	"tweetmood/internal/config"
	"tweetmood/internal/domain/pipeline"
)

// ZeroShot classifies text locally with an exported NLI model. Each candidate
// label becomes a hypothesis paired with the text as premise.
type ZeroShot struct {
	tok        *tokenizer.Tokenizer
	session    *ort.DynamicAdvancedSession
	cfg        config.ONNXConfig
	multiLabel bool
}

// NewZeroShot loads the tokenizer, the runtime library and the model session
func NewZeroShot(cfg config.ONNXConfig, multiLabel bool) (*ZeroShot, error) {
	tok, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	ort.SetSharedLibraryPath(cfg.LibraryPath)

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to set graph optimization: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		opts,
	)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &ZeroShot{
		tok:        tok,
		session:    session,
		cfg:        cfg,
		multiLabel: multiLabel,
	}, nil
}

// Classify scores text against every candidate label. The result maps label to score.
func (z *ZeroShot) Classify(ctx context.Context, text string, labels []string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return map[string]float64{}, nil
	}

	logits, err := z.infer(text, labels)
	if err != nil {
		return nil, err
	}

	scores, err := EntailmentScores(logits, z.cfg.EntailmentIndex, z.cfg.ContradictionIndex, z.multiLabel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrResponseInvalid, err)
	}

	out := make(map[string]float64, len(labels))
	for i, l := range labels {
		out[l] = scores[i]
	}
	return out, nil
}

// infer runs one batch of (premise, hypothesis) pairs and returns the logits rows
func (z *ZeroShot) infer(premise string, labels []string) ([][]float32, error) {
	inputs := make([]tokenizer.EncodeInput, len(labels))
	for i, l := range labels {
		inputs[i] = tokenizer.NewDualEncodeInput(
			tokenizer.NewInputSequence(premise),
			tokenizer.NewInputSequence(Hypothesis(z.cfg.HypothesisTemplate, l)),
		)
	}

	encodings, err := z.tok.EncodeBatch(inputs, true)
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}

	maxLen := 0
	for _, enc := range encodings {
		if l := len(enc.GetIds()); l > maxLen {
			maxLen = l
		}
	}

	batchSize := len(encodings)
	inputIds := make([]int64, batchSize*maxLen)
	attentionMask := make([]int64, batchSize*maxLen)

	// Padding positions keep id 0 and mask 0
	for i, enc := range encodings {
		ids := enc.GetIds()
		am := enc.GetAttentionMask()
		offset := i * maxLen
		for j := range ids {
			inputIds[offset+j] = int64(ids[j])
			attentionMask[offset+j] = int64(am[j])
		}
	}

	shape := ort.NewShape(int64(batchSize), int64(maxLen))

	inputIdsTensor, err := ort.NewTensor(shape, inputIds)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	defer inputIdsTensor.Destroy()

	attentionMaskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	defer attentionMaskTensor.Destroy()

	outputs := make([]ort.Value, 1)
	if err := z.session.Run([]ort.Value{inputIdsTensor, attentionMaskTensor}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("%w: logits tensor is not float32", pipeline.ErrResponseInvalid)
	}

	// Output: [batch_size, num_classes]
	outShape := outputTensor.GetShape()
	if len(outShape) != 2 || outShape[0] != int64(batchSize) {
		return nil, fmt.Errorf("%w: unexpected logits shape %v", pipeline.ErrResponseInvalid, outShape)
	}
	classes := int(outShape[1])
	data := outputTensor.GetData()

	// Copy before the output tensor is destroyed
	logits := make([][]float32, batchSize)
	for i := range logits {
		logits[i] = make([]float32, classes)
		copy(logits[i], data[i*classes:(i+1)*classes])
	}
	return logits, nil
}

// Close releases the session and the runtime environment
func (z *ZeroShot) Close() error {
	if z.session != nil {
		z.session.Destroy()
	}
	return ort.DestroyEnvironment()
}
