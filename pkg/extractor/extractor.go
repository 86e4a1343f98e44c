// Package extractor implements the extraction client: it turns one
// (image, instruction) pair into one text answer from a vision model.
package extractor

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ocr-extractor/ocrextract/pkg/client"
	"github.com/ocr-extractor/ocrextract/pkg/types"
)

const (
	// DefaultModel is used when no model override is given.
	DefaultModel = "gpt-4o"

	// DefaultPrompt asks the model for a plain transcription.
	DefaultPrompt = "Extract all text from this image."

	// DefaultDataFormat is the structured-mode format hint.
	DefaultDataFormat = "table"

	// APIKeyEnv names the environment variable consulted when no explicit
	// credential is given.
	APIKeyEnv = "OPENAI_API_KEY"
)

// ResolveAPIKey returns the service credential with a fixed precedence:
// the explicit value wins, then APIKeyEnv, then a ConfigError.
func ResolveAPIKey(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if key := os.Getenv(APIKeyEnv); key != "" {
		return key, nil
	}
	return "", &types.ConfigError{
		Reason: "OpenAI API key is required: provide it as an argument or set " + APIKeyEnv,
	}
}

// Extractor asks a vision model backend to read text out of image files.
// It holds no per-call state; every call builds a fresh request.
type Extractor struct {
	client client.VisionClient
	model  string
	log    zerolog.Logger
}

// New creates an Extractor over the given backend. An empty model selects
// DefaultModel. The logger is passed in explicitly; a zero value discards
// all events.
func New(vc client.VisionClient, model string, log zerolog.Logger) *Extractor {
	if model == "" {
		model = DefaultModel
	}
	return &Extractor{client: vc, model: model, log: log}
}

// Model returns the model identifier requests are issued with.
func (e *Extractor) Model() string {
	return e.model
}

// ExtractText reads the image file, base64-encodes it, and asks the backend
// to answer the prompt for it. An empty prompt selects DefaultPrompt. The
// answer is returned verbatim.
func (e *Extractor) ExtractText(ctx context.Context, imagePath, prompt string) (string, error) {
	if prompt == "" {
		prompt = DefaultPrompt
	}

	imgB64, err := encodeImage(imagePath)
	if err != nil {
		return "", err
	}

	e.log.Debug().Str("image", imagePath).Str("model", e.model).Msg("sending extraction request")

	text, err := e.client.Extract(ctx, e.model, prompt, imgB64)
	if err != nil {
		return "", fmt.Errorf("extraction failed for %s: %w", imagePath, err)
	}

	e.log.Debug().Str("image", imagePath).Int("chars", len(text)).Msg("extraction ok")
	return text, nil
}

// ExtractStructured asks the model to read tabular or form data out of the
// image and render it as JSON. An empty dataFormat selects
// DefaultDataFormat. The answer is wrapped, not parsed: the caller receives
// the literal model output even when it is not valid JSON.
func (e *Extractor) ExtractStructured(ctx context.Context, imagePath, dataFormat string) (types.StructuredResult, error) {
	if dataFormat == "" {
		dataFormat = DefaultDataFormat
	}
	prompt := fmt.Sprintf("Extract the %s data from this image and format it as JSON.", dataFormat)

	text, err := e.ExtractText(ctx, imagePath, prompt)
	if err != nil {
		return types.StructuredResult{}, err
	}

	return types.StructuredResult{Result: text}, nil
}

// encodeImage reads the file fully into memory and returns its raw bytes
// base64-encoded. The pixel content is never decoded.
func encodeImage(imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
