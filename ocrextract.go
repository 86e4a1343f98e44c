// Package ocrextract provides text extraction from images using
// vision-capable chat language models.
//
// The package sends each image, base64-encoded, to a chat-completions style
// endpoint together with a natural-language instruction, and returns the
// model's textual answer verbatim. There is no local recognition: the remote
// model does all the reading.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		"github.com/ocr-extractor/ocrextract"
//	)
//
//	func main() {
//		// Credential comes from OPENAI_API_KEY when not set explicitly
//		ocr, err := ocrextract.New(ocrextract.Options{})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		text, err := ocr.ExtractText(context.Background(), "receipt.jpg", "")
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(text)
//	}
//
// The package consists of three main components:
//
// 1. Backends (pkg/openai, pkg/ollama): one request/response cycle against a
// vision model behind the pkg/client.VisionClient interface
// 2. Extractor (pkg/extractor): image encoding, prompt defaults, credential
// resolution, and the structured-mode wrapper
// 3. Batch driver (pkg/batch): ordered iteration over many images with
// per-item failure isolation and per-image output files
package ocrextract

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ocr-extractor/ocrextract/pkg/batch"
	"github.com/ocr-extractor/ocrextract/pkg/client"
	"github.com/ocr-extractor/ocrextract/pkg/extractor"
	"github.com/ocr-extractor/ocrextract/pkg/openai"
	"github.com/ocr-extractor/ocrextract/pkg/types"
)

// Version of the ocrextract library
const Version = "1.0.0"

// Options configure a high-level extractor.
type Options struct {
	// APIKey is the explicit credential. When empty, the OPENAI_API_KEY
	// environment variable is consulted; if that is empty too, New fails.
	APIKey string

	// Model overrides the default model (gpt-4o).
	Model string

	// BaseURL overrides the OpenAI endpoint, for proxies and test servers.
	BaseURL string

	// Logger receives diagnostics. The zero value discards all events.
	Logger zerolog.Logger
}

// OCRExtractor is the high-level facade combining the extraction client and
// the batch driver over the default OpenAI backend.
type OCRExtractor struct {
	extractor *extractor.Extractor
	driver    *batch.Driver
}

// New creates an OCRExtractor over the OpenAI backend, resolving the
// credential per the precedence described on Options.APIKey.
func New(opts Options) (*OCRExtractor, error) {
	key, err := extractor.ResolveAPIKey(opts.APIKey)
	if err != nil {
		return nil, err
	}

	vc, err := openai.NewClient(key, opts.BaseURL)
	if err != nil {
		return nil, err
	}

	return NewWithClient(vc, opts), nil
}

// NewWithClient creates an OCRExtractor over a caller-supplied backend.
// Options.APIKey and Options.BaseURL are ignored here; the backend already
// carries its own connection details.
func NewWithClient(vc client.VisionClient, opts Options) *OCRExtractor {
	ext := extractor.New(vc, opts.Model, opts.Logger)
	return &OCRExtractor{
		extractor: ext,
		driver:    batch.NewDriver(ext, opts.Logger),
	}
}

// ExtractText extracts text from one image. An empty prompt selects the
// default instruction.
func (o *OCRExtractor) ExtractText(ctx context.Context, imagePath, prompt string) (string, error) {
	return o.extractor.ExtractText(ctx, imagePath, prompt)
}

// ExtractStructured extracts tabular or form data from one image, returning
// the model's raw answer in a single-key container.
func (o *OCRExtractor) ExtractStructured(ctx context.Context, imagePath, dataFormat string) (types.StructuredResult, error) {
	return o.extractor.ExtractStructured(ctx, imagePath, dataFormat)
}

// BatchProcess runs the batch driver over the given images.
func (o *OCRExtractor) BatchProcess(ctx context.Context, images []string, opts batch.Options) (*batch.Outcome, error) {
	return o.driver.Run(ctx, images, opts)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
