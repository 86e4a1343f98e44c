// Package batch applies the extraction client to many images, isolating
// per-item failures so one bad image never aborts the run.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ocr-extractor/ocrextract/internal/utils"
	"github.com/ocr-extractor/ocrextract/pkg/extractor"
	"github.com/ocr-extractor/ocrextract/pkg/types"
)

// FormatText and FormatJSON select how a result is rendered before routing.
const (
	FormatText = "txt"
	FormatJSON = "json"
)

var separator = strings.Repeat("-", 50)

// Options control how a batch run extracts and routes its results.
type Options struct {
	// Prompt is a custom instruction applied to every image; empty selects
	// the extractor's default.
	Prompt string

	// Structured switches to structured-mode extraction. The rendered
	// output is the {"result": ...} container.
	Structured bool

	// Format selects the rendering of plain extractions: FormatText emits
	// the raw answer, FormatJSON wraps it in the single-key container.
	// Ignored in structured mode, which always renders JSON.
	Format string

	// OutputDir routes each result into <dir>/<base>.txt. The directory is
	// created up front; failure to create it aborts the whole batch. When
	// empty, results are printed to Out instead.
	OutputDir string

	// Out receives printed results and per-item error lines. Defaults to
	// os.Stdout.
	Out io.Writer
}

// ItemResult records the outcome for one image.
type ItemResult struct {
	Image string
	Text  string // rendered result, empty when Err is set
	Err   error
}

// Outcome collects per-item results in input order. It is complete after
// Run returns: every submitted image has exactly one entry.
type Outcome struct {
	Items []ItemResult
}

// Succeeded returns the number of items that produced a result.
func (o *Outcome) Succeeded() int {
	n := 0
	for _, item := range o.Items {
		if item.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of items that recorded an error.
func (o *Outcome) Failed() int {
	return len(o.Items) - o.Succeeded()
}

// Driver runs extractions over an ordered list of images, one at a time.
type Driver struct {
	extractor *extractor.Extractor
	log       zerolog.Logger
}

// NewDriver creates a Driver over the given extraction client.
func NewDriver(e *extractor.Extractor, log zerolog.Logger) *Driver {
	return &Driver{extractor: e, log: log}
}

// Run processes the images strictly in input order. Per-item errors are
// captured into the outcome and reported on Out; the loop always continues
// to the next image. Only output-directory creation is fatal.
func (d *Driver) Run(ctx context.Context, images []string, opts Options) (*Outcome, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if opts.OutputDir != "" {
		if err := utils.EnsureDir(opts.OutputDir); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	outcome := &Outcome{Items: make([]ItemResult, 0, len(images))}
	for _, image := range images {
		text, err := d.processOne(ctx, image, opts)
		if err == nil && opts.OutputDir != "" {
			err = d.writeResult(image, text, opts.OutputDir)
		}
		if err != nil {
			d.log.Error().Err(err).Str("image", image).Msg("batch item failed")
			fmt.Fprintf(out, "Error processing %s: %v\n", image, err)
			outcome.Items = append(outcome.Items, ItemResult{Image: image, Err: err})
			continue
		}

		if opts.OutputDir == "" {
			fmt.Fprintf(out, "\nResults for %s:\n%s\n%s\n%s\n", image, separator, text, separator)
		}
		outcome.Items = append(outcome.Items, ItemResult{Image: image, Text: text})
	}
	return outcome, nil
}

// processOne performs one extraction and renders it per the options.
func (d *Driver) processOne(ctx context.Context, image string, opts Options) (string, error) {
	if opts.Structured {
		result, err := d.extractor.ExtractStructured(ctx, image, "")
		if err != nil {
			return "", err
		}
		return renderJSON(result)
	}

	text, err := d.extractor.ExtractText(ctx, image, opts.Prompt)
	if err != nil {
		return "", err
	}
	if opts.Format == FormatJSON {
		return renderJSON(types.StructuredResult{Result: text})
	}
	return text, nil
}

func (d *Driver) writeResult(image, text, outputDir string) error {
	dest := utils.OutputTextPath(outputDir, image)
	if err := os.WriteFile(dest, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	d.log.Info().Str("image", image).Str("output", dest).Msg("saved extraction result")
	return nil
}

func renderJSON(result types.StructuredResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
