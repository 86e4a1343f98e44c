package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ocr-extractor/ocrextract/internal/config"
	"github.com/ocr-extractor/ocrextract/internal/telemetry"
	"github.com/ocr-extractor/ocrextract/internal/utils"
	"github.com/ocr-extractor/ocrextract/pkg/batch"
	"github.com/ocr-extractor/ocrextract/pkg/client"
	"github.com/ocr-extractor/ocrextract/pkg/extractor"
	"github.com/ocr-extractor/ocrextract/pkg/ollama"
	"github.com/ocr-extractor/ocrextract/pkg/openai"
	"github.com/ocr-extractor/ocrextract/pkg/types"
)

var separator = strings.Repeat("-", 50)

func main() {
	var image, dir, list string
	var prompt, model, output, format, apiKey string
	var backend, url, configPath string
	var logLevel, logFile string
	var structured, logJSON bool

	// Input selection (mutually exclusive)
	flag.StringVar(&image, "image", "", "path to a single image file")
	flag.StringVar(&dir, "dir", "", "path to a directory containing images")
	flag.StringVar(&list, "list", "", "path to a text file with image paths (one per line)")

	// Processing options
	flag.StringVar(&prompt, "prompt", "", "custom prompt for the model")
	flag.BoolVar(&structured, "structured", false, "extract structured data (like tables)")
	flag.StringVar(&model, "model", "", "model to use (default: "+extractor.DefaultModel+")")

	// Output options
	flag.StringVar(&output, "output", "", "output file for single image or directory for batch processing")
	flag.StringVar(&format, "format", "", "output format: txt|json (default: txt)")

	// Backend options
	flag.StringVar(&apiKey, "api-key", "", "OpenAI API key (if not set in environment variable)")
	flag.StringVar(&backend, "backend", "", "backend to use: openai or ollama (default: openai)")
	flag.StringVar(&url, "url", "", "server URL override for the selected backend")
	flag.StringVar(&configPath, "config", "", "path to a JSON config file")

	// Logging options
	flag.StringVar(&logLevel, "log-level", "", "log level: trace|debug|info|warn|error")
	flag.StringVar(&logFile, "log-file", "", "optional log file (rotated)")
	flag.BoolVar(&logJSON, "log-json", false, "emit JSON log lines instead of console output")

	flag.Parse()

	// A local .env may carry the credential
	_ = godotenv.Load()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			fatal(err)
		}
		cfg = loaded
	}

	// Flags override the config file
	if backend != "" {
		cfg.Client.Backend = backend
	}
	if url != "" {
		cfg.Client.BaseURL = url
	}
	if model != "" {
		cfg.Client.Model = model
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	log := telemetry.New(telemetry.Config{
		Level: cfg.Log.Level,
		JSON:  logJSON,
		File:  cfg.Log.File,
	})

	selected := 0
	for _, v := range []string{image, dir, list} {
		if v != "" {
			selected++
		}
	}
	if selected != 1 {
		fmt.Println("Error: exactly one of -image, -dir or -list is required")
		flag.Usage()
		os.Exit(1)
	}

	visionClient, err := buildClient(cfg, apiKey)
	if err != nil {
		fatal(err)
	}

	ext := extractor.New(visionClient, cfg.Client.Model, log)
	driver := batch.NewDriver(ext, log)
	ctx := context.Background()

	opts := batch.Options{
		Prompt:     prompt,
		Structured: structured,
		Format:     cfg.Output.Format,
		OutputDir:  output,
	}

	switch {
	case image != "":
		runSingle(ctx, ext, image, prompt, output, cfg.Output.Format, structured)

	case dir != "":
		if !utils.DirExists(dir) {
			fatal(&types.InputError{Path: dir, Reason: "directory not found"})
		}
		images, err := utils.ListImageFiles(dir)
		if err != nil {
			fatal(err)
		}
		if len(images) == 0 {
			fatal(&types.InputError{Path: dir, Reason: "no image files found in directory"})
		}
		fmt.Printf("Found %d images to process\n", len(images))
		runBatch(ctx, driver, images, opts)

	case list != "":
		if !utils.FileExists(list) {
			fatal(&types.InputError{Path: list, Reason: "list file not found"})
		}
		paths, err := utils.ReadImageList(list)
		if err != nil {
			fatal(err)
		}
		var images []string
		for _, p := range paths {
			if utils.FileExists(p) {
				images = append(images, p)
			} else {
				fmt.Printf("Warning: file not found, skipping: %s\n", p)
			}
		}
		if len(images) == 0 {
			fatal(&types.InputError{Path: list, Reason: "no valid image paths found in the list"})
		}
		fmt.Printf("Processing %d images from list\n", len(images))
		runBatch(ctx, driver, images, opts)
	}
}

// buildClient selects the extraction backend. Only the openai backend
// needs a credential.
func buildClient(cfg *config.Config, apiKey string) (client.VisionClient, error) {
	switch cfg.Client.Backend {
	case "ollama":
		return ollama.NewClient(cfg.Client.BaseURL)
	default:
		key, err := extractor.ResolveAPIKey(apiKey)
		if err != nil {
			return nil, err
		}
		return openai.NewClient(key, cfg.Client.BaseURL)
	}
}

func runSingle(ctx context.Context, ext *extractor.Extractor, image, prompt, output, format string, structured bool) {
	if !utils.FileExists(image) {
		fatal(&types.InputError{Path: image, Reason: "image file not found"})
	}

	text, err := extractOne(ctx, ext, image, prompt, format, structured)
	if err != nil {
		fatal(err)
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
			fatal(err)
		}
		fmt.Printf("Results saved to %s\n", output)
		return
	}

	fmt.Printf("\nExtracted Text:\n%s\n%s\n%s\n", separator, text, separator)
}

func extractOne(ctx context.Context, ext *extractor.Extractor, image, prompt, format string, structured bool) (string, error) {
	if structured {
		result, err := ext.ExtractStructured(ctx, image, "")
		if err != nil {
			return "", err
		}
		return renderJSON(result)
	}

	text, err := ext.ExtractText(ctx, image, prompt)
	if err != nil {
		return "", err
	}
	if format == batch.FormatJSON {
		return renderJSON(types.StructuredResult{Result: text})
	}
	return text, nil
}

func runBatch(ctx context.Context, driver *batch.Driver, images []string, opts batch.Options) {
	outcome, err := driver.Run(ctx, images, opts)
	if err != nil {
		fatal(err)
	}
	if outcome.Failed() > 0 {
		fmt.Printf("Processed %d images: %d succeeded, %d failed\n",
			len(outcome.Items), outcome.Succeeded(), outcome.Failed())
	}
}

func renderJSON(result types.StructuredResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// fatal reports a configuration or input error and stops. Per-item batch
// failures never reach here; they are handled inside the batch loop.
func fatal(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}
