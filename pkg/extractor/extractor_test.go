package extractor

import (
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ocr-extractor/ocrextract/pkg/types"
)

// fakeClient records the last call and returns a canned answer.
type fakeClient struct {
	model  string
	prompt string
	imgB64 string
	calls  int

	answer string
	err    error
}

func (f *fakeClient) Extract(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	f.calls++
	f.model = model
	f.prompt = prompt
	f.imgB64 = imgB64
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func writeTestImage(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.jpg")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
	return path
}

func TestResolveAPIKey(t *testing.T) {
	t.Run("explicit wins over environment", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "env-key")
		key, err := ResolveAPIKey("explicit-key")
		if err != nil {
			t.Fatalf("ResolveAPIKey failed: %v", err)
		}
		if key != "explicit-key" {
			t.Errorf("expected explicit-key, got %q", key)
		}
	})

	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "env-key")
		key, err := ResolveAPIKey("")
		if err != nil {
			t.Fatalf("ResolveAPIKey failed: %v", err)
		}
		if key != "env-key" {
			t.Errorf("expected env-key, got %q", key)
		}
	})

	t.Run("missing credential fails", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "")
		_, err := ResolveAPIKey("")
		if err == nil {
			t.Fatal("expected error for missing credential")
		}
		var cfgErr *types.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("expected ConfigError, got %T: %v", err, err)
		}
	})
}

func TestNewDefaultModel(t *testing.T) {
	e := New(&fakeClient{}, "", zerolog.Logger{})
	if e.Model() != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, e.Model())
	}

	e = New(&fakeClient{}, "gpt-4o-mini", zerolog.Logger{})
	if e.Model() != "gpt-4o-mini" {
		t.Errorf("expected model override, got %q", e.Model())
	}
}

func TestExtractTextEncodesFile(t *testing.T) {
	content := []byte{0xff, 0xd8, 0x00, 0x11, 0x22}
	path := writeTestImage(t, content)

	fake := &fakeClient{answer: "the text"}
	e := New(fake, "", zerolog.Logger{})

	text, err := e.ExtractText(context.Background(), path, "")
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text != "the text" {
		t.Errorf("expected %q, got %q", "the text", text)
	}

	if fake.prompt != DefaultPrompt {
		t.Errorf("expected default prompt %q, got %q", DefaultPrompt, fake.prompt)
	}
	if fake.model != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, fake.model)
	}

	decoded, err := base64.StdEncoding.DecodeString(fake.imgB64)
	if err != nil {
		t.Fatalf("client did not receive valid base64: %v", err)
	}
	if string(decoded) != string(content) {
		t.Error("encoded image does not round-trip to the original bytes")
	}
}

func TestExtractTextCustomPrompt(t *testing.T) {
	path := writeTestImage(t, []byte("img"))

	fake := &fakeClient{answer: "ok"}
	e := New(fake, "", zerolog.Logger{})

	if _, err := e.ExtractText(context.Background(), path, "Read the serial number."); err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if fake.prompt != "Read the serial number." {
		t.Errorf("custom prompt not forwarded, got %q", fake.prompt)
	}
}

func TestExtractTextMissingFile(t *testing.T) {
	fake := &fakeClient{answer: "never"}
	e := New(fake, "", zerolog.Logger{})

	_, err := e.ExtractText(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"), "")
	if err == nil {
		t.Fatal("expected error for missing image file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected wrapped fs.ErrNotExist, got %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("client should not be called for unreadable images, got %d calls", fake.calls)
	}
}

func TestExtractTextClientError(t *testing.T) {
	path := writeTestImage(t, []byte("img"))

	wantErr := &types.RequestError{StatusCode: 429, Body: "rate limited"}
	fake := &fakeClient{err: wantErr}
	e := New(fake, "", zerolog.Logger{})

	_, err := e.ExtractText(context.Background(), path, "")
	if err == nil {
		t.Fatal("expected error from client")
	}
	var reqErr *types.RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != 429 {
		t.Errorf("expected wrapped RequestError 429, got %v", err)
	}
}

func TestExtractStructured(t *testing.T) {
	path := writeTestImage(t, []byte("img"))

	// Deliberately not valid JSON: structured mode passes it through anyway
	fake := &fakeClient{answer: "| a | b |\n| 1 | 2 |"}
	e := New(fake, "", zerolog.Logger{})

	result, err := e.ExtractStructured(context.Background(), path, "")
	if err != nil {
		t.Fatalf("ExtractStructured failed: %v", err)
	}

	if result.Result != "| a | b |\n| 1 | 2 |" {
		t.Errorf("expected raw answer in container, got %q", result.Result)
	}
	if fake.prompt != "Extract the table data from this image and format it as JSON." {
		t.Errorf("unexpected synthesized prompt: %q", fake.prompt)
	}
}

func TestExtractStructuredFormatHint(t *testing.T) {
	path := writeTestImage(t, []byte("img"))

	fake := &fakeClient{answer: "{}"}
	e := New(fake, "", zerolog.Logger{})

	if _, err := e.ExtractStructured(context.Background(), path, "form"); err != nil {
		t.Fatalf("ExtractStructured failed: %v", err)
	}
	if fake.prompt != "Extract the form data from this image and format it as JSON." {
		t.Errorf("format hint not applied: %q", fake.prompt)
	}
}

func BenchmarkEncodeImage(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.jpg")
	if err := os.WriteFile(path, make([]byte, 1<<20), 0o644); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := encodeImage(path); err != nil {
			b.Fatal(err)
		}
	}
}
