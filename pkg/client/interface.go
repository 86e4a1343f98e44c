package client

import (
	"context"
)

// VisionClient sends one prompt together with one base64-encoded image to a
// vision-capable chat model and returns the model's textual answer.
type VisionClient interface {
	Extract(ctx context.Context, model, prompt, imgB64 string) (string, error)
}
