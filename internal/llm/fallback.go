package llm

import (
	"context"
	"fmt"
)

// FallbackGenerator asks Primary first and retries the prompt on Secondary
// when Primary fails.
type FallbackGenerator struct {
	Primary   TextGenerator
	Secondary TextGenerator
}

// GenerateContent implements TextGenerator.
func (f *FallbackGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := f.Primary.GenerateContent(ctx, prompt)
	if err == nil || f.Secondary == nil || ctx.Err() != nil {
		return resp, err
	}

	resp, fallbackErr := f.Secondary.GenerateContent(ctx, prompt)
	if fallbackErr != nil {
		return ContentResponse{}, fmt.Errorf("primary model failed (%v), fallback failed: %w", err, fallbackErr)
	}
	return resp, nil
}
