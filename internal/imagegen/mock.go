package imagegen

import (
	"context"
	"fmt"
	"net/url"
)

// MockClient returns deterministic placeholder URLs. Used when no Runware key
// is configured and by tests.
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

func (c *MockClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return fmt.Sprintf("https://placehold.co/%dx%d?text=%s", imageWidth, imageHeight, url.QueryEscape(prompt)), nil
}
