package llmgen

import (
	"context"
	"strings"
)

// MockGenerator provides deterministic local replies when no generation
// backend is available. Replies are keyed on prompt markers so the full
// dialogue is drivable offline.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

const mockProfileJSON = `{
  "position_title": "Backend Developer (product team)",
  "sounds": ["keyboard clicks", "standup chatter", "CI notifications"],
  "career_growth": "Junior -> Middle -> Senior -> Tech Lead",
  "balance_score": "50/50",
  "benefit": "Your code ships to real users every week",
  "typical_day": [
    {"time": "10:00", "activity": "Daily standup with the team"},
    {"time": "11:00", "activity": "Feature work on the service API"},
    {"time": "14:00", "activity": "Code review and pairing"},
    {"time": "16:00", "activity": "Deploy and monitor"}
  ],
  "real_cases": [
    {"title": "Fix a slow endpoint", "description": "Profile a request path and remove an N+1 query.", "difficulty": "medium"},
    {"title": "Add a health check", "description": "Expose a liveness probe for the orchestrator.", "difficulty": "easy"},
    {"title": "Design a rate limiter", "description": "Protect a public API from abusive clients.", "difficulty": "hard"}
  ],
  "tech_stack": ["Go", "PostgreSQL", "Docker"],
  "visual": ["terminal with logs", "architecture whiteboard", "grafana dashboards"]
}`

func (g *MockGenerator) Generate(ctx context.Context, req GenerateRequest, onDelta DeltaHandler) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	text := mockReply(req.Prompt)
	if onDelta != nil && text != "" {
		if err := onDelta(text); err != nil {
			return "", err
		}
	}
	return text, nil
}

func mockReply(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, `"is_real"`):
		if strings.Contains(lower, "pirate") || strings.Contains(lower, "пират") {
			return `{"is_real": false, "profession_name": null, "alternatives": ["Maritime Logistics Specialist", "Aerospace Engineer", "Game Designer"]}`
		}
		return `{"is_real": true, "profession_name": "Backend Developer", "alternatives": null}`
	case strings.Contains(lower, `"position_title"`):
		return mockProfileJSON
	case strings.Contains(lower, "work atmosphere"):
		return "Do you prefer calm deep-focus work or a fast-paced environment?"
	default:
		return "What is your current experience level in this field?"
	}
}
