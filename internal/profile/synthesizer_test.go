package profile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akozyrev/profvibe/internal/llmgen"
)

const profileJSONFixture = `{
  "position_title": "Backend Developer (product team)",
  "sounds": ["keyboard clicks", "standup chatter"],
  "career_growth": "Junior -> Middle -> Senior",
  "balance_score": "50/50",
  "benefit": "Code ships to real users",
  "typical_day": [
    {"time": "10:00", "activity": "Standup"},
    {"time": "11:00", "activity": "Feature work"},
    {"time": "14:00", "activity": "Code review"},
    {"time": "16:00", "activity": "Deploy"}
  ],
  "real_cases": [
    {"title": "Fix a slow endpoint", "description": "Profile and fix.", "difficulty": "medium"},
    {"title": "Add a health check", "description": "Expose a probe.", "difficulty": "easy"},
    {"title": "Design a rate limiter", "description": "Protect the API.", "difficulty": "hard"}
  ],
  "tech_stack": ["Go", "PostgreSQL"],
  "visual": ["terminal with logs"]
}`

// scriptedGenerator replays canned outputs in order and records prompts.
type scriptedGenerator struct {
	outputs []string
	err     error
	prompts []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, req llmgen.GenerateRequest, onDelta llmgen.DeltaHandler) (string, error) {
	g.prompts = append(g.prompts, req.Prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.outputs) == 0 {
		return "", errors.New("scripted generator exhausted")
	}
	out := g.outputs[0]
	g.outputs = g.outputs[1:]
	if onDelta != nil && out != "" {
		if err := onDelta(out); err != nil {
			return "", err
		}
	}
	return out, nil
}

func TestCheckProfessionReal(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{
		`{"is_real": true, "profession_name": "Data Engineer", "alternatives": null}`,
	}}
	s := NewSynthesizer(gen, time.Second)

	check, err := s.CheckProfession(context.Background(), "what is it like to be a data engineer")
	if err != nil {
		t.Fatalf("CheckProfession() error = %v", err)
	}
	if !check.IsReal {
		t.Fatalf("IsReal = false, want true")
	}
	if check.ProfessionName != "Data Engineer" {
		t.Fatalf("ProfessionName = %q, want %q", check.ProfessionName, "Data Engineer")
	}
	if check.Alternatives != nil {
		t.Fatalf("Alternatives = %v, want nil", check.Alternatives)
	}
}

func TestCheckProfessionUnrealTruncatesToThree(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{
		`{"is_real": false, "profession_name": null, "alternatives": ["a", "b", "c", "d"]}`,
	}}
	s := NewSynthesizer(gen, time.Second)

	check, err := s.CheckProfession(context.Background(), "I want to be a space pirate")
	if err != nil {
		t.Fatalf("CheckProfession() error = %v", err)
	}
	if check.IsReal {
		t.Fatalf("IsReal = true, want false")
	}
	if len(check.Alternatives) != 3 {
		t.Fatalf("Alternatives = %d entries, want exactly 3", len(check.Alternatives))
	}
}

func TestCheckProfessionTooFewAlternativesIsMalformed(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{
		`{"is_real": false, "alternatives": ["only one"]}`,
		`{"is_real": false, "alternatives": ["only one"]}`,
	}}
	s := NewSynthesizer(gen, time.Second)

	_, err := s.CheckProfession(context.Background(), "dragon tamer")
	if !llmgen.IsMalformedOutput(err) {
		t.Fatalf("error = %v, want malformed output", err)
	}
}

func TestGenerateJSONRetriesOnceWithStricterPrompt(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{
		"no json here at all",
		`{"is_real": true, "profession_name": "Welder"}`,
	}}
	s := NewSynthesizer(gen, time.Second)

	check, err := s.CheckProfession(context.Background(), "welder")
	if err != nil {
		t.Fatalf("CheckProfession() error = %v", err)
	}
	if check.ProfessionName != "Welder" {
		t.Fatalf("ProfessionName = %q, want %q", check.ProfessionName, "Welder")
	}
	if len(gen.prompts) != 2 {
		t.Fatalf("prompt count = %d, want 2 (one retry)", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[1], "ONLY valid JSON") {
		t.Fatalf("retry prompt missing stricter instruction: %q", gen.prompts[1])
	}
}

func TestGenerateJSONDoesNotRetryBackendFailures(t *testing.T) {
	gen := &scriptedGenerator{err: llmgen.ErrUnavailable}
	s := NewSynthesizer(gen, time.Second)

	_, err := s.CheckProfession(context.Background(), "welder")
	if !errors.Is(err, llmgen.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("prompt count = %d, want 1 (no retry)", len(gen.prompts))
	}
}

func TestNextDetailQuestionStripsQuotes(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"\"Remote or office?\"\n"}}
	s := NewSynthesizer(gen, time.Second)

	q, err := s.NextDetailQuestion(context.Background(), "QA Engineer", 1, "context", nil)
	if err != nil {
		t.Fatalf("NextDetailQuestion() error = %v", err)
	}
	if q != "Remote or office?" {
		t.Fatalf("question = %q, want %q", q, "Remote or office?")
	}
}

func TestNextDetailQuestionIncludesPriorAnswers(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"Product or outsource?"}}
	s := NewSynthesizer(gen, time.Second)

	prior := []QA{{Question: "Experience level?", Answer: "Senior"}}
	if _, err := s.NextDetailQuestion(context.Background(), "QA Engineer", 2, "context", prior); err != nil {
		t.Fatalf("NextDetailQuestion() error = %v", err)
	}
	if !strings.Contains(gen.prompts[0], "Senior") {
		t.Fatalf("prompt does not carry prior answer: %q", gen.prompts[0])
	}
}

func TestSynthesizeProfileValidatesAndReportsProgress(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{profileJSONFixture}}
	s := NewSynthesizer(gen, time.Millisecond)

	var progressed bool
	p, err := s.SynthesizeProfile(context.Background(), "Backend Developer",
		[]QA{{Question: "Experience?", Answer: "Junior"}}, "calm focus",
		func(text string) { progressed = true })
	if err != nil {
		t.Fatalf("SynthesizeProfile() error = %v", err)
	}
	if p.PositionTitle == "" {
		t.Fatalf("PositionTitle is empty")
	}
	if len(p.RealCases) < 3 {
		t.Fatalf("RealCases = %d, want >= 3", len(p.RealCases))
	}
	if !progressed {
		t.Fatalf("progress callback never fired")
	}
}
