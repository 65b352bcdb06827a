package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akozyrev/profvibe/internal/llmgen"
)

// Sampling presets per dialogue step. The reality check favors determinism;
// profile synthesis favors variety.
const (
	checkTemperature    = 0.2
	checkMaxTokens      = 256
	questionTemperature = 0.5
	questionMaxTokens   = 80
	profileTemperature  = 0.8
	profileMaxTokens    = 2048
)

// Synthesizer builds prompts for every dialogue step and validates what comes
// back. It is the only component that knows the shape of a valid profile.
// It never mutates session state; results flow back to the state machine.
type Synthesizer struct {
	gen              llmgen.Generator
	progressInterval time.Duration
}

func NewSynthesizer(gen llmgen.Generator, progressInterval time.Duration) *Synthesizer {
	if progressInterval <= 0 {
		progressInterval = time.Second
	}
	return &Synthesizer{gen: gen, progressInterval: progressInterval}
}

// CheckProfession asks the model whether the user's query names a real
// profession. When it does not, exactly three alternatives are returned.
func (s *Synthesizer) CheckProfession(ctx context.Context, userMessage string) (ProfessionCheck, error) {
	data, err := s.generateJSON(ctx, llmgen.GenerateRequest{
		Prompt:      professionCheckPrompt(userMessage),
		Temperature: checkTemperature,
		MaxTokens:   checkMaxTokens,
	}, nil)
	if err != nil {
		return ProfessionCheck{}, fmt.Errorf("profession check: %w", err)
	}

	isReal, _ := data["is_real"].(bool)
	if isReal {
		name := strings.TrimSpace(asString(data["profession_name"]))
		if name == "" {
			return ProfessionCheck{}, fmt.Errorf("profession check: %w",
				&llmgen.MalformedOutputError{Snippet: "is_real without profession_name"})
		}
		return ProfessionCheck{IsReal: true, ProfessionName: name}, nil
	}

	alternatives := asStringList(data["alternatives"])
	if len(alternatives) < 3 {
		return ProfessionCheck{}, fmt.Errorf("profession check: %w",
			&llmgen.MalformedOutputError{Snippet: fmt.Sprintf("%d alternatives, want 3", len(alternatives))})
	}
	return ProfessionCheck{IsReal: false, Alternatives: alternatives[:3]}, nil
}

// NextDetailQuestion produces one clarifying question that avoids topics
// already covered by prior answers. Topic ordering is a prompt concern only.
func (s *Synthesizer) NextDetailQuestion(ctx context.Context, profession string, questionNumber int, initialContext string, prior []QA) (string, error) {
	raw, err := s.gen.Generate(ctx, llmgen.GenerateRequest{
		Prompt:      detailQuestionPrompt(profession, questionNumber, initialContext, prior),
		Temperature: questionTemperature,
		MaxTokens:   questionMaxTokens,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("detail question %d: %w", questionNumber, err)
	}
	return trimQuestion(raw), nil
}

// VibeQuestion produces the final clarification about work atmosphere.
func (s *Synthesizer) VibeQuestion(ctx context.Context, condensedContext string) (string, error) {
	raw, err := s.gen.Generate(ctx, llmgen.GenerateRequest{
		Prompt:      vibeQuestionPrompt(condensedContext),
		Temperature: questionTemperature,
		MaxTokens:   questionMaxTokens,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("vibe question: %w", err)
	}
	return trimQuestion(raw), nil
}

// SynthesizeProfile drives streamed generation of the full profile, then
// validates and repairs the payload. onProgress (optional) receives throttled
// partial output; it must not block and cannot abort generation.
func (s *Synthesizer) SynthesizeProfile(ctx context.Context, profession string, history []QA, vibeAnswer string, onProgress llmgen.ProgressFunc) (Profile, error) {
	throttle := llmgen.NewThrottle(s.progressInterval, onProgress)

	var partial strings.Builder
	data, err := s.generateJSON(ctx, llmgen.GenerateRequest{
		Prompt:      profilePrompt(profession, history, vibeAnswer),
		Temperature: profileTemperature,
		MaxTokens:   profileMaxTokens,
		Stream:      true,
	}, func(delta string) error {
		partial.WriteString(delta)
		throttle.Notify(partial.String())
		return nil
	})
	if err != nil {
		return Profile{}, fmt.Errorf("synthesize profile: %w", err)
	}

	return profileFromMap(data)
}

// generateJSON runs one generation call and extracts the embedded JSON
// object. A malformed payload is retried exactly once with a stricter
// instruction; backend failures are never retried here.
func (s *Synthesizer) generateJSON(ctx context.Context, req llmgen.GenerateRequest, onDelta llmgen.DeltaHandler) (map[string]any, error) {
	raw, err := s.gen.Generate(ctx, req, onDelta)
	if err != nil {
		return nil, err
	}

	data, err := llmgen.ExtractJSON(raw)
	if err == nil {
		return data, nil
	}
	if !llmgen.IsMalformedOutput(err) {
		return nil, err
	}

	retry := req
	retry.Prompt += strictJSONSuffix
	retry.Stream = false
	raw, rerr := s.gen.Generate(ctx, retry, nil)
	if rerr != nil {
		return nil, rerr
	}
	return llmgen.ExtractJSON(raw)
}

func trimQuestion(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"'`)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s := strings.TrimSpace(asString(item))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
