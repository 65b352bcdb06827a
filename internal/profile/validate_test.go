package profile

import (
	"errors"
	"testing"
)

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "9:5", want: "09:05"},
		{in: "9:30", want: "09:30"},
		{in: "10:5", want: "10:05"},
		{in: "10:00", want: "10:00"},
		{in: "invalid", want: "invalid"},
		{in: "25:99", want: "25:99"}, // permissive: pad shape only, no range check
		{in: "", want: ""},
		{in: "9.30", want: "9.30"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := NormalizeClock(tc.in); got != tc.want {
				t.Fatalf("NormalizeClock(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func validProfileMap() map[string]any {
	return map[string]any{
		"position_title": "SRE at a fintech",
		"sounds":         []any{"pager beeps", "keyboard"},
		"career_growth":  "Junior -> Senior -> Staff",
		"balance_score":  "60/40",
		"benefit":        "You keep the money moving",
		"typical_day": []any{
			map[string]any{"time": "9:5", "activity": "Check overnight alerts"},
			map[string]any{"time": "14:00", "activity": "Capacity planning"},
		},
		"real_cases": []any{
			map[string]any{"title": "a", "description": "d", "difficulty": "easy"},
			map[string]any{"title": "b", "description": "d", "difficulty": "medium"},
			map[string]any{"title": "c", "description": "d", "difficulty": "hard"},
		},
		"tech_stack": []any{"Go", "Kubernetes"},
		"visual":     []any{"dashboards"},
	}
}

func TestProfileFromMapHappyPath(t *testing.T) {
	p, err := profileFromMap(validProfileMap())
	if err != nil {
		t.Fatalf("profileFromMap() error = %v", err)
	}
	if p.PositionTitle != "SRE at a fintech" {
		t.Fatalf("PositionTitle = %q", p.PositionTitle)
	}
	if p.BalanceScore != "60/40" {
		t.Fatalf("BalanceScore = %q, want 60/40", p.BalanceScore)
	}
	if p.TypicalDay[0].Time != "09:05" {
		t.Fatalf("TypicalDay[0].Time = %q, want 09:05", p.TypicalDay[0].Time)
	}
	if len(p.RealCases) != 3 {
		t.Fatalf("RealCases = %d entries, want 3", len(p.RealCases))
	}
}

func TestProfileFromMapCoercesBalanceScore(t *testing.T) {
	m := validProfileMap()
	m["balance_score"] = "mostly balanced"
	p, err := profileFromMap(m)
	if err != nil {
		t.Fatalf("profileFromMap() error = %v", err)
	}
	if p.BalanceScore != "50/50" {
		t.Fatalf("BalanceScore = %q, want coerced 50/50", p.BalanceScore)
	}
}

func TestProfileFromMapMissingFields(t *testing.T) {
	for _, field := range []string{"position_title", "career_growth", "benefit", "sounds", "tech_stack", "visual", "balance_score", "typical_day"} {
		t.Run(field, func(t *testing.T) {
			m := validProfileMap()
			delete(m, field)
			_, err := profileFromMap(m)
			var incomplete *IncompleteProfileError
			if !errors.As(err, &incomplete) {
				t.Fatalf("error = %v, want *IncompleteProfileError", err)
			}
			if incomplete.Field != field {
				t.Fatalf("Field = %q, want %q", incomplete.Field, field)
			}
		})
	}
}

func TestProfileFromMapInsufficientExamples(t *testing.T) {
	m := validProfileMap()
	m["real_cases"] = []any{
		map[string]any{"title": "a", "description": "d", "difficulty": "easy"},
		map[string]any{"title": "b", "description": "d", "difficulty": "unknown"}, // bad tag
		map[string]any{"title": "", "description": "d", "difficulty": "hard"},    // no title
	}
	_, err := profileFromMap(m)
	var insufficient *InsufficientExamplesError
	if !errors.As(err, &insufficient) {
		t.Fatalf("error = %v, want *InsufficientExamplesError", err)
	}
	if insufficient.Count != 1 {
		t.Fatalf("Count = %d, want 1", insufficient.Count)
	}
}
