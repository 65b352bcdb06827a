package profile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var balanceScoreRe = regexp.MustCompile(`^\d+/\d+$`)

// defaultBalanceScore replaces a malformed balance_score. The field is
// cosmetic, so a degraded value beats a hard failure.
const defaultBalanceScore = "50/50"

var validDifficulties = map[string]struct{}{
	"easy":   {},
	"medium": {},
	"hard":   {},
}

// profileFromMap validates the extracted payload against the required-field
// schema and assembles the typed Profile.
func profileFromMap(data map[string]any) (Profile, error) {
	var p Profile
	var err error

	if p.PositionTitle, err = requireString(data, "position_title"); err != nil {
		return Profile{}, err
	}
	if p.CareerGrowth, err = requireString(data, "career_growth"); err != nil {
		return Profile{}, err
	}
	if p.Benefit, err = requireString(data, "benefit"); err != nil {
		return Profile{}, err
	}
	if p.Sounds, err = requireStringList(data, "sounds"); err != nil {
		return Profile{}, err
	}
	if p.TechStack, err = requireStringList(data, "tech_stack"); err != nil {
		return Profile{}, err
	}
	if p.Visual, err = requireStringList(data, "visual"); err != nil {
		return Profile{}, err
	}

	score, err := requireString(data, "balance_score")
	if err != nil {
		return Profile{}, err
	}
	if !balanceScoreRe.MatchString(score) {
		score = defaultBalanceScore
	}
	p.BalanceScore = score

	if p.TypicalDay, err = typicalDayFrom(data); err != nil {
		return Profile{}, err
	}
	if p.RealCases, err = realCasesFrom(data); err != nil {
		return Profile{}, err
	}

	return p, nil
}

func typicalDayFrom(data map[string]any) ([]DayScheduleItem, error) {
	raw, ok := data["typical_day"].([]any)
	if !ok || len(raw) == 0 {
		return nil, &IncompleteProfileError{Field: "typical_day"}
	}

	items := make([]DayScheduleItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		activity := strings.TrimSpace(asString(m["activity"]))
		if activity == "" {
			continue
		}
		items = append(items, DayScheduleItem{
			Time:     NormalizeClock(strings.TrimSpace(asString(m["time"]))),
			Activity: activity,
		})
	}
	if len(items) == 0 {
		return nil, &IncompleteProfileError{Field: "typical_day"}
	}
	return items, nil
}

func realCasesFrom(data map[string]any) ([]RealCase, error) {
	raw, ok := data["real_cases"].([]any)
	if !ok {
		return nil, &InsufficientExamplesError{Count: 0}
	}

	cases := make([]RealCase, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		c := RealCase{
			Title:       strings.TrimSpace(asString(m["title"])),
			Description: strings.TrimSpace(asString(m["description"])),
			Difficulty:  strings.ToLower(strings.TrimSpace(asString(m["difficulty"]))),
		}
		if c.Title == "" || c.Description == "" {
			continue
		}
		if _, ok := validDifficulties[c.Difficulty]; !ok {
			continue
		}
		cases = append(cases, c)
	}
	if len(cases) < 3 {
		return nil, &InsufficientExamplesError{Count: len(cases)}
	}
	return cases, nil
}

func requireString(data map[string]any, field string) (string, error) {
	s := strings.TrimSpace(asString(data[field]))
	if s == "" {
		return "", &IncompleteProfileError{Field: field}
	}
	return s, nil
}

func requireStringList(data map[string]any, field string) ([]string, error) {
	items := asStringList(data[field])
	if len(items) == 0 {
		return nil, &IncompleteProfileError{Field: field}
	}
	return items, nil
}

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})$`)

// NormalizeClock zero-pads schedule times of shape H:MM, HH:M or H:M to
// HH:MM. Anything else passes through unchanged; malformed times are not
// fatal.
func NormalizeClock(t string) string {
	m := clockRe.FindStringSubmatch(t)
	if m == nil {
		return t
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
