package profile

// QA is one clarification question/answer pair from the dialogue history.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ProfessionCheck is the outcome of the reality check on the user's initial
// query. Exactly one of ProfessionName or Alternatives is populated,
// depending on IsReal.
type ProfessionCheck struct {
	IsReal         bool
	ProfessionName string
	Alternatives   []string
}

// DayScheduleItem is one entry of the typical-day schedule.
type DayScheduleItem struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
}

// RealCase is one real-world example task in the profile.
type RealCase struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"` // easy|medium|hard
}

// Profile is the synthesized career description, the terminal artifact of a
// dialogue session. Constructed once and never mutated after.
type Profile struct {
	PositionTitle string            `json:"position_title"`
	Sounds        []string          `json:"sounds"`
	CareerGrowth  string            `json:"career_growth"`
	BalanceScore  string            `json:"balance_score"`
	Benefit       string            `json:"benefit"`
	TypicalDay    []DayScheduleItem `json:"typical_day"`
	RealCases     []RealCase        `json:"real_cases"`
	TechStack     []string          `json:"tech_stack"`
	Visual        []string          `json:"visual"`
}
