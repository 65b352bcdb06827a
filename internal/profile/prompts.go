package profile

import (
	"fmt"
	"strings"
)

const strictJSONSuffix = "\n\nReturn ONLY valid JSON with no commentary, no markdown fences, no explanations."

func professionCheckPrompt(userMessage string) string {
	return fmt.Sprintf(`You are a career consultant.

The user asked: %q

Decide whether the message refers to a real, existing profession.

Reply with a JSON object of this exact shape:
{"is_real": true or false, "profession_name": "canonical profession name" or null, "alternatives": ["...", "...", "..."] or null}

Rules:
- If the profession is real, set profession_name to its canonical name and alternatives to null.
- If it is not real, set profession_name to null and propose EXACTLY 3 real professions closest in spirit to the request.

Return ONLY the JSON object.`, userMessage)
}

func detailQuestionPrompt(profession string, questionNumber int, initialContext string, prior []QA) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a career consultant helping someone explore the profession %q.\n\n", profession)
	fmt.Fprintf(&b, "Original request: %q\n", initialContext)

	if len(prior) > 0 {
		b.WriteString("\nAlready asked and answered:\n")
		for _, qa := range prior {
			if strings.TrimSpace(qa.Answer) == "" {
				continue
			}
			fmt.Fprintf(&b, "- Q: %s A: %s\n", qa.Question, qa.Answer)
		}
	}

	fmt.Fprintf(&b, `
Ask clarifying question #%d (a single short question, at most 10-12 words) to learn something NOT yet covered above. Prioritize, in order: experience level, work-context specifics (remote/office, product/outsource, startup/corporation), then industry or specialization.

Reply with ONLY the question text, without quotes or commentary.`, questionNumber)
	return b.String()
}

func vibeQuestionPrompt(context string) string {
	return fmt.Sprintf(`You are a career consultant. Context so far: %s

Ask ONE short final question about the person's preferred work atmosphere and style (for example: calm focus vs fast pace, solo vs team, creative vs structured).

Reply with ONLY the question text, without quotes or commentary.`, context)
}

func profilePrompt(profession string, history []QA, vibeAnswer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You generate detailed, realistic career profiles.\n\nProfession: %q\n", profession)

	if len(history) > 0 {
		b.WriteString("Clarifications:\n")
		for _, qa := range history {
			fmt.Fprintf(&b, "- %s %s\n", qa.Question, qa.Answer)
		}
	}
	fmt.Fprintf(&b, "Preferred work atmosphere: %q\n", vibeAnswer)

	b.WriteString(`
Create the profile as a JSON object with this exact structure:
{
    "position_title": "full position title with context",
    "sounds": ["ambient sound of the workday 1", "sound 2", "sound 3"],
    "career_growth": "Junior -> Senior -> Lead -> ...",
    "balance_score": "X/Y",
    "benefit": "the main value of this work",
    "typical_day": [
        {"time": "10:00", "activity": "activity description"},
        {"time": "12:00", "activity": "activity description"},
        {"time": "14:00", "activity": "activity description"},
        {"time": "16:00", "activity": "activity description"}
    ],
    "real_cases": [
        {"title": "task title", "description": "what has to be done and why", "difficulty": "easy"},
        {"title": "task title", "description": "what has to be done and why", "difficulty": "medium"},
        {"title": "task title", "description": "what has to be done and why", "difficulty": "hard"}
    ],
    "tech_stack": ["technology 1", "technology 2", "technology 3"],
    "visual": ["something to show visually 1", "visual 2", "visual 3"]
}

IMPORTANT:
- sounds: atmospheric sounds of the workday (keyboard clicks, call chatter, notifications)
- career_growth: a realistic career path joined with arrows ->
- balance_score: work-life balance as number/number (for example 50/50, 60/40)
- typical_day: at least 4 entries with distinct times
- real_cases: at least 3 realistic tasks, difficulty is one of easy, medium, hard
- visual: what could be shown in pictures (screens, workplace, tools)

Return ONLY valid JSON without any additional text.`)
	return b.String()
}
