package generate

import (
	"fmt"
	"strings"
)

// Message is one chat message of a generation prompt.
type Message struct {
	Role    string
	Content string
}

// PromptVersionV1 is the current answers prompt.
const PromptVersionV1 = "answers:v1"

const systemPromptV1 = `You write job application materials on behalf of a candidate.
You receive the candidate's resume text and a job posting.
Answer every screening question truthfully based only on the resume.
Never invent employers, titles, dates, or credentials.
Respond with a single JSON object: {"coverLetter": string, "answers": [{"question": string, "answer": string}]}.`

// BuildPrompt assembles chat messages for the given prompt version. Unknown
// versions fall back to v1.
func BuildPrompt(version string, in Input) []Message {
	_ = version

	var b strings.Builder
	fmt.Fprintf(&b, "Job title: %s\nCompany: %s\n\nJob description:\n%s\n", in.JobTitle, in.Company, in.JobDescription)
	if len(in.Questions) > 0 {
		b.WriteString("\nScreening questions:\n")
		for i, q := range in.Questions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
	}
	fmt.Fprintf(&b, "\nCandidate resume:\n%s\n", in.ResumeText)

	return []Message{
		{Role: "system", Content: systemPromptV1},
		{Role: "user", Content: b.String()},
	}
}
