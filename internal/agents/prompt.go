package agents

import (
	"fmt"
	"strings"
)

const explainerSystemPrompt = `You are a master educator. You explain ideas to adult learners who may have had little formal schooling.`

func buildExplainPrompt(concept string) string {
	return fmt.Sprintf(`Explain the core concept of '%s' clearly and concisely.

Instructions:
- Do not use any localized analogies, cultural references, or advanced terms.
- The explanation should be general and foundational, suitable for a general audience.`, concept)
}

const localizerSystemPrompt = `You adapt explanations for learners across India, using examples from their own daily work and surroundings.`

func buildLocalizePrompt(explanation string, l Learner) string {
	var b strings.Builder

	b.WriteString("Task: Localize the following core concept explanation.\n")
	b.WriteString(fmt.Sprintf("Adapt it using a culturally relevant analogy specific to the learner's background and location: %s in %s.\n",
		l.Background(), l.Location()))
	b.WriteString(fmt.Sprintf("Then, provide the entire localized analogy translated into the learner's local language: %s.\n", l.Language()))
	b.WriteString("Start the response with the localized analogy in English, followed by the local language version.\n")
	b.WriteString("\n--- Core Concept Explanation to Localize ---\n")
	b.WriteString(explanation)

	return b.String()
}

const questionSystemPrompt = `You write active recall questions that check real understanding rather than memorized wording.`

func buildQuestionPrompt(concept string) string {
	return fmt.Sprintf(`Generate one simple, open-ended active recall question about '%s'.
Then, provide the comprehensive expected answer (a few sentences) for that question.`, concept)
}

const graderSystemPrompt = `You are a fair and encouraging examiner. You grade short written answers against an expected answer and explain what was missed.`

func buildGradePrompt(concept, expected, reply string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Task: Grade the learner's response for the concept '%s'.\n", concept))
	b.WriteString("The grading is on a scale of 0 (completely wrong) to 3 (excellent and comprehensive).\n")
	b.WriteString("\n--- Data ---\n")
	b.WriteString(fmt.Sprintf("Expected Answer: %s\n", expected))
	b.WriteString(fmt.Sprintf("Learner Response: %s\n", reply))
	b.WriteString(`
--- Fields ---
score (int): 0-3.
feedback (string): Explain why the learner received that score and what they missed.
mastery_increment (int): The score (0-3) to add to the learner's mastery progress.`)

	return b.String()
}
