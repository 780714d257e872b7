package classify

import (
	"fmt"
	"time"
)

const relevanceInstructions = `Evaluate whether the speech transcript supplied by the user contains a thought, task, idea, reminder, or piece of information worth saving. Filter out small talk, repetition, incoherent fragments, and filler speech.

Respond ONLY with a valid JSON object:
{"relevant": boolean, "confidence": number}

Where confidence is a float from 0.0 to 1.0 indicating how confident you are that the transcript is relevant and worth saving.`

const extractionTemplate = `Analyze the speech transcript supplied by the user and extract structured data.
Today's date: %s
Language of transcript: %s

Respond ONLY with a valid JSON object following this exact schema:
{
  "type": "task" | "idea" | "note" | "reminder" | "journal",
  "priority": 1-5,
  "categories": ["string"],
  "entities": {
    "people": ["string"],
    "places": ["string"],
    "projects": ["string"]
  },
  "deadline": "ISO datetime string or null",
  "sentiment": -1.0 to 1.0,
  "action_items": ["string"],
  "summary": "1-2 sentence summary"
}

Rules:
- type: "task" for actionable items, "idea" for creative thoughts, "reminder" for time-sensitive reminders, "journal" for personal reflections, "note" for everything else.
- priority: 1 = lowest, 5 = highest urgency/importance
- categories: short lowercase labels (e.g., "work", "health", "project-x")
- entities: mentioned people, places, and projects/topics
- deadline: resolve relative dates ("tomorrow", "next week", "Friday") against today's date. null if no deadline is mentioned.
- sentiment: -1.0 (very negative) to 1.0 (very positive), 0 = neutral
- action_items: concrete steps to take, if any
- summary: brief 1-2 sentence summary written in the transcript's language`

func buildExtractionInstructions(today time.Time, language string) string {
	return fmt.Sprintf(extractionTemplate, today.Format("2006-01-02"), language)
}
