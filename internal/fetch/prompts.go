package fetch

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/techpulse/internal/ai"
	"github.com/matheuskafuri/techpulse/internal/domain"
)

const systemInstruction = `You are a technology research assistant. Today is %s.
Report only facts you can verify from reputable sources dated on or before today.
Never speculate, never invent names, numbers, quotes or links.
Respond with exactly one JSON document in the requested shape: no prose, no markdown, no code fences.`

const aiNewsPrompt = `List the 8 most important artificial-intelligence news stories published in the last 24 hours, most significant first.

Respond as JSON:
{"ai_news": [{"title": string, "description": string (one or two sentences), "url": string (link to the original article)}]}`

const phoneNewsPrompt = `Give the full specifications of the most recently announced flagship smartphone.

Respond as one flat JSON object with a "phone_name" key plus exactly these keys, every value a string:
%s
Use "Not specified" for anything the manufacturer has not published.`

const searchPrompt = `Give the full specifications of this phone: %q.

Respond as one flat JSON object with a "phone_name" key plus exactly these keys, every value a string:
%s
Use "Not specified" for anything the manufacturer has not published.`

const comparePrompt = `Compare the phones %q (phone1) and %q (phone2) across these specification categories, one row per category:
%s

Respond as JSON:
{"specs": [{"feature": string, "phone1": string, "phone2": string}], "verdict": string (two or three sentences), "betterPhone": string}
"betterPhone" must be exactly %q, exactly %q, or "Tie".`

const statsPrompt = `Summarize current market statistics for this phone: %q.
Cover launch price, current street price, units sold, market share, average user rating and release date where published.

Respond as one flat JSON object whose keys are snake_case statistic names and whose values are strings or numbers.`

func specKeyList() string {
	return strings.Join(domain.SpecKeys, ", ")
}

func instruction(now time.Time) string {
	return fmt.Sprintf(systemInstruction, now.Format("January 2, 2006"))
}

func categoryRequest(c domain.Category, now time.Time) (ai.Request, error) {
	var prompt string
	switch c {
	case domain.CategoryAINews:
		prompt = aiNewsPrompt
	case domain.CategoryPhoneNews:
		prompt = fmt.Sprintf(phoneNewsPrompt, specKeyList())
	default:
		return ai.Request{}, fmt.Errorf("unknown category %q", c)
	}
	return ai.Request{Instruction: instruction(now), Prompt: prompt, Grounded: true}, nil
}

func searchRequest(query string, now time.Time) ai.Request {
	return ai.Request{
		Instruction: instruction(now),
		Prompt:      fmt.Sprintf(searchPrompt, query, specKeyList()),
		Grounded:    true,
	}
}

func compareRequest(phone1, phone2 string, now time.Time) ai.Request {
	return ai.Request{
		Instruction: instruction(now),
		Prompt:      fmt.Sprintf(comparePrompt, phone1, phone2, specKeyList(), phone1, phone2),
		Grounded:    true,
	}
}

func statsRequest(query string, now time.Time) ai.Request {
	return ai.Request{
		Instruction: instruction(now),
		Prompt:      fmt.Sprintf(statsPrompt, query),
		Grounded:    true,
	}
}
