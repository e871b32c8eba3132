package classifier

import (
	"fmt"
	"strings"

	"corruption-watch/internal/pipeline/model"
)

const (
	// maxPromptChars truncates article body text before it is sent to
	// either LLM provider, independent of the provider's own token
	// budget.
	maxPromptChars = 10000

	jsonShapeInstruction = `Return ONLY a valid JSON object with exactly these keys, no markdown
fencing and no extra text:

{
  "is_relevant": true or false,
  "confidence": a number between 0.0 and 1.0,
  "reasoning": "one or two sentences explaining the decision",
  "key_entities": ["Entity1", "Entity2"]
}

Confidence guidance: 0.9-1.0 for a clear, well-evidenced case; 0.7-0.89
for strong but less direct indicators; 0.5-0.69 for tangential
mentions; below 0.5 for weak or no connection. Extract 2 to 5 key
entities: organizations, officials, programs, or contracts named in
the article. Be conservative — prefer a lower confidence score over an
overstated one.`

	corruptionCriteria = `You classify Jamaican news articles for relevance to corruption and
government accountability.

RELEVANT topics include: embezzlement, bribery, fraud, or
misappropriation of public funds; procurement or contract
irregularities; OCG, MOCA, or FID investigations; parliamentary
inquiries into misconduct; Auditor General findings on government
spending; criminal charges, resignations, or conflicts of interest
involving public officials; and corruption-specific police misconduct.

NOT relevant: ordinary crime with no public-official involvement,
private-sector disputes, sports, entertainment, weather, campaign
rhetoric without specific allegations, and routine accident or general
news reporting.`

	hurricaneReliefCriteria = `You classify Jamaican news articles for relevance to hurricane and
disaster relief accountability.

RELEVANT topics include: allocation, distribution, or alleged misuse
of hurricane or disaster relief funds and supplies; government or NGO
relief program administration; delays or irregularities in disaster
aid distribution; contracts awarded for storm recovery or
reconstruction; and official accountability for relief spending.

NOT relevant: routine weather forecasting or storm-tracking coverage,
general disaster human-interest stories with no funding or
accountability angle, and relief efforts in other countries with no
Jamaican government or public-fund involvement.`
)

// buildPrompt assembles the full classification prompt for one
// input, combining the topic-specific criteria with the article's
// metadata and (possibly truncated) body text.
func buildPrompt(criteria string, input model.ClassificationInput) string {
	body := input.FullText
	if len(body) > maxPromptChars {
		body = body[:maxPromptChars] + "...(truncated)"
	}

	var published string
	if input.PublishedDate != nil {
		published = input.PublishedDate.UTC().Format("2006-01-02")
	} else {
		published = "unknown"
	}

	return fmt.Sprintf(`%s

%s

Article to classify:
URL: %s
Section: %s
Published: %s
Title: %s

Body:
%s`, criteria, jsonShapeInstruction, input.URL, input.Section, published, input.Title, strings.TrimSpace(body))
}
