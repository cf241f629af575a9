package generator

// Rough per-1K-token prices in USD, used only for cost estimates shown to
// users. Tokens are approximated as characters divided by four.
var pricePerThousandTokens = map[string]float64{
	"gemini-2.0-flash": 0.0004,
	"gemini-1.5-pro":   0.00125,
	"gpt-4o-mini":      0.00060,
	"gpt-4o":           0.00500,
	"gpt-3.5-turbo":    0.00100,
}

const (
	charsPerToken = 4
	// Inputs assumed by EstimateCost for a not-yet-built prompt.
	estimatedPromptChars  = 2000
	estimatedCharsPerWord = 6
	defaultPrice          = 0.00100
)

func priceFor(model string) float64 {
	if p, ok := pricePerThousandTokens[model]; ok {
		return p
	}
	return defaultPrice
}

// completionCost estimates the USD cost of a finished call from its actual
// prompt and output sizes.
func completionCost(model string, promptChars, outputChars int) float64 {
	tokens := float64(promptChars)/charsPerToken + float64(outputChars)/charsPerToken
	return tokens / 1000 * priceFor(model)
}

// EstimateCost predicts the USD cost of generating a post of the given word
// count before any prompt exists.
func EstimateCost(model string, wordCount int) float64 {
	if wordCount <= 0 {
		wordCount = 800
	}
	return completionCost(model, estimatedPromptChars, wordCount*estimatedCharsPerWord)
}
