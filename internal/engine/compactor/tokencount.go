package compactor

import (
	"math"
	"strings"

	"github.com/crimson-sun/djenbridge/internal/model"
)

// subwordFactor approximates BPE expansion for Portuguese legal text.
const subwordFactor = 1.5

// EstimateTokens returns an approximate token count using a whitespace
// heuristic. Not a real tokenizer; good enough to budget LLM context.
func EstimateTokens(s string) int {
	words := len(strings.Fields(s))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) * subwordFactor))
}

// EstimateRecordTokens sums the estimate over the text-bearing fields of a
// result set, plus a fixed overhead per record for keys and punctuation.
func EstimateRecordTokens(records []model.NotificationRecord) int {
	const perRecordOverhead = 40
	total := 0
	for _, r := range records {
		total += perRecordOverhead
		total += EstimateTokens(r.LawyerName)
		total += EstimateTokens(r.Summary)
		total += EstimateTokens(r.Deadline)
		total += len(r.Actions)
	}
	return total
}
