package scoring

import (
	"encoding/json"

	"health-checkin-service/internal/domain"
)

// Resolve converts raw client answers (label strings or numeric values) into
// numeric feature values using the served question set's hidden label→value
// tables. Unknown labels resolve to 0 (worst case) rather than failing; a
// question with no answer is absent from the output so the scorer treats it
// as unanswered.
func Resolve(questions []domain.Question, raw domain.RawAnswers) map[string]int {
	labelToValue := make(map[string]map[string]int, len(questions))
	for _, q := range questions {
		table := make(map[string]int, len(q.Options))
		for _, opt := range q.Options {
			table[opt.Label] = opt.Value
		}
		labelToValue[q.ID] = table
	}

	resolved := make(map[string]int, len(raw))
	for qid, answer := range raw {
		table, ok := labelToValue[qid]
		if !ok {
			continue // not part of the served set
		}
		resolved[qid] = resolveOne(table, answer)
	}
	return resolved
}

func resolveOne(table map[string]int, answer any) int {
	switch v := answer.(type) {
	case int:
		return v
	case float64:
		// JSON decoding yields float64 for numeric answers.
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		return 0
	case string:
		return table[v] // unknown label → zero value
	default:
		return 0
	}
}
