package questions

import (
	"crypto/md5"
	"encoding/binary"
	"hash/fnv"
	"sort"

	"health-checkin-service/internal/domain"
)

// rotationMod keeps rotation keys in a small fixed range. The shuffle is
// intentionally weak; no security property depends on it.
const rotationMod = 9999

// perCategory is how many questions each category contributes when it has
// enough candidates.
const perCategory = 2

// maxSetSize caps the concatenated daily set at 8 questions. Oversized
// selections shed second picks from the tail categories; every covered
// category always keeps at least one question.
const maxSetSize = 8

// Select returns the daily question set for a date string (YYYY-MM-DD).
// Pure and deterministic: the same date always yields the same ordered set,
// across processes and restarts. Categories appear in domain.Categories
// order, each contributing 1-2 questions, 5-8 in total.
func (b *Bank) Select(date string) []domain.Question {
	seed := dateSeed(date)

	picks := make([][]domain.Question, 0, len(domain.Categories))
	total := 0
	for _, cat := range domain.Categories {
		candidates := b.byCategory[cat]
		if len(candidates) == 0 {
			continue
		}
		count := perCategory
		if len(candidates) < perCategory {
			count = len(candidates)
		}

		shuffled := make([]domain.Question, len(candidates))
		copy(shuffled, candidates)
		sort.Slice(shuffled, func(i, j int) bool {
			ki := rotationKey(seed, shuffled[i].ID)
			kj := rotationKey(seed, shuffled[j].ID)
			if ki != kj {
				return ki < kj
			}
			return shuffled[i].ID < shuffled[j].ID
		})
		picks = append(picks, shuffled[:count])
		total += count
	}

	for i := len(picks) - 1; total > maxSetSize && i >= 0; i-- {
		if len(picks[i]) > 1 {
			picks[i] = picks[i][:len(picks[i])-1]
			total--
		}
	}

	selected := make([]domain.Question, 0, total)
	for _, p := range picks {
		selected = append(selected, p...)
	}
	return selected
}

// dateSeed derives a stable numeric seed from the calendar date string.
func dateSeed(date string) uint64 {
	sum := md5.Sum([]byte(date))
	return binary.BigEndian.Uint64(sum[:8])
}

func rotationKey(seed uint64, questionID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(questionID))
	return (seed ^ h.Sum64()) % rotationMod
}
