package usecase

import (
	"sort"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

// Modality weights and the boost applied when both branches agree on a record.
const (
	lexicalWeight     = 0.6
	denseWeight       = 0.4
	intersectionBoost = 1.5
)

// fuseRecords merges the two branch result lists into one ranked list.
// Lexical hits are inserted first and keep their insertion order on score
// ties; a record found by both branches gets the boosted sum of its weighted
// scores and both match-type markers.
func fuseRecords(lexical, dense []domain.RetrievalRecord, limit int) []domain.RetrievalRecord {
	out := make([]domain.RetrievalRecord, 0, len(lexical)+len(dense))
	index := make(map[string]int, len(lexical))

	for _, rec := range lexical {
		rec.Score = rec.Score * lexicalWeight
		rec.MatchTypes = []domain.MatchType{domain.MatchLexical}
		if key := rec.Key(); key != "" {
			index[key] = len(out)
		}
		out = append(out, rec)
	}

	for _, rec := range dense {
		weighted := rec.Score * denseWeight
		key := rec.Key()
		if i, ok := index[key]; ok && key != "" {
			out[i].Score = (out[i].Score + weighted) * intersectionBoost
			out[i].MatchTypes = append(out[i].MatchTypes, domain.MatchDense)
			out[i] = preferRicherRecord(out[i], rec)
			continue
		}
		rec.Score = weighted
		rec.MatchTypes = []domain.MatchType{domain.MatchDense}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// preferRicherRecord keeps the fused entry's identity but backfills payload
// fields the other branch happened to carry.
func preferRicherRecord(current, candidate domain.RetrievalRecord) domain.RetrievalRecord {
	if current.Name == "" && candidate.Name != "" {
		current.Name = candidate.Name
	}
	if current.Text == "" && candidate.Text != "" {
		current.Text = candidate.Text
	}
	if current.RefID == "" && candidate.RefID != "" {
		current.RefID = candidate.RefID
	}
	if current.NativeID == "" && candidate.NativeID != "" {
		current.NativeID = candidate.NativeID
	}
	return current
}
