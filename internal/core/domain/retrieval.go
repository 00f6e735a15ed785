package domain

type MatchType string

const (
	MatchLexical MatchType = "lexical"
	MatchDense   MatchType = "dense"
)

// RetrievalRecord is one fused hit from the hybrid retrieval engine. Records
// live for a single query and are never persisted.
type RetrievalRecord struct {
	RefID      string      `json:"ref_id,omitempty"`
	NativeID   string      `json:"native_id,omitempty"`
	Name       string      `json:"name,omitempty"`
	Text       string      `json:"text,omitempty"`
	Score      float64     `json:"score"`
	MatchTypes []MatchType `json:"match_types"`
	Collection string      `json:"collection"`
}

// Key is the canonical identity used for cross-modality deduplication: the
// explicit cross-index reference when present, the backend's native id
// otherwise.
func (r RetrievalRecord) Key() string {
	if r.RefID != "" {
		return r.RefID
	}
	return r.NativeID
}

// Snippet returns the best free-text rendering of the record.
func (r RetrievalRecord) Snippet() string {
	if r.Text != "" {
		return r.Text
	}
	return r.Name
}

func (r RetrievalRecord) MatchedBy(t MatchType) bool {
	for _, m := range r.MatchTypes {
		if m == t {
			return true
		}
	}
	return false
}
