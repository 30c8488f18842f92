package domain

// Citation is a retrieved document surfaced to support a generated answer.
// Within one retrieval response SourceID values are unique and the list
// length never exceeds the requested topK.
type Citation struct {
	SourceID string   `json:"source_id"`
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Snippet  string   `json:"snippet"`
	Tags     []string `json:"tags,omitempty"`
}

// DedupeCitations removes duplicate source IDs preserving first-seen order.
func DedupeCitations(citations []Citation) []Citation {
	seen := make(map[string]struct{}, len(citations))
	out := make([]Citation, 0, len(citations))
	for _, c := range citations {
		if _, ok := seen[c.SourceID]; ok {
			continue
		}
		seen[c.SourceID] = struct{}{}
		out = append(out, c)
	}
	return out
}
