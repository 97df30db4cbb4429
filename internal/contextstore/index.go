package contextstore

// IndexRequest asks for one piece of learning material to be embedded and
// upserted into its owner's collection. Indexing is best-effort enrichment:
// requests ride a queue and may be re-published out of band after failures.
type IndexRequest struct {
	UserID   uint              `json:"user_id"`
	Kind     string            `json:"kind"` // "video" or "document"
	SourceID uint              `json:"source_id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
