package models

// UnlinkedMention is an occurrence of a known title or alias in free text
// that is not inside a wiki link. Start and End are half-open character
// (rune) offsets into the scanned text.
type UnlinkedMention struct {
	PageID string `json:"page_id"`
	Text   string `json:"text"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// SearchHit is one full-text search result.
type SearchHit struct {
	PageID  string  `json:"page_id"`
	BlockID string  `json:"block_id"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}
