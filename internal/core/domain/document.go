package domain

import "time"

type SourceStatus string

const (
	StatusQueued     SourceStatus = "queued"
	StatusProcessing SourceStatus = "processing"
	StatusIndexed    SourceStatus = "indexed"
	StatusDuplicate  SourceStatus = "duplicate"
	StatusFailed     SourceStatus = "failed"
)

// SourceDocument is one whitelisted page admitted into the corpus.
// It is identified by its URL and immutable after a successful fetch.
type SourceDocument struct {
	URL          string       `json:"url"`
	Title        string       `json:"title"`
	Category     string       `json:"category,omitempty"`
	SourceDomain string       `json:"source_domain"`
	FetchDate    time.Time    `json:"fetch_date"`
	RawText      string       `json:"-"`
	Status       SourceStatus `json:"status"`
	ChunkCount   int          `json:"chunk_count"`
	Error        string       `json:"error,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// FetchedPage is what the page fetcher hands to the pipeline: extracted
// plain text, never raw markup.
type FetchedPage struct {
	URL       string
	Title     string
	Text      string
	FetchDate time.Time
}

// Chunk is a bounded, overlapping substring of a source document; the unit
// of retrieval. CharStart/CharEnd are rune offsets into the cleaned text.
type Chunk struct {
	DocumentURL  string `json:"document_url"`
	Title        string `json:"title"`
	SourceDomain string `json:"source_domain"`
	Index        int    `json:"index"`
	Text         string `json:"text"`
	CharStart    int    `json:"char_start"`
	CharEnd      int    `json:"char_end"`
}
