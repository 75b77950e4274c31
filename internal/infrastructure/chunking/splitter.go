package chunking

import (
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

// Splitter cuts cleaned document text into overlapping chunks. The window
// advances by size-overlap, so consecutive chunks always share exactly
// Overlap runes; within a window the cut prefers a paragraph or sentence
// break in the tail before falling back to a hard cut.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Split(doc *domain.SourceDocument) []domain.Chunk {
	runes := []rune(doc.RawText)
	n := len(runes)
	if n == 0 {
		return nil
	}

	out := make([]domain.Chunk, 0, n/(s.ChunkSize-s.Overlap)+1)
	start := 0
	for index := 0; ; index++ {
		end := start + s.ChunkSize
		last := end >= n
		if last {
			end = n
		} else {
			end = s.cut(runes, start, end)
		}

		out = append(out, domain.Chunk{
			DocumentURL:  doc.URL,
			Title:        doc.Title,
			SourceDomain: doc.SourceDomain,
			Index:        index,
			Text:         string(runes[start:end]),
			CharStart:    start,
			CharEnd:      end,
		})

		if last {
			break
		}
		start = end - s.Overlap
	}
	return out
}

// cut pulls the window end back to the last paragraph or sentence break in
// the final fifth of the window, keeping the cut strictly past the overlap
// region so the splitter always makes progress.
func (s *Splitter) cut(runes []rune, start, end int) int {
	window := runes[start:end]
	from := len(window) - s.ChunkSize/5
	if min := s.Overlap + 1; from < min {
		from = min
	}
	if from >= len(window) {
		return end
	}

	for i := len(window) - 2; i >= from; i-- {
		if window[i] == '\n' && window[i+1] == '\n' {
			return start + i + 2
		}
	}
	for i := len(window) - 2; i >= from; i-- {
		r := window[i]
		if r == '\n' {
			return start + i + 1
		}
		if (r == '.' || r == '?' || r == '!') && (window[i+1] == ' ' || window[i+1] == '\n') {
			return start + i + 2
		}
	}
	return end
}
