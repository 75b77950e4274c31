package usecase

import (
	"sort"
	"strings"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

// AssembleContext turns reranked chunks into the grounding context for
// synthesis. Overlapping or adjacent spans from the same document are
// merged into one block using their rune offsets, then blocks are
// admitted in rerank order until the character budget is spent. The
// best block is always admitted even if it alone exceeds the budget, so
// a non-empty rerank result never produces an empty context.
func AssembleContext(candidates []domain.RerankedCandidate, charBudget int) domain.GroundingContext {
	if len(candidates) == 0 {
		return domain.GroundingContext{}
	}

	merged := mergeByDocument(candidates)

	var blocks []domain.ContextBlock
	used := 0
	for _, b := range merged {
		size := len([]rune(b.Text))
		if charBudget > 0 && used+size > charBudget {
			if len(blocks) > 0 {
				continue
			}
			// The best block survives alone, cut down to the budget.
			b.Text = truncateRunes(b.Text, charBudget)
			b.CharEnd = b.CharStart + len([]rune(b.Text))
			size = charBudget
		}
		blocks = append(blocks, b)
		used += size
	}
	return domain.GroundingContext{Blocks: blocks}
}

type docSpan struct {
	block     domain.ContextBlock
	bestRank  int
	spanParts []spanPart
}

type spanPart struct {
	start, end int
	text       string
}

// mergeByDocument collapses same-document chunks whose rune ranges touch
// or overlap. The merged block keeps the rank of its best member so
// merging never demotes a strong hit.
func mergeByDocument(candidates []domain.RerankedCandidate) []domain.ContextBlock {
	groups := make(map[string]*docSpan)
	order := make([]string, 0, len(candidates))

	for rank, c := range candidates {
		key := c.Chunk.DocumentURL
		g, ok := groups[key]
		if !ok {
			g = &docSpan{
				block: domain.ContextBlock{
					DocumentURL:  c.Chunk.DocumentURL,
					Title:        c.Chunk.Title,
					SourceDomain: c.Chunk.SourceDomain,
				},
				bestRank: rank,
			}
			groups[key] = g
			order = append(order, key)
		}
		g.spanParts = append(g.spanParts, spanPart{start: c.Chunk.CharStart, end: c.Chunk.CharEnd, text: c.Chunk.Text})
	}

	blocks := make([]domain.ContextBlock, 0, len(order))
	for _, key := range order {
		g := groups[key]
		start, end, text := stitchSpans(g.spanParts)
		g.block.CharStart = start
		g.block.CharEnd = end
		g.block.Text = text
		blocks = append(blocks, g.block)
	}
	sortByRank(blocks, groups)
	return blocks
}

func sortByRank(blocks []domain.ContextBlock, groups map[string]*docSpan) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return groups[blocks[i].DocumentURL].bestRank < groups[blocks[j].DocumentURL].bestRank
	})
}

// stitchSpans joins chunk texts in document order, dropping the
// overlapped prefix where consecutive spans share characters. Disjoint
// spans from the same document are joined with an ellipsis marker.
func stitchSpans(parts []spanPart) (int, int, string) {
	sort.SliceStable(parts, func(i, j int) bool {
		if parts[i].start != parts[j].start {
			return parts[i].start < parts[j].start
		}
		return parts[i].end > parts[j].end
	})

	var sb strings.Builder
	start := parts[0].start
	end := parts[0].end
	sb.WriteString(parts[0].text)

	for _, p := range parts[1:] {
		if p.end <= end {
			continue
		}
		if p.start <= end {
			overlap := end - p.start
			runes := []rune(p.text)
			if overlap < len(runes) {
				sb.WriteString(string(runes[overlap:]))
			}
		} else {
			sb.WriteString("\n[...]\n")
			sb.WriteString(p.text)
		}
		end = p.end
	}
	return start, end, sb.String()
}
