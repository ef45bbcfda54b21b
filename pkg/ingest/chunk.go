package ingest

import "strings"

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 100
)

// ChunkText splits text into overlapping word-boundary chunks. Size and
// overlap are in characters; overlap carries trailing context into the
// next chunk so sentences cut at a boundary stay searchable.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = defaultChunkOverlap
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, strings.TrimSpace(text[start:]))
			break
		}

		// Back up to the last space so words are not split.
		cut := strings.LastIndexByte(text[start:end], ' ')
		if cut <= 0 {
			cut = size
		}
		chunks = append(chunks, strings.TrimSpace(text[start:start+cut]))

		next := start + cut - overlap
		if next <= start {
			next = start + cut
		}
		start = next
	}
	return chunks
}
