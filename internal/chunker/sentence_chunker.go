package chunker

import (
	"regexp"
	"strings"

	"ragserver/internal/domain"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 500
	// DefaultOverlap is accepted for configuration compatibility but the
	// sentence chunker does not currently apply it to its output.
	DefaultOverlap = 50
)

// SentenceChunker splits text into size-bounded chunks along sentence
// boundaries. Sentences are never split: a single sentence longer than the
// chunk size is emitted as its own oversized chunk.
type SentenceChunker struct {
	chunkSize  int
	overlap    int
	whitespace *regexp.Regexp
	splitter   *regexp.Regexp
}

func NewSentenceChunker(chunkSize, overlap int) *SentenceChunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	return &SentenceChunker{
		chunkSize:  chunkSize,
		overlap:    overlap,
		whitespace: regexp.MustCompile(`\s+`),
		splitter:   regexp.MustCompile(`([.!?])\s+`),
	}
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	text := strings.TrimSpace(c.whitespace.ReplaceAllString(document.Content, " "))
	if text == "" {
		return nil, nil
	}

	sentences := c.split(text)

	var texts []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len()+len(sentence)+1 <= c.chunkSize {
			current.WriteString(sentence)
			current.WriteString(" ")
			continue
		}
		if current.Len() > 0 {
			texts = append(texts, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(sentence)
		current.WriteString(" ")
	}
	if current.Len() > 0 {
		texts = append(texts, strings.TrimSpace(current.String()))
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = domain.Chunk{
			Text: t,
			Metadata: domain.ChunkMetadata{
				DocumentName: document.Name,
				ChunkID:      i,
			},
		}
	}
	return chunks, nil
}

// split cuts normalized text on sentence-terminal punctuation followed by
// whitespace, keeping the punctuation attached to the preceding sentence.
func (c *SentenceChunker) split(text string) []string {
	marked := c.splitter.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	sentences := parts[:0]
	for _, p := range parts {
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}
