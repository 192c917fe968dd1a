// Package chunker splits ingested documents into retrieval-sized passages.
package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"travelchat/internal/domain"
)

// Abbreviations that end in a period without ending the sentence.
var abbreviations = map[string]struct{}{
	"st": {}, "mt": {}, "dr": {}, "mr": {}, "mrs": {}, "sr": {}, "sra": {},
	"av": {}, "ave": {}, "carr": {}, "no": {}, "bo": {},
}

// SentenceChunker splits text into sentence-based chunks with overlap.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

// NewSentenceChunker returns a chunker emitting sentencesPerChunk sentences per
// chunk, repeating overlapSentences sentences between neighbours.
func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`[^.!?]+[.!?]+["')\]]*`),
	}
}

// Chunk splits the document content. Chunk IDs are "<document id>:<index>".
func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	sentences := c.sentences(document.Content)
	if len(sentences) == 0 {
		return nil, nil
	}

	var chunks []domain.Chunk
	for start, idx := 0, 0; start < len(sentences); idx++ {
		end := min(start+c.sentencesPerChunk, len(sentences))
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Text:       strings.Join(sentences[start:end], " "),
			Index:      idx,
		})
		if end == len(sentences) {
			break
		}
		start = end - c.overlapSentences
	}
	return chunks, nil
}

func (c *SentenceChunker) sentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	var out []string
	var pending strings.Builder
	consumed := 0
	for _, loc := range c.splitter.FindAllStringIndex(text, -1) {
		pending.WriteString(text[loc[0]:loc[1]])
		consumed = loc[1]
		if endsWithAbbreviation(pending.String()) {
			continue
		}
		if s := strings.TrimSpace(pending.String()); s != "" {
			out = append(out, s)
		}
		pending.Reset()
	}
	// Text after the last terminator is a sentence of its own.
	pending.WriteString(text[consumed:])
	if s := strings.TrimSpace(pending.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func endsWithAbbreviation(s string) bool {
	s = strings.TrimRight(strings.TrimSpace(s), ".")
	i := strings.LastIndexAny(s, " (")
	word := strings.ToLower(s[i+1:])
	_, ok := abbreviations[word]
	return ok
}
