// Package summarizer produces extractive summaries and term statistics of
// ingested text.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Term is a content word and the number of times it occurs.
type Term struct {
	Word  string
	Count int
}

// FrequencySummarizer ranks sentences by word frequency (stopwords filtered).
type FrequencySummarizer struct {
	tokenPattern    *regexp.Regexp
	sentencePattern *regexp.Regexp
	stopwords       map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{
		tokenPattern:    regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentencePattern: regexp.MustCompile(`[^.!?]+[.!?]+`),
		stopwords:       defaultStopwords(),
	}
}

// Summarize returns up to maxSentences of the highest scoring sentences in
// their original order.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := s.sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	freq := s.frequencies(text)
	maxF := 0
	for _, v := range freq {
		maxF = max(maxF, v)
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		total := 0.0
		for _, tok := range toks {
			total += float64(freq[tok]) / float64(max(maxF, 1))
		}
		// Long sentences would otherwise always win.
		if len(toks) > 0 {
			total /= math.Sqrt(float64(len(toks)))
		}
		scores[i] = scored{i, total}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	n := min(maxSentences, len(scores))
	selected := make([]int, n)
	for i := range n {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)

	out := make([]string, 0, n)
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " "), nil
}

// TopTerms returns the n most frequent content words, ties broken alphabetically.
func (s *FrequencySummarizer) TopTerms(text string, n int) []Term {
	freq := s.frequencies(text)
	terms := make([]Term, 0, len(freq))
	for w, c := range freq {
		terms = append(terms, Term{Word: w, Count: c})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Word < terms[j].Word
	})
	if n > 0 && n < len(terms) {
		terms = terms[:n]
	}
	return terms
}

func (s *FrequencySummarizer) frequencies(text string) map[string]int {
	freq := map[string]int{}
	for _, tok := range s.tokens(text) {
		if _, ok := s.stopwords[tok]; ok || len([]rune(tok)) < 2 {
			continue
		}
		freq[tok]++
	}
	return freq
}

func (s *FrequencySummarizer) tokens(text string) []string {
	return s.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now", "has", "have", "had", "which", "who", "also",
		"el", "la", "los", "las", "de", "del", "y", "en", "un", "una", "que", "por", "para", "con", "se", "su", "sus", "al", "lo", "es", "como", "más", "pero", "fue",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
