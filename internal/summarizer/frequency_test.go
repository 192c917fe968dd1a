package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corpus = "San Juan is the capital. San Juan has forts and beaches. " +
	"The weather is warm. Old San Juan has colorful streets."

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	s := NewFrequencySummarizer()

	summary, err := s.Summarize(corpus, 2)
	require.NoError(t, err)
	assert.Equal(t, "San Juan has forts and beaches. Old San Juan has colorful streets.", summary)
}

func TestSummarizeEdgeCases(t *testing.T) {
	s := NewFrequencySummarizer()

	out, err := s.Summarize("  no terminator here ", 3)
	require.NoError(t, err)
	assert.Equal(t, "no terminator here", out)

	out, err = s.Summarize("One. Two.", 10)
	require.NoError(t, err)
	assert.Equal(t, "One. Two.", out)
}

func TestTopTerms(t *testing.T) {
	s := NewFrequencySummarizer()

	terms := s.TopTerms(corpus, 2)
	require.Len(t, terms, 2)
	assert.Equal(t, Term{Word: "juan", Count: 3}, terms[0])
	assert.Equal(t, Term{Word: "san", Count: 3}, terms[1])

	assert.Empty(t, s.TopTerms("the and of", 5))
	assert.Equal(t, []Term{{Word: "playa", Count: 2}}, s.TopTerms("La playa, la playa.", 0))
}
