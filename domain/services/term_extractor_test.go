package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTermExtractor_Extract_Technical(t *testing.T) {
	extractor := NewDefaultTermExtractor()

	terms := extractor.Extract("Refactor AuthService to use the JWT validator in HTTP2 mode")

	assert.Contains(t, terms.Technical, "AuthService")
	assert.Contains(t, terms.Technical, "JWT")
	assert.Contains(t, terms.Technical, "HTTP2")
	assert.NotContains(t, terms.Technical, "Refactor", "single capitalized words are not technical")
}

func TestDefaultTermExtractor_Extract_Quoted(t *testing.T) {
	extractor := NewDefaultTermExtractor()

	terms := extractor.Extract(`The "login form" crashes when 'remember me' is checked`)

	assert.Contains(t, terms.Quoted, "login form")
	assert.Contains(t, terms.Quoted, "remember me")
}

func TestDefaultTermExtractor_Extract_Keywords(t *testing.T) {
	extractor := NewDefaultTermExtractor()

	terms := extractor.Extract("The database migration failed because the schema was locked")

	assert.Contains(t, terms.Keywords, "database")
	assert.Contains(t, terms.Keywords, "migration")
	assert.Contains(t, terms.Keywords, "schema")
	assert.NotContains(t, terms.Keywords, "the", "stop words are filtered")
	assert.NotContains(t, terms.Keywords, "was", "short and stop words are filtered")
}

func TestDefaultTermExtractor_Extract_KeywordsDeduplicated(t *testing.T) {
	extractor := NewDefaultTermExtractor()

	terms := extractor.Extract("cache cache cache invalidation")

	assert.Equal(t, []string{"cache", "invalidation"}, terms.Keywords)
}

func TestDefaultTermExtractor_Extract_Patterns(t *testing.T) {
	extractor := NewDefaultTermExtractor()

	tests := []struct {
		name   string
		text   string
		bucket func(ExtractedTerms) []string
	}{
		{"bug vocabulary", "fixed a crash in the parser", func(tr ExtractedTerms) []string { return tr.Patterns.Bugs }},
		{"feature vocabulary", "implement support for exports", func(tr ExtractedTerms) []string { return tr.Patterns.Features }},
		{"improvement vocabulary", "refactor and optimize the hot path", func(tr ExtractedTerms) []string { return tr.Patterns.Improvements }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := extractor.Extract(tt.text)
			assert.NotEmpty(t, tt.bucket(terms))
		})
	}
}

func TestDefaultTermExtractor_Extract_EmptyInput(t *testing.T) {
	extractor := NewDefaultTermExtractor()

	assert.True(t, extractor.Extract("").IsEmpty())
	assert.True(t, extractor.Extract("   \n\t ").IsEmpty())
}

func TestDefaultTermExtractor_ExtractKeywordSet(t *testing.T) {
	extractor := NewDefaultTermExtractor()

	set := extractor.ExtractKeywordSet("database migration schema")

	assert.True(t, set["database"])
	assert.True(t, set["migration"])
	assert.False(t, set["the"])
}
