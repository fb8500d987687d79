package services

import (
	"regexp"
	"strings"
)

// ExtractedTerms holds the structured search features pulled out of
// free text by the term extractor.
type ExtractedTerms struct {
	// Technical terms: CamelCase identifiers and ALL-CAPS words.
	// Deduplicated; order carries no meaning.
	Technical []string

	// Quoted substrings with the quotes stripped
	Quoted []string

	// Lowercase keywords: length > 3, punctuation stripped,
	// stopword-filtered, deduplicated
	Keywords []string

	// Pattern buckets, used only as auxiliary signal
	Patterns PatternHits
}

// PatternHits groups vocabulary matches by category
type PatternHits struct {
	Bugs         []string
	Features     []string
	Improvements []string
}

// IsEmpty reports whether extraction produced no features at all
func (t ExtractedTerms) IsEmpty() bool {
	return len(t.Technical) == 0 && len(t.Quoted) == 0 && len(t.Keywords) == 0 &&
		len(t.Patterns.Bugs) == 0 && len(t.Patterns.Features) == 0 && len(t.Patterns.Improvements) == 0
}

// TermExtractor pulls structured search features out of free text
type TermExtractor interface {
	Extract(text string) ExtractedTerms

	// ExtractKeywordSet returns just the keyword features as a set,
	// for Jaccard-based similarity
	ExtractKeywordSet(text string) map[string]bool
}

// patternRule pairs a bucket label with its vocabulary regex.
// Rules are kept as data so they are independently testable and
// replaceable without touching extraction logic.
type patternRule struct {
	bucket string
	re     *regexp.Regexp
}

const (
	bucketBugs         = "bugs"
	bucketFeatures     = "features"
	bucketImprovements = "improvements"
)

var (
	camelCaseRe   = regexp.MustCompile(`\b[A-Z][a-z0-9]+(?:[A-Z][a-z0-9]*)+\b`)
	allCapsRe     = regexp.MustCompile(`\b[A-Z][A-Z0-9_]{1,}\b`)
	doubleQuoteRe = regexp.MustCompile(`"([^"]+)"`)
	singleQuoteRe = regexp.MustCompile(`'([^']+)'`)

	defaultPatternRules = []patternRule{
		{bucketBugs, regexp.MustCompile(`(?i)\b(bug|fix(?:es|ed)?|error|issue|crash|broken|fail(?:s|ure|ing)?)\b`)},
		{bucketFeatures, regexp.MustCompile(`(?i)\b(feature|implement(?:s|ed|ation)?|add(?:s|ed)?|support|new)\b`)},
		{bucketImprovements, regexp.MustCompile(`(?i)\b(improve(?:s|d|ment)?|refactor(?:s|ed|ing)?|optimi[sz]e[sd]?|clean(?:up|ed)?|enhance(?:s|d|ment)?)\b`)},
	}
)

// DefaultTermExtractor provides the default rule-table-driven extractor
type DefaultTermExtractor struct {
	stopWords     map[string]bool
	patternRules  []patternRule
	minKeywordLen int
}

// NewDefaultTermExtractor creates a term extractor with common English
// stop words and the default pattern vocabulary.
func NewDefaultTermExtractor() *DefaultTermExtractor {
	return &DefaultTermExtractor{
		stopWords:     getDefaultStopWords(),
		patternRules:  defaultPatternRules,
		minKeywordLen: 4,
	}
}

// Extract pulls all structured features out of the text.
// Empty input yields all-empty results, never an error.
func (te *DefaultTermExtractor) Extract(text string) ExtractedTerms {
	if strings.TrimSpace(text) == "" {
		return ExtractedTerms{}
	}

	terms := ExtractedTerms{
		Technical: te.extractTechnical(text),
		Quoted:    te.extractQuoted(text),
		Keywords:  te.extractKeywords(text),
	}

	for _, rule := range te.patternRules {
		hits := dedupeStrings(rule.re.FindAllString(text, -1))
		switch rule.bucket {
		case bucketBugs:
			terms.Patterns.Bugs = hits
		case bucketFeatures:
			terms.Patterns.Features = hits
		case bucketImprovements:
			terms.Patterns.Improvements = hits
		}
	}

	return terms
}

// ExtractKeywordSet returns the keyword features as a set
func (te *DefaultTermExtractor) ExtractKeywordSet(text string) map[string]bool {
	keywords := te.extractKeywords(text)
	set := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		set[kw] = true
	}
	return set
}

// extractTechnical collects CamelCase and ALL-CAPS word shapes
func (te *DefaultTermExtractor) extractTechnical(text string) []string {
	matches := camelCaseRe.FindAllString(text, -1)
	matches = append(matches, allCapsRe.FindAllString(text, -1)...)
	return dedupeStrings(matches)
}

// extractQuoted collects the contents of quoted substrings
func (te *DefaultTermExtractor) extractQuoted(text string) []string {
	var quoted []string
	for _, m := range doubleQuoteRe.FindAllStringSubmatch(text, -1) {
		quoted = append(quoted, m[1])
	}
	for _, m := range singleQuoteRe.FindAllStringSubmatch(text, -1) {
		quoted = append(quoted, m[1])
	}
	return dedupeStrings(quoted)
}

// extractKeywords tokenizes, strips punctuation, filters stop words,
// and deduplicates, preserving first-seen order.
func (te *DefaultTermExtractor) extractKeywords(text string) []string {
	var keywords []string
	seen := make(map[string]bool)

	for _, token := range tokenize(text) {
		if len(token) < te.minKeywordLen || te.stopWords[token] || seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
	}

	return keywords
}

// tokenize splits text into lowercase alphanumeric tokens
func tokenize(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}

// dedupeStrings removes duplicates preserving first-seen order
func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	var out []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// getDefaultStopWords returns a set of common English stop words
func getDefaultStopWords() map[string]bool {
	stopWords := map[string]bool{
		"the": true, "be": true, "to": true, "of": true, "and": true,
		"a": true, "in": true, "that": true, "have": true, "i": true,
		"it": true, "for": true, "not": true, "on": true, "with": true,
		"he": true, "as": true, "you": true, "do": true, "at": true,
		"this": true, "but": true, "his": true, "by": true, "from": true,
		"they": true, "we": true, "say": true, "her": true, "she": true,
		"or": true, "an": true, "will": true, "my": true, "one": true,
		"all": true, "would": true, "there": true, "their": true, "what": true,
		"so": true, "up": true, "out": true, "if": true, "about": true,
		"who": true, "get": true, "which": true, "go": true, "me": true,
		"when": true, "make": true, "can": true, "like": true, "time": true,
		"no": true, "just": true, "him": true, "know": true, "take": true,
		"people": true, "into": true, "year": true, "your": true, "good": true,
		"some": true, "could": true, "them": true, "see": true, "other": true,
		"than": true, "then": true, "now": true, "look": true, "only": true,
		"come": true, "its": true, "over": true, "think": true, "also": true,
		"back": true, "after": true, "use": true, "two": true, "how": true,
		"our": true, "work": true, "first": true, "well": true, "way": true,
		"even": true, "new": true, "want": true, "because": true, "any": true,
		"these": true, "give": true, "day": true, "most": true, "us": true,
		"is": true, "was": true, "are": true, "been": true, "has": true,
		"had": true, "were": true, "said": true, "did": true, "having": true,
		"may": true, "am": true, "should": true, "too": true, "very": true,
	}
	return stopWords
}
