package services

import (
	"strings"

	"recall-backend/domain/core/entities"
)

// classifierRule pairs a connection type with the vocabulary that
// selects it. Rules are evaluated in order against the candidate's
// content; the first hit wins, so the table's order is behavior,
// not presentation.
type classifierRule struct {
	connType entities.ConnectionType
	vocab    []string
}

var defaultClassifierRules = []classifierRule{
	{entities.ConnectionResearch, []string{"research", "investigation", "analysis", "study"}},
	{entities.ConnectionImplementation, []string{"implement", "code", "function", "class"}},
	{entities.ConnectionBugFix, []string{"bug", "fix", "error", "issue"}},
	{entities.ConnectionDesign, []string{"design", "architecture", "structure", "pattern"}},
	{entities.ConnectionPlanning, []string{"todo", "task", "plan"}},
}

// ConnectionClassifier assigns a semantic relationship type to a
// (candidate, query) pair.
type ConnectionClassifier interface {
	Classify(candidate, query *entities.Item) entities.ConnectionType
}

// DefaultConnectionClassifier is the rule-table implementation
type DefaultConnectionClassifier struct {
	rules []classifierRule
}

// NewDefaultConnectionClassifier creates a classifier with the
// default precedence rules.
func NewDefaultConnectionClassifier() *DefaultConnectionClassifier {
	return &DefaultConnectionClassifier{rules: defaultClassifierRules}
}

// Classify runs the ordered rule table over the candidate's content
// (case-insensitive substring tests), then falls back to metadata
// comparisons, then to the reference default. Deterministic: the same
// pair always classifies the same way.
func (cc *DefaultConnectionClassifier) Classify(candidate, query *entities.Item) entities.ConnectionType {
	if candidate == nil {
		return entities.ConnectionReference
	}

	content := strings.ToLower(candidate.SearchText())
	for _, rule := range cc.rules {
		for _, word := range rule.vocab {
			if strings.Contains(content, word) {
				return rule.connType
			}
		}
	}

	if query != nil {
		if candidate.Category != "" && candidate.Category == query.Category {
			return entities.ConnectionCategoryMatch
		}
		if candidate.Project != "" && candidate.Project == query.Project {
			return entities.ConnectionProjectContext
		}
	}

	return entities.ConnectionReference
}
