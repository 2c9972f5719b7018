package classifier

import (
	"context"
	"regexp"
	"strings"

	"varsler/models"
)

// Keyword is the deterministic fallback tier: the first keyword from the
// ordered candidate list that appears as a whole word in the text becomes
// the label itself. An empty list always yields the sentinel label.
type Keyword struct {
	keywords []string
	patterns []*regexp.Regexp
}

var _ Strategy = (*Keyword)(nil)

func NewKeyword(keywords []string) *Keyword {
	patterns := make([]*regexp.Regexp, len(keywords))
	for i, keyword := range keywords {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(keyword)) + `\b`)
	}
	return &Keyword{
		keywords: keywords,
		patterns: patterns,
	}
}

func (k *Keyword) Classify(ctx context.Context, text string) (string, error) {
	text = strings.ToLower(text)
	for i, pattern := range k.patterns {
		if pattern.MatchString(text) {
			return strings.ToLower(k.keywords[i]), nil
		}
	}
	return models.CategoryUncategorized, nil
}
