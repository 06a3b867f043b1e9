package intent

import (
	"fmt"
	"strings"
)

// Intent is the resolved meaning of a patient reply.
type Intent string

const (
	IntentConfirm      Intent = "confirm"
	IntentCancel       Intent = "cancel"
	IntentUnrecognized Intent = "unrecognized"
)

// Classifier resolves free-text replies against a fixed vocabulary. Exact-set
// membership wins over the substring fallback; when the fallback finds both
// confirm and cancel phrases the reply stays unrecognized rather than guessing.
type Classifier struct {
	vocab Vocabulary
}

// NewClassifier builds a classifier for the given language tag.
func NewClassifier(lang string) (*Classifier, error) {
	v, ok := VocabularyFor(lang)
	if !ok {
		return nil, fmt.Errorf("intent: no vocabulary for language %q", lang)
	}
	return &Classifier{vocab: v}, nil
}

// Classify normalizes text and returns its intent.
func (c *Classifier) Classify(text string) Intent {
	normalized := Normalize(text)
	if normalized == "" {
		return IntentUnrecognized
	}

	if _, ok := c.vocab.Confirm[normalized]; ok {
		return IntentConfirm
	}
	if _, ok := c.vocab.Cancel[normalized]; ok {
		return IntentCancel
	}

	hasConfirm := containsAny(normalized, c.vocab.ConfirmPhrases)
	hasCancel := containsAny(normalized, c.vocab.CancelPhrases)
	switch {
	case hasConfirm && !hasCancel:
		return IntentConfirm
	case hasCancel && !hasConfirm:
		return IntentCancel
	default:
		return IntentUnrecognized
	}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
