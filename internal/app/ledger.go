package app

import (
	"fmt"

	"quiz-runner/internal/domain"
)

// Ledger holds the selected option per question for one attempt. It is keyed
// by question ID so it is independent of the order questions are visited in.
// Ledger is not safe for concurrent use; Attempt guards it.
type Ledger struct {
	options map[string]map[string]struct{}
	answers map[string]string
}

// NewLedger builds an empty ledger accepting only the given questions and their options.
func NewLedger(questions []domain.Question) *Ledger {
	options := make(map[string]map[string]struct{}, len(questions))
	for _, q := range questions {
		set := make(map[string]struct{}, len(q.Options))
		for _, o := range q.Options {
			set[o.ID] = struct{}{}
		}
		options[q.ID] = set
	}
	return &Ledger{
		options: options,
		answers: make(map[string]string, len(questions)),
	}
}

// Knows reports whether questionID belongs to the question set.
func (l *Ledger) Knows(questionID string) bool {
	_, ok := l.options[questionID]
	return ok
}

// Has reports whether optionID is one of questionID's options.
func (l *Ledger) Has(questionID, optionID string) bool {
	set, ok := l.options[questionID]
	if !ok {
		return false
	}
	_, ok = set[optionID]
	return ok
}

// Set records optionID as the answer for questionID, replacing any earlier
// selection. Unknown IDs come from a broken caller and panic.
func (l *Ledger) Set(questionID, optionID string) {
	if !l.Has(questionID, optionID) {
		panic(fmt.Sprintf("ledger: option %q is not an option of question %q", optionID, questionID))
	}
	l.answers[questionID] = optionID
}

// Get returns the selected option for questionID.
func (l *Ledger) Get(questionID string) (string, bool) {
	optionID, ok := l.answers[questionID]
	return optionID, ok
}

// Len is the number of answered questions.
func (l *Ledger) Len() int {
	return len(l.answers)
}

// Payload returns a copy of the answers. Unanswered questions are absent.
func (l *Ledger) Payload() domain.Answers {
	out := make(domain.Answers, len(l.answers))
	for q, o := range l.answers {
		out[q] = o
	}
	return out
}
