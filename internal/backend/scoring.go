package backend

import (
	"fmt"

	"quiz-runner/internal/domain"
)

// scoreSubmission counts the questions whose selected option is flagged
// correct. Answers naming unknown questions or options are rejected.
func scoreSubmission(quiz domain.Quiz, answers domain.Answers) (int, error) {
	byID := make(map[string]*domain.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		byID[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	score := 0
	for questionID, optionID := range answers {
		question, ok := byID[questionID]
		if !ok {
			return 0, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, questionID)
		}
		var selected *domain.Option
		for i := range question.Options {
			if question.Options[i].ID == optionID {
				selected = &question.Options[i]
				break
			}
		}
		if selected == nil {
			return 0, fmt.Errorf("%w: %s for question %s", domain.ErrOptionNotFound, optionID, questionID)
		}
		if selected.Correct {
			score++
		}
	}
	return score, nil
}
