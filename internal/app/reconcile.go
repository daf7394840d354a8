package app

import "quiz-runner/internal/domain"

// Reconcile builds the review model for a submitted attempt. questions is the
// set loaded for the attempt and fixes the order; correctness flags are read
// from result.Questions by question ID, falling back to the loaded options.
// Malformed data never fails the review: a question without a correct option
// or an answer naming an unknown option is simply marked incorrect.
func Reconcile(questions []domain.Question, answers domain.Answers, result domain.Result) domain.Review {
	reviewed := make(map[string]domain.Question, len(result.Questions))
	for _, q := range result.Questions {
		reviewed[q.ID] = q
	}

	items := make([]domain.ReviewItem, 0, len(questions))
	correctCount := 0
	flagged := false
	for _, loaded := range questions {
		source := loaded
		if q, ok := reviewed[loaded.ID]; ok && len(q.Options) > 0 {
			source = q
		}

		item := domain.ReviewItem{
			QuestionID:  loaded.ID,
			Prompt:      loaded.Prompt,
			Explanation: source.Explanation,
			Options:     make([]domain.ReviewOption, 0, len(source.Options)),
		}
		if item.Prompt == "" {
			item.Prompt = source.Prompt
		}
		if item.Explanation == "" {
			item.Explanation = loaded.Explanation
		}

		selected, answered := answers[loaded.ID]
		for _, o := range source.Options {
			if o.Correct && item.CorrectOptionID == "" {
				item.CorrectOptionID = o.ID
			}
			if answered && o.ID == selected {
				item.UserOptionID = o.ID
			}
			item.Options = append(item.Options, domain.ReviewOption{
				ID:       o.ID,
				Text:     o.Text,
				Correct:  o.Correct,
				Selected: answered && o.ID == selected,
			})
		}

		if item.CorrectOptionID != "" {
			flagged = true
		}
		item.IsCorrect = item.UserOptionID != "" && item.UserOptionID == item.CorrectOptionID
		if item.IsCorrect {
			correctCount++
		}
		items = append(items, item)
	}

	percentage := Percentage(result.Score, result.TotalQuestions)
	return domain.Review{
		QuizTitle:      result.QuizTitle,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     percentage,
		Band:           Band(percentage),
		Message:        Message(percentage),
		Items:          items,
		ClientScore:    correctCount,
		ScoreMismatch:  flagged && correctCount != result.Score,
	}
}
