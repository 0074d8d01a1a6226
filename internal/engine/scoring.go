package engine

import "github.com/quizforge/mockexam-backend/internal/model"

// Score grades a finalized session against its question set. Pure function:
// no engine state, no side effects.
//
// Bucket accounting is deliberately asymmetric: Attempted increments only for
// answered questions, while TimeTotalSeconds accumulates for every question,
// since time spent looking counts even when the candidate leaves it blank.
func Score(set *model.QuestionSet, state *model.SessionState) *model.Results {
	results := &model.Results{
		Total:           set.Len(),
		QuestionResults: make([]model.QuestionResult, set.Len()),
		ByTopic:         make(map[string]*model.BucketStats),
		ByDifficulty:    make(map[string]*model.BucketStats),
	}

	for i, q := range set.Questions {
		answer := state.Answers[i]
		status := model.StatusUnanswered
		if answer != model.Unanswered {
			if answer == q.CorrectOption {
				status = model.StatusCorrect
			} else {
				status = model.StatusIncorrect
			}
		}
		if status == model.StatusCorrect {
			results.Score++
		}

		results.QuestionResults[i] = model.QuestionResult{
			Index:            i,
			QuestionID:       q.ID,
			Status:           status,
			SelectedOption:   answer,
			CorrectOption:    q.CorrectOption,
			TimeSpentSeconds: state.TimeSpentSeconds[i],
		}

		accumulate(results.ByTopic, q.Topic, status, state.TimeSpentSeconds[i])
		accumulate(results.ByDifficulty, q.Difficulty, status, state.TimeSpentSeconds[i])
	}

	return results
}

func accumulate(buckets map[string]*model.BucketStats, key string, status model.QuestionStatus, timeSpent float64) {
	b, ok := buckets[key]
	if !ok {
		b = &model.BucketStats{}
		buckets[key] = b
	}
	if status != model.StatusUnanswered {
		b.Attempted++
	}
	if status == model.StatusCorrect {
		b.Correct++
	}
	b.TimeTotalSeconds += timeSpent
}
