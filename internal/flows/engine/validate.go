package engine

import "fmt"

// Validate performs the authoring-time configuration checks: a tree must have
// questions with unique ids, every branch pointer must resolve, and condition
// and indicator keys must reference questions that exist. Solutions with an
// empty condition are rejected rather than treated as catch-alls.
func Validate(t *Tree) error {
	if t == nil || len(t.Questions) == 0 {
		return ErrEmptyTree
	}

	idx := make(map[string]bool, len(t.Questions))
	for _, q := range t.Questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question with empty id", ErrInvalidTree)
		}
		if idx[q.ID] {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidTree, q.ID)
		}
		idx[q.ID] = true
	}

	for _, q := range t.Questions {
		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if opt.Value == "" {
				return fmt.Errorf("%w: question %q has an option with empty value", ErrInvalidTree, q.ID)
			}
			if seen[opt.Value] {
				return fmt.Errorf("%w: question %q repeats option value %q", ErrInvalidTree, q.ID, opt.Value)
			}
			seen[opt.Value] = true
			if opt.NextQuestionID != "" && !idx[opt.NextQuestionID] {
				return fmt.Errorf("%w: option %q of question %q points at unknown question %q",
					ErrInvalidTree, opt.Value, q.ID, opt.NextQuestionID)
			}
		}
	}

	for i, sol := range t.DIYSolutions {
		if len(sol.Condition) == 0 {
			return fmt.Errorf("%w: solution %q has an empty condition", ErrInvalidTree, solutionLabel(sol, i))
		}
		for questionID := range sol.Condition {
			if !idx[questionID] {
				return fmt.Errorf("%w: solution %q references unknown question %q",
					ErrInvalidTree, solutionLabel(sol, i), questionID)
			}
		}
	}

	for _, ind := range t.UrgencyIndicators {
		if !idx[ind.QuestionID] {
			return fmt.Errorf("%w: urgency indicator references unknown question %q", ErrInvalidTree, ind.QuestionID)
		}
		if urgencyRank(ind.Urgency) == 0 {
			return fmt.Errorf("%w: urgency indicator on question %q has unknown urgency %q",
				ErrInvalidTree, ind.QuestionID, ind.Urgency)
		}
	}

	return nil
}

func solutionLabel(sol DIYSolution, position int) string {
	if sol.Title != "" {
		return sol.Title
	}
	return fmt.Sprintf("#%d", position)
}
