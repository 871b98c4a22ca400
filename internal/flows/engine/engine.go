package engine

import (
	"fmt"
	"strings"
)

// Start begins a traversal at the tree's first question.
func Start(t *Tree) (*Session, Question, error) {
	if t == nil || len(t.Questions) == 0 {
		return nil, Question{}, ErrEmptyTree
	}
	first := t.Questions[0]
	session := &Session{
		Answers:           make(map[string][]string),
		CurrentQuestionID: first.ID,
	}
	return session, first, nil
}

// Answer records values for the session's current question and advances the
// traversal along the chosen option's branch. The returned bool is false once
// the traversal has ended, either at a terminal option or on a detected cycle
// (session.CycleDetected distinguishes the two). Unknown branch targets fail
// with ErrDanglingReference.
func Answer(t *Tree, s *Session, questionID string, values []string) (Question, bool, error) {
	if t == nil || len(t.Questions) == 0 {
		return Question{}, false, ErrEmptyTree
	}
	if s == nil || s.Done {
		return Question{}, false, fmt.Errorf("%w: session is not active", ErrInvalidAnswer)
	}
	if questionID != s.CurrentQuestionID {
		return Question{}, false, fmt.Errorf("%w: expected question %q, got %q", ErrInvalidAnswer, s.CurrentQuestionID, questionID)
	}

	idx := questionIndex(t)
	pos, ok := idx[questionID]
	if !ok {
		return Question{}, false, fmt.Errorf("%w: %q", ErrDanglingReference, questionID)
	}
	question := t.Questions[pos]

	cleaned, err := validateValues(question, values)
	if err != nil {
		return Question{}, false, err
	}

	if s.Answers == nil {
		s.Answers = make(map[string][]string)
	}
	s.Answers[questionID] = cleaned
	if !s.visited(questionID) {
		s.Visited = append(s.Visited, questionID)
	}

	nextID := branchTarget(question, cleaned)
	if nextID == "" {
		s.CurrentQuestionID = ""
		s.Done = true
		return Question{}, false, nil
	}

	nextPos, ok := idx[nextID]
	if !ok {
		return Question{}, false, fmt.Errorf("%w: option %q points at %q", ErrDanglingReference, questionID, nextID)
	}
	if s.visited(nextID) {
		s.CurrentQuestionID = ""
		s.CycleDetected = true
		s.Done = true
		return Question{}, false, nil
	}

	s.CurrentQuestionID = nextID
	return t.Questions[nextPos], true, nil
}

// Resolve computes the outcome of a finished traversal. It is a pure function
// of (tree, session) and may be called repeatedly with the same result.
func Resolve(t *Tree, s *Session) (Result, error) {
	if t == nil || len(t.Questions) == 0 {
		return Result{}, ErrEmptyTree
	}
	if s == nil {
		return Result{}, fmt.Errorf("%w: nil session", ErrInvalidAnswer)
	}

	urgency := computeUrgency(t, s.Answers)

	if urgency != UrgencyEmergency {
		if solution := matchDIY(t, s.Answers); solution != nil {
			return Result{
				Outcome:       OutcomeDIY,
				Urgency:       urgency,
				Solution:      solution,
				CycleDetected: s.CycleDetected,
			}, nil
		}
	}

	prep := t.TechnicianPrep
	return Result{
		Outcome:       OutcomeTechnician,
		Urgency:       urgency,
		Preparation:   &prep,
		CycleDetected: s.CycleDetected,
	}, nil
}

// validateValues checks the answer against the question's type and options
// and returns the trimmed values.
func validateValues(q Question, values []string) ([]string, error) {
	cleaned := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: question %q requires a value", ErrInvalidAnswer, q.ID)
	}

	switch q.Type {
	case QuestionText, QuestionImage:
		// Free-form; no option set to check against.
		if len(cleaned) > 1 {
			return nil, fmt.Errorf("%w: question %q accepts a single value", ErrInvalidAnswer, q.ID)
		}
		return cleaned, nil
	}

	multi := q.Type == QuestionMultipleChoice || q.AllowsMultiple
	if !multi && len(cleaned) > 1 {
		return nil, fmt.Errorf("%w: question %q accepts a single value", ErrInvalidAnswer, q.ID)
	}
	for _, v := range cleaned {
		if findOption(q, v) == nil {
			return nil, fmt.Errorf("%w: %q is not an option of question %q", ErrInvalidAnswer, v, q.ID)
		}
	}
	return cleaned, nil
}

// branchTarget picks the next question id for the chosen values. When several
// selected options branch differently, the most severe option wins; ties keep
// the earliest-declared option so a higher-severity branch is never dropped.
func branchTarget(q Question, values []string) string {
	chosen := make(map[string]bool, len(values))
	for _, v := range values {
		chosen[v] = true
	}

	target := ""
	bestRank := -1
	for _, opt := range q.Options {
		if !chosen[opt.Value] {
			continue
		}
		if rank := severityRank(opt.Severity); rank > bestRank {
			bestRank = rank
			target = opt.NextQuestionID
		}
	}
	return target
}

// matchDIY returns the first declared solution whose condition matches the
// answers, provided every option chosen for the condition's questions was
// flagged as a DIY candidate. An empty condition never matches.
func matchDIY(t *Tree, answers map[string][]string) *DIYSolution {
	for i := range t.DIYSolutions {
		sol := &t.DIYSolutions[i]
		if len(sol.Condition) == 0 {
			continue
		}
		if !conditionMatches(sol.Condition, answers) {
			continue
		}
		if diyCandidate(t, sol.Condition, answers) {
			out := *sol
			return &out
		}
	}
	return nil
}

func conditionMatches(condition map[string]string, answers map[string][]string) bool {
	for questionID, want := range condition {
		if !answerContains(answers, questionID, want) {
			return false
		}
	}
	return true
}

// diyCandidate reports whether every option the session selected for the
// condition's questions carries the DIY flag. Questions without options
// (free-form answers) cannot veto.
func diyCandidate(t *Tree, condition map[string]string, answers map[string][]string) bool {
	idx := questionIndex(t)
	for questionID := range condition {
		pos, ok := idx[questionID]
		if !ok {
			return false
		}
		question := t.Questions[pos]
		if len(question.Options) == 0 {
			continue
		}
		for _, value := range answers[questionID] {
			opt := findOption(question, value)
			if opt == nil || !opt.IsDIYCandidate {
				return false
			}
		}
	}
	return true
}

// computeUrgency folds every matching indicator into the highest urgency seen,
// defaulting to routine. It never stops at the first match.
func computeUrgency(t *Tree, answers map[string][]string) Urgency {
	urgency := UrgencyRoutine
	for _, ind := range t.UrgencyIndicators {
		if answerContains(answers, ind.QuestionID, ind.AnswerValue) {
			urgency = maxUrgency(urgency, ind.Urgency)
		}
	}
	return urgency
}

func answerContains(answers map[string][]string, questionID, value string) bool {
	for _, v := range answers[questionID] {
		if v == value {
			return true
		}
	}
	return false
}

func findOption(q Question, value string) *Option {
	for i := range q.Options {
		if q.Options[i].Value == value {
			return &q.Options[i]
		}
	}
	return nil
}
