package engine

import "errors"

var (
	// ErrEmptyTree indicates a tree with no questions.
	ErrEmptyTree = errors.New("tree has no questions")

	// ErrInvalidAnswer indicates an answer that does not fit the current
	// question. Recoverable by re-prompting the same question.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrDanglingReference indicates an option pointing at a question id that
	// does not exist in the tree. A configuration defect, not caller error.
	ErrDanglingReference = errors.New("dangling question reference")

	// ErrInvalidTree indicates a tree that fails authoring-time validation.
	ErrInvalidTree = errors.New("invalid tree")
)
