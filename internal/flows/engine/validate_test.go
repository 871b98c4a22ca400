package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Tree)
		wantErr error
	}{
		{
			name:   "well_formed",
			mutate: func(*Tree) {},
		},
		{
			name:    "no_questions",
			mutate:  func(tree *Tree) { tree.Questions = nil },
			wantErr: ErrEmptyTree,
		},
		{
			name:    "duplicate_question_id",
			mutate:  func(tree *Tree) { tree.Questions[1].ID = "q1" },
			wantErr: ErrInvalidTree,
		},
		{
			name:    "empty_question_id",
			mutate:  func(tree *Tree) { tree.Questions[0].ID = "" },
			wantErr: ErrInvalidTree,
		},
		{
			name:    "dangling_branch",
			mutate:  func(tree *Tree) { tree.Questions[0].Options[0].NextQuestionID = "q404" },
			wantErr: ErrInvalidTree,
		},
		{
			name:    "duplicate_option_value",
			mutate:  func(tree *Tree) { tree.Questions[0].Options[1].Value = "yes" },
			wantErr: ErrInvalidTree,
		},
		{
			name:    "empty_option_value",
			mutate:  func(tree *Tree) { tree.Questions[0].Options[0].Value = "" },
			wantErr: ErrInvalidTree,
		},
		{
			name: "empty_condition",
			mutate: func(tree *Tree) {
				tree.DIYSolutions = append(tree.DIYSolutions, DIYSolution{Title: "Anything"})
			},
			wantErr: ErrInvalidTree,
		},
		{
			name: "condition_references_unknown_question",
			mutate: func(tree *Tree) {
				tree.DIYSolutions[0].Condition = map[string]string{"q404": "no"}
			},
			wantErr: ErrInvalidTree,
		},
		{
			name: "indicator_references_unknown_question",
			mutate: func(tree *Tree) {
				tree.UrgencyIndicators[0].QuestionID = "q404"
			},
			wantErr: ErrInvalidTree,
		},
		{
			name: "indicator_with_unknown_urgency",
			mutate: func(tree *Tree) {
				tree.UrgencyIndicators[0].Urgency = "asap"
			},
			wantErr: ErrInvalidTree,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := leakTree()
			tc.mutate(tree)
			err := Validate(tree)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
