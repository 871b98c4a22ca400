package flows

import (
	"context"
	"errors"
	"testing"

	"diagnostics-backend/internal/flows/engine"
)

func faucetTree() engine.Tree {
	return engine.Tree{
		ServiceCategory: "plumbing",
		ProblemName:     "Dripping faucet",
		Questions: []engine.Question{
			{
				ID:   "q1",
				Text: "Is the drip constant or intermittent?",
				Type: engine.QuestionSingleChoice,
				Options: []engine.Option{
					{Value: "constant", Label: "Constant", NextQuestionID: "q2"},
					{Value: "intermittent", Label: "Intermittent", IsDIYCandidate: true},
				},
			},
			{
				ID:   "q2",
				Text: "Which handle does it drip from?",
				Type: engine.QuestionSingleChoice,
				Options: []engine.Option{
					{Value: "hot", Label: "Hot"},
					{Value: "cold", Label: "Cold"},
				},
			},
		},
		DIYSolutions: []engine.DIYSolution{
			{
				Condition: map[string]string{"q1": "intermittent"},
				Title:     "Tighten the packing nut",
				Steps:     []string{"Close the shutoff valve", "Tighten the nut a quarter turn"},
			},
		},
		TechnicianPrep: engine.TechnicianPreparation{
			LikelyCauses: []string{"worn cartridge"},
		},
	}
}

func TestCreateNormalizesAndStores(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	tree := faucetTree()
	tree.ServiceCategory = "  Plumbing "
	tree.ProblemName = " Dripping faucet "

	flow, err := svc.Create(context.Background(), CreateInput{Tree: tree, CreatedBy: "user-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if flow.ID == "" {
		t.Fatalf("expected generated flow id")
	}
	if flow.Tree.ServiceCategory != "plumbing" {
		t.Fatalf("expected normalized category, got %q", flow.Tree.ServiceCategory)
	}
	if flow.Tree.ProblemName != "Dripping faucet" {
		t.Fatalf("expected trimmed problem name, got %q", flow.Tree.ProblemName)
	}
	if !flow.Active {
		t.Fatalf("expected new flow to be active")
	}
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	tree := faucetTree()
	tree.ServiceCategory = "landscaping"

	_, err := svc.Create(context.Background(), CreateInput{Tree: tree})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateRejectsDanglingBranch(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	tree := faucetTree()
	tree.Questions[0].Options[0].NextQuestionID = "missing"

	_, err := svc.Create(context.Background(), CreateInput{Tree: tree})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateConflictOnSameProblem(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, err := svc.Create(context.Background(), CreateInput{Tree: faucetTree()}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := svc.Create(context.Background(), CreateInput{Tree: faucetTree()})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUpdateRevalidatesTree(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	flow, err := svc.Create(context.Background(), CreateInput{Tree: faucetTree()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bad := faucetTree()
	bad.Questions = nil
	if _, err := svc.Update(context.Background(), flow.ID, bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	good := faucetTree()
	good.Questions[1].Text = "Which side does it drip from?"
	updated, err := svc.Update(context.Background(), flow.ID, good)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Tree.Questions[1].Text != "Which side does it drip from?" {
		t.Fatalf("expected updated question text")
	}
}

func TestLookupNormalizesCategory(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, err := svc.Create(context.Background(), CreateInput{Tree: faucetTree()}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	flow, err := svc.Lookup(context.Background(), " PLUMBING ", "Dripping faucet")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if flow.Tree.ProblemName != "Dripping faucet" {
		t.Fatalf("unexpected flow: %+v", flow.Tree.ProblemName)
	}

	if _, err := svc.Lookup(context.Background(), "plumbing", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty problem, got %v", err)
	}
}

func TestDeleteRetiresFlow(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	flow, err := svc.Create(context.Background(), CreateInput{Tree: faucetTree()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(context.Background(), flow.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := svc.Get(context.Background(), flow.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := svc.Lookup(context.Background(), "plumbing", "Dripping faucet"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on lookup after delete, got %v", err)
	}

	// Retiring frees the category/problem pair for a replacement.
	if _, err := svc.Create(context.Background(), CreateInput{Tree: faucetTree()}); err != nil {
		t.Fatalf("Create replacement: %v", err)
	}
}
