package flows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"diagnostics-backend/internal/flows/engine"
)

// Service contains business logic for authoring diagnostic flows.
type Service struct {
	Repo     Repo
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, validate: validator.New()}
}

// CreateInput is the authoring payload for a new flow.
type CreateInput struct {
	Tree      engine.Tree `validate:"required"`
	CreatedBy string
}

// Create validates and stores a new flow.
func (s *Service) Create(ctx context.Context, input CreateInput) (Flow, error) {
	input.Tree.ServiceCategory = strings.ToLower(strings.TrimSpace(input.Tree.ServiceCategory))
	input.Tree.ProblemName = strings.TrimSpace(input.Tree.ProblemName)

	if err := s.validate.Struct(input); err != nil {
		return Flow{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !KnownCategory(input.Tree.ServiceCategory) {
		return Flow{}, fmt.Errorf("%w: unknown service category %q", ErrInvalidInput, input.Tree.ServiceCategory)
	}
	if input.Tree.ProblemName == "" {
		return Flow{}, fmt.Errorf("%w: problemName is required", ErrInvalidInput)
	}
	if err := engine.Validate(&input.Tree); err != nil {
		return Flow{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	flow := Flow{
		ID:        uuid.NewString(),
		Tree:      input.Tree,
		Active:    true,
		CreatedBy: input.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, flow); err != nil {
		return Flow{}, err
	}
	return flow, nil
}

// Update replaces the tree of an existing flow after re-validation.
func (s *Service) Update(ctx context.Context, id string, tree engine.Tree) (Flow, error) {
	tree.ServiceCategory = strings.ToLower(strings.TrimSpace(tree.ServiceCategory))
	tree.ProblemName = strings.TrimSpace(tree.ProblemName)

	if !KnownCategory(tree.ServiceCategory) {
		return Flow{}, fmt.Errorf("%w: unknown service category %q", ErrInvalidInput, tree.ServiceCategory)
	}
	if err := engine.Validate(&tree); err != nil {
		return Flow{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	flow, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Flow{}, err
	}
	flow.Tree = tree
	flow.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, flow); err != nil {
		return Flow{}, err
	}
	return flow, nil
}

// Get returns a flow by ID.
func (s *Service) Get(ctx context.Context, id string) (Flow, error) {
	if strings.TrimSpace(id) == "" {
		return Flow{}, fmt.Errorf("%w: flow id required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, id)
}

// Lookup returns the active flow serving a category/problem pair.
func (s *Service) Lookup(ctx context.Context, serviceCategory, problemName string) (Flow, error) {
	serviceCategory = strings.ToLower(strings.TrimSpace(serviceCategory))
	problemName = strings.TrimSpace(problemName)
	if serviceCategory == "" || problemName == "" {
		return Flow{}, fmt.Errorf("%w: serviceCategory and problemName are required", ErrInvalidInput)
	}
	return s.Repo.GetByProblem(ctx, serviceCategory, problemName)
}

// List returns active flows, optionally filtered by category.
func (s *Service) List(ctx context.Context, serviceCategory string, limit, offset int) ([]Flow, error) {
	return s.Repo.List(ctx, strings.ToLower(strings.TrimSpace(serviceCategory)), limit, offset)
}

// Delete soft-deletes a flow.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: flow id required", ErrInvalidInput)
	}
	return s.Repo.Delete(ctx, id)
}
