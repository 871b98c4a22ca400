package flows

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores flows in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Flow
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Flow)}
}

// Create stores the flow, rejecting duplicates per category/problem pair.
func (r *MemoryRepo) Create(ctx context.Context, flow Flow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Active &&
			existing.Tree.ServiceCategory == flow.Tree.ServiceCategory &&
			existing.Tree.ProblemName == flow.Tree.ProblemName {
			return ErrConflict
		}
	}
	r.byID[flow.ID] = flow
	return nil
}

// Update replaces a stored flow.
func (r *MemoryRepo) Update(ctx context.Context, flow Flow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[flow.ID]; !ok {
		return ErrNotFound
	}
	r.byID[flow.ID] = flow
	return nil
}

// GetByID returns a flow by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Flow, error) {
	if err := ctx.Err(); err != nil {
		return Flow{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	flow, ok := r.byID[id]
	if !ok || !flow.Active {
		return Flow{}, ErrNotFound
	}
	return flow, nil
}

// GetByProblem returns the active flow for a category/problem pair.
func (r *MemoryRepo) GetByProblem(ctx context.Context, serviceCategory, problemName string) (Flow, error) {
	if err := ctx.Err(); err != nil {
		return Flow{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, flow := range r.byID {
		if flow.Active &&
			flow.Tree.ServiceCategory == serviceCategory &&
			flow.Tree.ProblemName == problemName {
			return flow, nil
		}
	}
	return Flow{}, ErrNotFound
}

// List returns active flows, optionally filtered by category, newest first.
func (r *MemoryRepo) List(ctx context.Context, serviceCategory string, limit, offset int) ([]Flow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	all := make([]Flow, 0, len(r.byID))
	for _, flow := range r.byID {
		if !flow.Active {
			continue
		}
		if serviceCategory != "" && flow.Tree.ServiceCategory != serviceCategory {
			continue
		}
		all = append(all, flow)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []Flow{}, nil
	}
	end := len(all)
	if offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// Delete soft-deletes a flow.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	flow, ok := r.byID[id]
	if !ok || !flow.Active {
		return ErrNotFound
	}
	flow.Active = false
	r.byID[id] = flow
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
