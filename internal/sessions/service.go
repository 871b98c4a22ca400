package sessions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"diagnostics-backend/internal/analytics"
	"diagnostics-backend/internal/flows"
	"diagnostics-backend/internal/flows/engine"
	"diagnostics-backend/internal/notifications"
	"diagnostics-backend/internal/shared/metrics"
	"diagnostics-backend/internal/shared/storage/object"
	"diagnostics-backend/internal/shared/telemetry"
)

// Service runs diagnostic sessions: it loads the flow, feeds answers through
// the engine, and persists the evolving traversal state.
type Service struct {
	Repo      Repo
	Flows     flows.Repo
	Store     object.ObjectStore
	Analytics *analytics.Service
	Notifier  *notifications.Service
}

// StepResult is what one answer produces: the next question, or the final
// result once the traversal has ended.
type StepResult struct {
	Session  Session
	Next     *engine.Question
	Done     bool
	Result   *engine.Result
}

// Start creates a session against the flow serving the given problem and
// returns its first question.
func (s *Service) Start(ctx context.Context, userID, serviceCategory, problemName string) (Session, engine.Question, error) {
	if strings.TrimSpace(userID) == "" {
		return Session{}, engine.Question{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}

	flow, err := s.Flows.GetByProblem(ctx, strings.ToLower(strings.TrimSpace(serviceCategory)), strings.TrimSpace(problemName))
	if err != nil {
		if errors.Is(err, flows.ErrNotFound) {
			return Session{}, engine.Question{}, fmt.Errorf("%w: no flow serves this problem", ErrNotFound)
		}
		return Session{}, engine.Question{}, err
	}

	state, first, err := engine.Start(&flow.Tree)
	if err != nil {
		return Session{}, engine.Question{}, err
	}

	now := time.Now().UTC()
	session := Session{
		ID:              uuid.NewString(),
		UserID:          userID,
		FlowID:          flow.ID,
		ServiceCategory: flow.Tree.ServiceCategory,
		ProblemName:     flow.Tree.ProblemName,
		State:           *state,
		Status:          StatusInProgress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(ctx, session); err != nil {
		return Session{}, engine.Question{}, err
	}

	metrics.IncSessionsStarted()
	if s.Analytics != nil {
		s.Analytics.RecordStarted(ctx, session.ServiceCategory)
	}
	return session, first, nil
}

// Answer feeds one answer into the session's traversal. When the traversal
// ends the session is resolved in the same call.
func (s *Service) Answer(ctx context.Context, userID, sessionID, questionID string, values []string) (StepResult, error) {
	session, flow, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return StepResult{}, err
	}
	if session.Status == StatusCompleted {
		return StepResult{}, ErrCompleted
	}

	next, ok, err := engine.Answer(&flow.Tree, &session.State, questionID, values)
	if err != nil {
		return StepResult{}, err
	}

	session.UpdatedAt = time.Now().UTC()
	if !ok {
		return s.complete(ctx, session, &flow.Tree)
	}

	if err := s.Repo.Update(ctx, session); err != nil {
		return StepResult{}, err
	}
	return StepResult{Session: session, Next: &next}, nil
}

// AnswerPhoto stores an uploaded photo and records its storage key as the
// answer to an image question.
func (s *Service) AnswerPhoto(ctx context.Context, userID, sessionID, questionID, fileName string, r io.Reader) (StepResult, error) {
	if s.Store == nil {
		return StepResult{}, fmt.Errorf("%w: photo answers are not enabled", ErrInvalidInput)
	}
	if strings.TrimSpace(fileName) == "" {
		return StepResult{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}

	storageKey, _, _, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return StepResult{}, fmt.Errorf("save photo: %w", err)
	}
	return s.Answer(ctx, userID, sessionID, questionID, []string{storageKey})
}

// Resolve finishes the session on the caller's request, even mid-traversal.
func (s *Service) Resolve(ctx context.Context, userID, sessionID string) (StepResult, error) {
	session, flow, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return StepResult{}, err
	}
	if session.Status == StatusCompleted {
		return StepResult{Session: session, Done: true, Result: session.Result}, nil
	}
	session.UpdatedAt = time.Now().UTC()
	return s.complete(ctx, session, &flow.Tree)
}

// Get returns a session owned by the user.
func (s *Service) Get(ctx context.Context, userID, sessionID string) (Session, error) {
	session, err := s.Repo.GetByID(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if session.UserID != userID {
		return Session{}, ErrForbidden
	}
	return session, nil
}

// List returns the user's sessions, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) load(ctx context.Context, userID, sessionID string) (Session, flows.Flow, error) {
	session, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return Session{}, flows.Flow{}, err
	}
	flow, err := s.Flows.GetByID(ctx, session.FlowID)
	if err != nil {
		// The flow was retired mid-session; a configuration concern, not
		// the end user's fault.
		return Session{}, flows.Flow{}, fmt.Errorf("load flow %s: %w", session.FlowID, err)
	}
	return session, flow, nil
}

func (s *Service) complete(ctx context.Context, session Session, tree *engine.Tree) (StepResult, error) {
	started := time.Now()
	result, err := engine.Resolve(tree, &session.State)
	if err != nil {
		return StepResult{}, err
	}
	metrics.ObserveResolveDurationMs(float64(time.Since(started).Microseconds()) / 1000.0)

	now := time.Now().UTC()
	session.Status = StatusCompleted
	session.Result = &result
	session.CompletedAt = &now
	session.UpdatedAt = now
	if err := s.Repo.Update(ctx, session); err != nil {
		return StepResult{}, err
	}

	metrics.IncSessionsResolved(result.Outcome == engine.OutcomeDIY)
	if result.CycleDetected {
		metrics.IncCycleFallback()
	}
	if s.Analytics != nil {
		s.Analytics.RecordResolved(ctx, session.ServiceCategory, result)
	}
	if result.Urgency == engine.UrgencyEmergency {
		s.notifyEmergency(ctx, session)
	}

	return StepResult{Session: session, Done: true, Result: &result}, nil
}

func (s *Service) notifyEmergency(ctx context.Context, session Session) {
	if s.Notifier == nil {
		return
	}
	_, err := s.Notifier.Create(ctx, notifications.CreateInput{
		UserID:   session.UserID,
		Category: notifications.CategoryDiagnostic,
		GroupKey: "diagnostic:" + session.ServiceCategory,
		Title:    "Emergency issue detected",
		Body:     fmt.Sprintf("Your %s diagnostic (%s) was classified as an emergency. A technician has been alerted.", session.ServiceCategory, session.ProblemName),
		Channels: []notifications.Channel{notifications.ChannelInApp, notifications.ChannelEmail},
	})
	if err != nil {
		telemetry.Error("sessions.notify_emergency", map[string]any{
			"session_id": session.ID,
			"error":      err.Error(),
		})
	}
}
