package saga

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Step is one action of a saga. Compensate undoes Execute and may be nil
// for steps with nothing to undo.
type Step struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga runs steps in order and, when one fails, compensates the steps that
// already succeeded in reverse order.
type Saga struct {
	name   string
	steps  []Step
	logger *zap.Logger
}

// New creates an empty saga.
func New(name string, logger *zap.Logger) *Saga {
	return &Saga{name: name, logger: logger}
}

// AddStep appends a step and returns the saga for chaining.
func (s *Saga) AddStep(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs the saga. The returned error wraps the failing step's error.
func (s *Saga) Execute(ctx context.Context) error {
	log := s.logger.With(zap.String("saga", s.name))
	log.Debug("saga started", zap.Int("steps", len(s.steps)))

	for i, step := range s.steps {
		if err := step.Execute(ctx); err != nil {
			log.Warn("saga step failed, compensating", zap.String("step", step.Name), zap.Error(err))
			s.compensate(ctx, log, s.steps[:i])
			return fmt.Errorf("saga '%s' failed at step '%s': %w", s.name, step.Name, err)
		}
	}

	log.Debug("saga completed")
	return nil
}

func (s *Saga) compensate(ctx context.Context, log *zap.Logger, done []Step) {
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			log.Error("compensation failed", zap.String("step", step.Name), zap.Error(err))
		}
	}
}
