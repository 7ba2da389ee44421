// Package startup sequences dependency startup/shutdown, adapted from
// stem/pkg/startup.
package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
)

// Dependency is a process-lifetime component (a DB pool, a background
// sweeper, ...) that must start before dependents and stop after them.
type Dependency interface {
	GetName() string
	DependsOn() []string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type status int

const (
	statusPending status = iota
	statusStarted
	statusFailed
	statusStopped
)

// Sequencer starts/stops a dependency graph, retrying the whole graph with
// Fibonacci backoff on failure.
type Sequencer struct {
	deps        map[string]Dependency
	statuses    map[string]status
	logger      ectologger.Logger
	maxAttempts int
}

func NewSequencer(logger ectologger.Logger, maxAttempts int) *Sequencer {
	return &Sequencer{
		deps:        make(map[string]Dependency),
		statuses:    make(map[string]status),
		logger:      logger,
		maxAttempts: maxAttempts,
	}
}

func (s *Sequencer) Add(dep Dependency) {
	s.deps[dep.GetName()] = dep
}

// Start brings up every dependency in dependency order, retrying the whole
// graph on failure with Fibonacci backoff up to maxAttempts.
func (s *Sequencer) Start(ctx context.Context) error {
	var lastErr error
	a, b := 1, 1

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.logger.WithField("attempt", attempt).Infof("beginning startup attempt %d", attempt)

		ok := true
		for _, dep := range s.deps {
			if err := s.startDependency(ctx, dep); err != nil {
				s.logger.WithError(err).Errorf("startup dependency %q failed on attempt %d", dep.GetName(), attempt)
				lastErr = err
				ok = false
				break
			}
		}
		if ok {
			return nil
		}
		if attempt == s.maxAttempts {
			return fmt.Errorf("startup failed after %d attempts: %w", attempt, lastErr)
		}

		wait := time.Duration(a) * time.Second
		s.logger.Infof("retrying startup in %s (attempt %d/%d)", wait, attempt, s.maxAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		a, b = b, a+b
	}
	return nil
}

func (s *Sequencer) startDependency(ctx context.Context, dep Dependency) error {
	if s.statuses[dep.GetName()] == statusStarted {
		return nil
	}
	for _, name := range dep.DependsOn() {
		if s.statuses[name] != statusStarted {
			if err := s.startDependency(ctx, s.deps[name]); err != nil {
				return err
			}
		}
	}

	s.logger.Infof("starting dependency %q", dep.GetName())
	if err := dep.Start(ctx); err != nil {
		s.statuses[dep.GetName()] = statusFailed
		return err
	}
	s.statuses[dep.GetName()] = statusStarted
	return nil
}

// Stop tears down every registered dependency, stopping at the first error.
// Dependencies are visited in map iteration order, not in reverse start
// order.
func (s *Sequencer) Stop(ctx context.Context) error {
	for _, dep := range s.deps {
		s.logger.Infof("stopping dependency %q", dep.GetName())
		if err := dep.Stop(ctx); err != nil {
			s.logger.WithError(err).Errorf("failed to stop dependency %q", dep.GetName())
			return err
		}
		s.statuses[dep.GetName()] = statusStopped
	}
	return nil
}
