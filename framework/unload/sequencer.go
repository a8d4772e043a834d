// Package unload runs component teardowns in reverse construction order.
package unload

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Teardown releases whatever a component acquired while it was constructed.
type Teardown func(ctx context.Context) error

// RegisterFunc is what a component receives when it declares the "unload"
// dependency.
//
//	func(ctx context.Context, deps []any) (any, error) {
//	    register := deps[0].(unload.RegisterFunc)
//	    srv := startServer()
//	    register(srv.Shutdown)
//	    return srv, nil
//	}
type RegisterFunc func(Teardown)

// TeardownError records a teardown that failed or panicked.
type TeardownError struct {
	// Position is the 1-based registration order of the failed teardown.
	Position int
	Err      error
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("unload: teardown #%d failed: %v", e.Position, e.Err)
}

func (e *TeardownError) Unwrap() error { return e.Err }

type entry struct {
	position int
	fn       Teardown
}

// Sequencer is a LIFO stack of teardowns.
type Sequencer struct {
	mu      sync.Mutex
	run     sync.Mutex // serialises teardown invocations
	stack   []entry
	pushed  int
	drained bool
	logger  *log.Logger
}

// New creates an empty Sequencer. A nil logger uses the default logger.
func New(logger *log.Logger) *Sequencer {
	if logger == nil {
		logger = log.Default().WithPrefix("resolver/unload")
	}
	return &Sequencer{logger: logger}
}

// Register pushes fn on the stack. Once the sequencer has been drained,
// fn belongs to a discarded context and runs straight away instead.
func (s *Sequencer) Register(fn Teardown) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.pushed++
	e := entry{position: s.pushed, fn: fn}
	if !s.drained {
		s.stack = append(s.stack, e)
		s.mu.Unlock()
		s.logger.Debug("registered teardown", "position", e.position)
		return
	}
	s.mu.Unlock()

	s.logger.Warn("teardown registered after unload, running it now", "position", e.position)
	s.run.Lock()
	defer s.run.Unlock()
	if terr := s.invoke(context.Background(), e); terr != nil {
		s.logger.Error("teardown failed", "position", terr.Position, "err", terr.Err)
	}
}

// Func returns Register as the value injected for the "unload" dependency.
func (s *Sequencer) Func() RegisterFunc { return s.Register }

// Len reports how many teardowns are waiting.
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack)
}

// Unload pops and runs every teardown, most recent first, one at a time.
// A failing teardown never stops the ones after it: failures are logged and
// returned for inspection, and Unload itself always completes.
func (s *Sequencer) Unload(ctx context.Context) []*TeardownError {
	s.run.Lock()
	defer s.run.Unlock()

	s.logger.Debug("executing teardowns", "count", s.Len())
	var failures []*TeardownError
	for {
		e, ok := s.pop()
		if !ok {
			break
		}
		if terr := s.invoke(ctx, e); terr != nil {
			s.logger.Error("teardown failed", "position", terr.Position, "err", terr.Err)
			failures = append(failures, terr)
		}
	}

	s.mu.Lock()
	s.drained = true
	s.mu.Unlock()

	if len(failures) == 0 {
		s.logger.Debug("all teardowns executed successfully")
	} else {
		s.logger.Warn("teardowns finished with failures", "failed", len(failures))
	}
	return failures
}

func (s *Sequencer) pop() (entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.stack)
	if n == 0 {
		return entry{}, false
	}
	e := s.stack[n-1]
	s.stack[n-1] = entry{}
	s.stack = s.stack[:n-1]
	return e, true
}

func (s *Sequencer) invoke(ctx context.Context, e entry) (terr *TeardownError) {
	defer func() {
		if r := recover(); r != nil {
			terr = &TeardownError{Position: e.position, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := e.fn(ctx); err != nil {
		return &TeardownError{Position: e.position, Err: err}
	}
	return nil
}
