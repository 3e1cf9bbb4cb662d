// Package pipeline sequences the audit stages over their data-dependency
// chain, classifies stage failures as fatal or non-fatal, and finalizes one
// immutable run result.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StageState tracks one stage through its lifecycle.
type StageState string

const (
	StatePending   StageState = "pending"
	StateRunning   StageState = "running"
	StateSucceeded StageState = "succeeded"
	StateFailed    StageState = "failed"
)

// EventStatus labels entries in the progress stream.
type EventStatus string

const (
	EventStarting EventStatus = "starting"
	EventComplete EventStatus = "complete"
	EventError    EventStatus = "error"
)

// Event is one entry in the append-only progress stream.
type Event struct {
	RunID          string
	StageIndex     int
	StageName      string
	Status         EventStatus
	Message        string
	ElapsedSeconds float64
}

// Subscriber observes progress events. Subscribers are optional: pipeline
// correctness never depends on one being attached.
type Subscriber func(Event)

// State carries the per-run accumulator between stages. Each run owns its
// own State; nothing is shared across concurrent runs.
type State struct {
	Result *RunResult

	// Outputs is scratch space stages use to pass typed values forward
	// before the summary lands in Result.StageOutputs.
	Outputs map[string]any
}

// Stage is one step of the linear chain. Fatal stages abort the run on
// failure; non-fatal stages must leave a well-defined empty output in State
// before returning their error, so the run continues degraded.
type Stage struct {
	Name  string
	Fatal bool
	Run   func(ctx context.Context, st *State) error
}

// Orchestrator executes stages strictly sequentially.
type Orchestrator struct {
	stages      []Stage
	logger      *zap.Logger
	subscribers []Subscriber

	states []StageState
}

func New(stages []Stage, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	states := make([]StageState, len(stages))
	for i := range states {
		states[i] = StatePending
	}
	return &Orchestrator{stages: stages, logger: logger, states: states}
}

// Subscribe attaches a progress observer. Must be called before Run.
func (o *Orchestrator) Subscribe(s Subscriber) {
	if s != nil {
		o.subscribers = append(o.subscribers, s)
	}
}

// StageStates returns a copy of the per-stage lifecycle states.
func (o *Orchestrator) StageStates() []StageState {
	out := make([]StageState, len(o.states))
	copy(out, o.states)
	return out
}

// Run executes the chain. Stage errors never propagate past the
// orchestrator: each is caught at the stage boundary, appended to the
// run-level error list tagged with its stage, and classified by the static
// fatal flag. Cancellation is checked between stages, never mid-stage.
func (o *Orchestrator) Run(ctx context.Context) *RunResult {
	started := time.Now()
	st := &State{
		Result:  newRunResult(uuid.NewString()),
		Outputs: make(map[string]any),
	}
	defer st.Result.finalize(started)

	for i, stage := range o.stages {
		if err := ctx.Err(); err != nil {
			o.states[i] = StateFailed
			st.Result.Errors = append(st.Result.Errors, StageError{
				Stage:   stage.Name,
				Fatal:   true,
				Message: fmt.Sprintf("run cancelled before stage: %v", err),
			})
			o.emit(st, i, stage.Name, EventError, "run cancelled", started)
			return st.Result
		}

		o.states[i] = StateRunning
		o.emit(st, i, stage.Name, EventStarting, "", started)
		o.logger.Info("stage starting",
			zap.String("run_id", st.Result.RunID),
			zap.Int("stage_index", i),
			zap.String("stage", stage.Name),
		)

		err := runStage(ctx, stage, st)
		if err == nil {
			o.states[i] = StateSucceeded
			o.emit(st, i, stage.Name, EventComplete, "", started)
			o.logger.Info("stage complete",
				zap.String("run_id", st.Result.RunID),
				zap.String("stage", stage.Name),
			)
			continue
		}

		o.states[i] = StateFailed
		st.Result.Errors = append(st.Result.Errors, StageError{
			Stage:   stage.Name,
			Fatal:   stage.Fatal,
			Message: err.Error(),
		})
		o.emit(st, i, stage.Name, EventError, err.Error(), started)

		if stage.Fatal {
			o.logger.Error("fatal stage failure, aborting run",
				zap.String("run_id", st.Result.RunID),
				zap.String("stage", stage.Name),
				zap.Error(err),
			)
			return st.Result
		}

		st.Result.Degraded = true
		o.logger.Warn("non-fatal stage failure, continuing degraded",
			zap.String("run_id", st.Result.RunID),
			zap.String("stage", stage.Name),
			zap.Error(err),
		)
	}

	return st.Result
}

// runStage confines a stage panic to a stage error so a misbehaving
// collaborator cannot take down the whole run.
func runStage(ctx context.Context, stage Stage, st *State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage panicked: %v", r)
		}
	}()
	return stage.Run(ctx, st)
}

func (o *Orchestrator) emit(st *State, index int, name string, status EventStatus, message string, started time.Time) {
	event := Event{
		RunID:          st.Result.RunID,
		StageIndex:     index,
		StageName:      name,
		Status:         status,
		Message:        message,
		ElapsedSeconds: time.Since(started).Seconds(),
	}
	for _, sub := range o.subscribers {
		sub(event)
	}
}
