package orchestrator

import (
	"time"

	"flow-vault/core/logger"
	"flow-vault/core/models"

	"go.uber.org/zap"
)

// State is a run state.
type State string

const (
	StatePending     State = "PENDING"
	StateFetching    State = "FETCHING"
	StateAborted     State = "ABORTED"
	StateValidated   State = "VALIDATED"
	StateReconciling State = "RECONCILING"
	StateSummarizing State = "SUMMARIZING"
	StateComplete    State = "COMPLETE"
)

// run carries the mutable bookkeeping of one operation.
type run struct {
	id        string
	operation models.OperationType
	started   time.Time
	state     State
	history   []State
	logger    *zap.Logger
}

func (o *Orchestrator) newRun(op models.OperationType) *run {
	id := o.ids.New()
	r := &run{
		id:        id,
		operation: op,
		started:   o.clock.Now(),
		logger:    logger.WithRun(o.logger, id, string(op)),
	}
	r.transition(StatePending)
	return r
}

func (r *run) transition(s State, fields ...zap.Field) {
	r.state = s
	r.history = append(r.history, s)
	r.logger.Info("Run state", append([]zap.Field{zap.String("state", string(s))}, fields...)...)
}
