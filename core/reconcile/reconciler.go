package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flow-vault/core/errs"
	"flow-vault/core/models"

	"go.uber.org/zap"
)

// MessageCancelled is the report message for objects stopped by cancellation.
const MessageCancelled = "cancelled"

// Config controls reconciler behavior.
type Config struct {
	// Retry bounds attempts for transient failures.
	Retry RetryPolicy

	// DryRun classifies objects without calling the target.
	DryRun bool
}

// Reconciler applies single objects to a Target.
// It is safe for concurrent use when the Target is.
type Reconciler struct {
	target Target
	cfg    Config
	logger *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewReconciler creates a reconciler for target.
func NewReconciler(target Target, cfg Config, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		target: target,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Reconcile decides and applies one object. It always returns exactly one report and
// never panics on target failures: every error is folded into the report.
func (r *Reconciler) Reconcile(ctx context.Context, obj Object, state TargetState, strategy Strategy) models.ObjectReport {
	if strategy == nil {
		strategy = SourceWins{}
	}
	report := models.ObjectReport{
		ResourceType: obj.Type,
		ResourceID:   obj.ID,
		SkipReason:   models.SkipNone,
		Action:       models.ActionNone,
		Timestamp:    r.now(),
	}

	if reason, msg, ok := Validate(obj); !ok {
		return skipped(report, reason, msg, nil)
	}

	if missing := MissingDependencies(obj, state); len(missing) > 0 {
		err := fmt.Errorf("%w: %s", errs.ErrDependencyMissing, missing[0])
		return skipped(report, models.SkipDependencyMissing,
			fmt.Sprintf("references %s which is not present in the working set", missing[0]), err)
	}

	d := strategy.decide(state.Existing.Has(obj.Key()))
	if d.skip != models.SkipNone {
		return skipped(report, d.skip, d.message, nil)
	}
	report.Action = d.action

	if ctx.Err() != nil {
		return cancelled(report, ctx.Err())
	}

	if r.cfg.DryRun {
		report.Status = models.ObjectSuccess
		report.Message = fmt.Sprintf("dry run: would %s", d.action)
		return report
	}

	return r.push(ctx, obj, report)
}

// push issues the mutation with bounded retries.
func (r *Reconciler) push(ctx context.Context, obj Object, report models.ObjectReport) models.ObjectReport {
	maxAttempts := r.cfg.Retry.attempts()
	var latency time.Duration

	for attempt := 1; ; attempt++ {
		start := time.Now()
		applied, err := r.target.PushObject(ctx, obj, report.Action)
		latency += time.Since(start)
		report.Attempts = attempt
		report.LatencyMs = latency.Milliseconds()

		if err == nil {
			if applied != "" && applied != models.ActionNone {
				report.Action = applied
			}
			report.Status = models.ObjectSuccess
			report.Message = string(report.Action) + "d"
			return report
		}

		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return cancelled(report, err)
		}

		if !errs.IsRetryable(err) {
			return failed(report, fmt.Sprintf("%s failed: %s", report.Action, errs.Classify(err)), err)
		}

		if attempt >= maxAttempts {
			return failed(report, fmt.Sprintf("%s failed after %d attempts", report.Action, attempt), err)
		}

		delay := r.cfg.Retry.Delay(attempt, err)
		r.logger.Warn("Transient push failure, retrying",
			zap.String("key", obj.Key().String()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			return cancelled(report, sleepErr)
		}
	}
}

// Validate checks an object before any network call.
// It returns the skip reason and message when the object cannot be applied.
func Validate(obj Object) (models.SkipReason, string, bool) {
	if !obj.Type.IsValid() {
		return models.SkipUnsupported, fmt.Sprintf("unsupported resource type %q", obj.Type), false
	}
	if obj.ID == "" {
		return models.SkipValidationFailed, "missing id", false
	}
	if obj.Data == nil {
		return models.SkipValidationFailed, "missing payload", false
	}
	return models.SkipNone, "", true
}

// MissingDependencies returns the declared dependencies present neither in the
// working set nor at the target, in declaration order.
func MissingDependencies(obj Object, state TargetState) []Key {
	var missing []Key
	for _, dep := range obj.Dependencies {
		if state.Working.Has(dep) || state.Existing.Has(dep) {
			continue
		}
		missing = append(missing, dep)
	}
	return missing
}

func skipped(report models.ObjectReport, reason models.SkipReason, msg string, err error) models.ObjectReport {
	report.Status = models.ObjectSkipped
	report.SkipReason = reason
	report.Action = models.ActionNone
	report.Message = msg
	if err != nil {
		report.ErrorDetail = err.Error()
	}
	return report
}

func failed(report models.ObjectReport, msg string, err error) models.ObjectReport {
	report.Status = models.ObjectError
	report.Message = msg
	report.ErrorDetail = err.Error()
	return report
}

func cancelled(report models.ObjectReport, err error) models.ObjectReport {
	report.Status = models.ObjectError
	report.Message = MessageCancelled
	if err != nil {
		report.ErrorDetail = err.Error()
	}
	return report
}

// CancelledReport builds the report for an object that was never dispatched.
func CancelledReport(obj Object, at time.Time, err error) models.ObjectReport {
	return cancelled(models.ObjectReport{
		ResourceType: obj.Type,
		ResourceID:   obj.ID,
		SkipReason:   models.SkipNone,
		Action:       models.ActionNone,
		Timestamp:    at,
	}, err)
}

// DuplicateReport builds the report for a repeated key within one input set.
func DuplicateReport(obj Object, at time.Time) models.ObjectReport {
	return skipped(models.ObjectReport{
		ResourceType: obj.Type,
		ResourceID:   obj.ID,
		Timestamp:    at,
	}, models.SkipDuplicate, "duplicate id in input set", nil)
}
