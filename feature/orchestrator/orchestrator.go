package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"flow-vault/core/clock"
	"flow-vault/core/compat"
	"flow-vault/core/engine"
	"flow-vault/core/errs"
	"flow-vault/core/models"
	"flow-vault/core/platform"
	"flow-vault/core/reconcile"
	"flow-vault/core/report"
	"flow-vault/core/versionstore"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Orchestrator runs operations against platforms and records them in the store.
type Orchestrator struct {
	store       Store
	archive     Archive
	cache       *reconcile.IndexCache
	cfg         engine.Config
	logger      *zap.Logger
	clock       clock.Clock
	ids         clock.IDGenerator
	toolVersion string
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithArchive enables bundle export for backups.
func WithArchive(a Archive) Option {
	return func(o *Orchestrator) { o.archive = a }
}

// WithEngineConfig sets run defaults.
func WithEngineConfig(cfg engine.Config) Option {
	return func(o *Orchestrator) { o.cfg = cfg }
}

// WithClock overrides the time source.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithIDGenerator overrides run and audit id generation.
func WithIDGenerator(g clock.IDGenerator) Option {
	return func(o *Orchestrator) { o.ids = g }
}

// WithToolVersion stamps Versions with the running tool version.
func WithToolVersion(v string) Option {
	return func(o *Orchestrator) { o.toolVersion = v }
}

// WithCache shares a target-state cache between orchestrators.
func WithCache(c *reconcile.IndexCache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

// New creates an orchestrator over store.
func New(store Store, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		store:  store,
		logger: logger,
		clock:  clock.Real{},
		ids:    clock.UUID{},
		cfg: engine.Config{
			Concurrency: 4,
			MaxAttempts: 3,
			Strategy:    reconcile.SourceWins{}.Name(),
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.cache == nil {
		o.cache = reconcile.NewIndexCache(o.cfg.CacheTTL())
	}
	return o
}

// outcome is what a run hands to finish.
type outcome struct {
	version   models.Version
	opts      models.RunOptions
	profileID string
	reports   []models.ObjectReport
	records   []models.ObjectRecord
	aborted   bool
	failed    bool
	reason    string
	changes   *models.ChangeCounts
	warnings  []string
	errors    []string
}

func (out *outcome) fail(r *run, msg string, err error) {
	out.failed = true
	out.reason = fmt.Sprintf("%s: %v", msg, err)
	r.logger.Error("Run failed", zap.String("state", string(r.state)), zap.Error(err))
}

// RunBackup captures every object visible to src into a new Version.
func (o *Orchestrator) RunBackup(ctx context.Context, src Endpoint, opts models.RunOptions) (*models.Summary, error) {
	opts = o.cfg.Defaults(opts)
	r := o.newRun(models.OpBackup)
	out := &outcome{
		version:   models.Version{Operation: models.OpBackup, ProfileID: src.Profile.ID},
		opts:      opts,
		profileID: src.Profile.ID,
	}

	r.transition(StateFetching)
	tag, err := src.Platform.PlatformVersion(ctx)
	if err != nil {
		out.fail(r, "failed to read platform version", err)
		return o.finish(ctx, r, out)
	}
	out.version.PlatformVersion = tag
	if _, err := compat.Parse(tag); err != nil {
		out.fail(r, "invalid platform version", err)
		return o.finishWithError(ctx, r, out, err)
	}

	objs, err := src.Platform.FetchObjects(ctx)
	if err != nil {
		out.fail(r, "failed to fetch objects", err)
		return o.finish(ctx, r, out)
	}
	objs = filterTypes(objs, opts)
	baseline := o.baseline(ctx, r, src.Profile.ID, out)

	r.transition(StateReconciling, zap.Int("objects", len(objs)))
	unique, dups := reconcile.SplitDuplicates(objs)
	reconcile.SortObjects(unique)

	var captured []reconcile.Object
	for _, obj := range unique {
		rep := models.ObjectReport{
			ResourceType: obj.Type,
			ResourceID:   obj.ID,
			SkipReason:   models.SkipNone,
			Action:       models.ActionNone,
			Timestamp:    o.clock.Now(),
		}
		if reason, msg, ok := reconcile.Validate(obj); !ok {
			rep.Status = models.ObjectSkipped
			rep.SkipReason = reason
			rep.Message = msg
		} else {
			rep.Status = models.ObjectSuccess
			rep.Message = "captured"
			captured = append(captured, obj)
		}
		out.reports = append(out.reports, rep)
		if obj.ID != "" {
			out.records = append(out.records, toRecord(obj, rep))
		}
	}
	out.reports = append(out.reports, duplicateReports(dups, o.clock)...)

	if baseline != nil {
		base := filterTypes(platform.FromRecords(capturedRecords(baseline.Records)), opts)
		diff := reconcile.Diff(base, captured)
		out.changes = &models.ChangeCounts{
			BaselineVersionID: baseline.ID,
			Added:             len(diff.Added),
			Modified:          len(diff.Modified),
			Removed:           len(diff.Removed),
			Unchanged:         len(diff.Unchanged),
		}
	}

	return o.finish(ctx, r, out)
}

// RunRestore applies a stored Version to target.
func (o *Orchestrator) RunRestore(ctx context.Context, versionID string, target Endpoint, opts models.RunOptions) (*models.Summary, error) {
	opts = o.cfg.Defaults(opts)
	strategy, err := reconcile.ParseStrategy(opts.Strategy)
	if err != nil {
		return nil, err
	}

	r := o.newRun(models.OpRestore)
	out := &outcome{
		version: models.Version{
			Operation:       models.OpRestore,
			ProfileID:       target.Profile.ID,
			TargetProfileID: target.Profile.ID,
			SourceVersionID: versionID,
		},
		opts:      opts,
		profileID: target.Profile.ID,
	}

	r.transition(StateFetching)
	src, err := o.store.GetVersion(ctx, versionID)
	if err != nil {
		out.fail(r, "failed to load version", err)
		return o.finish(ctx, r, out)
	}
	out.version.PlatformVersion = src.PlatformVersion

	targetTag, err := target.Platform.PlatformVersion(ctx)
	if err != nil {
		out.fail(r, "failed to read target platform version", err)
		return o.finish(ctx, r, out)
	}

	if proceed, gateErr := o.gate(r, out, src.PlatformVersion, targetTag); !proceed {
		if gateErr != nil {
			return o.finishWithError(ctx, r, out, gateErr)
		}
		return o.finish(ctx, r, out)
	}

	existing, err := o.cache.GetOrFetch(ctx, target.Profile.ID, target.Platform)
	if err != nil {
		out.fail(r, "failed to fetch target state", err)
		return o.finish(ctx, r, out)
	}

	objs := filterTypes(platform.FromRecords(src.Records), opts)
	o.reconcileAll(ctx, r, out, objs, existing, strategy, target)
	return o.finish(ctx, r, out)
}

// RunSync applies the live state of source to target.
func (o *Orchestrator) RunSync(ctx context.Context, source, target Endpoint, opts models.RunOptions) (*models.Summary, error) {
	opts = o.cfg.Defaults(opts)
	strategy, err := reconcile.ParseStrategy(opts.Strategy)
	if err != nil {
		return nil, err
	}

	r := o.newRun(models.OpSync)
	out := &outcome{
		version: models.Version{
			Operation:       models.OpSync,
			ProfileID:       source.Profile.ID,
			TargetProfileID: target.Profile.ID,
		},
		opts:      opts,
		profileID: source.Profile.ID,
	}

	r.transition(StateFetching)
	sourceTag, err := source.Platform.PlatformVersion(ctx)
	if err != nil {
		out.fail(r, "failed to read source platform version", err)
		return o.finish(ctx, r, out)
	}
	out.version.PlatformVersion = sourceTag

	targetTag, err := target.Platform.PlatformVersion(ctx)
	if err != nil {
		out.fail(r, "failed to read target platform version", err)
		return o.finish(ctx, r, out)
	}

	if proceed, gateErr := o.gate(r, out, sourceTag, targetTag); !proceed {
		if gateErr != nil {
			return o.finishWithError(ctx, r, out, gateErr)
		}
		return o.finish(ctx, r, out)
	}

	objs, err := source.Platform.FetchObjects(ctx)
	if err != nil {
		out.fail(r, "failed to fetch source objects", err)
		return o.finish(ctx, r, out)
	}
	existing, err := o.cache.GetOrFetch(ctx, target.Profile.ID, target.Platform)
	if err != nil {
		out.fail(r, "failed to fetch target state", err)
		return o.finish(ctx, r, out)
	}

	o.reconcileAll(ctx, r, out, filterTypes(objs, opts), existing, strategy, target)
	return o.finish(ctx, r, out)
}

// gate runs the compatibility check. It returns false when the run must stop, with
// an error only for unparsable version tags.
func (o *Orchestrator) gate(r *run, out *outcome, sourceTag, targetTag string) (bool, error) {
	d, err := compat.Check(sourceTag, targetTag)
	if err != nil {
		out.fail(r, "invalid platform version", err)
		return false, err
	}
	if err := d.Err(); err != nil {
		out.aborted = true
		out.reason = d.Reason
		out.errors = append(out.errors, err.Error())
		r.transition(StateAborted, zap.String("reason", d.Reason))
		return false, nil
	}
	r.transition(StateValidated, zap.String("source", d.Source.String()), zap.String("target", d.Target.String()))
	return true, nil
}

// reconcileAll dispatches objects through the reconciler with bounded concurrency
// and joins every result.
func (o *Orchestrator) reconcileAll(ctx context.Context, r *run, out *outcome, objs []reconcile.Object, existing reconcile.Index, strategy reconcile.Strategy, target Endpoint) {
	r.transition(StateReconciling, zap.Int("objects", len(objs)), zap.String("strategy", strategy.Name()))

	unique, dups := reconcile.SplitDuplicates(objs)
	reconcile.SortObjects(unique)

	state := reconcile.TargetState{Existing: existing, Working: reconcile.NewIndex(unique)}
	rec := reconcile.NewReconciler(target.Platform, reconcile.Config{
		Retry:  o.cfg.RetryPolicy(out.opts.MaxAttempts),
		DryRun: out.opts.DryRun,
	}, r.logger)

	concurrency := out.opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(int64(concurrency))
	results := make([]models.ObjectReport, len(unique))
	dispatched := make([]bool, len(unique))

	var wg sync.WaitGroup
	for i, obj := range unique {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		dispatched[i] = true
		wg.Add(1)
		go func(i int, obj reconcile.Object) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = rec.Reconcile(ctx, obj, state, strategy)
		}(i, obj)
	}
	wg.Wait()

	cancelled := 0
	for i, obj := range unique {
		if !dispatched[i] {
			results[i] = reconcile.CancelledReport(obj, o.clock.Now(), ctx.Err())
			cancelled++
		}
		out.reports = append(out.reports, results[i])
		if obj.ID != "" {
			out.records = append(out.records, toRecord(obj, results[i]))
		}
	}
	out.reports = append(out.reports, duplicateReports(dups, o.clock)...)

	if cancelled > 0 {
		r.logger.Warn("Run cancelled before all objects were dispatched", zap.Int("cancelled", cancelled))
	}
	if !out.opts.DryRun {
		o.cache.Invalidate(target.Profile.ID)
	}
}

// baseline returns the profile's last completed backup, or nil.
func (o *Orchestrator) baseline(ctx context.Context, r *run, profileID string, out *outcome) *models.Version {
	v, err := o.store.LatestVersion(ctx, versionstore.VersionFilter{
		ProfileID: profileID,
		Operation: models.OpBackup,
		Statuses:  []models.VersionStatus{models.StatusSuccess, models.StatusPartialSuccess},
	})
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			out.warnings = append(out.warnings, "baseline unavailable: "+err.Error())
			r.logger.Warn("Failed to load baseline version", zap.Error(err))
		}
		return nil
	}
	return v
}

// finishWithError records the run and returns cause unless persistence also failed.
func (o *Orchestrator) finishWithError(ctx context.Context, r *run, out *outcome, cause error) (*models.Summary, error) {
	s, err := o.finish(ctx, r, out)
	if err != nil {
		return s, err
	}
	return s, cause
}

// finish summarizes the run and commits it.
func (o *Orchestrator) finish(ctx context.Context, r *run, out *outcome) (*models.Summary, error) {
	// ABORTED is terminal; the summary and audit are still written.
	if !out.aborted {
		r.transition(StateSummarizing)
	}
	summary := report.Summarize(report.Input{
		Operation:  r.operation,
		Reports:    out.reports,
		Aborted:    out.aborted,
		Failed:     out.failed,
		Reason:     out.reason,
		Changes:    out.changes,
		Warnings:   out.warnings,
		Errors:     out.errors,
		StartedAt:  r.started,
		FinishedAt: o.clock.Now(),
		VersionID:  r.id,
	})

	v := out.version
	v.ID = r.id
	v.CreatedAt = r.started
	v.ToolVersion = o.toolVersion
	v.Options = out.opts
	v.Tags = out.opts.Tags
	v.Status = summary.Status

	// Persistence must survive a cancelled run.
	persistCtx := context.WithoutCancel(ctx)

	if o.archive != nil && r.operation == models.OpBackup && summary.Status != models.StatusFailed {
		v.Summary = summary
		if name, err := o.archive.Export(persistCtx, v, out.records); err != nil {
			summary.Warnings = append(summary.Warnings, "bundle export failed: "+err.Error())
			r.logger.Warn("Bundle export failed", zap.Error(err))
		} else {
			r.logger.Info("Bundle exported", zap.String("object", name))
		}
	}

	audit := report.NewAudit(o.ids.New(), summary, out.opts, out.profileID)
	summary.AuditID = audit.ID
	v.Summary = summary

	if err := o.store.Commit(persistCtx, &v, out.records, &audit); err != nil {
		summary.Status = models.StatusFailed
		summary.Reason = "failed to persist run: " + err.Error()
		summary.VersionID = ""
		r.logger.Error("Failed to persist run", zap.Error(err))

		fallback := report.NewAudit(o.ids.New(), summary, out.opts, out.profileID)
		if auditErr := o.store.WriteAuditRecord(persistCtx, &fallback); auditErr != nil {
			r.logger.Error("Failed to write fallback audit", zap.Error(auditErr))
		} else {
			summary.AuditID = fallback.ID
		}
		return &summary, fmt.Errorf("failed to persist run %s: %w", r.id, err)
	}

	fields := []zap.Field{
		zap.String("status", string(summary.Status)),
		zap.Int("total", summary.Total),
		zap.Int("errors", summary.Errors),
		zap.Duration("duration", summary.Duration),
	}
	if out.aborted {
		r.logger.Info("Run aborted", fields...)
	} else {
		r.transition(StateComplete, fields...)
	}
	return &summary, nil
}

func filterTypes(objs []reconcile.Object, opts models.RunOptions) []reconcile.Object {
	if len(opts.Types) == 0 {
		return objs
	}
	out := make([]reconcile.Object, 0, len(objs))
	for _, obj := range objs {
		if opts.IncludesType(obj.Type) {
			out = append(out, obj)
		}
	}
	return out
}

func toRecord(obj reconcile.Object, rep models.ObjectReport) models.ObjectRecord {
	return models.ObjectRecord{
		ResourceType: obj.Type,
		ResourceID:   obj.ID,
		Name:         obj.Name,
		Data:         obj.Data,
		Report:       rep,
	}
}

// capturedRecords keeps the records a backup captured successfully.
func capturedRecords(records []models.ObjectRecord) []models.ObjectRecord {
	out := make([]models.ObjectRecord, 0, len(records))
	for _, rec := range records {
		if rec.Report.Status == models.ObjectSuccess {
			out = append(out, rec)
		}
	}
	return out
}

func duplicateReports(dups []reconcile.Object, c clock.Clock) []models.ObjectReport {
	out := make([]models.ObjectReport, 0, len(dups))
	for _, d := range dups {
		out = append(out, reconcile.DuplicateReport(d, c.Now()))
	}
	return out
}
