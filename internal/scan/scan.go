// Package scan drives the per-instance pipeline: walk, read, classify, decide, enforce.
package scan

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/panelscan/internal/classifier"
	"github.com/scan-io-git/panelscan/internal/panel"
	"github.com/scan-io-git/panelscan/internal/report"
	"github.com/scan-io-git/panelscan/pkg/shared/config"
)

// Panel is the subset of the panel API the orchestrator needs.
type Panel interface {
	ListInstances(ctx context.Context) ([]panel.Instance, error)
	ReadFile(ctx context.Context, identifier, path string) (string, error)
	Suspend(ctx context.Context, id int) error
}

// Walker enumerates the qualifying files of one instance.
type Walker interface {
	Walk(ctx context.Context, identifier, root string) ([]string, error)
}

// Classifier scores a file's content. It never fails: exhaustion yields an indeterminate result.
type Classifier interface {
	Classify(ctx context.Context, text string) classifier.Result
}

// Dependencies are the collaborators of an Orchestrator.
type Dependencies struct {
	Panel      Panel
	Walker     Walker
	Classifier Classifier
}

// Options tunes the decision rules.
type Options struct {
	RootDirectory       string
	MinFileLength       int  // in runes; shorter files are never classified
	FlagThreshold       int  // scores above it flag the instance
	SuspendThreshold    int  // scores at or above it suspend the instance
	SkipUnreadableFiles bool // tolerate per-file read failures instead of failing the instance
	DryRun              bool // never issue suspend calls
}

// OptionsFromConfig builds Options from a defaulted Config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RootDirectory:       cfg.Scan.RootDirectory,
		MinFileLength:       config.GetMinFileLength(cfg),
		FlagThreshold:       config.GetFlagThreshold(cfg),
		SuspendThreshold:    cfg.Scan.SuspendThreshold,
		SkipUnreadableFiles: cfg.Scan.SkipUnreadableFiles,
		DryRun:              cfg.Scan.DryRun,
	}
}

// Orchestrator scans every active instance sequentially and builds the run report.
type Orchestrator struct {
	deps   Dependencies
	opts   Options
	logger hclog.Logger
	now    func() time.Time
}

// New creates an Orchestrator.
func New(deps Dependencies, opts Options, logger hclog.Logger) *Orchestrator {
	return &Orchestrator{
		deps:   deps,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Run scans all instances that are not already suspended.
// A failure to list instances aborts the run with no report. Failures inside one instance
// are logged and the run continues. On cancellation the partial report is returned with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context) (*report.RunReport, error) {
	start := o.now()

	instances, err := o.deps.Panel.ListInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}

	var pending []panel.Instance
	for _, inst := range instances {
		if inst.IsSuspended() {
			continue
		}
		pending = append(pending, inst)
	}
	o.logger.Info("scan starting", "total", len(instances), "pending", len(pending), "dry_run", o.opts.DryRun)

	rep := report.NewRunReport()
	counts := make(map[State]int)
	for i, inst := range pending {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("scan interrupted", "remaining", len(pending)-i)
			rep.SetElapsed(o.now().Sub(start))
			return rep, err
		}

		rep.AddScanned()
		logger := o.logger.With("identifier", inst.Identifier, "id", inst.ID)
		logger.Info("scanning instance", "#", i+1, "name", inst.Name)

		verdict, err := o.scanInstance(ctx, inst, rep, logger)
		if err != nil {
			logger.Error("instance scan failed", "state", verdict.State, "error", err)
			verdict.State = StateErrored
		} else {
			logger.Info("instance scanned",
				"state", verdict.State,
				"max_score", verdict.MaxScore,
				"files", verdict.FilesFound,
				"classified", verdict.FilesClassified,
				"indeterminate", verdict.FilesIndeterminate,
				"skipped", verdict.FilesSkipped,
			)
		}
		counts[verdict.State]++
	}

	elapsed := o.now().Sub(start)
	rep.SetElapsed(elapsed)
	summary := rep.Summary()
	o.logger.Info("statistic",
		"scanned", summary.TotalScanned,
		"flagged", summary.TotalFlagged,
		"suspended", summary.TotalSuspended,
		"indeterminate", summary.TotalIndeterminate,
		"clean", counts[StateClean],
		"no_qualifying_files", counts[StateNoQualifyingFiles],
		"errored", counts[StateErrored],
		"elapsed", elapsed.String(),
	)
	return rep, nil
}

// scanInstance runs one instance through the pipeline. On error the returned verdict holds
// the state the instance failed in.
func (o *Orchestrator) scanInstance(ctx context.Context, inst panel.Instance, rep *report.RunReport, logger hclog.Logger) (Verdict, error) {
	v := Verdict{State: StatePending, MaxScore: noScore}
	transition := func(to State) {
		logger.Trace("state transition", "from", v.State, "to", to)
		v.State = to
	}

	transition(StateWalking)
	files, err := o.deps.Walker.Walk(ctx, inst.Identifier, o.opts.RootDirectory)
	if err != nil {
		return v, fmt.Errorf("failed to walk instance files: %w", err)
	}
	v.FilesFound = len(files)
	if len(files) == 0 {
		transition(StateNoQualifyingFiles)
		return v, nil
	}

	transition(StateClassifying)
	var findings []report.Finding
	for i, path := range files {
		content, err := o.deps.Panel.ReadFile(ctx, inst.Identifier, path)
		if err != nil {
			if o.opts.SkipUnreadableFiles && ctx.Err() == nil {
				logger.Error("failed to read file", "path", path, "error", err)
				v.FilesUnreadable++
				continue
			}
			return v, fmt.Errorf("failed to read %q: %w", path, err)
		}

		if utf8.RuneCountInString(content) < o.opts.MinFileLength {
			logger.Debug("file too short, skipped", "path", path)
			v.FilesSkipped++
			continue
		}

		result := o.deps.Classifier.Classify(ctx, content)
		v.FilesClassified++
		if err := ctx.Err(); err != nil {
			return v, err
		}
		if result.IsIndeterminate() {
			logger.Info("file classification indeterminate", "path", path, "file", fmt.Sprintf("%d/%d", i+1, len(files)))
			v.FilesIndeterminate++
			continue
		}

		logger.Info("file classified", "path", path, "rating", result.Rating, "file", fmt.Sprintf("%d/%d", i+1, len(files)))
		if result.Rating > v.MaxScore {
			v.MaxScore = result.Rating
		}
		if result.Rating > o.opts.FlagThreshold {
			findings = append(findings, report.Finding{
				Identifier:  inst.Identifier,
				InstanceID:  inst.ID,
				Path:        path,
				Rating:      result.Rating,
				Description: result.Description,
			})
		}
	}

	transition(StateAggregated)
	err = o.enforce(ctx, inst, &v, findings, rep, logger, transition)
	return v, err
}

// enforce applies the aggregate decision to the report and the panel.
func (o *Orchestrator) enforce(ctx context.Context, inst panel.Instance, v *Verdict, findings []report.Finding, rep *report.RunReport, logger hclog.Logger, transition func(State)) error {
	decision := decide(*v, o.opts.FlagThreshold, o.opts.SuspendThreshold)

	switch decision {
	case StateNoQualifyingFiles, StateClean:
		transition(decision)
		return nil

	case StateIndeterminate:
		transition(decision)
		return rep.AddIndeterminate(inst)
	}

	// flagged, possibly suspended
	if err := rep.AddFlagged(inst); err != nil {
		return err
	}
	for _, f := range findings {
		rep.AddFinding(f)
	}
	transition(StateFlagged)
	logger.Info("instance flagged", "max_score", v.MaxScore)

	if decision != StateSuspended {
		return nil
	}
	if o.opts.DryRun {
		logger.Info("would suspend instance", "max_score", v.MaxScore)
		return nil
	}
	if err := o.deps.Panel.Suspend(ctx, inst.ID); err != nil {
		return fmt.Errorf("failed to suspend instance: %w", err)
	}
	if err := rep.AddSuspended(inst); err != nil {
		return err
	}
	transition(StateSuspended)
	logger.Info("instance suspended", "max_score", v.MaxScore)
	return nil
}
