package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/hashicorp/go-hclog"
	"github.com/owenrumney/go-sarif/v2/sarif"
)

// Artifact file names, relative to the output filesystem root.
const (
	FlaggedFile       = "flagged_instances.json"
	SuspendedFile     = "suspended_instances.json"
	IndeterminateFile = "indeterminate_instances.json"
	SummaryFile       = "summary.json"
	FindingsFile      = "findings.sarif"
)

const (
	sarifToolName = "panelscan"
	sarifToolURI  = "https://github.com/scan-io-git/panelscan"
	sarifRuleID   = "malicious-intent"
)

// WriterOptions controls the optional artifacts.
type WriterOptions struct {
	SARIF            bool // also write FindingsFile
	SuspendThreshold int  // findings at or above it are reported at error level
}

// Writer serializes a RunReport onto a filesystem.
type Writer struct {
	fs     billy.Filesystem
	opts   WriterOptions
	logger hclog.Logger
}

// NewWriter creates a Writer over fs.
func NewWriter(fs billy.Filesystem, opts WriterOptions, logger hclog.Logger) *Writer {
	return &Writer{fs: fs, opts: opts, logger: logger}
}

// Write writes the instance lists and the summary, plus the SARIF findings when enabled.
func (w *Writer) Write(r *RunReport) error {
	artifacts := []struct {
		name string
		data interface{}
	}{
		{name: FlaggedFile, data: r.Flagged()},
		{name: SuspendedFile, data: r.Suspended()},
		{name: IndeterminateFile, data: r.Indeterminate()},
		{name: SummaryFile, data: r.Summary()},
	}

	for _, a := range artifacts {
		if err := w.writeJSON(a.name, a.data); err != nil {
			return err
		}
	}

	if w.opts.SARIF {
		if err := w.writeSARIF(r.Findings()); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeJSON(name string, data interface{}) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling %s: %w", name, err)
	}
	if err := util.WriteFile(w.fs, name, content, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	w.logger.Info("artifact saved to file", "path", w.fs.Join(w.fs.Root(), name))
	return nil
}

func (w *Writer) writeSARIF(findings []Finding) error {
	reportSarif, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(sarifToolName, sarifToolURI)
	rule := run.AddRule(sarifRuleID).
		WithDescription("File rated for malicious intent by the classification oracle")

	for _, f := range findings {
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.Identifier + f.Path)),
		)
		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(fmt.Sprintf("rating %d/10: %s", f.Rating, f.Description))).
			WithLevel(w.level(f.Rating)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	reportSarif.AddRun(run)

	file, err := w.fs.OpenFile(FindingsFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error writing SARIF report: %w", err)
	}
	defer func() { _ = file.Close() }()
	if err := reportSarif.PrettyWrite(file); err != nil {
		return fmt.Errorf("error writing SARIF report: %w", err)
	}
	w.logger.Info("artifact saved to file", "path", w.fs.Join(w.fs.Root(), FindingsFile))
	return nil
}

func (w *Writer) level(rating int) string {
	if w.opts.SuspendThreshold > 0 && rating >= w.opts.SuspendThreshold {
		return "error"
	}
	return "warning"
}
