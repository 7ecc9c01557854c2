// Package report accumulates the outcome of a scan run and writes its artifacts.
package report

import (
	"fmt"
	"sync"
	"time"

	"github.com/scan-io-git/panelscan/internal/panel"
)

// Finding is one file whose score reached the flag threshold.
type Finding struct {
	Identifier  string `json:"identifier"`
	InstanceID  int    `json:"instanceId"`
	Path        string `json:"path"`
	Rating      int    `json:"rating"`
	Description string `json:"description"`
}

// Summary is the run statistics artifact.
type Summary struct {
	TotalScanned          int     `json:"totalScanned"`
	TotalFlagged          int     `json:"totalFlagged"`
	TotalSuspended        int     `json:"totalSuspended"`
	TotalIndeterminate    int     `json:"totalIndeterminate"`
	TotalTimeTakenSeconds float64 `json:"totalTimeTakenSeconds"`
}

type membership uint8

const (
	inFlagged membership = 1 << iota
	inSuspended
	inIndeterminate
)

// RunReport is built incrementally while instances are scanned. An instance is in at most
// one of flagged and indeterminate, and suspended instances are always flagged.
// It is safe for concurrent use.
type RunReport struct {
	mu            sync.Mutex
	scanned       int
	flagged       []panel.Instance
	suspended     []panel.Instance
	indeterminate []panel.Instance
	findings      []Finding
	members       map[string]membership
	elapsed       time.Duration
}

// NewRunReport returns an empty report.
func NewRunReport() *RunReport {
	return &RunReport{members: make(map[string]membership)}
}

// AddScanned counts one instance whose scan was started.
func (r *RunReport) AddScanned() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanned++
}

// AddFlagged records an instance whose verdict crossed the flag threshold.
func (r *RunReport) AddFlagged(inst panel.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.members[inst.Identifier]
	if m&(inFlagged|inIndeterminate) != 0 {
		return fmt.Errorf("instance %q is already reported", inst.Identifier)
	}
	r.members[inst.Identifier] = m | inFlagged
	r.flagged = append(r.flagged, inst)
	return nil
}

// AddSuspended records an instance whose suspension the panel confirmed. It must be flagged first.
func (r *RunReport) AddSuspended(inst panel.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.members[inst.Identifier]
	if m&inFlagged == 0 {
		return fmt.Errorf("instance %q cannot be suspended without being flagged", inst.Identifier)
	}
	if m&inSuspended != 0 {
		return fmt.Errorf("instance %q is already suspended", inst.Identifier)
	}
	r.members[inst.Identifier] = m | inSuspended
	r.suspended = append(r.suspended, inst)
	return nil
}

// AddIndeterminate records an instance for which no classification succeeded.
func (r *RunReport) AddIndeterminate(inst panel.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.members[inst.Identifier]
	if m != 0 {
		return fmt.Errorf("instance %q is already reported", inst.Identifier)
	}
	r.members[inst.Identifier] = inIndeterminate
	r.indeterminate = append(r.indeterminate, inst)
	return nil
}

// AddFinding records a flagged file.
func (r *RunReport) AddFinding(f Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findings = append(r.findings, f)
}

// SetElapsed records the wall-clock duration of the run.
func (r *RunReport) SetElapsed(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elapsed = d
}

// Summary returns the run statistics.
func (r *RunReport) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summary{
		TotalScanned:          r.scanned,
		TotalFlagged:          len(r.flagged),
		TotalSuspended:        len(r.suspended),
		TotalIndeterminate:    len(r.indeterminate),
		TotalTimeTakenSeconds: r.elapsed.Seconds(),
	}
}

// Flagged returns a copy of the flagged instances.
func (r *RunReport) Flagged() []panel.Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyInstances(r.flagged)
}

// Suspended returns a copy of the suspended instances.
func (r *RunReport) Suspended() []panel.Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyInstances(r.suspended)
}

// Indeterminate returns a copy of the indeterminate instances.
func (r *RunReport) Indeterminate() []panel.Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyInstances(r.indeterminate)
}

// Findings returns a copy of the flagged files.
func (r *RunReport) Findings() []Finding {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(make([]Finding, 0, len(r.findings)), r.findings...)
}

func copyInstances(in []panel.Instance) []panel.Instance {
	return append(make([]panel.Instance, 0, len(in)), in...)
}
