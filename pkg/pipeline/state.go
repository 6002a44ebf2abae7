package pipeline

import (
	"time"

	"github.com/systemstart/pagesmith/pkg/api"
)

// Status is the lifecycle position of a pipeline run.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is created fresh for every run and shared by reference between all
// steps of that run. Only the orchestrator writes Status, Timings, Err and
// FailedStep; steps write Outputs.
type State struct {
	// Options is a snapshot of the site configuration taken at the start of
	// the run.
	Options api.Site
	Session *Session
	Outputs Outputs

	Status     Status
	Timings    map[string]time.Duration
	Err        error
	FailedStep string
	Started    time.Time
	Finished   time.Time
}

func newState(site api.Site, session *Session) *State {
	return &State{
		Options: site,
		Session: session,
		Timings: make(map[string]time.Duration),
	}
}

// Outputs carries the results steps publish for later steps. Each field has
// exactly one producer; a field once set is never cleared by a later step.
type Outputs struct {
	// Entries is published by catalog-pages.
	Entries []Entry
	// CSS, ServerBundle and ClientBundle are published by the asset group.
	CSS          *CommandOutput
	ServerBundle *CommandOutput
	ClientBundle *CommandOutput
	// Rendered maps entry names to HTML bodies; published by render-pages.
	Rendered map[string]string
	// Pages lists the dist paths written by generate-html.
	Pages []string
	// Copied is published by copy-static.
	Copied *CopySummary
}

// Entry is a page source cataloged before compilation.
type Entry struct {
	Name        string // entry name: source path without its extension
	SourcePath  string // relative to the pages dir, slash separated
	DistPath    string // compiled HTML path relative to the output dir
	Title       string
	FrontMatter map[string]any
}

// CommandOutput is what an external tool step captured.
type CommandOutput struct {
	Stdout   []byte
	Path     string // file stdout was written to, if any
	Duration time.Duration
}

// CopySummary describes the static copy.
type CopySummary struct {
	Files int
	Bytes int64
}
