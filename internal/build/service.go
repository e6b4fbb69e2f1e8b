package build

import (
	"time"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	"git.home.luguber.info/inful/mdxsite/internal/page"
)

// Request contains all inputs required to execute a build.
type Request struct {
	// Config is the loaded configuration for this build.
	Config *config.Config

	// Options provides optional build behavior modifiers.
	Options Options
}

// Options provides optional configuration for build behavior.
type Options struct {
	// DryRun renders the whole site into a temporary directory and discards
	// it instead of replacing the output directory.
	DryRun bool
}

// Result contains the outcome of a build execution.
type Result struct {
	// Status indicates overall build outcome.
	Status Status

	// BuildID identifies this run in logs and in the manifest.
	BuildID string

	// OutputPath is the output directory (unchanged on dry runs and failures).
	OutputPath string

	DryRun bool

	// Documents is the number of source documents parsed.
	Documents int

	// Pages is the number of pages rendered, by kind in PagesByKind.
	Pages       int
	PagesByKind map[page.Kind]int

	// Assets is the number of non-document files copied.
	Assets int

	// Notes is the number of footnotes numbered across the site.
	Notes int

	// Stages lists completed and failed stages in execution order.
	Stages []StageTiming

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// StageTiming records how long one stage ran.
type StageTiming struct {
	Name     string
	Duration time.Duration
}

// Status represents the outcome of a build execution.
type Status string

const (
	// StatusSuccess indicates the build completed successfully.
	StatusSuccess Status = "success"

	// StatusFailed indicates the build encountered an error.
	StatusFailed Status = "failed"

	// StatusCancelled indicates the build was cancelled.
	StatusCancelled Status = "cancelled"
)

// IsSuccess returns true if the build completed successfully.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// Stage names, used for logging, metrics and error context.
const (
	StageDiscover = "discover"
	StageCollect  = "collect"
	StageRender   = "render"
	StageAssets   = "assets"
	StageVerify   = "verify"
	StageManifest = "manifest"
	StageFinalize = "finalize"
)
