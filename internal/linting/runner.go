package linting

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/lintrun/internal/checkers"
	"github.com/temirov/lintrun/internal/sources"
)

const (
	buildPathRequiredMessageConstant       = "build path is required; pass --build-path or set lint.build_path"
	checksFailedMessageConstant            = "some checks failed"
	discovererNotConfiguredMessageConstant = "source discoverer not configured"
	phasesNotConfiguredMessageConstant     = "no checkers configured"
	discoveryErrorTemplateConstant         = "unable to discover sources for %s: %w"
	phaseStartedMessageConstant            = "checker phase started"
	phaseCompletedMessageConstant          = "checker phase completed"
	runCompletedMessageConstant            = "lint run completed"
	logFieldCheckerConstant                = "checker"
	logFieldFileCountConstant              = "file_count"
	logFieldFailedCountConstant            = "failed_count"
	logFieldJobsConstant                   = "jobs"
	logFieldFixConstant                    = "fix"
	logFieldSucceededConstant              = "succeeded"
)

// ErrBuildPathRequired indicates the run was requested without a compilation database directory.
var ErrBuildPathRequired = errors.New(buildPathRequiredMessageConstant)

// ErrChecksFailed indicates at least one checker produced a non-empty diagnostic.
var ErrChecksFailed = errors.New(checksFailedMessageConstant)

// SourceDiscoverer enumerates the files a phase inspects.
type SourceDiscoverer interface {
	DiscoverSources(request sources.DiscoveryRequest) ([]sources.SourceFile, error)
}

// ProgressPrinter announces each check as it starts.
type ProgressPrinter interface {
	PrintProgress(checkerName string, relativePath string)
}

// Phase pairs a checker with the file extensions it inspects.
type Phase struct {
	Checker    checkers.Checker
	Extensions []string
}

// RunOptions carries the per-run inputs shared by every phase.
type RunOptions struct {
	SourceRoot          string
	BuildPath           string
	Fix                 bool
	ExcludedDirectories []string
	Jobs                int
}

// Runner executes phases in order, running the files of each phase in parallel.
type Runner struct {
	logger     *zap.Logger
	discoverer SourceDiscoverer
	progress   ProgressPrinter
	phases     []Phase
}

// NewRunner validates dependencies and constructs a Runner.
func NewRunner(logger *zap.Logger, discoverer SourceDiscoverer, progress ProgressPrinter, phases ...Phase) (*Runner, error) {
	if discoverer == nil {
		return nil, errors.New(discovererNotConfiguredMessageConstant)
	}
	if len(phases) == 0 {
		return nil, errors.New(phasesNotConfiguredMessageConstant)
	}
	for _, phase := range phases {
		if phase.Checker == nil {
			return nil, errors.New(phasesNotConfiguredMessageConstant)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, discoverer: discoverer, progress: progress, phases: append([]Phase{}, phases...)}, nil
}

// Run checks every discovered file with every phase and aggregates the non-empty diagnostics.
// Diagnostics do not stop the run; only a cancelled context does.
func (runner *Runner) Run(executionContext context.Context, options RunOptions) (Report, error) {
	if len(strings.TrimSpace(options.BuildPath)) == 0 {
		return Report{}, ErrBuildPathRequired
	}
	if executionContext == nil {
		executionContext = context.Background()
	}

	requestTemplate := checkers.CheckRequest{
		SourceRoot: absolutePath(options.SourceRoot),
		BuildPath:  absolutePath(options.BuildPath),
		Fix:        options.Fix,
	}
	jobs := options.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	report := Report{}
	for _, phase := range runner.phases {
		checkerName := phase.Checker.Name()
		sourceFiles, discoveryError := runner.discoverer.DiscoverSources(sources.DiscoveryRequest{
			SourceRoot:          options.SourceRoot,
			Extensions:          phase.Extensions,
			ExcludedDirectories: options.ExcludedDirectories,
		})
		if discoveryError != nil {
			return report, fmt.Errorf(discoveryErrorTemplateConstant, checkerName, discoveryError)
		}

		runner.logger.Debug(
			phaseStartedMessageConstant,
			zap.String(logFieldCheckerConstant, string(checkerName)),
			zap.Int(logFieldFileCountConstant, len(sourceFiles)),
			zap.Int(logFieldJobsConstant, jobs),
			zap.Bool(logFieldFixConstant, options.Fix),
		)

		diagnostics, phaseError := runner.runPhase(executionContext, phase, sourceFiles, requestTemplate, jobs)
		summary := PhaseSummary{Checker: checkerName, CheckedFiles: len(sourceFiles)}
		for _, diagnostic := range diagnostics {
			if !diagnostic.HasFindings() {
				continue
			}
			summary.FailedFiles++
			report.Diagnostics = append(report.Diagnostics, diagnostic)
		}
		report.Phases = append(report.Phases, summary)

		runner.logger.Debug(
			phaseCompletedMessageConstant,
			zap.String(logFieldCheckerConstant, string(checkerName)),
			zap.Int(logFieldFileCountConstant, summary.CheckedFiles),
			zap.Int(logFieldFailedCountConstant, summary.FailedFiles),
		)

		if phaseError != nil {
			return report, phaseError
		}
	}

	runner.logger.Info(
		runCompletedMessageConstant,
		zap.Int(logFieldFileCountConstant, report.CheckedFiles()),
		zap.Int(logFieldFailedCountConstant, len(report.Diagnostics)),
		zap.Bool(logFieldSucceededConstant, report.Succeeded()),
	)

	return report, nil
}

// runPhase fans the files out over a bounded errgroup. Results are indexed by submission order.
func (runner *Runner) runPhase(executionContext context.Context, phase Phase, sourceFiles []sources.SourceFile, requestTemplate checkers.CheckRequest, jobs int) ([]checkers.Diagnostic, error) {
	diagnostics := make([]checkers.Diagnostic, len(sourceFiles))
	checkerName := string(phase.Checker.Name())

	group, groupContext := errgroup.WithContext(executionContext)
	group.SetLimit(jobs)

	for index, sourceFile := range sourceFiles {
		if executionContext.Err() != nil {
			break
		}
		group.Go(func() error {
			if groupContext.Err() != nil {
				return nil
			}
			if runner.progress != nil {
				runner.progress.PrintProgress(checkerName, filepath.ToSlash(sourceFile.RelativePath))
			}
			request := requestTemplate
			request.File = sourceFile
			diagnostics[index] = phase.Checker.Check(groupContext, request)
			return nil
		})
	}

	if waitError := group.Wait(); waitError != nil {
		return diagnostics, waitError
	}
	return diagnostics, executionContext.Err()
}

func absolutePath(path string) string {
	if len(path) == 0 {
		return path
	}
	if resolvedPath, absoluteError := filepath.Abs(path); absoluteError == nil {
		return resolvedPath
	}
	return path
}
