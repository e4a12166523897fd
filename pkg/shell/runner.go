// Package shell runs external commands for the installer. Every mutating
// command goes through Runner.Run, which is the single place the global
// dry-run flag is honored for command execution.
package shell

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/logging"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

// ReportStyle selects how a command's outcome is reported.
type ReportStyle string

const (
	// ReportPlain logs the result line at info.
	ReportPlain ReportStyle = "plain"
	// ReportSuccess logs the result with a success marker.
	ReportSuccess ReportStyle = "success"
	// ReportNotice logs the result with a notice marker.
	ReportNotice ReportStyle = "notice"
	// ReportNone suppresses result reporting entirely.
	ReportNone ReportStyle = "none"
)

// RunOptions tune a single command invocation.
type RunOptions struct {
	// Verbose overrides the global verbose flag for this call only. The
	// global flag is left untouched.
	Verbose *bool
	// PassFailures reports a failing command instead of returning its error.
	PassFailures bool
	// Style selects result reporting. Zero value is ReportPlain.
	Style ReportStyle
}

// Runner executes external commands honoring the run options.
type Runner struct {
	logger zerolog.Logger
	opts   *types.Options
}

// New creates a Runner bound to the run's options.
func New(opts *types.Options) *Runner {
	return &Runner{
		logger: logging.GetLogger("shell"),
		opts:   opts,
	}
}

// LookPath resolves a required external utility. Absence is a fatal
// MissingDependency error with an explanatory message.
func (r *Runner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrMissingDependency,
			"required utility %q not found in PATH; install it and retry", name)
	}
	return path, nil
}

// Run executes name with args. Under dry-run no command executes; the
// command and its caller location are reported and the call succeeds.
func (r *Runner) Run(name string, args []string, ro RunOptions) error {
	if r.opts.DryRun {
		r.logger.Info().
			Str("mode", "dry-run").
			Str("command", commandLine(name, args)).
			Str("caller", callerLocation(2)).
			Msg("would run command")
		return nil
	}

	r.logger.Debug().
		Str("command", commandLine(name, args)).
		Msg("running command")

	cmd := exec.Command(name, args...)

	verbose := r.opts.Verbose > 0
	if ro.Verbose != nil {
		verbose = *ro.Verbose
	}

	var stdout, stderr bytes.Buffer
	if verbose {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	if err != nil {
		wrapped := errors.Wrapf(err, errors.ErrCommandFailed,
			"command failed: %s", commandLine(name, args)).
			WithDetail("stderr", stderr.String())
		if ro.PassFailures {
			r.logger.Warn().
				Str("command", commandLine(name, args)).
				Str("stderr", stderr.String()).
				Msg("command failed (ignored)")
			return nil
		}
		r.logger.Error().
			Err(err).
			Str("command", commandLine(name, args)).
			Str("stderr", stderr.String()).
			Msg("command failed")
		return wrapped
	}

	r.report(name, args, ro.Style)
	return nil
}

func (r *Runner) report(name string, args []string, style ReportStyle) {
	if style == ReportNone {
		return
	}
	event := r.logger.Info().Str("command", commandLine(name, args))
	switch style {
	case ReportSuccess:
		event.Str("status", "ok").Msg("command succeeded")
	case ReportNotice:
		event.Str("status", "notice").Msg("command completed")
	default:
		event.Msg("command completed")
	}
}

func commandLine(name string, args []string) string {
	line := name
	for _, a := range args {
		line += " " + a
	}
	return line
}

// callerLocation renders function:file:line for the frame skip levels up.
func callerLocation(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	fn := "unknown"
	if f := runtime.FuncForPC(pc); f != nil {
		fn = filepath.Base(f.Name())
	}
	return fmt.Sprintf("%s:%s:%d", fn, filepath.Base(file), line)
}
