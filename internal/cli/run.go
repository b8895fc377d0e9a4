package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/brine/internal/expr"
	"github.com/roach88/brine/internal/filter"
	"github.com/roach88/brine/internal/objdef"
	"github.com/roach88/brine/internal/stream"
)

// errLimit stops processing once --limit matches have been seen. It never
// escapes run().
var errLimit = errors.New("match limit reached")

func run(opts *Options, args []string, out io.Writer) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	paths, err := expandPaths(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve config files", err)
	}

	if opts.Commit {
		return runCommit(opts, paths, out)
	}

	filters, err := buildFilters(opts)
	if err != nil {
		return err
	}

	updates := make([]*expr.Expression, 0, len(opts.Updates))
	for _, text := range opts.Updates {
		e, err := expr.Compile(text)
		if err != nil {
			return filterError(err)
		}
		updates = append(updates, e)
	}

	updateMode := len(updates) > 0 || opts.Delete

	if opts.Output == "value" && len(opts.Selects) == 0 {
		return NewExitError(ExitCommandError, "unable to use --output value without --select")
	}

	strategy, err := stream.ParseStrategy(opts.Write)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --write", err)
	}

	reg := objdef.DefaultRegistry()
	rep := newReport(opts, out)

	if len(paths) == 0 {
		if updateMode {
			return NewExitError(ExitCommandError, "unable to use --update, --delete without named config files")
		}
		if err := processStream(stream.New(reg, os.Stdin), filters, rep); err != nil && err != errLimit {
			return err
		}
		return rep.finish()
	}

	fileOpts := stream.Options{
		Encoding:        opts.Encoding,
		Update:          updateMode,
		ReadTransaction: updateMode && strategy == stream.StrategyTransaction,
	}

	for _, path := range paths {
		err := processFile(reg, path, fileOpts, strategy, filters, updates, opts, rep)
		if err == errLimit {
			break
		}
		if err != nil {
			return err
		}
	}

	return rep.finish()
}

// processFile runs one full edit session: parse every definition, apply
// the per-record decision, then promote the side file if anything changed.
func processFile(
	reg *objdef.Registry,
	path string,
	fileOpts stream.Options,
	strategy stream.Strategy,
	filters *filter.Set,
	updates []*expr.Expression,
	opts *Options,
	rep *report,
) error {
	f, err := stream.Open(reg, path, fileOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Discard()

	slog.Debug("processing config file", "path", path, "update", fileOpts.Update)

	var stopped error
	for {
		def, err := f.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return WrapExitError(ExitFailure, "failed to parse config", err)
		}

		rep.total++

		matches, matched, err := matchDef(filters, def)
		if err != nil {
			return evalError(err)
		}

		if matched {
			if fileOpts.Update {
				if opts.Delete {
					if err := f.Delete(); err != nil {
						return WrapExitError(ExitFailure, "failed to rewrite config", err)
					}
				} else {
					for _, u := range updates {
						if _, err := u.EvalUpdate(def); err != nil {
							return evalError(err)
						}
					}
					if err := f.Update(def); err != nil {
						return WrapExitError(ExitFailure, "failed to rewrite config", err)
					}
				}
			}
			if err := rep.record(def, matches); err != nil {
				if err == errLimit {
					stopped = errLimit
					break
				}
				return err
			}
		} else if fileOpts.Update {
			if err := f.Unchanged(); err != nil {
				return WrapExitError(ExitFailure, "failed to rewrite config", err)
			}
		}
	}

	if fileOpts.Update && f.Updated() {
		if err := f.Finalize(strategy); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("failed to write %s", path), err)
		}
		slog.Debug("config file updated", "path", path, "strategy", opts.Write)
	} else if err := f.Close(); err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("failed to close %s", path), err)
	}

	return stopped
}

// processStream handles the read-only stdin path.
func processStream(s *stream.Stream, filters *filter.Set, rep *report) error {
	for {
		def, err := s.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return WrapExitError(ExitFailure, "failed to parse config", err)
		}
		rep.total++

		matches, matched, err := matchDef(filters, def)
		if err != nil {
			return evalError(err)
		}
		if matched {
			if err := rep.record(def, matches); err != nil {
				return err
			}
		}
	}
}

// matchDef evaluates all filters against one definition. An empty filter
// set matches everything.
func matchDef(filters *filter.Set, def *objdef.Definition) ([]*expr.Expression, bool, error) {
	if filters.Empty() {
		return nil, true, nil
	}
	matches, err := filters.Matching(def)
	if err != nil {
		return nil, false, err
	}
	return matches, len(matches) > 0, nil
}

// runCommit promotes pending transaction files, one outcome per path.
func runCommit(opts *Options, paths []string, out io.Writer) error {
	for _, result := range stream.Commit(paths, !opts.NoTransactionCheck) {
		switch {
		case result.Outcome == stream.Failed:
			return WrapExitError(ExitFailure, fmt.Sprintf("failed to commit %s", result.Path), result.Err)
		case result.Outcome == stream.Promoted:
			fmt.Fprintf(out, "%s%s -> %s\n", result.Path, stream.TransactionSuffix, result.Path)
		case result.Outcome == stream.Skipped:
			fmt.Fprintf(out, "Skipped: Original file newer than transaction file: %s\n", result.Path)
		}
	}
	return nil
}

// buildFilters compiles every filter option into one Set: raw expressions,
// filter files, and the shorthand macros.
func buildFilters(opts *Options) (*filter.Set, error) {
	set := &filter.Set{}

	add := func(texts ...string) error {
		for _, text := range texts {
			if err := set.AddText(text); err != nil {
				return filterError(err)
			}
		}
		return nil
	}

	if err := add(opts.Filters...); err != nil {
		return nil, err
	}
	for _, path := range opts.FilterFiles {
		lines, err := filter.FromFile(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to read filter file %s", path), err)
		}
		if err := add(lines...); err != nil {
			return nil, err
		}
	}
	for _, v := range opts.Hosts {
		if err := add(filter.Host(v)); err != nil {
			return nil, err
		}
	}
	for _, v := range opts.Services {
		if err := add(filter.Service(v)); err != nil {
			return nil, err
		}
	}
	for _, v := range opts.Commands {
		if err := add(filter.Command(v)); err != nil {
			return nil, err
		}
	}
	for _, v := range opts.Contacts {
		if err := add(filter.Contact(v)); err != nil {
			return nil, err
		}
	}
	for _, v := range opts.Hostgroups {
		if err := add(filter.Hostgroup(v)); err != nil {
			return nil, err
		}
	}
	for _, v := range opts.Servicegroups {
		if err := add(filter.Servicegroup(v)); err != nil {
			return nil, err
		}
	}

	return set, nil
}

// expandPaths resolves the positional arguments: a directory expands to
// the *.cfg files directly inside it.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			children, err := filepath.Glob(filepath.Join(arg, "*.cfg"))
			if err != nil {
				return nil, err
			}
			paths = append(paths, children...)
			continue
		}
		paths = append(paths, arg)
	}
	return paths, nil
}

// filterError renders expression compile failures, with caret diagnostics
// for syntax errors.
func filterError(err error) error {
	var se *expr.SyntaxError
	if errors.As(err, &se) {
		return NewExitError(ExitCommandError, fmt.Sprintf("syntax error in filter:\n\n%s", se.Caret()))
	}
	return WrapExitError(ExitCommandError, "invalid filter", err)
}

// evalError renders expression evaluation failures.
func evalError(err error) error {
	return WrapExitError(ExitFailure, "failed to evaluate expression", err)
}
