// Package progress reports search progress while an artifact is resolved.
//
// Core types:
//   - Reporter: grouped progress output with debug, info and warning lines
//
// Implementations:
//   - LogReporter: writes through slog
//   - ActionsReporter: writes GitHub Actions workflow commands
//     (::group::, ::warning::, ::debug::) so output folds in the job log
//   - MultiReporter: fans out to several reporters
//   - NopReporter: discards everything
//
// Example usage:
//
//	reporter := progress.Detect(os.Stdout, logger)
//	reporter.StartGroup("resolve artifact")
//	defer reporter.EndGroup()
//	reporter.Warning("artifact not found", "name", "visual-snapshots")
package progress
