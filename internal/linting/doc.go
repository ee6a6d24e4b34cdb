// Package linting drives clang-tidy and clang-format across a source tree.
//
// A Runner discovers sources for each checker phase, fans the per-file checks
// out over a bounded errgroup, and collects every non-empty diagnostic into a
// Report. The cobra commands in this package translate configuration and flags
// into RunOptions and render the Report for the console.
package linting
