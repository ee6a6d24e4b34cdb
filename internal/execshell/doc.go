// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and per-invocation timeouts via ShellExecutor,
// exposes OSCommandRunner for default process execution, and defines the
// abstractions lintrun uses to drive clang-tidy and clang-format in a testable
// manner.
package execshell
