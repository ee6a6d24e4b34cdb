// Package checkers wraps the external clang tools invoked for every source file.
//
// StaticAnalyzer drives clang-tidy against a compilation database and
// StyleChecker drives clang-format. Both turn tool output, invocation failures
// and unexpected file modifications into a Diagnostic instead of an error so a
// single file can never abort a run.
package checkers
