// Package sources discovers the files lintrun hands to external checkers.
//
// Discovery looks at files directly under a source root and recursively under
// every top-level subdirectory whose name is not excluded, so vendored trees
// such as third_party are skipped wholesale.
package sources
