// Package cli constructs the lintrun command-line interface.
//
// The root command runs clang-tidy and clang-format over a source tree and the
// files subcommand lists what each checker would inspect. Both read the lint
// section of the layered configuration (embedded defaults, config.yaml,
// LINTRUN_ environment variables, flags) and log through zap.
package cli
