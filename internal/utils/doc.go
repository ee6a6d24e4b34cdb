// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses ConfigurationLoader, which layers embedded defaults, configuration
// files, and LINTRUN_ environment variables through Viper, the zap-backed
// LoggerFactory, and FlushingWriter for line-oriented terminal output.
package utils
