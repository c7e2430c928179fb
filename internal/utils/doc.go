// Package utils holds the ambient plumbing shared by the xcelera commands: a viper-backed
// ConfigurationLoader layering embedded defaults, config files, and XCELERA_* environment
// variables, and a LoggerFactory producing zap loggers that write diagnostics to stderr.
package utils
