// Package cli builds the xcelera command-line interface: the cobra root command with its audit and
// action subcommands, the layered configuration (embedded defaults, config.yaml in . or ~/.xcelera,
// XCELERA_* environment variables, then flags), and the zap diagnostic logger.
package cli
