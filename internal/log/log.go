// Package log provides structured, colored logging for the node.
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers for each long-lived task.
var (
	Consensus zerolog.Logger
	Network   zerolog.Logger
	Mempool   zerolog.Logger
	Builder   zerolog.Logger
	Miner     zerolog.Logger
	Storage   zerolog.Logger
	RPC       zerolog.Logger
)

func init() {
	Logger = NewConsoleLogger(os.Stdout, "info")
	initComponentLoggers()
}

// Init installs the process-wide logger. When file is non-empty, logs go
// to both the console (colored or JSON per jsonOutput) and the file
// (always JSON, for machine parsing).
func Init(level string, jsonOutput bool, file string) error {
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}

		var consoleWriter io.Writer = os.Stdout
		if !jsonOutput {
			consoleWriter = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		}
		multi := zerolog.MultiLevelWriter(consoleWriter, f)
		Logger = zerolog.New(multi).Level(parseLevel(level)).With().Timestamp().Logger()
	} else if jsonOutput {
		Logger = NewJSONLogger(os.Stdout, level)
	} else {
		Logger = NewConsoleLogger(os.Stdout, level)
	}

	initComponentLoggers()
	return nil
}

// NewConsoleLogger creates a colored console logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(output).Level(parseLevel(level)).With().Timestamp().Logger()
}

// NewJSONLogger creates a structured JSON logger.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func initComponentLoggers() {
	Consensus = Logger.With().Str("component", "consensus").Logger()
	Network = Logger.With().Str("component", "p2p").Logger()
	Mempool = Logger.With().Str("component", "mempool").Logger()
	Builder = Logger.With().Str("component", "payload").Logger()
	Miner = Logger.With().Str("component", "miner").Logger()
	Storage = Logger.With().Str("component", "storage").Logger()
	RPC = Logger.With().Str("component", "rpc").Logger()
}

// WithComponent returns a logger tagged with an arbitrary component name.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
