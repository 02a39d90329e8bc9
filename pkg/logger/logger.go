package logger

import (
	"errors"
	"io"
	"os"
	"syscall"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var log = zap.NewNop()

// Initialize builds the global logger from opts and installs it in zap and otelzap.
// With no usable sink the logger is a no-op.
func Initialize(opts Options) *zap.Logger {
	var cores []zapcore.Core
	var logPath string

	if !opts.DisableFile {
		path, writer, err := FindWritableLogPath(opts.FilePath)
		if err == nil {
			logPath = path
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), writer, zap.InfoLevel))
		}
	}

	if opts.ConsoleLevel != "" {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		encCfg := consoleEncoderConfig()
		if isTerminal(console) {
			encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(zapcore.AddSync(console)),
			ParseLogLevel(opts.ConsoleLevel),
		))
	}

	if len(cores) == 0 {
		log = zap.NewNop()
	} else {
		log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	zap.ReplaceGlobals(log)
	otelzap.ReplaceGlobals(otelzap.New(log))

	log.Debug("Logger initialized",
		zap.String("console_level", opts.ConsoleLevel),
		zap.String("log_path", logPath),
	)
	return log
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// L returns the global logger.
func L() *zap.Logger {
	return log
}

// Sync flushes buffered entries. Syncing a terminal or pipe returns EINVAL
// or ENOTTY on Linux; those are not failures.
func Sync() error {
	err := log.Sync()
	if err == nil || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
