// Package logging provides zap logger helpers.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// App names the log file, together with an optional run label and
	// the start timestamp: <dir>/<app>_<label>_<ts>.log.
	App         string
	RunLabel    string
	Dir         string
	Development bool
}

// New builds a logger that tees every entry to the console and to a
// timestamped log file under Dir. An empty Dir disables the file core.
func New(opts Options) (*zap.Logger, error) {
	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCfg.TimeKey = "ts"

	level := zapcore.InfoLevel
	if opts.Development {
		level = zapcore.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.Lock(os.Stdout),
			level,
		),
	}

	if opts.Dir != "" {
		file, err := openLogFile(opts)
		if err != nil {
			return nil, err
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "ts"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileCfg),
			zapcore.Lock(file),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

func openLogFile(opts Options) (*os.File, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	name := opts.App
	if opts.RunLabel != "" {
		name += "_" + opts.RunLabel
	}
	name += "_" + time.Now().Format("20060102_150405") + ".log"
	file, err := os.OpenFile(filepath.Join(opts.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}
