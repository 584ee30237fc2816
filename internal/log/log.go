// Package log is a package-scoped wrapper around zap, in the style of
// the teacher's internal/log: callers write log.Debug/log.Info/
// log.Warn/log.Error with zap.Field arguments rather than reaching
// for zap directly, so the output format stays uniform everywhere in
// the module and can be reconfigured once from internal/config.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global *zap.Logger = zap.NewNop()
)

// Config controls the global logger's level and encoding.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // console, json
}

// Init (re)configures the global logger. Safe to call once at
// startup; later calls replace the logger wholesale.
func Init(cfg Config) error {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return err
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), level)
	logger := zap.New(core, zap.AddCaller())

	mu.Lock()
	global = logger
	mu.Unlock()
	return nil
}

// L returns the current global *zap.Logger, for callers that want to
// bind a sub-logger (e.g. with zap.Uint64("peer_id", id) bound once).
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { L().Fatal(msg, fields...) }

// Sync flushes any buffered log entries. Call before process exit.
func Sync() error {
	return L().Sync()
}
