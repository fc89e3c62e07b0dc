package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ILogger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
}

type Options struct {
	FilePath   string
	Level      string // debug, info, warn, error; default info
	Production bool   // JSON on the console instead of the dev encoder
	FileOnly   bool   // skip the console core
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type ZapLogger struct {
	logger   *zap.Logger
	filePath string
}

func (o Options) rotator() *lumberjack.Logger {
	r := &lumberjack.Logger{
		Filename:   o.FilePath,
		MaxSize:    o.MaxSizeMB,
		MaxBackups: o.MaxBackups,
		MaxAge:     o.MaxAgeDays,
		Compress:   true,
	}
	if r.MaxSize <= 0 {
		r.MaxSize = 10
	}
	if r.MaxBackups <= 0 {
		r.MaxBackups = 5
	}
	if r.MaxAge <= 0 {
		r.MaxAge = 30
	}
	return r
}

func (o Options) level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(o.Level)
	if err != nil || o.Level == "" {
		return zap.InfoLevel
	}
	return lvl
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.MessageKey = "message"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// New writes JSON lines to a rotated file and, unless FileOnly, to stdout.
func New(opts Options) *ZapLogger {
	level := opts.level()
	cores := []zapcore.Core{
		zapcore.NewCore(jsonEncoder(), zapcore.AddSync(opts.rotator()), level),
	}

	if !opts.FileOnly {
		console := jsonEncoder()
		if !opts.Production {
			console = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		}
		cores = append(cores, zapcore.NewCore(console, zapcore.Lock(os.Stdout), level))
	}

	return &ZapLogger{
		logger:   zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)),
		filePath: opts.FilePath,
	}
}

// NewNopLogger discards everything. Tests use it.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}

// NewFromZap wraps an existing zap logger, e.g. an observer core.
func NewFromZap(l *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: l}
}

// fields flattens error values in details to their message; zap would
// otherwise encode them as empty objects inside the map.
func fields(module string, details map[string]interface{}) []zap.Field {
	clean := make(map[string]interface{}, len(details))
	var errRef error
	for k, v := range details {
		if err, ok := v.(error); ok {
			clean[k] = err.Error()
			if k == "error" {
				errRef = err
			}
			continue
		}
		clean[k] = v
	}

	f := []zap.Field{zap.String("module", module), zap.Any("details", clean)}
	if errRef != nil {
		f = append(f, zap.NamedError("error_ref", errRef))
	}
	return f
}

func (l *ZapLogger) Debug(module, message string, details map[string]interface{}) {
	l.logger.Debug(message, fields(module, details)...)
}

func (l *ZapLogger) Info(module, message string, details map[string]interface{}) {
	l.logger.Info(message, fields(module, details)...)
}

func (l *ZapLogger) Warn(module, message string, details map[string]interface{}) {
	l.logger.Warn(message, fields(module, details)...)
}

func (l *ZapLogger) Error(module, message string, details map[string]interface{}) {
	l.logger.Error(message, fields(module, details)...)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
