package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/taskdeck/taskdeck/application/consts"
	"github.com/taskdeck/taskdeck/application/core"
)

// callerSkip accounts for the wrapping layers between the call site and
// zap: package level helper, component method, log.
const callerSkip = 3

// Logger is the context-aware logging interface used across the app.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...zap.Field)
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Warn(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
	Fatal(ctx context.Context, msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Sync() error
}

// LoggerComponent wires a zap logger into the component lifecycle and
// installs itself as the process-global logger on start.
type LoggerComponent struct {
	*core.BaseComponent
	cfg *LoggingConfig
	zl  *zap.Logger
}

func NewLoggerComponent(cfg *LoggingConfig) *LoggerComponent {
	return &LoggerComponent{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_LOGGING),
		cfg:           cfg,
	}
}

func (lc *LoggerComponent) Start(ctx context.Context) error {
	if err := lc.BaseComponent.Start(ctx); err != nil {
		return err
	}

	sink, err := lc.buildSink()
	if err != nil {
		return fmt.Errorf("logging sink init: %w", err)
	}

	lc.zl = zap.New(
		zapcore.NewCore(lc.buildEncoder(), sink, parseLevel(lc.cfg.Level)),
		zap.AddCaller(),
		zap.AddCallerSkip(callerSkip),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)

	lc.zl.Info("logging started",
		zap.String("level", lc.cfg.Level),
		zap.String("format", lc.cfg.Format),
		zap.String("output", lc.cfg.Output),
	)

	SetGlobalLogger(lc)
	return nil
}

func (lc *LoggerComponent) Stop(ctx context.Context) error {
	if lc.zl != nil {
		_ = lc.zl.Sync()
	}
	return lc.BaseComponent.Stop(ctx)
}

func (lc *LoggerComponent) HealthCheck() error {
	if err := lc.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if lc.zl == nil {
		return fmt.Errorf("zap logger not initialized")
	}
	return nil
}

func (lc *LoggerComponent) buildEncoder() zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if lc.cfg.Format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}

// buildSink resolves the output target. "stdout", "stderr" and "file"
// are reserved words; anything else is taken as a literal path.
func (lc *LoggerComponent) buildSink() (zapcore.WriteSyncer, error) {
	switch strings.ToLower(lc.cfg.Output) {
	case "stdout", "":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	case "file":
		return lc.buildFileSink()
	default:
		return openAppendSink(lc.cfg.Output)
	}
}

func (lc *LoggerComponent) buildFileSink() (zapcore.WriteSyncer, error) {
	if lc.cfg.FileConfig == nil {
		return nil, fmt.Errorf("file config is required when output is 'file'")
	}
	if err := os.MkdirAll(lc.cfg.FileConfig.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	logFile := filepath.Join(lc.cfg.FileConfig.Dir, lc.cfg.FileConfig.Filename+".log")

	rot := lc.cfg.RotateConfig
	if rot == nil || !rot.Enabled {
		return openAppendSink(logFile)
	}
	// interval rotation writes timestamped files, otherwise rotate by size
	if rot.RotateInterval > 0 {
		w, err := newIntervalRotatingWriter(lc.cfg.FileConfig.Dir, lc.cfg.FileConfig.Filename, rot)
		if err != nil {
			return nil, err
		}
		return zapcore.AddSync(w), nil
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:  logFile,
		MaxSize:   100, // MB
		MaxAge:    int(rot.MaxAge.Hours() / 24),
		Compress:  true,
		LocalTime: true,
	}), nil
}

func openAppendSink(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return zapcore.AddSync(f), nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (lc *LoggerComponent) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	lc.log(ctx, zapcore.DebugLevel, msg, fields...)
}

func (lc *LoggerComponent) Info(ctx context.Context, msg string, fields ...zap.Field) {
	lc.log(ctx, zapcore.InfoLevel, msg, fields...)
}

func (lc *LoggerComponent) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	lc.log(ctx, zapcore.WarnLevel, msg, fields...)
}

func (lc *LoggerComponent) Error(ctx context.Context, msg string, fields ...zap.Field) {
	lc.log(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (lc *LoggerComponent) Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	lc.log(ctx, zapcore.FatalLevel, msg, fields...)
	os.Exit(1)
}

func (lc *LoggerComponent) With(fields ...zap.Field) Logger {
	return &LoggerComponent{
		BaseComponent: lc.BaseComponent,
		cfg:           lc.cfg,
		zl:            lc.zl.With(fields...),
	}
}

func (lc *LoggerComponent) Sync() error {
	if lc.zl != nil {
		return lc.zl.Sync()
	}
	return nil
}

func (lc *LoggerComponent) GetZapLogger() *zap.Logger { return lc.zl }

// log prepends the active trace id, if any, so every line inside a
// request correlates with its span. Explicit trace fields win.
func (lc *LoggerComponent) log(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	if lc.zl == nil {
		return
	}
	if id := traceIDFrom(ctx); id != "" && !hasTraceField(fields) {
		fields = append([]zap.Field{zap.String(consts.KEY_TraceID, id)}, fields...)
	}
	switch level {
	case zapcore.DebugLevel:
		lc.zl.Debug(msg, fields...)
	case zapcore.InfoLevel:
		lc.zl.Info(msg, fields...)
	case zapcore.WarnLevel:
		lc.zl.Warn(msg, fields...)
	case zapcore.ErrorLevel:
		lc.zl.Error(msg, fields...)
	case zapcore.FatalLevel:
		lc.zl.Fatal(msg, fields...)
	}
}

func hasTraceField(fields []zap.Field) bool {
	for _, f := range fields {
		if f.Key == "trace_id" || f.Key == "trace-id" {
			return true
		}
	}
	return false
}

// traceIDFrom reports the OTel trace id when a span is active. Lines
// logged outside a request carry no trace field.
func traceIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() && sc.TraceID().IsValid() {
		return sc.TraceID().String()
	}
	return ""
}
