package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
)

const (
	TraceIDKey = "trace_id"
)

// Logger 日志记录器接口
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...zap.Field)
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Warn(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
	Fatal(ctx context.Context, msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Sync() error
}

// ZapLoggerComponent Zap日志组件
type ZapLoggerComponent struct {
	*core.BaseComponent
	config    *LoggingConfig
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
}

// NewZapLoggerComponent 创建新的Zap日志组件
func NewZapLoggerComponent(cfg *LoggingConfig) *ZapLoggerComponent {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ZapLoggerComponent{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_LOGGING),
		config:        cfg,
	}
}

// Start 启动日志组件
func (lc *ZapLoggerComponent) Start(ctx context.Context) error {
	if err := lc.BaseComponent.Start(ctx); err != nil {
		return err
	}

	lc.config.applyDefaults()

	encoder := lc.buildEncoder()

	writeSyncer, err := lc.buildWriteSyncer()
	if err != nil {
		return fmt.Errorf("failed to create write syncer: %w", err)
	}

	level := lc.parseLevel(lc.config.Level)

	zapCore := zapcore.NewCore(encoder, writeSyncer, level)

	lc.zapLogger = zap.New(zapCore, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	lc.sugar = lc.zapLogger.Sugar()

	SetGlobalLogger(lc)

	lc.zapLogger.Info("logging component started",
		zap.String("level", lc.config.Level),
		zap.String("format", lc.config.Format),
		zap.String("output", lc.config.Output),
	)

	return nil
}

// Stop 停止日志组件
func (lc *ZapLoggerComponent) Stop(ctx context.Context) error {
	if lc.zapLogger != nil {
		lc.zapLogger.Info("logging component stopping")
		_ = lc.zapLogger.Sync()
	}
	return lc.BaseComponent.Stop(ctx)
}

func (lc *ZapLoggerComponent) HealthCheck() error {
	if err := lc.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if lc.zapLogger == nil {
		return fmt.Errorf("zap logger is not initialized")
	}
	return nil
}

func (lc *ZapLoggerComponent) GetZapLogger() *zap.Logger { return lc.zapLogger }

func (lc *ZapLoggerComponent) buildEncoder() zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
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

	if lc.config.Format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func (lc *ZapLoggerComponent) buildWriteSyncer() (zapcore.WriteSyncer, error) {
	var syncers []zapcore.WriteSyncer

	switch lc.config.Output {
	case "stdout":
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	case "file":
		syncers = append(syncers, lc.fileSyncer())
	case "both":
		syncers = append(syncers, zapcore.AddSync(os.Stdout), lc.fileSyncer())
	default:
		return nil, fmt.Errorf("unsupported log output: %s", lc.config.Output)
	}

	return zapcore.NewMultiWriteSyncer(syncers...), nil
}

func (lc *ZapLoggerComponent) fileSyncer() zapcore.WriteSyncer {
	_ = os.MkdirAll(filepath.Dir(lc.config.FilePath), 0o755)
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   lc.config.FilePath,
		MaxSize:    lc.config.MaxSizeMB,
		MaxBackups: lc.config.MaxBackups,
		MaxAge:     lc.config.MaxAgeDays,
		Compress:   lc.config.Compress,
	})
}

func (lc *ZapLoggerComponent) parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// contextFields 从 context 提取 trace_id 等字段
func contextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	if v := ctx.Value(consts.KEY_TraceID); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return []zap.Field{zap.String(TraceIDKey, s)}
		}
	}
	return nil
}

// WithTraceID 返回携带新 trace_id 的 context
func WithTraceID(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, consts.KEY_TraceID, uuid.NewString()) //nolint:staticcheck
}

func (lc *ZapLoggerComponent) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	lc.zapLogger.Debug(msg, append(contextFields(ctx), fields...)...)
}

func (lc *ZapLoggerComponent) Info(ctx context.Context, msg string, fields ...zap.Field) {
	lc.zapLogger.Info(msg, append(contextFields(ctx), fields...)...)
}

func (lc *ZapLoggerComponent) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	lc.zapLogger.Warn(msg, append(contextFields(ctx), fields...)...)
}

func (lc *ZapLoggerComponent) Error(ctx context.Context, msg string, fields ...zap.Field) {
	lc.zapLogger.Error(msg, append(contextFields(ctx), fields...)...)
}

func (lc *ZapLoggerComponent) Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	lc.zapLogger.Fatal(msg, append(contextFields(ctx), fields...)...)
}

func (lc *ZapLoggerComponent) With(fields ...zap.Field) Logger {
	clone := *lc
	clone.zapLogger = lc.zapLogger.With(fields...)
	clone.sugar = clone.zapLogger.Sugar()
	return &clone
}

func (lc *ZapLoggerComponent) Sync() error {
	if lc.zapLogger == nil {
		return nil
	}
	return lc.zapLogger.Sync()
}
