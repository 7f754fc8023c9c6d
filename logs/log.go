package logs

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 定义日志级别常量（数值越大，级别越高）
const (
	LevelTrace   = iota // 0（最低，最详细）
	LevelDebug          // 1
	LevelVerbose        // 2
	LevelInfo           // 3
	LevelWarning        // 4
	LevelError          // 5（最高，最严重）
)

// 级别和 Logger 都可能在请求处理中被并发读取，统一走原子操作
var logLevel atomic.Int32

// 全局 Logger 实例
var logger atomic.Pointer[zap.SugaredLogger]

func init() {
	logLevel.Store(LevelInfo)
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	logger.Store(l.Sugar())
}

// Level 当前日志级别
func Level() int {
	return int(logLevel.Load())
}

func enabled(level int) bool {
	return int(logLevel.Load()) <= level
}

// Init 按级别名初始化全局 Logger
// development=true 时使用 console 编码，便于本地调试
func Init(level string, development bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	// 过滤由 logLevel 负责，zap 侧全部放开
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Store(l.Sugar())
	logLevel.Store(int32(lvl))
	return nil
}

// SetLevel 直接设置日志级别
func SetLevel(level int) {
	logLevel.Store(int32(level))
}

// ParseLevel 把 "trace" / "debug" / "verbose" / "info" / "warn" / "error" 转成级别常量
func ParseLevel(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "verbose":
		return LevelVerbose, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", s)
}

// L 返回底层 zap Logger（给需要结构化字段的调用方）
func L() *zap.Logger {
	return logger.Load().Desugar()
}

// Sync 刷新缓冲
func Sync() {
	_ = logger.Load().Sync()
}

// 包级别的日志方法
func Trace(format string, v ...interface{}) {
	if enabled(LevelTrace) {
		logger.Load().Debugf("[TRACE] "+format, v...)
	}
}

func Debug(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		logger.Load().Debugf(format, v...)
	}
}

func Verbose(format string, v ...interface{}) {
	if enabled(LevelVerbose) {
		logger.Load().Debugf("[VERBOSE] "+format, v...)
	}
}

func Info(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		logger.Load().Infof(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if enabled(LevelWarning) {
		logger.Load().Warnf(format, v...)
	}
}

func Error(format string, v ...interface{}) {
	if enabled(LevelError) {
		logger.Load().Errorf(format, v...)
	}
}
