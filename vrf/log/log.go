package log

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var customLog logger

type logger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
	dir   string
}

func init() {
	InitLogger()
}

// InitLogger writes info and above to stderr. Debug output is off until SetDebug.
func InitLogger() {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core := zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stderr), level)

	customLog = logger{
		sugar: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar(),
		level: level,
		dir:   "",
	}
}

// ResetLogger keeps the console output and additionally writes every entry
// to a rotating file under <home>/logs.
func ResetLogger(home string) {
	if home == "" {
		osHome, err := os.UserHomeDir()
		if err != nil {
			Fatalf("Failed to get user home directory: %v", err)
		}
		customLog.dir = filepath.Join(osHome, ".vrfctl", "logs")
	} else {
		customLog.dir = filepath.Join(home, "logs")
	}

	if err := os.MkdirAll(customLog.dir, 0755); err != nil {
		Fatalf("Failed to create log directory %s: %v", customLog.dir, err)
	}

	name := fmt.Sprintf("%s.log", filepath.Base(os.Args[0]))
	path := filepath.Join(customLog.dir, name)
	rw := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    16, // megabytes
		MaxAge:     30, // days
		MaxBackups: 8,
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(rw),
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	)
	consoleCore := zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stderr), customLog.level)

	customLog.sugar = zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	Debugf("From now on, all logs will be written to %s", path)
}

func SetDebug(enabled bool) {
	if enabled {
		customLog.level.SetLevel(zapcore.DebugLevel)
		return
	}
	customLog.level.SetLevel(zapcore.InfoLevel)
}

func Dir() string {
	return customLog.dir
}

func Sync() {
	_ = customLog.sugar.Sync()
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func Debug(v ...any) {
	customLog.sugar.Debug(v...)
}

func Debugf(format string, v ...any) {
	customLog.sugar.Debugf(format, v...)
}

func Info(v ...any) {
	customLog.sugar.Info(v...)
}

func Infof(format string, v ...any) {
	customLog.sugar.Infof(format, v...)
}

func Error(v ...any) {
	customLog.sugar.Error(v...)
}

func Errorf(format string, v ...any) {
	customLog.sugar.Errorf(format, v...)
}

func Fatal(v ...any) {
	customLog.sugar.Fatal(v...)
}

func Fatalf(format string, v ...any) {
	customLog.sugar.Fatalf(format, v...)
}
