package internal

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LevelSet map[zapcore.Level]bool

func (ls LevelSet) Enabled(l zapcore.Level) bool {
	return ls[l]
}

var logLevels = LevelSet{zapcore.InfoLevel: true}

// ConfigureLogging installs the global console logger. Debug output is only
// shown when debug is set.
func ConfigureLogging(debug bool) {
	if debug {
		SetAllowedLogLevels(zapcore.InfoLevel, zapcore.DebugLevel)
		return
	}
	SetAllowedLogLevels(zapcore.InfoLevel)
}

func SetAllowedLogLevels(levels ...zapcore.Level) {
	newLevels := make(LevelSet)
	for _, lvl := range levels {
		newLevels[lvl] = true
	}
	logLevels = newLevels
	InitLogger()
}

func InitLogger() {
	logger := NewConsoleLogger(zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr), logLevels)
	zap.ReplaceGlobals(logger)
}

// NewConsoleLogger writes bare messages: enabled levels below warn go to
// stdout, warn and above always go to stderr.
func NewConsoleLogger(stdout, stderr zapcore.WriteSyncer, levels LevelSet) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "",
		LevelKey:      "",
		CallerKey:     "",
		FunctionKey:   "",
		StacktraceKey: "",
		MessageKey:    "msg",
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	stdoutCore := zapcore.NewCore(consoleEncoder, stdout, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l < zapcore.WarnLevel && levels.Enabled(l)
	}))

	stderrCore := zapcore.NewCore(consoleEncoder, stderr, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.WarnLevel
	}))

	return zap.New(zapcore.NewTee(stdoutCore, stderrCore))
}
