package config

import (
	"sync"

	"go.uber.org/zap/zapcore"

	"go.viam.com/twoview/logging"
)

var globalLogger struct {
	// set once at startup
	logger           logging.Logger
	cmdLineDebugFlag bool

	mu            sync.Mutex
	fileLogLevel  logging.Level
	fileLevelSeen bool
}

// InitLoggingSettings initializes the global logging settings.
func InitLoggingSettings(logger logging.Logger, cmdLineDebugFlag bool) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	globalLogger.logger = logger
	globalLogger.cmdLineDebugFlag = cmdLineDebugFlag
	globalLogger.fileLevelSeen = false
	refreshLogLevelInLock()
}

// UpdateFileConfigLevel is used to update the log level whenever a config file is read.
func UpdateFileConfigLevel(cfg *Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	globalLogger.fileLogLevel = level
	globalLogger.fileLevelSeen = true
	refreshLogLevelInLock()
	return nil
}

func refreshLogLevelInLock() {
	newLevel := logging.INFO
	switch {
	case globalLogger.cmdLineDebugFlag:
		newLevel = logging.DEBUG
	case globalLogger.fileLevelSeen:
		newLevel = globalLogger.fileLogLevel
	}

	if globalLogger.logger != nil {
		globalLogger.logger.SetLevel(newLevel)
	}
	zapLevel := zapcore.InfoLevel
	if newLevel == logging.DEBUG {
		zapLevel = zapcore.DebugLevel
	}
	if logging.GlobalLogLevel.Level() == zapLevel {
		return
	}
	logging.GlobalLogLevel.SetLevel(zapLevel)
}
