// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"os"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ava-labs/countervm/config"
)

// NewLogger writes to stderr and, if a log file is configured, to a rotated
// JSON log file.
func NewLogger(c *config.Config) logging.Logger {
	level := c.GetLogLevel()
	cores := []logging.WrappedCore{
		logging.NewWrappedCore(level, os.Stderr, logging.Colors.ConsoleEncoder()),
	}
	if file := c.GetLogFile(); len(file) > 0 {
		rw := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    c.LogMaxSizeMB,  // megabytes
			MaxAge:     c.LogMaxAgeDays, // days
			MaxBackups: c.LogMaxBackups, // files
			Compress:   c.LogCompress,
		}
		cores = append(cores, logging.NewWrappedCore(level, rw, logging.JSON.FileEncoder()))
	}
	return logging.NewLogger("", cores...)
}
