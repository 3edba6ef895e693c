// Package common holds the ambient, non-domain-specific stack used by the
// demonstration CLI: logging and configuration loading. The decoder library
// (internal/raw) does not import it.
package common

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = log.New(os.Stderr, "[rawdump] ", log.LstdFlags|log.Lmicroseconds)

// Logf writes a formatted line to the package logger.
func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

// Fatalf writes a formatted line to the package logger and exits.
func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// LogRotation configures rotated file logging via lumberjack, mirroring
// ch10gate's cmd/ch10d log configuration.
type LogRotation struct {
	Directory  string
	FileName   string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

// ConfigureRotation points the package logger at a rotating file sink in
// addition to stderr. Returns the io.Closer the caller should close on
// shutdown.
func ConfigureRotation(r LogRotation) io.Closer {
	if r.Directory == "" {
		return nopCloser{}
	}
	name := r.FileName
	if name == "" {
		name = "rawdump.log"
	}
	lj := &lumberjack.Logger{
		Filename:   r.Directory + string(os.PathSeparator) + name,
		MaxSize:    r.MaxSizeMB,
		MaxAge:     r.MaxAgeDays,
		MaxBackups: r.MaxBackups,
		Compress:   r.Compress,
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, lj))
	return lj
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
