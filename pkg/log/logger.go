// Copyright The HybridIRQ Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"sync"

	"k8s.io/klog/v2"
)

// Level describes the severity of a log message.
type Level int

const (
	// LevelDebug is the severity for debug messages.
	LevelDebug Level = iota
	// LevelInfo is the severity for informational messages.
	LevelInfo
	// LevelWarn is the severity for warnings.
	LevelWarn
	// LevelError is the severity for errors.
	LevelError
)

// DefaultLevel is the default logging severity level.
const DefaultLevel = LevelInfo

// Logger is the interface for producing log messages for a source.
type Logger interface {
	// Debug formats and emits a debug message.
	Debug(format string, args ...interface{})
	// Info formats and emits an informational message.
	Info(format string, args ...interface{})
	// Warn formats and emits a warning message.
	Warn(format string, args ...interface{})
	// Error formats and emits an error message.
	Error(format string, args ...interface{})

	// Debugf is an alias for Debug.
	Debugf(format string, args ...interface{})
	// Infof is an alias for Info.
	Infof(format string, args ...interface{})
	// Warnf is an alias for Warn.
	Warnf(format string, args ...interface{})
	// Errorf is an alias for Error.
	Errorf(format string, args ...interface{})

	// DebugEnabled checks if debug messages are enabled for the logger.
	DebugEnabled() bool
	// Source returns the source name of the logger.
	Source() string
}

// logger implements Logger for a single source.
type logger struct {
	source string
}

// logging is our set of created loggers and their debug settings.
type logging struct {
	sync.RWMutex
	level   Level
	loggers map[string]logger
	debug   srcmap
}

var log = &logging{
	level:   DefaultLevel,
	loggers: make(map[string]logger),
	debug:   make(srcmap),
}

// Get returns the logger for the given source, creating it if necessary.
func Get(source string) Logger {
	log.Lock()
	defer log.Unlock()
	return log.get(source)
}

// NewLogger is an alias for Get.
func NewLogger(source string) Logger {
	return Get(source)
}

// Default returns the default logger.
func Default() Logger {
	return Get("default")
}

// SetLevel sets the logging severity level.
func SetLevel(level Level) {
	log.Lock()
	defer log.Unlock()
	log.level = level
}

// EnableDebug enables debug messages for the given source. It returns the
// previous debugging state of the source.
func EnableDebug(source string) bool {
	return setDebug(source, true)
}

// DisableDebug disables debug messages for the given source. It returns the
// previous debugging state of the source.
func DisableDebug(source string) bool {
	return setDebug(source, false)
}

// DebugEnabled returns the current debugging state of the given source.
func DebugEnabled(source string) bool {
	log.RLock()
	defer log.RUnlock()
	return log.debugEnabled(source)
}

func setDebug(source string, enabled bool) bool {
	log.Lock()
	defer log.Unlock()

	old := log.debugEnabled(source)
	log.debug[source] = enabled
	return old
}

func (l *logging) get(source string) logger {
	if lg, ok := l.loggers[source]; ok {
		return lg
	}
	lg := logger{source: source}
	l.loggers[source] = lg
	return lg
}

func (l *logging) debugEnabled(source string) bool {
	if enabled, ok := l.debug[source]; ok {
		return enabled
	}
	if enabled, ok := l.debug["*"]; ok {
		return enabled
	}
	return l.level <= LevelDebug
}

func (l logger) msg(format string, args ...interface{}) string {
	return "[" + l.source + "] " + fmt.Sprintf(format, args...)
}

func (l logger) Debug(format string, args ...interface{}) {
	if !l.DebugEnabled() {
		return
	}
	klog.InfoDepth(1, l.msg("D: "+format, args...))
}

func (l logger) Info(format string, args ...interface{}) {
	log.RLock()
	defer log.RUnlock()
	if log.level > LevelInfo {
		return
	}
	klog.InfoDepth(1, l.msg(format, args...))
}

func (l logger) Warn(format string, args ...interface{}) {
	log.RLock()
	defer log.RUnlock()
	if log.level > LevelWarn {
		return
	}
	klog.WarningDepth(1, l.msg(format, args...))
}

func (l logger) Error(format string, args ...interface{}) {
	klog.ErrorDepth(1, l.msg(format, args...))
}

func (l logger) Debugf(format string, args ...interface{}) { l.Debug(format, args...) }
func (l logger) Infof(format string, args ...interface{})  { l.Info(format, args...) }
func (l logger) Warnf(format string, args ...interface{})  { l.Warn(format, args...) }
func (l logger) Errorf(format string, args ...interface{}) { l.Error(format, args...) }

func (l logger) DebugEnabled() bool {
	log.RLock()
	defer log.RUnlock()
	return log.debugEnabled(l.source)
}

func (l logger) Source() string {
	return l.source
}

// loggerError returns a package-specific formatted error.
func loggerError(format string, args ...interface{}) error {
	return fmt.Errorf("log: "+format, args...)
}

// Flush flushes any pending log I/O.
func Flush() {
	klog.Flush()
}
