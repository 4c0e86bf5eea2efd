// Copyright 2025 Edgaze
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

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

// Logger writes structured JSON log lines with per-user attribution. The
// zero value is not usable; construct with New.
type Logger struct {
	Component string

	mu  sync.Mutex
	out io.Writer
}

// LogEntry is one structured log line. UserID is empty for entries not tied
// to a request (startup, shutdown, background work).
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	Component string                 `json:"component"`
	UserID    string                 `json:"user_id,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// New creates a Logger for the named component, writing to stdout where the
// container runtime captures it.
func New(component string) *Logger {
	return &Logger{Component: component, out: os.Stdout}
}

// NewWithWriter creates a Logger with an explicit output, for tests.
func NewWithWriter(component string, out io.Writer) *Logger {
	return &Logger{Component: component, out: out}
}

// Log writes one structured entry.
func (l *Logger) Log(level LogLevel, userID, message string, fields map[string]interface{}) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Component: l.Component,
		UserID:    userID,
		Message:   message,
		Fields:    fields,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		l.mu.Lock()
		fmt.Fprintf(l.out, "ERROR: failed to marshal log entry: %v\n", err)
		l.mu.Unlock()
		return
	}

	l.mu.Lock()
	l.out.Write(append(jsonBytes, '\n'))
	l.mu.Unlock()
}

// Info logs an informational message
func (l *Logger) Info(userID, message string, fields map[string]interface{}) {
	l.Log(INFO, userID, message, fields)
}

// Error logs an error message
func (l *Logger) Error(userID, message string, fields map[string]interface{}) {
	l.Log(ERROR, userID, message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(userID, message string, fields map[string]interface{}) {
	l.Log(WARN, userID, message, fields)
}

// Debug logs a debug message
func (l *Logger) Debug(userID, message string, fields map[string]interface{}) {
	l.Log(DEBUG, userID, message, fields)
}

// ErrorWithCode logs an error with the HTTP status the handler responded
// with, folding the error text into the fields.
func (l *Logger) ErrorWithCode(userID, message string, statusCode int, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["status_code"] = statusCode
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Error(userID, message, fields)
}
