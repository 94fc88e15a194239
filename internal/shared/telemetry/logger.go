package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write("info", msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write("warn", msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write("error", msg, fields)
}

// Logger stamps every line with a fixed component field. Pass one to
// long-lived workers so their output is attributable.
type Logger struct {
	Component string
}

// NewLogger constructs a Logger for the named component.
func NewLogger(component string) *Logger {
	return &Logger{Component: component}
}

func (l *Logger) Info(msg string, fields map[string]any) {
	write("info", msg, l.withComponent(fields))
}

func (l *Logger) Warn(msg string, fields map[string]any) {
	write("warn", msg, l.withComponent(fields))
}

func (l *Logger) Error(msg string, fields map[string]any) {
	write("error", msg, l.withComponent(fields))
}

func (l *Logger) withComponent(fields map[string]any) map[string]any {
	if l == nil || l.Component == "" {
		return fields
	}
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["component"] = l.Component
	return out
}

func write(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+3)
	entry["ts"] = time.Now().UTC().Format(time.RFC3339)
	entry["level"] = level
	entry["msg"] = msg
	for k, v := range fields {
		entry[k] = v
	}
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stdout, `{"ts":"%s","level":"error","msg":"logger marshal failed","err":%q}`+"\n", time.Now().UTC().Format(time.RFC3339), err.Error())
		return
	}
	fmt.Fprintln(os.Stdout, string(data))
}
