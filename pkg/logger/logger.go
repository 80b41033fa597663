package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// Level controls log verbosity.
type Level int32

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var currentLevel atomic.Int32

func init() {
	currentLevel.Store(int32(INFO))
}

// SetLevel sets the global minimum level.
func SetLevel(l Level) {
	currentLevel.Store(int32(l))
}

// ParseLevel maps a config string to a level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "?"
	}
}

// DebugCF logs a component-scoped message with structured fields.
func DebugCF(component, msg string, fields map[string]interface{}) {
	logCF(DEBUG, component, msg, fields)
}

func InfoCF(component, msg string, fields map[string]interface{}) {
	logCF(INFO, component, msg, fields)
}

func WarnCF(component, msg string, fields map[string]interface{}) {
	logCF(WARN, component, msg, fields)
}

func ErrorCF(component, msg string, fields map[string]interface{}) {
	logCF(ERROR, component, msg, fields)
}

func logCF(l Level, component, msg string, fields map[string]interface{}) {
	if int32(l) < currentLevel.Load() {
		return
	}
	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(" [")
	b.WriteString(l.String())
	b.WriteString("] [")
	b.WriteString(component)
	b.WriteString("] ")
	b.WriteString(msg)
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}
	fmt.Fprintln(os.Stderr, b.String())
}
