// Package logger provides the bot's leveled, prefixed logging.
// Entries go through logrus to the console, to log files and to Discord webhooks.
package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/PancyStudios/PancyWarnGo/pkg/webhook"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelCritical LogLevel = iota
	LevelError
	LevelWarn
	LevelSuccess
	LevelInfo
	LevelDebug
	LevelSystem
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelCritical:
		return "CRITICAL"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelSuccess:
		return "SUCCESS"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelSystem:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Color returns the ANSI color code for the log level
func (l LogLevel) Color() string {
	switch l {
	case LevelCritical:
		return "\033[1;31m" // Bold Red
	case LevelError:
		return "\033[31m"
	case LevelWarn:
		return "\033[33m"
	case LevelSuccess:
		return "\033[32m"
	case LevelInfo:
		return "\033[36m"
	case LevelDebug:
		return "\033[35m"
	case LevelSystem:
		return "\033[34m"
	default:
		return colorReset
	}
}

// DiscordColor returns the Discord embed color for the log level
func (l LogLevel) DiscordColor() int {
	switch l {
	case LevelCritical, LevelError:
		return 0xFF0000
	case LevelWarn:
		return 0xFFFF00
	case LevelSuccess:
		return 0x00FF00
	case LevelInfo:
		return 0x0000FF
	case LevelDebug:
		return 0x800080
	case LevelSystem:
		return 0x808080
	default:
		return 0xFFFFFF
	}
}

// logrusLevel maps our levels onto logrus. Critical stays at error level so
// logging never exits or panics.
func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LevelCritical, LevelError:
		return logrus.ErrorLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

const (
	colorReset = "\033[0m"

	levelKey  = "pancy_level"
	prefixKey = "pancy_prefix"
)

// Fields are structured key/values attached to an entry.
type Fields = logrus.Fields

// Logger is the main logging structure
type Logger struct {
	logrus    *logrus.Logger
	logFile   *os.File
	errorFile *os.File
}

var (
	logger *Logger
	once   sync.Once
)

// Init initializes the global logger instance
func Init(errorWebhook, logsWebhook string) *Logger {
	once.Do(func() {
		logger = NewLogger(errorWebhook, logsWebhook)
	})
	return logger
}

// Get returns the global logger instance
func Get() *Logger {
	once.Do(func() {
		logger = NewLogger("", "")
	})
	return logger
}

// NewLogger creates a Logger writing to stdout, logs/combined.log, logs/error.log
// and, when set, the two webhooks.
func NewLogger(errorWebhook, logsWebhook string) *Logger {
	l := &Logger{logrus: logrus.New()}

	l.logrus.SetOutput(os.Stdout)
	l.logrus.SetLevel(logrus.TraceLevel)
	l.logrus.SetFormatter(&textFormatter{colors: true})

	logsDir := filepath.Join(".", "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Printf("Error creating logs directory: %v\n", err)
	}

	var err error
	l.logFile, err = os.OpenFile(filepath.Join(logsDir, "combined.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error opening combined log file: %v\n", err)
	}
	l.errorFile, err = os.OpenFile(filepath.Join(logsDir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error opening error log file: %v\n", err)
	}

	l.logrus.AddHook(&fileHook{combined: l.logFile, errors: l.errorFile})
	if errorWebhook != "" || logsWebhook != "" {
		l.logrus.AddHook(&webhookHook{errorURL: errorWebhook, logsURL: logsWebhook})
	}

	return l
}

func (l *Logger) log(level LogLevel, message, prefix string, fields Fields) {
	data := make(logrus.Fields, len(fields)+2)
	for k, v := range fields {
		data[k] = v
	}
	data[levelKey] = level
	data[prefixKey] = prefix
	l.logrus.WithFields(data).Log(level.logrusLevel(), message)
}

// Close closes the log files
func (l *Logger) Close() {
	if l.logFile != nil {
		l.logFile.Close()
	}
	if l.errorFile != nil {
		l.errorFile.Close()
	}
}

// Critical logs a critical message
func (l *Logger) Critical(message string, prefix string) { l.log(LevelCritical, message, prefix, nil) }

// Error logs an error message
func (l *Logger) Error(message string, prefix string) { l.log(LevelError, message, prefix, nil) }

// Warn logs a warning message
func (l *Logger) Warn(message string, prefix string) { l.log(LevelWarn, message, prefix, nil) }

// Success logs a success message
func (l *Logger) Success(message string, prefix string) { l.log(LevelSuccess, message, prefix, nil) }

// Info logs an info message
func (l *Logger) Info(message string, prefix string) { l.log(LevelInfo, message, prefix, nil) }

// Debug logs a debug message
func (l *Logger) Debug(message string, prefix string) { l.log(LevelDebug, message, prefix, nil) }

// System logs a system message
func (l *Logger) System(message string, prefix string) { l.log(LevelSystem, message, prefix, nil) }

// WithFields returns an Entry that logs under prefix with fields attached.
func (l *Logger) WithFields(prefix string, fields Fields) *Entry {
	return &Entry{logger: l, prefix: prefix, fields: fields}
}

// Entry is a prefixed logger carrying structured fields.
type Entry struct {
	logger *Logger
	prefix string
	fields Fields
}

func (e *Entry) Critical(message string) { e.logger.log(LevelCritical, message, e.prefix, e.fields) }
func (e *Entry) Error(message string)    { e.logger.log(LevelError, message, e.prefix, e.fields) }
func (e *Entry) Warn(message string)     { e.logger.log(LevelWarn, message, e.prefix, e.fields) }
func (e *Entry) Success(message string)  { e.logger.log(LevelSuccess, message, e.prefix, e.fields) }
func (e *Entry) Info(message string)     { e.logger.log(LevelInfo, message, e.prefix, e.fields) }
func (e *Entry) Debug(message string)    { e.logger.log(LevelDebug, message, e.prefix, e.fields) }

// Package-level functions for convenience

// Critical logs a critical message using the global logger
func Critical(message string, prefix string) { Get().Critical(message, prefix) }

// Error logs an error message using the global logger
func Error(message string, prefix string) { Get().Error(message, prefix) }

// Warn logs a warning message using the global logger
func Warn(message string, prefix string) { Get().Warn(message, prefix) }

// Success logs a success message using the global logger
func Success(message string, prefix string) { Get().Success(message, prefix) }

// Info logs an info message using the global logger
func Info(message string, prefix string) { Get().Info(message, prefix) }

// Debug logs a debug message using the global logger
func Debug(message string, prefix string) { Get().Debug(message, prefix) }

// System logs a system message using the global logger
func System(message string, prefix string) { Get().System(message, prefix) }

// WithFields returns an Entry on the global logger.
func WithFields(prefix string, fields Fields) *Entry { return Get().WithFields(prefix, fields) }

func entryLevel(e *logrus.Entry) LogLevel {
	if lvl, ok := e.Data[levelKey].(LogLevel); ok {
		return lvl
	}
	switch e.Level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return LevelCritical
	case logrus.ErrorLevel:
		return LevelError
	case logrus.WarnLevel:
		return LevelWarn
	case logrus.DebugLevel, logrus.TraceLevel:
		return LevelDebug
	default:
		return LevelInfo
	}
}

func entryPrefix(e *logrus.Entry) string {
	if p, ok := e.Data[prefixKey].(string); ok && p != "" {
		return p
	}
	return "App"
}

// webhookHook forwards entries to Discord. Errors go to errorURL, the rest to logsURL.
type webhookHook struct {
	errorURL string
	logsURL  string
}

func (h *webhookHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *webhookHook) Fire(e *logrus.Entry) error {
	level := entryLevel(e)
	url := h.logsURL
	if level <= LevelError {
		url = h.errorURL
	}
	if url == "" {
		return nil
	}

	embed := webhook.Embed{
		Title:       fmt.Sprintf("[%s] %s", level, entryPrefix(e)),
		Description: fmt.Sprintf("```%s%s```", e.Message, formatFields(e.Data)),
		Color:       level.DiscordColor(),
		Footer:      &webhook.Footer{Text: "💫 Developed by PancyStudio | PancyWarn Go"},
	}
	go func() {
		_ = webhook.Post(context.Background(), url, embed)
	}()
	return nil
}
