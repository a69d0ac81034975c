package logger

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

// textFormatter renders "[time] [LEVEL] [prefix]: message key=value".
type textFormatter struct {
	colors bool
}

func (f *textFormatter) Format(e *logrus.Entry) ([]byte, error) {
	level := entryLevel(e)
	var b bytes.Buffer

	levelText := level.String()
	if f.colors {
		levelText = level.Color() + levelText + colorReset
	}
	fmt.Fprintf(&b, "[%s] [%s] [%s]: %s%s\n",
		e.Time.Format(timestampFormat),
		levelText,
		entryPrefix(e),
		e.Message,
		formatFields(e.Data),
	)
	return b.Bytes(), nil
}

func formatFields(data logrus.Fields) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if k == levelKey || k == prefixKey {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, data[k])
	}
	return b.String()
}

// fileHook appends uncolored lines to the combined log, and errors to the error log.
type fileHook struct {
	mu       sync.Mutex
	combined *os.File
	errors   *os.File
	plain    textFormatter
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(e *logrus.Entry) error {
	line, err := h.plain.Format(e)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.combined != nil {
		h.combined.Write(line)
	}
	if entryLevel(e) <= LevelError && h.errors != nil {
		h.errors.Write(line)
	}
	return nil
}
