package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

var levelRank = map[LogLevel]int{
	DEBUG: 0,
	INFO:  1,
	WARN:  2,
	ERROR: 3,
}

// Logger is a leveled structured logger. Entries are a short event name plus
// alternating key/value pairs, emitted as text or JSON.
type Logger struct {
	mu         *sync.Mutex
	out        io.Writer
	level      LogLevel
	jsonFormat bool
	context    map[string]string
}

var (
	global   *Logger
	globalMu sync.Mutex
)

// Init configures the process-wide logger. A nil out writes to stdout.
func Init(level LogLevel, jsonFormat bool, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	if _, ok := levelRank[level]; !ok {
		level = INFO
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	global = &Logger{
		mu:         &sync.Mutex{},
		out:        out,
		level:      level,
		jsonFormat: jsonFormat,
		context:    map[string]string{},
	}
}

// GetLogger returns the process-wide logger, initializing a default one if
// Init has not been called.
func GetLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = &Logger{
			mu:         &sync.Mutex{},
			out:        os.Stdout,
			level:      INFO,
			jsonFormat: false,
			context:    map[string]string{},
		}
	}
	return global
}

// WithContext returns a logger that attaches the given key/value to every
// entry it writes.
func (l *Logger) WithContext(key, value string) *Logger {
	ctx := make(map[string]string, len(l.context)+1)
	for k, v := range l.context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Logger{
		mu:         l.mu,
		out:        l.out,
		level:      l.level,
		jsonFormat: l.jsonFormat,
		context:    ctx,
	}
}

func (l *Logger) Debug(event string, kv ...interface{}) { l.log(DEBUG, event, kv...) }
func (l *Logger) Info(event string, kv ...interface{})  { l.log(INFO, event, kv...) }
func (l *Logger) Warn(event string, kv ...interface{})  { l.log(WARN, event, kv...) }
func (l *Logger) Error(event string, kv ...interface{}) { l.log(ERROR, event, kv...) }

func (l *Logger) log(level LogLevel, event string, kv ...interface{}) {
	if levelRank[level] < levelRank[l.level] {
		return
	}

	fields := map[string]string{}
	for k, v := range l.context {
		fields[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		fields[key] = fmt.Sprintf("%v", kv[i+1])
	}

	ts := time.Now().UTC().Format(time.RFC3339)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonFormat {
		entry := map[string]string{
			"time":  ts,
			"level": string(level),
			"event": event,
		}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return
		}
		fmt.Fprintln(l.out, string(data))
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", ts, level, event)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, fields[k])
	}
	fmt.Fprintln(l.out, b.String())
}
