// A simple logging module that mimics the behavior of Python's logging module.
//
// All it does basically is wrap Go's logger with nice multi-level logging calls, and
// allows you to set the logging level of your app in runtime.
//
// Logging is done just like calling fmt.Sprintf:
// 		logging.Info("This object is %s and that is %s", obj, that)
//
// example output:
//	[DEBUG 01:20:26.512 evaluator/evaluator.go:73] Resolving linkable-library dependency dbus
//	[DEBUG 01:20:26.514 evaluator/evaluator.go:160] Evaluated 3 dependencies into 5 environment variables
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	DEBUG    = 1
	INFO     = 2
	WARNING  = 4
	WARN     = 4
	ERROR    = 8
	NOTICE   = 16 //notice is like info but for really important stuff ;)
	CRITICAL = 32
	QUIET    = ERROR | NOTICE | CRITICAL               //setting for errors only
	NORMAL   = INFO | WARN | ERROR | NOTICE | CRITICAL // default setting - all besides debug
	ALL      = 255
	NOTHING  = 0
)

var levelsAscending = []int{DEBUG, INFO, WARNING, ERROR, NOTICE, CRITICAL}

var LevelsByName = map[string]int{
	"DEBUG":    DEBUG,
	"INFO":     INFO,
	"WARNING":  WARN,
	"WARN":     WARN,
	"ERROR":    ERROR,
	"NOTICE":   NOTICE,
	"CRITICAL": CRITICAL,
	"QUIET":    QUIET,
	"NORMAL":   NORMAL,
	"ALL":      ALL,
	"NOTHING":  NOTHING,
}

var (
	levelMu sync.RWMutex
	level   = NORMAL
)

// Set the logging level.
//
// Contrary to Python that specifies a minimal level, this logger is set with a bit mask
// of active levels.
//
// e.g. for INFO and ERROR use:
// 		SetLevel(logging.INFO | logging.ERROR)
//
// For everything but debug and info use:
// 		SetLevel(logging.ALL &^ (logging.INFO | logging.DEBUG))
//
func SetLevel(l int) {
	levelMu.Lock()
	defer levelMu.Unlock()
	level = l
}

// Level returns the active level bit mask
func Level() int {
	levelMu.RLock()
	defer levelMu.RUnlock()
	return level
}

func enabled(l int) bool {
	return Level()&l != 0
}

// Set a minimal level for loggin, setting all levels higher than this level as well.
//
// the severity order is DEBUG, INFO, WARNING, ERROR, NOTICE, CRITICAL
func SetMinimalLevel(l int) {
	newLevel := 0
	for _, level := range levelsAscending {
		if level >= l {
			newLevel |= level
		}
	}
	SetLevel(newLevel)
}

// Set minimal level by string, useful for config files and command line arguments. Case insensitive.
//
// Possible level names are DEBUG, INFO, WARNING, ERROR, NOTICE, CRITICAL, plus the masks QUIET, NORMAL, ALL and NOTHING
func SetMinimalLevelByName(l string) error {
	l = strings.ToUpper(strings.TrimSpace(l))
	level, found := LevelsByName[l]
	if !found {
		return fmt.Errorf("Invalid level %s", l)
	}

	for _, single := range levelsAscending {
		if single == level {
			SetMinimalLevel(level)
			return nil
		}
	}

	// Composite masks such as NORMAL are used as is
	SetLevel(level)
	return nil
}

//a pluggable logger interface
type LoggingHandler interface {
	SetFormatter(Formatter)
	Output() io.Writer
	Emit(ctx *MessageContext, message string, args ...interface{}) error
	Printf(msg string, args ...interface{})
	Close()
}

type writerHandler struct {
	mu        sync.Mutex
	formatter Formatter
	out       io.Writer
}

// NewWriterHandler returns a handler that writes formatted lines to w
func NewWriterHandler(w io.Writer) LoggingHandler {
	return &writerHandler{formatter: DefaultFormatter, out: w}
}

func (l *writerHandler) SetFormatter(f Formatter) {
	l.formatter = f
}

func (l *writerHandler) Output() io.Writer {
	return l.out
}

func (l *writerHandler) Emit(ctx *MessageContext, message string, args ...interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintln(l.out, l.formatter.Format(ctx, message, args...))
	return err
}

// Printf satifies a Logger interface allowing us to funnel our
// logging handlers to 3rd party libraries
func (l *writerHandler) Printf(msg string, args ...interface{}) {
	logMsg := fmt.Sprintf("Third party log message: %s", msg)
	l.Emit(getContext("DEBUG", 1), logMsg, args...)
}

func (l *writerHandler) Close() {}

var (
	handlerMu      sync.RWMutex
	currentHandler = NewWriterHandler(os.Stderr)
)

// Set the current handler of the library. We currently support one handler, but it might be nice to have more
func SetHandler(h LoggingHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	currentHandler = h
}

func CurrentHandler() LoggingHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return currentHandler
}

type MessageContext struct {
	Level     string
	Component string
	File      string
	Line      int
	TimeStamp time.Time
}

//get the stack (line + file) context to return the caller to the log. The component is the
//directory of the calling file, which is its package name throughout this module.
func getContext(level string, skipDepth int) *MessageContext {
	_, file, line, _ := runtime.Caller(skipDepth)

	return &MessageContext{
		Level:     level,
		Component: path.Base(path.Dir(file)),
		File:      path.Base(file),
		TimeStamp: time.Now(),
		Line:      line,
	}
}

// format the message
func writeMessage(level string, msg string, args ...interface{}) {
	ctx := getContext(level, 3)

	// We go over the args, and replace any function pointer with the signature
	// func() interface{} with the return value of executing it now.
	// This allows lazy evaluation of arguments which are return values
	for i, arg := range args {
		if f, ok := arg.(func() interface{}); ok {
			args[i] = f()
		}
	}

	if err := CurrentHandler().Emit(ctx, msg, args...); err != nil {
		printLogError(err, ctx, msg, args...)
	}
}

func printLogError(err error, ctx *MessageContext, msg string, args ...interface{}) {
	errMsg := err.Error()
	errw := err
	for {
		errw = errors.Unwrap(errw)
		if errw == nil {
			break
		}
		errMsg += ": " + errw.Error()
	}
	fmt.Fprintf(os.Stderr, "Error writing log message: %s\n", errMsg)
	fmt.Fprintln(os.Stderr, DefaultFormatter.Format(ctx, msg, args...))
}

// Output debug logging messages
func Debug(msg string, args ...interface{}) {
	if enabled(DEBUG) {
		writeMessage("DEBUG", msg, args...)
	}
}

//output INFO level messages
func Info(msg string, args ...interface{}) {
	if enabled(INFO) {
		writeMessage("INFO", msg, args...)
	}
}

// Output WARNING level messages
func Warning(msg string, args ...interface{}) {
	if enabled(WARN) {
		writeMessage("WARNING", msg, args...)
	}
}

// Output ERROR level messages
func Error(msg string, args ...interface{}) {
	if enabled(ERROR) {
		writeMessage("ERROR", msg, args...)
	}
}

// Output NOTICE level messages
func Notice(msg string, args ...interface{}) {
	if enabled(NOTICE) {
		writeMessage("NOTICE", msg, args...)
	}
}

// Output a CRITICAL level message
func Critical(msg string, args ...interface{}) {
	if enabled(CRITICAL) {
		writeMessage("CRITICAL", msg, args...)
	}
}

func Close() {
	CurrentHandler().Close()
}
