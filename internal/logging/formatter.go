package logging

import (
	"fmt"
)

// Formatter composes a log line from its context and the message arguments
type Formatter interface {
	Format(ctx *MessageContext, message string, args ...interface{}) string
}

// SimpleFormatter renders FormatString with indexed verbs:
// %[1]s level, %[2]s time, %[3]s component, %[4]s file, %[5]d line, %[6]s message.
type SimpleFormatter struct {
	FormatString string
}

func (f *SimpleFormatter) Format(ctx *MessageContext, message string, args ...interface{}) string {
	return fmt.Sprintf(f.FormatString,
		ctx.Level,
		ctx.TimeStamp.Format("15:04:05.000"),
		ctx.Component,
		ctx.File,
		ctx.Line,
		fmt.Sprintf(message, args...),
	)
}

// DefaultFormatter prefixes each line with the component the message was logged from
var DefaultFormatter Formatter = &SimpleFormatter{
	FormatString: "[%[1]s %[2]s %[3]s/%[4]s:%[5]d] %[6]s",
}
