package mylog

import (
	"context"
	"fmt"
	"log"
	"os"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newStandardLogger
	}
}

type standardLogger struct {
	componentName string
}

func newStandardLogger(componentName string) Logger {
	return standardLogger{
		componentName: componentName,
	}
}

func (l standardLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	log.Print(l.format(labelOf(ctx, traceLabel), severity, fmt.Sprintf(format, a...)))
}

func (l standardLogger) format(label string, severity Severity, msg string) string {
	if label == "" {
		return fmt.Sprintf("%s - %s - %s", l.componentName, severity, msg)
	}
	return fmt.Sprintf("%s - %s - %s - %s", l.componentName, label, severity, msg)
}
