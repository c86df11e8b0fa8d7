package mylog

import (
	"context"

	"github.com/MarcGrol/klarnacheckout/lib/mycontext"
)

type Severity string

const (
	SeverityDebug Severity = "DEBUG"
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// New is bound to a standard or a gcloud logger depending on the environment
var New func(name string) Logger

//go:generate mockgen -source=api.go -package mylog -destination logger_mock.go Logger
type Logger interface {
	Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any)
}

// labelOf falls back to the checkout session the context was labeled with
func labelOf(ctx context.Context, traceLabel string) string {
	if traceLabel != "" {
		return traceLabel
	}
	return mycontext.SessionUIDFromContext(ctx)
}
