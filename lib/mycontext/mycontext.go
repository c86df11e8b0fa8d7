package mycontext

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// CtxTraceContext is a context key for the cloud trace of the request (used by mylog)
type CtxTraceContext struct{}

type ctxSessionKey struct{}

func ContextFromHTTPRequest(r *http.Request) context.Context {
	return context.WithValue(r.Context(), CtxTraceContext{}, traceFromHeader(r.Header.Get("X-Cloud-Trace-Context")))
}

// traceFromHeader converts "TRACE_ID/SPAN_ID;o=TRACE_TRUE" into the trace name cloud logging correlates on
func traceFromHeader(header string) string {
	traceID, _, _ := strings.Cut(header, "/")
	if traceID == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/traces/%s", os.Getenv("GOOGLE_CLOUD_PROJECT"), traceID)
}

func TraceFromContext(c context.Context) string {
	trace, ok := c.Value(CtxTraceContext{}).(string)
	if !ok {
		return ""
	}
	return trace
}

// WithSessionUID labels everything that is logged within c with the checkout session
func WithSessionUID(c context.Context, sessionUID string) context.Context {
	return context.WithValue(c, ctxSessionKey{}, sessionUID)
}

func SessionUIDFromContext(c context.Context) string {
	sessionUID, ok := c.Value(ctxSessionKey{}).(string)
	if !ok {
		return ""
	}
	return sessionUID
}
