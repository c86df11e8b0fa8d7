package myhttp

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/mylog"
)

type ResponseWriter interface {
	WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error)
	Write(c context.Context, w http.ResponseWriter, httpStatus int, resp any)
}

type errorResponse struct {
	ErrorCode int
	Message   string
	Details   []string `json:",omitempty"`
}

type SuccessResponse struct {
	Message string
}

// messageLister is implemented by errors that carry the individual messages of a remote party
type messageLister interface {
	MessageList() []string
}

func NewWriter(logger mylog.Logger) ResponseWriter {
	return &responseWriter{
		logger: logger,
	}
}

type responseWriter struct {
	logger mylog.Logger
}

func (rw responseWriter) WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error) {
	httpStatus := myerrors.GetHTTPStatus(err)
	rw.logger.Log(c, "", mylog.SeverityWarn, "Error response: http-status:%d, error-code:%d, error-msg:%s", httpStatus, errorCode, err)

	resp := errorResponse{
		ErrorCode: errorCode,
		Message:   err.Error(),
	}
	var lister messageLister
	if errors.As(err, &lister) {
		resp.Details = lister.MessageList()
	}
	rw.write(w, httpStatus, resp)
}

func (rw responseWriter) Write(c context.Context, w http.ResponseWriter, httpStatus int, resp any) {
	rw.logger.Log(c, "", mylog.SeverityInfo, "Success response: http-status:%d", httpStatus)
	rw.write(w, httpStatus, resp)
}

func (rw responseWriter) write(w http.ResponseWriter, httpStatus int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "\t")
	err := encoder.Encode(resp)
	if err != nil {
		log.Printf("Error writing response: %s", err)
		return
	}
}
