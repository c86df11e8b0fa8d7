package myhttp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/mylog"
)

func TestResponseWriter(t *testing.T) {
	writer := NewWriter(mylog.New("myhttp"))

	t.Run("Write error", func(t *testing.T) {
		response := httptest.NewRecorder()
		writer.WriteError(context.TODO(), response, 3, myerrors.NewNotFoundError(fmt.Errorf("session 123 not found")))

		assert.Equal(t, http.StatusNotFound, response.Code)
		assert.Equal(t, "application/json", response.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"ErrorCode":3,"Message":"status: 404, err: session 123 not found"}`, response.Body.String())
	})

	t.Run("Write error with remote messages", func(t *testing.T) {
		response := httptest.NewRecorder()
		writer.WriteError(context.TODO(), response, 4, remoteError{messages: []string{"Bad value: order_lines", "Bad value: locale"}})

		assert.Equal(t, http.StatusBadGateway, response.Code)
		assert.JSONEq(t, `{"ErrorCode":4,"Message":"remote failed","Details":["Bad value: order_lines","Bad value: locale"]}`, response.Body.String())
	})

	t.Run("Write success", func(t *testing.T) {
		response := httptest.NewRecorder()
		writer.Write(context.TODO(), response, http.StatusOK, SuccessResponse{Message: "ok"})

		assert.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{"Message":"ok"}`, response.Body.String())
	})
}

func TestHostnameWithScheme(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/klarna/checkout/123", nil)
	assert.NoError(t, err)
	r.Host = "localhost:8080"
	assert.Equal(t, "http://localhost:8080", HostnameWithScheme(r))

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://localhost:8080", HostnameWithScheme(r))
}

type remoteError struct {
	messages []string
}

func (e remoteError) Error() string {
	return "remote failed"
}

func (e remoteError) MessageList() []string {
	return e.messages
}

func (e remoteError) GetHTTPErrorCode() int {
	return http.StatusBadGateway
}
