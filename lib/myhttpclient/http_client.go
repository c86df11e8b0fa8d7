package myhttpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	httpClientTimeout = 5 * time.Second
	debug             = false
)

type jsonHTTPClient struct {
	username string
	password string
	client   *http.Client
}

func newJSONHTTPClient(username string, password string) *jsonHTTPClient {
	return &jsonHTTPClient{
		username: username,
		password: password,
		client: &http.Client{
			Timeout:   httpClientTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c jsonHTTPClient) Send(ctx context.Context, method string, url string, body []byte) (int, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error creating http request for %s %s: %s", method, url, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.username != "" || c.password != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}

	if debug {
		reqDump, err := httputil.DumpRequestOut(httpReq, true)
		if err == nil {
			fmt.Printf("HTTP-req:\n%s", string(reqDump))
		}
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error sending %s %s: %s", method, url, err)
	}
	defer httpResp.Body.Close()

	log.Printf("HTTP call: %s %s -> %d", method, url, httpResp.StatusCode)

	if debug {
		respDump, err := httputil.DumpResponse(httpResp, true)
		if err == nil {
			fmt.Printf("HTTP-resp:\n%s", string(respDump))
		}
	}

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error reading response %s %s: %s", method, url, err)
	}

	return httpResp.StatusCode, respPayload, nil
}
