package myhttpclient

import (
	"context"
)

//go:generate mockgen -source=api.go -package myhttpclient -destination http_sender_mock.go HTTPSender
type HTTPSender interface {
	Send(c context.Context, method string, url string, body []byte) (int, []byte, error)
}

// SenderFactory creates a sender that authenticates with the given basic-auth credentials
type SenderFactory func(username string, password string) HTTPSender

func New() HTTPSender {
	return newJSONHTTPClient("", "")
}

func NewWithBasicAuth(username string, password string) HTTPSender {
	return newJSONHTTPClient(username, password)
}
