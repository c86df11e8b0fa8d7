package myqueue

import (
	"context"
)

type Task struct {
	UID            string
	WebhookURLPath string
	Payload        []byte
}

// New is bound to a fake or a gcloud implementation depending on the environment
var New func(c context.Context) (TaskQueuer, func(), error)

//go:generate mockgen -source=api.go -package myqueue -destination queuer_mock.go TaskQueuer
type TaskQueuer interface {
	Enqueue(c context.Context, task Task) error
}
