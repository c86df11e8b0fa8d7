package myqueue

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"os"
	"time"
)

// fakeTaskQueue delivers tasks to the local webserver, like cloud tasks does on app engine
type fakeTaskQueue struct {
	baseURL string
	delay   time.Duration
	client  *http.Client
}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newFakeQueue
	}
}

func newFakeQueue(c context.Context) (TaskQueuer, func(), error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return newFakeQueueFor("http://localhost:"+port, scheduleDelay), func() {}, nil
}

func newFakeQueueFor(baseURL string, delay time.Duration) *fakeTaskQueue {
	return &fakeTaskQueue{
		baseURL: baseURL,
		delay:   delay,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (q *fakeTaskQueue) Enqueue(c context.Context, task Task) error {
	log.Printf("Fake enqueue of task %s for %s", task.UID, task.WebhookURLPath)
	time.AfterFunc(q.delay, func() {
		q.deliver(task)
	})
	return nil
}

func (q *fakeTaskQueue) deliver(task Task) {
	req, err := http.NewRequest(http.MethodPut, q.baseURL+task.WebhookURLPath, bytes.NewReader(task.Payload))
	if err != nil {
		log.Printf("Error creating request for task %s: %s", task.UID, err)
		return
	}

	resp, err := q.client.Do(req)
	if err != nil {
		log.Printf("Error delivering task %s: %s", task.UID, err)
		return
	}
	defer resp.Body.Close()

	log.Printf("Fake delivered task %s to %s -> %d", task.UID, task.WebhookURLPath, resp.StatusCode)
}
