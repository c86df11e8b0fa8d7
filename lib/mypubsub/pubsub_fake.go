package mypubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/MarcGrol/klarnacheckout/lib/myevents"
)

// fakePubSub pushes published messages straight to the urls that subscribed to the topic
type fakePubSub struct {
	sync.Mutex
	subscriptions map[string][]string
	client        *http.Client
}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newFakePubSub
	}
}

func newFakePubSub(c context.Context) (PubSub, func(), error) {
	return newFake(), func() {}, nil
}

func newFake() *fakePubSub {
	return &fakePubSub{
		subscriptions: map[string][]string{},
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (ps *fakePubSub) Subscribe(c context.Context, topic string, urlToPostTo string) error {
	ps.Lock()
	defer ps.Unlock()

	for _, existing := range ps.subscriptions[topic] {
		if existing == urlToPostTo {
			return nil
		}
	}
	ps.subscriptions[topic] = append(ps.subscriptions[topic], urlToPostTo)

	return nil
}

func (ps *fakePubSub) CreateTopic(c context.Context, topic string) error {
	return nil
}

// Publish pushes in the background and never fails on a subscriber: redelivery is not simulated
func (ps *fakePubSub) Publish(c context.Context, topic string, data string) error {
	ps.Lock()
	urls := append([]string{}, ps.subscriptions[topic]...)
	ps.Unlock()

	log.Printf("Fake publish on topic %s to %d subscribers: %s", topic, len(urls), data)

	body, err := json.Marshal(myevents.PushRequest{
		Message: myevents.PushMessage{
			Data: []byte(data),
		},
		Subscription: topic,
	})
	if err != nil {
		return err
	}

	for _, url := range urls {
		go ps.push(url, body)
	}

	return nil
}

func (ps *fakePubSub) push(url string, body []byte) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("Error creating push request to %s: %s", url, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ps.client.Do(req)
	if err != nil {
		log.Printf("Error pushing to %s: %s", url, err)
		return
	}
	defer resp.Body.Close()

	log.Printf("Fake pushed to %s -> %d", url, resp.StatusCode)
}
