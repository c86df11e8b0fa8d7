package mypubsub

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
)

const pushAckDeadline = 20 * time.Second

type gcloudPubSub struct {
	sync.Mutex
	client *pubsub.Client
	topics map[string]*pubsub.Topic
}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		New = newGcloudPubSub
	}
}

func newGcloudPubSub(c context.Context) (PubSub, func(), error) {
	client, err := pubsub.NewClient(c, os.Getenv("GOOGLE_CLOUD_PROJECT"))
	if err != nil {
		return nil, func() {}, fmt.Errorf("error creating pubsub client: %s", err)
	}
	return &gcloudPubSub{
			client: client,
			topics: map[string]*pubsub.Topic{},
		}, func() {
			client.Close()
		}, nil
}

// Subscribe creates or repoints the push subscription that belongs to this topic and endpoint
func (ps *gcloudPubSub) Subscribe(c context.Context, topicName string, urlToPostTo string) error {
	err := ps.CreateTopic(c, topicName)
	if err != nil {
		return err
	}

	name, err := subscriptionName(topicName, urlToPostTo)
	if err != nil {
		return err
	}

	subscription := ps.client.Subscription(name)
	exists, err := subscription.Exists(c)
	if err != nil {
		return fmt.Errorf("error checking subscription %s: %s", name, err)
	}
	if exists {
		cfg, err := subscription.Config(c)
		if err != nil {
			return fmt.Errorf("error reading subscription %s: %s", name, err)
		}
		if cfg.PushConfig.Endpoint == urlToPostTo {
			return nil
		}
		_, err = subscription.Update(c, pubsub.SubscriptionConfigToUpdate{
			PushConfig: &pubsub.PushConfig{Endpoint: urlToPostTo},
		})
		if err != nil {
			return fmt.Errorf("error repointing subscription %s to %s: %s", name, urlToPostTo, err)
		}
		log.Printf("Repointed subscription %s to %s", name, urlToPostTo)
		return nil
	}

	_, err = ps.client.CreateSubscription(c, name, pubsub.SubscriptionConfig{
		Topic:       ps.topic(topicName),
		AckDeadline: pushAckDeadline,
		PushConfig: pubsub.PushConfig{
			Endpoint: urlToPostTo,
		},
	})
	if err != nil {
		return fmt.Errorf("error subscribing %s to topic %s: %s", urlToPostTo, topicName, err)
	}

	log.Printf("Subscribed %s to topic %s", urlToPostTo, topicName)

	return nil
}

func (ps *gcloudPubSub) CreateTopic(c context.Context, topicName string) error {
	exists, err := ps.topic(topicName).Exists(c)
	if err != nil {
		return fmt.Errorf("error checking topic %s: %s", topicName, err)
	}
	if exists {
		return nil
	}

	_, err = ps.client.CreateTopic(c, topicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", topicName, err)
	}

	log.Printf("Created topic %s", topicName)

	return nil
}

func (ps *gcloudPubSub) Publish(c context.Context, topicName string, data string) error {
	_, err := ps.topic(topicName).Publish(c, &pubsub.Message{Data: []byte(data)}).Get(c)
	if err != nil {
		return fmt.Errorf("error publishing on topic %s: %s", topicName, err)
	}

	return nil
}

func (ps *gcloudPubSub) topic(topicName string) *pubsub.Topic {
	ps.Lock()
	defer ps.Unlock()

	topic, found := ps.topics[topicName]
	if !found {
		topic = ps.client.Topic(topicName)
		ps.topics[topicName] = topic
	}
	return topic
}

var nonNameChars = regexp.MustCompile(`[^a-zA-Z0-9-]+`)

// subscriptionName gives every (topic, endpoint-path) pair its own subscription,
// so more than one service can listen to the same topic
func subscriptionName(topicName string, urlToPostTo string) (string, error) {
	u, err := url.Parse(urlToPostTo)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid push endpoint %q", urlToPostTo)
	}
	path := strings.Trim(nonNameChars.ReplaceAllString(u.Path, "-"), "-")
	if path == "" {
		return topicName + "-push", nil
	}
	return topicName + "-" + path, nil
}
