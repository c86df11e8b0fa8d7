package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/klarnacheckout/lib/mycontext"
	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/myevents"
	"github.com/MarcGrol/klarnacheckout/lib/myhttp"
	"github.com/MarcGrol/klarnacheckout/lib/mylog"
	"github.com/MarcGrol/klarnacheckout/lib/mypubsub"
	"github.com/MarcGrol/klarnacheckout/lib/myqueue"
	"github.com/MarcGrol/klarnacheckout/lib/mystore"
	"github.com/MarcGrol/klarnacheckout/lib/mytime"
)

// transactionalPublisher stores events in an outbox and publishes them when triggered via the queue
type transactionalPublisher struct {
	logger    mylog.Logger
	outbox    mystore.Store[myevents.EventEnvelope]
	queue     myqueue.TaskQueuer
	enveloper enveloper
	pubsub    mypubsub.PubSub
}

func New(c context.Context, pubsub mypubsub.PubSub, queue myqueue.TaskQueuer, nower mytime.Nower) (*transactionalPublisher, func(), error) {
	store, storeCleanup, err := mystore.New[myevents.EventEnvelope](c)
	if err != nil {
		return nil, nil, err
	}

	return newTransactionalPublisher(store, pubsub, queue, nower), storeCleanup, nil
}

func newTransactionalPublisher(outbox mystore.Store[myevents.EventEnvelope], pubsub mypubsub.PubSub, queue myqueue.TaskQueuer, nower mytime.Nower) *transactionalPublisher {
	return &transactionalPublisher{
		logger:    mylog.New("publisher"),
		outbox:    outbox,
		queue:     queue,
		enveloper: newEnveloper(nower),
		pubsub:    pubsub,
	}
}

func (p *transactionalPublisher) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/pubsub/{topic}/{uid}", p.processTriggerPage()).Methods("PUT")
}

func (p *transactionalPublisher) CreateTopic(c context.Context, topicName string) error {
	return p.pubsub.CreateTopic(c, topicName)
}

func (p *transactionalPublisher) Publish(c context.Context, topic string, event myevents.Event) error {
	envelope, err := p.enveloper.do(topic, event)
	if err != nil {
		return fmt.Errorf("error creating envelope: %s", err)
	}

	err = p.outbox.Put(c, envelope.UID, envelope)
	if err != nil {
		return fmt.Errorf("error storing envelope: %s", err)
	}

	err = p.queue.Enqueue(c, myqueue.Task{
		UID:            envelope.UID,
		WebhookURLPath: fmt.Sprintf("/pubsub/%s/%s", envelope.Topic, envelope.UID),
	})
	if err != nil {
		return fmt.Errorf("error queueing publication-trigger %s: %s", envelope.UID, err)
	}

	p.logger.Log(c, envelope.AggregateUID, mylog.SeverityInfo, "Enqueued event %s", envelope)

	return nil
}

func (p *transactionalPublisher) processTriggerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(p.logger)

		err := p.processTrigger(c, mux.Vars(r)["topic"], mux.Vars(r)["uid"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed trigger",
		})
	}
}

func (p *transactionalPublisher) processTrigger(c context.Context, topicName string, uid string) error {
	return p.outbox.RunInTransaction(c, func(c context.Context) error {
		envelope, found, err := p.outbox.Get(c, uid)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching envelope %s: %s", uid, err))
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("envelope %s not found", uid))
		}
		if envelope.Topic != topicName {
			return myerrors.NewInvalidInputError(fmt.Errorf("envelope %s does not belong to topic %s", uid, topicName))
		}
		if envelope.Published {
			// queue delivers at-least-once
			return nil
		}

		jsonBytes, err := json.Marshal(envelope)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error serializing envelope: %s", err))
		}

		err = p.pubsub.Publish(c, envelope.Topic, string(jsonBytes))
		if err != nil {
			return myerrors.NewUnavailableError(fmt.Errorf("error publishing envelope: %s", err))
		}

		envelope.Published = true
		err = p.outbox.Put(c, envelope.UID, envelope)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing envelope: %s", err))
		}

		return nil
	})
}
