package mypublisher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/klarnacheckout/lib/myevents"
	"github.com/MarcGrol/klarnacheckout/lib/myqueue"
	"github.com/MarcGrol/klarnacheckout/lib/mystore"
	"github.com/MarcGrol/klarnacheckout/lib/mytime"
)

type orderConfirmed struct {
	OrderID string
}

func (e orderConfirmed) GetEventTypeName() string {
	return "order.confirmed"
}

func (e orderConfirmed) GetAggregateName() string {
	return e.OrderID
}

type recordingPubSub struct {
	published []string
}

func (ps *recordingPubSub) Publish(c context.Context, topic string, data string) error {
	ps.published = append(ps.published, topic+":"+data)
	return nil
}

func (ps *recordingPubSub) CreateTopic(c context.Context, topic string) error {
	return nil
}

func (ps *recordingPubSub) Subscribe(c context.Context, topic string, urlToPostTo string) error {
	return nil
}

type recordingQueue struct {
	tasks []myqueue.Task
}

func (q *recordingQueue) Enqueue(c context.Context, task myqueue.Task) error {
	q.tasks = append(q.tasks, task)
	return nil
}

func TestTransactionalPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c := context.TODO()
	outbox, _, _ := mystore.NewInMemoryStore[myevents.EventEnvelope](c)
	pubsub := &recordingPubSub{}
	queue := &recordingQueue{}
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	sut := newTransactionalPublisher(outbox, pubsub, queue, nower)
	router := mux.NewRouter()
	sut.RegisterEndpoints(c, router)

	t.Run("Publish stores and enqueues", func(t *testing.T) {
		err := sut.Publish(c, "checkout", orderConfirmed{OrderID: "abc"})
		assert.NoError(t, err)

		assert.Len(t, queue.tasks, 1)
		envelope, found, err := outbox.Get(c, queue.tasks[0].UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.False(t, envelope.Published)
		assert.Equal(t, "order.confirmed", envelope.EventTypeName)
		assert.Equal(t, mytime.ExampleTime, envelope.CreatedAt)
		assert.Equal(t, "/pubsub/checkout/"+envelope.UID, queue.tasks[0].WebhookURLPath)
	})

	t.Run("Same event yields same envelope uid", func(t *testing.T) {
		err := sut.Publish(c, "checkout", orderConfirmed{OrderID: "abc"})
		assert.NoError(t, err)
		assert.Len(t, queue.tasks, 2)
		assert.Equal(t, queue.tasks[0].UID, queue.tasks[1].UID)
	})

	t.Run("Trigger publishes once", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			request, err := http.NewRequest(http.MethodPut, queue.tasks[0].WebhookURLPath, nil)
			assert.NoError(t, err)
			response := httptest.NewRecorder()
			router.ServeHTTP(response, request)
			assert.Equal(t, http.StatusOK, response.Code)
		}

		assert.Len(t, pubsub.published, 1)
		envelope, _, _ := outbox.Get(c, queue.tasks[0].UID)
		assert.True(t, envelope.Published)
	})

	t.Run("Trigger unknown envelope", func(t *testing.T) {
		request, err := http.NewRequest(http.MethodPut, "/pubsub/checkout/unknown", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)
		assert.Equal(t, http.StatusNotFound, response.Code)
	})
}
