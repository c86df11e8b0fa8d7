package myqueue

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	grpcCodes "google.golang.org/grpc/codes"
	grpcStatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const scheduleDelay = 2 * time.Second

// queueLocation identifies the cloud tasks queue the outbox triggers go to
type queueLocation struct {
	project  string
	location string
	queue    string
	// targetURL is set when tasks must be delivered over plain http instead of to app engine
	targetURL string
}

func queueLocationFromEnvironment() queueLocation {
	queue := os.Getenv("QUEUE_NAME")
	if queue == "" {
		queue = "default"
	}
	return queueLocation{
		project:   os.Getenv("GOOGLE_CLOUD_PROJECT"),
		location:  os.Getenv("LOCATION_ID"),
		queue:     queue,
		targetURL: os.Getenv("TASK_TARGET_URL"),
	}
}

func (l queueLocation) queuePath() string {
	return fmt.Sprintf("projects/%s/locations/%s/queues/%s", l.project, l.location, l.queue)
}

// taskPath makes task names unique per uid so cloud tasks de-duplicates re-enqueues
func (l queueLocation) taskPath(taskUID string) string {
	return fmt.Sprintf("%s/tasks/%s", l.queuePath(), taskUID)
}

func (l queueLocation) newTask(task Task, scheduleAt time.Time) *taskspb.Task {
	t := &taskspb.Task{
		Name:         l.taskPath(task.UID),
		ScheduleTime: timestamppb.New(scheduleAt),
	}
	if l.targetURL != "" {
		t.MessageType = &taskspb.Task_HttpRequest{
			HttpRequest: &taskspb.HttpRequest{
				HttpMethod: taskspb.HttpMethod_PUT,
				Url:        l.targetURL + task.WebhookURLPath,
				Body:       task.Payload,
			},
		}
		return t
	}
	t.MessageType = &taskspb.Task_AppEngineHttpRequest{
		AppEngineHttpRequest: &taskspb.AppEngineHttpRequest{
			HttpMethod:  taskspb.HttpMethod_PUT,
			RelativeUri: task.WebhookURLPath,
			Body:        task.Payload,
		},
	}
	return t
}

type gcloudTaskQueue struct {
	client   *cloudtasks.Client
	location queueLocation
}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		New = newGcloudQueue
	}
}

func newGcloudQueue(c context.Context) (TaskQueuer, func(), error) {
	client, err := cloudtasks.NewClient(c)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating cloudtasks client: %s", err)
	}
	return &gcloudTaskQueue{
			client:   client,
			location: queueLocationFromEnvironment(),
		}, func() {
			client.Close()
		}, nil
}

func (q *gcloudTaskQueue) Enqueue(c context.Context, task Task) error {
	t := q.location.newTask(task, time.Now().Add(scheduleDelay))
	_, err := q.client.CreateTask(c, &taskspb.CreateTaskRequest{
		Parent: q.location.queuePath(),
		Task:   t,
	})
	if err != nil {
		rsp, ok := grpcStatus.FromError(err)
		if ok && rsp.Code() == grpcCodes.AlreadyExists {
			log.Printf("Task %s already enqueued", t.Name)
			return nil
		}
		return fmt.Errorf("error enqueueing task %s: %s", task.UID, err)
	}
	return nil
}
