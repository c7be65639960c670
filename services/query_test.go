package services

import (
	"fmt"

	"github.com/barnybug/geotracker/pubsub"
	"github.com/barnybug/geotracker/pubsub/dummy"
)

type MockService struct {
	queryHandlers map[string]QueryHandler
}

// ID of the service
func (service *MockService) ID() string {
	return "abc"
}

// Run the service
func (service *MockService) Run() error {
	return nil
}

func (service *MockService) QueryHandlers() QueryHandlers {
	return service.queryHandlers
}

func ExampleQuerySubscriber() {
	fields := pubsub.Fields{"query": "help", "source": "cli", "reply_to": "_rpc.1"}
	query := pubsub.NewEvent("query", fields)
	li := dummy.Subscriber{
		Events: []*pubsub.Event{query},
	}
	Subscriber = &li
	em := dummy.Publisher{}
	Publisher = &em
	mock := MockService{
		queryHandlers: map[string]QueryHandler{"help": StaticHandler("squiggle")},
	}
	enabled = []Service{&mock}
	QuerySubscriber()
	fmt.Println(len(em.Events))
	fmt.Println(em.Events[0].Topic)
	fmt.Println(em.Events[0].StringField("message"))
	// Output:
	// 1
	// _rpc.1
	// squiggle
}

func ExampleQuerySubscriber_limited() {
	fields := pubsub.Fields{"query": "other/help"}
	query := pubsub.NewEvent("query", fields)
	Subscriber = &dummy.Subscriber{Events: []*pubsub.Event{query}}
	em := dummy.Publisher{}
	Publisher = &em
	enabled = []Service{&MockService{
		queryHandlers: map[string]QueryHandler{"help": StaticHandler("squiggle")},
	}}
	QuerySubscriber()
	fmt.Println(len(em.Events))
	// Output:
	// 0
}
