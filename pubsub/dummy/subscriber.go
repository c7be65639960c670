package dummy

import (
	"sync"

	"github.com/barnybug/geotracker/pubsub"
)

// Subscriber replays Events to each subscription whose topics match, then
// closes the channel.
type Subscriber struct {
	Events []*pubsub.Event

	lock   sync.Mutex
	closed int
}

// ID of Subscriber
func (sub *Subscriber) ID() string {
	return "dummy"
}

func (sub *Subscriber) Subscribe(topics ...pubsub.Topic) <-chan *pubsub.Event {
	ch := make(chan *pubsub.Event)
	go func() {
		defer close(ch)
		for _, ev := range sub.Events {
			for _, t := range topics {
				if t.Match(ev.Topic) {
					ch <- ev
					break
				}
			}
		}
	}()
	return ch
}

// Close counts the channels closed by the code under test.
func (sub *Subscriber) Close(<-chan *pubsub.Event) {
	sub.lock.Lock()
	sub.closed++
	sub.lock.Unlock()
}

func (sub *Subscriber) Closed() int {
	sub.lock.Lock()
	defer sub.lock.Unlock()
	return sub.closed
}
