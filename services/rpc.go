package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/barnybug/geotracker/pubsub"
)

// QueryChannel sends `query` and returns a channel of the answers received
// within `timeout`. The channel is closed after the timeout.
func QueryChannel(query string, timeout time.Duration) <-chan *pubsub.Event {
	reply_to := "_rpc." + uuid.NewString()
	ch := Subscriber.Subscribe(pubsub.Exact(reply_to))

	SendQuery(query, "rpc", "", reply_to)

	time.AfterFunc(timeout, func() {
		Subscriber.Close(ch)
	})
	return ch
}
