package mqtt

import (
	log "github.com/sirupsen/logrus"

	"github.com/barnybug/geotracker/pubsub"
)

// Publisher for mqtt
type Publisher struct {
	broker *Broker
}

// ID of Publisher
func (pub *Publisher) ID() string {
	return pub.broker.ID()
}

// Emit an event
func (pub *Publisher) Emit(ev *pubsub.Event) {
	// put all topics under gohome/
	topic := "gohome/" + ev.Topic
	token := pub.broker.client.Publish(topic, 1, ev.Retained, ev.Bytes())
	if token.Wait() && token.Error() != nil {
		log.Errorln("Error publishing:", token.Error())
	}
}

// Close the connection, allowing in flight messages 250ms to complete.
func (pub *Publisher) Close() {
	pub.broker.client.Disconnect(250)
}
