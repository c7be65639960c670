package mqtt

import (
	"fmt"
	"os"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/barnybug/geotracker/pubsub"
)

type Broker struct {
	broker     string
	client     MQTT.Client
	subscriber *Subscriber
}

func clientID(name string) string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("geotracker/%s-%s-%s", name, hostname, uuid.NewString()[:8])
}

func NewBroker(broker string, name string) *Broker {
	self := &Broker{broker: broker}
	self.subscriber = NewSubscriber(self)

	opts := MQTT.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID(name))
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetDefaultPublishHandler(self.subscriber.publishHandler)
	opts.SetOnConnectHandler(self.subscriber.connectHandler)

	self.client = MQTT.NewClient(opts)
	if token := self.client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln("Couldn't connect to mqtt:", token.Error())
	}
	return self
}

func (self *Broker) ID() string {
	return "mqtt: " + self.broker
}

func (self *Broker) Subscriber() pubsub.Subscriber {
	return self.subscriber
}

func (self *Broker) Publisher() pubsub.Publisher {
	return &Publisher{broker: self}
}
