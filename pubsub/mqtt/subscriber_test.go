package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/barnybug/geotracker/pubsub"
)

func TestTopicToMqtt(t *testing.T) {
	assert.Equal(t, "gohome/#", topicToMqtt(pubsub.All()))
	assert.Equal(t, "gohome/config", topicToMqtt(pubsub.Exact("config")))
	assert.Equal(t, "gohome/command/#", topicToMqtt(pubsub.Prefix("command")))
	assert.Equal(t, "gohome/#", topicToMqtt(pubsub.Except(pubsub.Exact("geotracker"))))
}

func TestClientID(t *testing.T) {
	a := clientID("geotracker")
	b := clientID("geotracker")
	assert.Contains(t, a, "geotracker/geotracker-")
	assert.NotEqual(t, a, b)
}
