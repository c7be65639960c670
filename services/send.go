package services

import "github.com/barnybug/geotracker/pubsub"

func SendQuery(query, source, remote, reply_to string) {
	fields := pubsub.Fields{
		"source":   source,
		"query":    query,
		"remote":   remote,
		"reply_to": reply_to,
	}
	ev := pubsub.NewEvent("query", fields)
	Publisher.Emit(ev)
}

// SendCommand publishes a command to a device, eg. "update" to geotracker.
func SendCommand(device, command string) {
	Publisher.Emit(pubsub.NewCommand(device, command))
}
