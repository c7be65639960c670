package pubsub

import "strings"

// PrefixTopic matches a topic and everything beneath it, eg. command
// matches command/geotracker.
type PrefixTopic struct {
	Prefix string
}

func Prefix(prefix string) *PrefixTopic {
	return &PrefixTopic{prefix}
}

func (t *PrefixTopic) Match(topic string) bool {
	return t.Prefix == topic || strings.HasPrefix(topic, t.Prefix+"/")
}

type AllTopic struct{}

func All() *AllTopic {
	return &AllTopic{}
}

func (t *AllTopic) Match(topic string) bool {
	return true
}

type ExactTopic struct {
	Exact string
}

func Exact(exact string) *ExactTopic {
	return &ExactTopic{exact}
}

func (t *ExactTopic) Match(topic string) bool {
	return t.Exact == topic
}

// ExceptTopic matches every topic not matched by any of Excluded.
type ExceptTopic struct {
	Excluded []Topic
}

func Except(excluded ...Topic) *ExceptTopic {
	return &ExceptTopic{excluded}
}

func (t *ExceptTopic) Match(topic string) bool {
	for _, e := range t.Excluded {
		if e.Match(topic) {
			return false
		}
	}
	return true
}
