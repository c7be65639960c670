package pubsub

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ExampleEvent_String() {
	ev := NewEvent("test", nil)
	ev.Timestamp = time.Date(2014, 1, 2, 3, 4, 5, 987654000, time.UTC)
	fmt.Println(ev.String())
	// Output: {"timestamp":"2014-01-02 03:04:05.987654","topic":"test"}
}

func ExampleParse() {
	ev := Parse(`{"timestamp":"2014-01-02 03:04:05.987000","topic":"test","field":"value"}`, "")
	fmt.Println(ev.Topic)
	fmt.Println(ev.Timestamp)
	fmt.Println(ev.Fields)
	// Output:
	// test
	// 2014-01-02 03:04:05.987 +0000 UTC
	// map[field:value]
}

func ExampleParse_topicFallback() {
	ev := Parse(`{"device":"gps.car","latitude":48.2}`, "gps")
	fmt.Println(ev.Topic)
	fmt.Println(ev.Device())
	// Output:
	// gps
	// gps.car
}

func ExampleParse_bad() {
	ev := Parse(`{`, "")
	fmt.Println(ev)
	// Output:
	// <nil>
}

func TestFloatField(t *testing.T) {
	ev := NewEvent("gps", Fields{"a": 1.5, "b": "2.25", "c": "x", "d": 3})
	v, ok := ev.FloatField("a")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)
	v, ok = ev.FloatField("b")
	assert.True(t, ok)
	assert.Equal(t, 2.25, v)
	_, ok = ev.FloatField("c")
	assert.False(t, ok)
	v, ok = ev.FloatField("d")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
	_, ok = ev.FloatField("missing")
	assert.False(t, ok)
}

func TestNewCommand(t *testing.T) {
	ev := NewCommand("geotracker", "update")
	assert.Equal(t, "command/geotracker", ev.Topic)
	assert.Equal(t, "update", ev.Command())
	assert.Equal(t, "geotracker", ev.Device())
}

func TestMatchers(t *testing.T) {
	assert.True(t, Prefix("command").Match("command/geotracker"))
	assert.True(t, Prefix("command").Match("command"))
	assert.False(t, Prefix("command").Match("commander"))
	assert.True(t, Exact("config").Match("config"))
	assert.False(t, Exact("config").Match("config/x"))
	assert.True(t, All().Match("anything"))
}
