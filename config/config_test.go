package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var yml = `
geotracker:
  sources:
    latitude: gps.car.latitude
`

func ExampleOpenRaw() {
	config, _ := OpenRaw([]byte(yml))
	fmt.Println(config.Geotracker.Sources.Latitude)
	fmt.Println(config.Geotracker.Provider)
	fmt.Println(config.Geotracker.Geocode.Cooldown)
	// Output:
	// gps.car.latitude
	// google
	// 2m0s
}

func ExampleSplitRef() {
	fmt.Println(SplitRef("gps.car.latitude"))
	fmt.Println(SplitRef("latitude"))
	// Output:
	// gps.car latitude
	//
}

func TestExampleConfig(t *testing.T) {
	c := ExampleConfig.Geotracker
	assert.Equal(t, "gps.car.speed", c.Sources.Speed)
	assert.Equal(t, "AIzaSyExampleKey", c.Api_Key)
	assert.Equal(t, 500, c.History.Retention)
	assert.Equal(t, 2*time.Minute, c.Geocode.Cooldown.Duration)
	assert.Equal(t, 5*time.Second, c.Timeout.Duration)
	assert.Equal(t, 12, c.Map.Zoom)
	assert.Equal(t, "tcp://127.0.0.1:1883", ExampleConfig.Endpoints.Mqtt.Broker)
}

func TestDefaults(t *testing.T) {
	c, err := OpenRaw([]byte(`{}`))
	assert.NoError(t, err)
	g := c.Geotracker
	assert.Equal(t, ProviderGoogle, g.Provider)
	assert.Equal(t, 1000, g.History.Retention)
	assert.Equal(t, 120*time.Second, g.Geocode.Cooldown.Duration)
	assert.Equal(t, 10*time.Second, g.Timeout.Duration)
	assert.Equal(t, "500px", g.Map.Width)
	assert.Equal(t, "400px", g.Map.Height)
	assert.Equal(t, 6, g.Map.Zoom)
	assert.Contains(t, g.History.Path, "geotracker/track.jsonl")
}

func TestBadProvider(t *testing.T) {
	_, err := OpenRaw([]byte("geotracker:\n  provider: bing\n"))
	assert.Error(t, err)
}

func TestBadSource(t *testing.T) {
	_, err := OpenRaw([]byte("geotracker:\n  sources:\n    speed: speed\n"))
	assert.Error(t, err)
}

func TestBadDuration(t *testing.T) {
	_, err := OpenRaw([]byte("geotracker:\n  timeout: soon\n"))
	assert.Error(t, err)
}

func TestBadMapSize(t *testing.T) {
	_, err := OpenRaw([]byte("geotracker:\n  map:\n    width: \"1px;background:red\"\n"))
	assert.ErrorContains(t, err, "map width")
	_, err = OpenRaw([]byte("geotracker:\n  map:\n    height: 400\n"))
	assert.ErrorContains(t, err, "map height")

	c, err := OpenRaw([]byte("geotracker:\n  map:\n    width: 100%\n    height: 50vh\n"))
	assert.NoError(t, err)
	assert.Equal(t, "100%", c.Geotracker.Map.Width)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg")
	assert.Equal(t, "/etc/xdg/geotracker/geotracker.yml", ConfigPath("geotracker.yml"))
}

func TestDurationDays(t *testing.T) {
	c, err := OpenRaw([]byte("geotracker:\n  geocode:\n    cooldown: 1d\n"))
	assert.NoError(t, err)
	assert.Equal(t, 24*time.Hour, c.Geotracker.Geocode.Cooldown.Duration)
}

func TestHistoryPathExpanded(t *testing.T) {
	t.Setenv("HOME", "/home/geo")
	c, err := OpenRaw([]byte("geotracker:\n  history:\n    path: ~/track.jsonl\n"))
	assert.NoError(t, err)
	assert.Equal(t, "/home/geo/track.jsonl", c.Geotracker.History.Path)
}
