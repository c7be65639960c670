package config

import "strings"

var ExampleYaml = `
endpoints:
  mqtt:
    broker: tcp://127.0.0.1:1883
  redis: 127.0.0.1:6379
  api: http://localhost:8723
earth:
  latitude: 51.5072
  longitude: 0.1275
geotracker:
  sources:
    latitude: gps.car.latitude
    longitude: gps.car.longitude
    altitude: gps.car.altitude
    speed: gps.car.speed
  provider: google
  api_key: AIzaSyExampleKey
  history:
    path: /tmp/geotracker/track.jsonl
    retention: 500
  geocode:
    enabled: true
    cooldown: 2m
  map:
    width: 100%
    height: 400px
    zoom: 12
  timeout: 5s
`

var ExampleConfig = Must(OpenReader(strings.NewReader(ExampleYaml)))
