// The geotracker position tracking system
//
// Features
//
// - Records a vehicle or person's position from any device publishing
// latitude, longitude, altitude and speed
//
// - Renders the track as an HTML map (Google Maps or OpenStreetMap) for dashboards
//
// - Reverse geocodes the current address, rate limited
//
// - Distributed message system (MQTT), state kept in redis
//
// - Remotely controllable via the REST API and queries
//
// Services supported
//
// - geotracker (the tracking pipeline)
//
// - REST API (map, history, prometheus metrics)
package geotracker
