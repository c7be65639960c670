// Package mapview renders a track as a self-contained HTML map document, using
// either Google Maps or OpenStreetMap tiles through Leaflet.
//
// Rendering is pure: tiles and scripts are fetched by the browser showing the
// document. Coordinates are interpolated as numbers, so only validated points
// should be passed in.
package mapview

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"
)

type Point struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Speed     float64
}

type LatLng struct {
	Latitude  float64
	Longitude float64
}

// Map is everything needed to render a document.
type Map struct {
	Points  []Point
	Center  LatLng
	APIKey  string
	Address string
	Width   string
	Height  string
	Zoom    int
}

type Renderer interface {
	Render(m Map) (string, error)
}

// New returns the renderer for a map provider: "google" or "osm".
func New(provider string) (Renderer, error) {
	switch provider {
	case "google", "":
		return Google{}, nil
	case "osm":
		return Leaflet{}, nil
	}
	return nil, fmt.Errorf("mapview: unknown provider %q", provider)
}

// RenderMap renders points with Google Maps using the default size and zoom.
func RenderMap(points []Point, apiKey string, center LatLng) (string, error) {
	return Google{}.Render(Map{Points: points, APIKey: apiKey, Center: center})
}

// CenterOf is the most recent point, or fallback for an empty track.
func CenterOf(points []Point, fallback LatLng) LatLng {
	if len(points) == 0 {
		return fallback
	}
	last := points[len(points)-1]
	return LatLng{Latitude: last.Latitude, Longitude: last.Longitude}
}

var cssLength = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?(px|%|em|rem|vh|vw)$`)

// IsLength reports whether s is a CSS length usable for the map size, eg.
// "500px" or "100%".
func IsLength(s string) bool {
	return cssLength.MatchString(s)
}

func (m Map) withDefaults() Map {
	if !IsLength(m.Width) {
		m.Width = "500px"
	}
	if !IsLength(m.Height) {
		m.Height = "400px"
	}
	if m.Zoom == 0 {
		m.Zoom = 6
	}
	return m
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Title is the marker label for a point.
func Title(p Point) string {
	return fmt.Sprintf("Speed: %s km/h, Altitude: %s meters", num(p.Speed), num(p.Altitude))
}

var funcs = template.FuncMap{
	"num":   num,
	"title": Title,
}

func execute(t *template.Template, m Map) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, m.withDefaults()); err != nil {
		return "", err
	}
	return sb.String(), nil
}

var googleTemplate = template.Must(template.New("google").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>GeoTracker</title>
</head>
<body>
<div id="map" style="height: {{html .Height}}; width: {{html .Width}};"></div>
{{- if .Address}}
<div id="address">{{html .Address}}</div>
{{- end}}
<script>
function initMap() {
  var map = new google.maps.Map(document.getElementById("map"), {
    zoom: {{.Zoom}},
    center: {lat: {{num .Center.Latitude}}, lng: {{num .Center.Longitude}}},
    mapTypeId: "terrain"
  });
  var path = [{{range $i, $p := .Points}}{{if $i}}, {{end}}{lat: {{num $p.Latitude}}, lng: {{num $p.Longitude}}}{{end}}];
  var track = new google.maps.Polyline({
    path: path,
    geodesic: true,
    strokeColor: "#FF0000",
    strokeOpacity: 1.0,
    strokeWeight: 2
  });
  track.setMap(map);
{{- range .Points}}
  new google.maps.Marker({position: {lat: {{num .Latitude}}, lng: {{num .Longitude}}}, map: map, title: "{{title .}}"});
{{- end}}
}
</script>
<script async defer src="https://maps.googleapis.com/maps/api/js?key={{urlquery .APIKey}}&callback=initMap"></script>
</body>
</html>
`))

// Google renders with the Google Maps javascript API. It needs an api key.
type Google struct{}

func (Google) Render(m Map) (string, error) {
	return execute(googleTemplate, m)
}

var leafletTemplate = template.Must(template.New("leaflet").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>GeoTracker</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
</head>
<body>
<div id="map" style="height: {{html .Height}}; width: {{html .Width}};"></div>
{{- if .Address}}
<div id="address">{{html .Address}}</div>
{{- end}}
<script>
var map = L.map("map").setView([{{num .Center.Latitude}}, {{num .Center.Longitude}}], {{.Zoom}});
L.tileLayer("https://tile.openstreetmap.org/{z}/{x}/{y}.png", {
  maxZoom: 19,
  attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);
var path = [{{range $i, $p := .Points}}{{if $i}}, {{end}}[{{num $p.Latitude}}, {{num $p.Longitude}}]{{end}}];
L.polyline(path, {color: "#FF0000", weight: 2}).addTo(map);
{{- range .Points}}
L.marker([{{num .Latitude}}, {{num .Longitude}}], {title: "{{title .}}"}).addTo(map);
{{- end}}
</script>
</body>
</html>
`))

// Leaflet renders OpenStreetMap tiles with Leaflet. No api key is used.
type Leaflet struct{}

func (Leaflet) Render(m Map) (string, error) {
	return execute(leafletTemplate, m)
}
