package mapview

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

var track = []Point{
	{Latitude: 48.2, Longitude: 16.3, Altitude: 180, Speed: 42},
	{Latitude: 48.21, Longitude: 16.35, Altitude: 185.5, Speed: 50},
	{Latitude: 48.25, Longitude: 16.4, Altitude: 190, Speed: 0},
}

// pathOf extracts the polyline coordinate array.
func pathOf(t *testing.T, doc string) string {
	m := regexp.MustCompile(`var path = \[(.*)\];`).FindStringSubmatch(doc)
	require.NotNil(t, m, "no path in document")
	return m[1]
}

func hasElementID(n *html.Node, id string) bool {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasElementID(c, id) {
			return true
		}
	}
	return false
}

func parse(t *testing.T, doc string) *html.Node {
	node, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return node
}

func renderers() map[string]Renderer {
	return map[string]Renderer{"google": Google{}, "osm": Leaflet{}}
}

const (
	googleMarker  = "new google.maps.Marker("
	leafletMarker = "L.marker("
)

func markerOf(name string) string {
	if name == "osm" {
		return leafletMarker
	}
	return googleMarker
}

func TestEmptyHistory(t *testing.T) {
	for name, r := range renderers() {
		doc, err := r.Render(Map{APIKey: "key", Center: LatLng{51.5, 0.12}})
		require.NoError(t, err, name)
		assert.True(t, hasElementID(parse(t, doc), "map"), name)
		assert.Equal(t, 0, strings.Count(doc, markerOf(name)), name)
		assert.Equal(t, "", pathOf(t, doc), name)
		assert.False(t, hasElementID(parse(t, doc), "address"), name)
	}
}

func TestMarkersAndPath(t *testing.T) {
	for name, r := range renderers() {
		doc, err := r.Render(Map{Points: track, APIKey: "key", Center: CenterOf(track, LatLng{})})
		require.NoError(t, err, name)
		parse(t, doc)
		assert.Equal(t, len(track), strings.Count(doc, markerOf(name)), name)

		path := pathOf(t, doc)
		var pairs []string
		if name == "osm" {
			pairs = regexp.MustCompile(`\[([-\d.]+), ([-\d.]+)\]`).FindAllString(path, -1)
			assert.Equal(t, []string{"[48.2, 16.3]", "[48.21, 16.35]", "[48.25, 16.4]"}, pairs)
		} else {
			pairs = regexp.MustCompile(`\{lat: [-\d.]+, lng: [-\d.]+\}`).FindAllString(path, -1)
			assert.Equal(t, []string{"{lat: 48.2, lng: 16.3}", "{lat: 48.21, lng: 16.35}", "{lat: 48.25, lng: 16.4}"}, pairs)
		}
	}
}

func TestScenarioMarkerTitle(t *testing.T) {
	points := []Point{{Latitude: 48.2, Longitude: 16.3, Altitude: 180, Speed: 42}}
	doc, err := RenderMap(points, "key", CenterOf(points, LatLng{}))
	require.NoError(t, err)
	assert.Contains(t, doc, `title: "Speed: 42 km/h, Altitude: 180 meters"`)
	assert.Contains(t, doc, `center: {lat: 48.2, lng: 16.3}`)
}

func TestCenterIsMostRecent(t *testing.T) {
	doc, err := Leaflet{}.Render(Map{Points: track, Center: CenterOf(track, LatLng{})})
	require.NoError(t, err)
	assert.Contains(t, doc, `setView([48.25, 16.4], 6)`)
}

func TestDefaultsAndSize(t *testing.T) {
	doc, err := Google{}.Render(Map{})
	require.NoError(t, err)
	assert.Contains(t, doc, `style="height: 400px; width: 500px;"`)
	assert.Contains(t, doc, `zoom: 6,`)

	doc, err = Google{}.Render(Map{Width: "100%", Height: "300px", Zoom: 12})
	require.NoError(t, err)
	assert.Contains(t, doc, `style="height: 300px; width: 100%;"`)
	assert.Contains(t, doc, `zoom: 12,`)
}

func TestSizeNotInjected(t *testing.T) {
	for _, r := range []Renderer{Google{}, Leaflet{}} {
		doc, err := r.Render(Map{Width: `1px;background:url(x)`, Height: `1px" onload="alert(1)`})
		require.NoError(t, err)
		assert.Contains(t, doc, `style="height: 400px; width: 500px;"`)
		assert.NotContains(t, doc, "background")
		assert.NotContains(t, doc, "onload")
	}
}

func TestIsLength(t *testing.T) {
	for _, s := range []string{"500px", "100%", "12.5em", "2rem", "80vh", "50vw"} {
		assert.True(t, IsLength(s), s)
	}
	for _, s := range []string{"", "px", "500", "-1px", "1px;color:red", `1px"`, "calc(100% - 1px)"} {
		assert.False(t, IsLength(s), s)
	}
}

func TestAPIKeyEscaped(t *testing.T) {
	doc, err := RenderMap(nil, `k"&x=<y>`, LatLng{})
	require.NoError(t, err)
	assert.Contains(t, doc, "key=k%22%26x%3D%3Cy%3E&callback=initMap")
	assert.NotContains(t, doc, `k"&x`)
}

func TestAddressEscaped(t *testing.T) {
	doc, err := Leaflet{}.Render(Map{Address: "Main St <b>1</b>"})
	require.NoError(t, err)
	assert.Contains(t, doc, `<div id="address">Main St &lt;b&gt;1&lt;/b&gt;</div>`)
}

func TestLeafletHasNoKey(t *testing.T) {
	doc, err := Leaflet{}.Render(Map{APIKey: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, doc, "secret")
	assert.Contains(t, doc, "tile.openstreetmap.org")
}

func TestNew(t *testing.T) {
	r, err := New("osm")
	assert.NoError(t, err)
	assert.IsType(t, Leaflet{}, r)
	r, err = New("google")
	assert.NoError(t, err)
	assert.IsType(t, Google{}, r)
	_, err = New("bing")
	assert.Error(t, err)
}

func ExampleTitle() {
	fmt.Println(Title(Point{Speed: 42, Altitude: 180.5}))
	// Output:
	// Speed: 42 km/h, Altitude: 180.5 meters
}
