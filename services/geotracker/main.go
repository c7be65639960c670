// Package geotracker is a service recording a vehicle or person's position as a
// track, and rendering it as an HTML map for dashboards.
//
// The four source values (latitude, longitude, altitude and speed) are
// configured as `device.field` references. Whenever an event updates one
// of them the pipeline runs:
//
// read values -> validate -> check api key -> append to history -> read
// history -> reverse geocode -> render map -> display
//
// Any failing step stops the run and is logged. The next event retries.
package geotracker

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/barnybug/geotracker/config"
	"github.com/barnybug/geotracker/lib/geocode"
	"github.com/barnybug/geotracker/lib/mapview"
	"github.com/barnybug/geotracker/pubsub"
	"github.com/barnybug/geotracker/services"
	"github.com/barnybug/geotracker/util"
)

const (
	keyPrefix         = "gohome/geotracker"
	KeyValues         = keyPrefix + "/values"
	KeyMap            = keyPrefix + "/map"
	KeyLast           = keyPrefix + "/last"
	KeyAddress        = keyPrefix + "/address"
	KeyAddressUpdated = keyPrefix + "/address_updated"
)

var fields = []string{"latitude", "longitude", "altitude", "speed"}

func valueKey(ref string) string {
	return KeyValues + "/" + ref
}

// Service geotracker
type Service struct {
	conf     config.GeotrackerConf
	home     mapview.LatLng
	store    services.Store
	pub      pubsub.Publisher
	history  *History
	filter   *Filter
	renderer mapview.Renderer
	display  Display
	geocoder geocode.Geocoder
	verifier geocode.Verifier
	verified string
	now      func() time.Time
	lock     sync.Mutex
}

// ID of the service
func (self *Service) ID() string {
	return "geotracker"
}

// Initialize the service from configuration.
func (self *Service) Initialize(conf *config.Config, store services.Store, pub pubsub.Publisher) error {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.initialize(conf, store, pub)
}

func (self *Service) initialize(conf *config.Config, store services.Store, pub pubsub.Publisher) error {
	if conf == nil {
		return newError(MissingConfiguration, errors.New("no config"))
	}
	c := conf.Geotracker
	filter, err := NewFilter(c.Record)
	if err != nil {
		return newError(MissingConfiguration, err)
	}
	renderer, err := mapview.New(c.Provider)
	if err != nil {
		return newError(MissingConfiguration, err)
	}

	if err := checkWritable(filepath.Dir(c.History.Path)); err != nil {
		return wrapError(PersistenceFailure, err, "history directory")
	}

	client := &http.Client{Timeout: c.Timeout.Duration}
	google := geocode.NewGoogle(c.Api_Key)
	google.Client = client
	var geocoder geocode.Geocoder
	if c.Geocode.Enabled {
		switch c.Provider {
		case config.ProviderOSM:
			n := geocode.NewNominatim()
			n.Client = client
			if c.Geocode.Url != "" {
				n.Url = c.Geocode.Url
			}
			geocoder = n
		default:
			g := *google
			if c.Geocode.Url != "" {
				g.Url = c.Geocode.Url
			}
			geocoder = &g
		}
	}

	if self.conf.Api_Key != c.Api_Key {
		self.verified = ""
	}
	self.conf = c
	self.home = mapview.LatLng{Latitude: conf.Earth.Latitude, Longitude: conf.Earth.Longitude}
	self.store = store
	self.pub = pub
	if self.history == nil || self.history.Path != c.History.Path {
		self.history = NewHistory(c.History.Path, c.History.Retention)
	} else {
		self.history.Retention = c.History.Retention
	}
	self.filter = filter
	self.renderer = renderer
	self.display = &StoreDisplay{Store: store, Key: KeyMap}
	self.geocoder = geocoder
	self.verifier = google
	if self.now == nil {
		self.now = time.Now
	}
	return nil
}

// checkWritable creates dir if needed and checks a file can be created in it.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".geotracker-*")
	if err != nil {
		return err
	}
	f.Close()
	return os.Remove(f.Name())
}

// Init checks the service can run with the current config, at startup.
func (self *Service) Init() error {
	return self.Initialize(services.Config, services.Stor, services.Publisher)
}

// ConfigUpdated re-initializes and refreshes the map with the new settings.
func (self *Service) ConfigUpdated(conf *config.Config) {
	if err := self.Initialize(conf, services.Stor, services.Publisher); err != nil {
		logError(err)
		return
	}
	self.UpdateGeotracking()
}

// UpdateGeotracking runs the pipeline once with the latest stored values.
func (self *Service) UpdateGeotracking() error {
	self.lock.Lock()
	defer self.lock.Unlock()

	start := time.Now()
	recorded, err := self.update()
	switch {
	case err != nil:
		observeRun(start, KindOf(err).String())
	case recorded:
		observeRun(start, "ok")
	default:
		observeRun(start, "skipped")
	}
	logError(err)
	return err
}

func (self *Service) update() (bool, error) {
	if self.history == nil {
		return false, newError(MissingConfiguration, errors.New("geotracker not configured"))
	}
	reading, err := self.readValues()
	if err != nil {
		return false, err
	}
	point, err := Validate(reading)
	if err != nil {
		return false, newError(InvalidValue, err)
	}
	if err := self.checkCredential(); err != nil {
		return false, err
	}
	allow, err := self.filter.Allow(point)
	if err != nil {
		return false, newError(MissingConfiguration, err)
	}
	if !allow {
		log.WithField("expression", self.conf.Record).Debugln("Point not recorded:", point)
		return false, nil
	}

	point.Timestamp = self.now().UTC()
	if err := self.history.Append(point); err != nil {
		return false, wrapError(PersistenceFailure, err, "appending to history")
	}
	pointsTotal.Inc()
	last, _ := json.Marshal(point)
	if err := self.store.Set(KeyLast, string(last)); err != nil {
		return true, wrapError(PersistenceFailure, err, "storing last point")
	}

	points, err := self.history.Read()
	if err != nil {
		return true, wrapError(PersistenceFailure, err, "reading history")
	}

	address := self.reverseGeocode(point)

	html, err := self.renderer.Render(mapview.Map{
		Points:  mapPoints(points),
		Center:  mapview.CenterOf(mapPoints(points), self.home),
		APIKey:  self.conf.Api_Key,
		Address: address,
		Width:   self.conf.Map.Width,
		Height:  self.conf.Map.Height,
		Zoom:    self.conf.Map.Zoom,
	})
	if err != nil {
		return true, wrapError(RenderSinkFailure, err, "rendering map")
	}
	if err := self.display.Show(html); err != nil {
		return true, wrapError(RenderSinkFailure, err, "updating map display")
	}

	self.emit(point, address, len(points))
	log.WithFields(log.Fields{
		"latitude":  point.Latitude,
		"longitude": point.Longitude,
		"points":    len(points),
	}).Infoln("Track updated")
	return true, nil
}

// readValues resolves the four source values from the store.
func (self *Service) readValues() (Reading, error) {
	refs := self.conf.Sources.Refs()
	values := make([]float64, len(fields))
	for i, field := range fields {
		ref := refs[field]
		if ref == "" {
			return Reading{}, newError(MissingConfiguration, fmt.Errorf("%s source not set", field))
		}
		raw, err := self.store.Get(valueKey(ref))
		if errors.Is(err, services.ErrKeyMissing) {
			return Reading{}, newError(MissingConfiguration, fmt.Errorf("no %s value yet from %s", field, ref))
		} else if err != nil {
			return Reading{}, wrapError(UpstreamServiceFailure, err, "reading "+ref)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Reading{}, newError(InvalidValue, &ValueError{Field: field, Raw: raw, Reason: "not numeric"})
		}
		values[i] = v
	}
	return Reading{
		Latitude:  values[0],
		Longitude: values[1],
		Altitude:  values[2],
		Speed:     values[3],
	}, nil
}

func (self *Service) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), self.conf.Timeout.Duration)
}

// checkCredential requires a Google Maps key, and optionally that Google
// accepts it. A verified key is not checked again.
func (self *Service) checkCredential() error {
	if self.conf.Provider != config.ProviderGoogle {
		return nil
	}
	key := self.conf.Api_Key
	if key == "" {
		return newError(InvalidCredential, errors.New("google maps api key is empty"))
	}
	if !self.conf.Verify || self.verified == key {
		return nil
	}
	ctx, cancel := self.context()
	defer cancel()
	err := self.verifier.Verify(ctx)
	if errors.Is(err, geocode.ErrRejected) {
		return wrapError(InvalidCredential, err, "google maps api key")
	} else if err != nil {
		return wrapError(UpstreamServiceFailure, err, "verifying google maps api key")
	}
	self.verified = key
	return nil
}

// reverseGeocode looks up the address of p at most once per cooldown. The
// attempt is timestamped (unix nanoseconds) before the lookup, so failures
// also wait out the cooldown. The previous address is kept on failure.
func (self *Service) reverseGeocode(p TrackPoint) string {
	address, _ := self.store.Get(KeyAddress)
	if self.geocoder == nil {
		return address
	}

	now := self.now()
	if value, err := self.store.Get(KeyAddressUpdated); err == nil {
		if ts, err := strconv.ParseInt(value, 10, 64); err == nil {
			if now.Sub(time.Unix(0, ts)) < self.conf.Geocode.Cooldown.Duration {
				geocodeTotal.WithLabelValues("cooldown").Inc()
				return address
			}
		}
	}
	cooldown := self.conf.Geocode.Cooldown.Duration
	ttl := uint64(math.Ceil(cooldown.Seconds()))
	if err := self.store.SetWithTTL(KeyAddressUpdated, strconv.FormatInt(now.UnixNano(), 10), ttl); err != nil {
		logError(wrapError(PersistenceFailure, err, "storing geocode timestamp"))
		return address
	}

	ctx, cancel := self.context()
	defer cancel()
	result, err := self.geocoder.Reverse(ctx, p.Latitude, p.Longitude)
	if err != nil {
		geocodeTotal.WithLabelValues("error").Inc()
		log.WithField("kind", UpstreamServiceFailure.String()).Warnln("Reverse geocoding failed:", err)
		return address
	}
	geocodeTotal.WithLabelValues("ok").Inc()
	if err := self.store.Set(KeyAddress, result); err != nil {
		logError(wrapError(PersistenceFailure, err, "storing address"))
	}
	return result
}

func (self *Service) emit(p TrackPoint, address string, count int) {
	fields := pubsub.Fields{
		"device":    "geotracker",
		"source":    "geotracker",
		"latitude":  p.Latitude,
		"longitude": p.Longitude,
		"altitude":  p.Altitude,
		"speed":     p.Speed,
		"geohash":   p.Geohash,
		"points":    count,
	}
	if address != "" {
		fields["address"] = address
	}
	ev := pubsub.NewEvent("geotracker", fields)
	ev.SetRetained(true)
	self.pub.Emit(ev)
}

// Event stores any source values carried by ev, returning true if there
// were any.
func (self *Service) Event(ev *pubsub.Event) bool {
	self.lock.Lock()
	defer self.lock.Unlock()
	if self.store == nil {
		return false
	}
	device := ev.Device()
	if device == "" {
		return false
	}
	matched := false
	for _, ref := range self.conf.Sources.Refs() {
		d, field := config.SplitRef(ref)
		if d != device {
			continue
		}
		value, ok := ev.Fields[field]
		if !ok {
			continue
		}
		var s string
		if f, ok := ev.FloatField(field); ok {
			s = strconv.FormatFloat(f, 'f', -1, 64)
		} else {
			s = fmt.Sprint(value)
		}
		if err := self.store.Set(valueKey(ref), s); err != nil {
			logError(wrapError(PersistenceFailure, err, "storing "+ref))
			continue
		}
		matched = true
	}
	return matched
}

func (self *Service) handle(ev *pubsub.Event) {
	if ev.Topic == "command/geotracker" {
		if ev.Command() == "update" {
			self.UpdateGeotracking()
		}
		return
	}
	if self.Event(ev) {
		self.UpdateGeotracking()
	}
}

// Run the service
func (self *Service) Run() error {
	self.lock.Lock()
	initialized := self.history != nil
	self.lock.Unlock()
	if !initialized && services.Config != nil {
		self.ConfigUpdated(services.Config)
	}
	// skip our own output and service chatter
	topics := pubsub.Except(
		pubsub.Exact("geotracker"),
		pubsub.Exact("heartbeat"),
		pubsub.Exact("query"),
		pubsub.Exact("config"),
		pubsub.Exact("alert"),
	)
	for ev := range services.Subscriber.Subscribe(topics) {
		self.handle(ev)
	}
	return nil
}

func (self *Service) queryStatus(q services.Question) services.Answer {
	self.lock.Lock()
	defer self.lock.Unlock()
	if self.history == nil {
		return services.Answer{Text: "geotracker not configured"}
	}
	points, err := self.history.Read()
	if err != nil {
		return services.Answer{Text: fmt.Sprintf("error reading history: %s", err)}
	}
	if len(points) == 0 {
		return services.Answer{Text: "No track points recorded"}
	}
	last := points[len(points)-1]
	text := fmt.Sprintf("At %.5f, %.5f (%.0fm, %.0f km/h)", last.Latitude, last.Longitude, last.Altitude, last.Speed)
	if address, err := self.store.Get(KeyAddress); err == nil && address != "" {
		text += " near " + address
	}
	ago := util.FriendlyDuration(self.now().Sub(last.Timestamp))
	text += fmt.Sprintf("\n%d points, %.1f km tracked, updated %s ago", len(points), TrackLength(points), ago)
	return services.Answer{Text: text, Json: last}
}

func (self *Service) queryValues(q services.Question) string {
	self.lock.Lock()
	defer self.lock.Unlock()
	if self.store == nil {
		return "geotracker not configured"
	}
	nodes, err := self.store.GetRecursive(KeyValues)
	if err != nil {
		return fmt.Sprintf("error reading values: %s", err)
	}
	if len(nodes) == 0 {
		return "No values received"
	}
	var lines []string
	for _, node := range nodes {
		lines = append(lines, strings.TrimPrefix(node.Key, KeyValues+"/")+": "+node.Value)
	}
	return strings.Join(lines, "\n")
}

func (self *Service) queryUpdate(q services.Question) string {
	if err := self.UpdateGeotracking(); err != nil {
		return fmt.Sprintf("Update failed: %s", err)
	}
	return "Track updated"
}

// QueryHandlers for the service
func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"status": self.queryStatus,
		"update": services.TextHandler(self.queryUpdate),
		"values": services.TextHandler(self.queryValues),
		"help": services.StaticHandler("" +
			"status: current position and track summary\n" +
			"values: latest source values received\n" +
			"update: record the current values now\n"),
	}
}
