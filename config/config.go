package config

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/barnybug/geotracker/lib/mapview"
	"github.com/barnybug/geotracker/util"
)

const (
	ProviderGoogle = "google"
	ProviderOSM    = "osm"
)

type Duration struct {
	time.Duration
}

func (self *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		// also accept days and weeks, eg. 1d
		if d, err = util.ParseDuration(s); err != nil {
			return fmt.Errorf("invalid duration %q", s)
		}
	}
	self.Duration = d
	return nil
}

type EarthConf struct {
	Latitude  float64
	Longitude float64
}

type EndpointsConf struct {
	Mqtt struct {
		Broker string
	}
	Redis string
	Api   string
}

// SourcesConf names the device fields the four track values are read from,
// as `device.field`, eg. `gps.car.latitude`.
type SourcesConf struct {
	Latitude  string
	Longitude string
	Altitude  string
	Speed     string
}

// Refs maps each track field to its source reference.
func (self SourcesConf) Refs() map[string]string {
	return map[string]string{
		"latitude":  self.Latitude,
		"longitude": self.Longitude,
		"altitude":  self.Altitude,
		"speed":     self.Speed,
	}
}

// SplitRef splits a source reference into device and field. The field is
// the last dot separated component.
func SplitRef(ref string) (device, field string) {
	i := strings.LastIndex(ref, ".")
	if i <= 0 || i == len(ref)-1 {
		return "", ""
	}
	return ref[:i], ref[i+1:]
}

type HistoryConf struct {
	Path      string
	Retention int
}

type GeocodeConf struct {
	Enabled  bool
	Cooldown Duration
	Url      string
}

type MapConf struct {
	Width  string
	Height string
	Zoom   int
}

type GeotrackerConf struct {
	Sources  SourcesConf
	Provider string
	Api_Key  string
	Verify   bool
	Record   string
	History  HistoryConf
	Geocode  GeocodeConf
	Map      MapConf
	Timeout  Duration
}

// Configuration structure
type Config struct {
	Endpoints  EndpointsConf
	Earth      EarthConf
	Geotracker GeotrackerConf
}

// Open configuration from disk.
func Open() (*Config, error) {
	file, err := os.Open(ConfigPath("geotracker.yml"))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return OpenReader(file)
}

// Open configuration from a reader.
func OpenReader(r io.Reader) (*Config, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return OpenRaw(data)
}

// Open configuration from []byte.
func OpenRaw(data []byte) (*Config, error) {
	self := &Config{}
	err := yaml.Unmarshal(data, self)
	if err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := self.Geotracker.setDefaults(); err != nil {
		return nil, err
	}
	return self, nil
}

func (self *GeotrackerConf) setDefaults() error {
	switch self.Provider {
	case "":
		self.Provider = ProviderGoogle
	case ProviderGoogle, ProviderOSM:
	default:
		return fmt.Errorf("geotracker: unknown provider %q", self.Provider)
	}
	for field, ref := range self.Sources.Refs() {
		if ref == "" {
			continue
		}
		if device, _ := SplitRef(ref); device == "" {
			return fmt.Errorf("geotracker: %s source %q is not device.field", field, ref)
		}
	}
	if self.History.Path == "" {
		self.History.Path = ConfigPath("track.jsonl")
	}
	self.History.Path = util.ExpandUser(self.History.Path)
	if self.History.Retention == 0 {
		self.History.Retention = 1000
	}
	if self.Geocode.Cooldown.Duration == 0 {
		self.Geocode.Cooldown.Duration = 120 * time.Second
	}
	if self.Map.Width == "" {
		self.Map.Width = "500px"
	}
	if self.Map.Height == "" {
		self.Map.Height = "400px"
	}
	if !mapview.IsLength(self.Map.Width) {
		return fmt.Errorf("geotracker: map width %q is not a css length", self.Map.Width)
	}
	if !mapview.IsLength(self.Map.Height) {
		return fmt.Errorf("geotracker: map height %q is not a css length", self.Map.Height)
	}
	if self.Map.Zoom == 0 {
		self.Map.Zoom = 6
	}
	if self.Timeout.Duration == 0 {
		self.Timeout.Duration = 10 * time.Second
	}
	return nil
}

func Must(c *Config, err error) *Config {
	if err != nil {
		panic(err)
	}
	return c
}

// helpers

// Resolve a configuration file under .config/geotracker
func ConfigPath(p string) string {
	config := os.Getenv("XDG_CONFIG_HOME")
	if config == "" {
		config = path.Join(os.Getenv("HOME"), ".config")
	}
	return path.Join(config, "geotracker", p)
}
