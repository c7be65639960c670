package services

import (
	"fmt"
	"hash/fnv"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/barnybug/geotracker/config"
	"github.com/barnybug/geotracker/pubsub"
	"github.com/barnybug/geotracker/pubsub/mqtt"
	"github.com/barnybug/geotracker/util"
)

// Service interface
type Service interface {
	ID() string
	Run() error
}

// ServiceInit is implemented by services that check their setup once the
// first config has arrived. An error is fatal.
type ServiceInit interface {
	Service
	Init() error
}

// ConfigSubscriber is notified when a new configuration is published.
type ConfigSubscriber interface {
	ConfigUpdated(conf *config.Config)
}

var serviceMap map[string]Service = map[string]Service{}
var enabled []Service
var Config *config.Config

var Publisher pubsub.Publisher
var Subscriber pubsub.Subscriber
var Stor Store

type ConfigWaiter struct {
	Value   []byte
	hash    uint32
	events  <-chan *pubsub.Event
	update  func()
	Updated chan bool
}

func (c *ConfigWaiter) Wait() {
	if c.loopOne() {
		if c.update != nil {
			c.update()
		}
		c.notify()
	}
}

func (c *ConfigWaiter) notify() {
	// non-blocking send
	select {
	case c.Updated <- true:
	default:
	}
}

func (c *ConfigWaiter) loopOne() bool {
	ev := <-c.events
	value := []byte(ev.StringField("config"))
	hashValue := hash(value)
	if c.hash == hashValue {
		// ignore duplicate retained config
		return false
	}
	c.hash = hashValue
	c.Value = value
	return true
}

type ConfigService struct {
	ConfigWaiter
	Value *config.Config
}

func NewConfigService() *ConfigService {
	cs := &ConfigService{
		ConfigWaiter: ConfigWaiter{
			events:  Subscriber.Subscribe(pubsub.Exact("config")),
			Updated: make(chan bool),
		},
	}
	cs.update = func() {
		// (re)load config
		conf, err := config.OpenRaw(cs.ConfigWaiter.Value)
		if err != nil {
			log.Errorln("Error reading config:", err)
			return
		}
		cs.Value = conf
		Config = conf // set global
		for _, service := range enabled {
			if s, ok := service.(ConfigSubscriber); ok {
				s.ConfigUpdated(conf)
			}
		}
	}
	return cs
}

func SetupLogging() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
	level, err := log.ParseLevel(os.Getenv("GEOTRACKER_LOG_LEVEL"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func hash(s []byte) uint32 {
	h := fnv.New32a()
	h.Write(s)
	return h.Sum32()
}

var globalConfigService *ConfigService

func WaitForConfig() *ConfigService {
	if globalConfigService == nil {
		globalConfigService = NewConfigService()
		// await first config
		for globalConfigService.Value == nil {
			globalConfigService.Wait()
		}
		// listen for updates
		go globalConfigService.Watch()
	}
	return globalConfigService
}

func (c *ConfigService) Watch() {
	for {
		c.Wait()
	}
}

// localEndpoints reads endpoints from the local config file, if any. The
// environment takes precedence.
func localEndpoints() config.EndpointsConf {
	conf, err := config.Open()
	if err != nil {
		return config.EndpointsConf{}
	}
	return conf.Endpoints
}

func SetupBroker(name string) {
	url := os.Getenv("GEOTRACKER_MQTT")
	if url == "" {
		url = localEndpoints().Mqtt.Broker
	}
	if url == "" {
		log.Fatalln("Set GEOTRACKER_MQTT to the mqtt server. eg: tcp://127.0.0.1:1883")
	}

	broker := mqtt.NewBroker(url, name)
	Publisher = broker.Publisher()
	Subscriber = broker.Subscriber()
}

func SetupStore() {
	address := os.Getenv("GEOTRACKER_REDIS")
	if address == "" {
		address = localEndpoints().Redis
	}
	if address == "" {
		log.Fatalln("Set GEOTRACKER_REDIS to the redis server. eg: 127.0.0.1:6379")
	}
	store, err := NewRedisStore(address)
	if err != nil {
		log.Fatalln("Failed to connect to redis:", err)
	}
	Stor = store
}

func Setup(name string) {
	SetupBroker(name)
	SetupStore()
}

func Launch(ss []string) {
	enabled = []Service{}
	for _, name := range ss {
		if service, ok := serviceMap[name]; ok {
			enabled = append(enabled, service)
		} else {
			log.Fatalf("Service %s does not exist", name)
		}
	}

	// listen for commands
	go QuerySubscriber()

	for _, service := range enabled {
		log.Infof("Starting %s", service.ID())
		WaitForConfig()
		if service, ok := service.(ServiceInit); ok {
			err := service.Init()
			if err != nil {
				log.Fatalf("Error init service %s: %s", service.ID(), err)
			}
			log.Infof("Initialized %s", service.ID())
		}
	}

	errs := make(chan error, len(enabled))
	for _, service := range enabled {
		go Heartbeat(service.ID())
		go func(service Service) {
			err := service.Run()
			if err != nil {
				err = fmt.Errorf("service %s: %w", service.ID(), err)
			}
			errs <- err
		}(service)
	}
	for range enabled {
		if err := <-errs; err != nil {
			log.Fatalln("Error running", err)
		}
	}
}

func Heartbeat(id string) {
	started := time.Now()
	device := fmt.Sprintf("heartbeat.%s", id)
	fields := pubsub.Fields{
		"device":  device,
		"pid":     os.Getpid(),
		"started": started.Format(time.RFC3339),
	}

	// wait 5 seconds before heartbeating - if the process dies very soon
	time.Sleep(time.Second * 5)

	for {
		fields["uptime"] = int(time.Since(started).Seconds())
		fields["friendly"] = util.FriendlyDuration(time.Since(started))
		ev := pubsub.NewEvent("heartbeat", fields)
		ev.SetRetained(true)
		Publisher.Emit(ev)
		time.Sleep(time.Second * 60)
	}
}

func Register(service Service) {
	if _, exists := serviceMap[service.ID()]; exists {
		log.Fatalf("Duplicate service registered: %s", service.ID())
	}
	serviceMap[service.ID()] = service
}

func Shutdown() {
	if Publisher != nil {
		Publisher.Close()
	}
}
