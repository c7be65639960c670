package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/barnybug/geotracker/config"
	"github.com/barnybug/geotracker/services"
	"github.com/barnybug/geotracker/services/api"
	"github.com/barnybug/geotracker/services/geotracker"
)

func registerServices() {
	// register available services
	services.Register(&api.Service{})
	services.Register(&geotracker.Service{})
}

func usage() {
	fmt.Println("Usage: geotracker COMMAND [ARGS]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("   config  [filename...]         Publish config (default: ~/.config/geotracker/geotracker.yml)")
	fmt.Println("   run     [service...]          Run services (default: geotracker api)")
	fmt.Println("   send    device key=value...   Publish a device event, eg. send gps.car latitude=48.2")
	fmt.Println("   status                        Current position and track summary")
	fmt.Println("   update                        Record the current values now")
	fmt.Println("   query   ...                   Query services")
	fmt.Println()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	ps := []string{}
	if flag.NArg() > 1 {
		ps = flag.Args()[1:]
	}
	// ignore anything after '--'
	for i := range ps {
		if ps[i] == "--" {
			ps = ps[0:i]
			break
		}
	}

	services.SetupLogging()

	command := flag.Args()[0]
	switch command {
	default:
		usage()
	case "config":
		if len(ps) == 0 {
			ps = []string{config.ConfigPath("geotracker.yml")}
		}
		publishConfig(ps)
	case "run":
		if len(ps) == 0 {
			ps = []string{"geotracker", "api"}
		}
		service(ps)
	case "send":
		if len(ps) < 2 {
			usage()
			return
		}
		send(ps[0], ps[1:])
	case "status":
		query("geotracker/status", []string{}, url.Values{"timeout": {"15000"}, "responses": {"1"}})
	case "update":
		update()
	case "query":
		if len(ps) == 0 {
			usage()
			return
		}
		query(ps[0], ps[1:], url.Values{"timeout": {"15000"}, "responses": {"1"}})
	}
}

// Start builtin services
func service(ss []string) {
	services.Setup("geotracker")
	registerServices()
	services.Launch(ss)
}
