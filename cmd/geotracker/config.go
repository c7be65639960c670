package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/barnybug/geotracker/config"
	"github.com/barnybug/geotracker/pubsub"
	"github.com/barnybug/geotracker/services"
	"github.com/barnybug/geotracker/util"
)

func publishConfig(filenames []string) {
	// concatenate files together
	data := &bytes.Buffer{}
	for _, filename := range filenames {
		f, err := os.Open(filename)
		if err != nil {
			fmtFatalf("Error opening %s: %s\n", filename, err)
		}
		_, err = io.Copy(data, f)
		f.Close()
		if err != nil {
			fmtFatalf("Error reading %s: %s\n", filename, err)
		}
		data.WriteByte('\n')
	}

	// refuse to publish config the services would reject
	if _, err := config.OpenRaw(data.Bytes()); err != nil {
		fmtFatalf("Invalid config: %s\n", err)
	}

	fields := pubsub.Fields{
		"config": data.String(),
	}
	ev := pubsub.NewEvent("config", fields)
	ev.SetRetained(true) // config messages are retained
	services.SetupBroker("geotracker-cli")
	services.Publisher.Emit(ev)
	services.Shutdown()
	fmt.Printf("Updated config (%d bytes)\n", data.Len())
}

func send(device string, args []string) {
	words, fields := util.ParseArgs(args)
	if len(words) > 0 {
		fmtFatalf("Expected key=value, got: %s\n", strings.Join(words, " "))
	}
	fields["device"] = device
	ev := pubsub.NewEvent(device, fields)
	services.SetupBroker("geotracker-cli")
	services.Publisher.Emit(ev)
	services.Shutdown()
	fmt.Println(ev)
}
