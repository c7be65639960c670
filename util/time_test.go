package util

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ExampleFriendlyDuration() {
	d1, _ := time.ParseDuration("48h")
	d2, _ := time.ParseDuration("26.5h")
	d3, _ := time.ParseDuration("5h59m")
	d4, _ := time.ParseDuration("37m1s")
	d5, _ := time.ParseDuration("1500ms")
	d6, _ := time.ParseDuration("500ms")
	d7, _ := time.ParseDuration("500ns")
	d8, _ := time.ParseDuration("0ms")

	fmt.Println(FriendlyDuration(d1))
	fmt.Println(FriendlyDuration(d2))
	fmt.Println(FriendlyDuration(d3))
	fmt.Println(FriendlyDuration(d4))
	fmt.Println(FriendlyDuration(d5))
	fmt.Println(FriendlyDuration(d6))
	fmt.Println(FriendlyDuration(d7))
	fmt.Println(FriendlyDuration(d8))
	// Output:
	// 2 days
	// 1 day 2 hours
	// 5 hours 59 minutes
	// 37 minutes 1 second
	// 1 second
	// 500 milliseconds
	// 500 nanoseconds
	// 0 seconds
}

func ExampleParseDuration() {
	d1, _ := ParseDuration("2m")
	d2, _ := ParseDuration("1d")
	d3, _ := ParseDuration("1w 2d")
	fmt.Println(d1)
	fmt.Println(d2)
	fmt.Println(d3)
	// Output:
	// 2m0s
	// 24h0m0s
	// 216h0m0s
}

func TestParseDurationInvalid(t *testing.T) {
	for _, s := range []string{"", "d", "1x", "1.5d", "1d2d3d"} {
		_, err := ParseDuration(s)
		assert.Error(t, err, s)
	}
}
