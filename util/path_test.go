package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandUser(t *testing.T) {
	t.Setenv("HOME", "/home/geo")
	assert.Equal(t, "/home/geo/abc", ExpandUser("~/abc"))
	assert.Equal(t, "/home/geo", ExpandUser("~"))
	assert.Equal(t, "/tmp/abc", ExpandUser("/tmp/abc"))
	assert.Equal(t, "~abc", ExpandUser("~abc"))
}
