package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZonesByActionSortsZones(t *testing.T) {
	bindings := map[string]string{
		"top":   "home",
		"right": "next",
		"left":  "next",
	}

	bound := zonesByAction(bindings)

	// Map iteration order varies, the inverted lists must not.
	assert.Equal(t, []string{"left", "right"}, bound["next"])
	assert.Equal(t, []string{"top"}, bound["home"])
}

func TestZonesByActionEmpty(t *testing.T) {
	assert.Empty(t, zonesByAction(nil))
}
