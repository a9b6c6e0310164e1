package world

import (
	"strconv"
	"strings"
)

// Form values arrive as free text. The Parse helpers trim and lower-case
// them and fall back to the enum default for anything unrecognised.

func ParseCategory(s string) Category {
	return Category(normalize(s)).OrDefault()
}

func ParseLocationStatus(s string) LocationStatus {
	return LocationStatus(normalize(s)).OrDefault()
}

func ParseDiscoveryStage(s string) DiscoveryStage {
	return DiscoveryStage(normalize(s)).OrDefault()
}

func ParseChronicleStatus(s string) ChronicleStatus {
	return ChronicleStatus(normalize(s)).OrDefault()
}

// ParseCoordinate reads a map coordinate. Blank or malformed input is 0.
func ParseCoordinate(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
