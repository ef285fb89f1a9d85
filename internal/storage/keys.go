package storage

import "strings"

// RouteKeyPrefix namespaces route entries in the shared key space.
const RouteKeyPrefix = "route:"

// RouteKey returns the store key for a callsign.
func RouteKey(callsign string) string {
	return RouteKeyPrefix + callsign
}

// CallsignFromKey strips the route namespace from a store key.
func CallsignFromKey(key string) string {
	return strings.TrimPrefix(key, RouteKeyPrefix)
}
