// Package routes resolves aircraft callsigns to inferred flight routes
// stored in the backing key-value store. Route data itself is produced by
// an out-of-band inference pipeline; this package only looks it up,
// synthesizes defaults for unknown callsigns, and writes admin updates.
package routes

// UnknownCodes is the sentinel stored in both airport code fields when no
// route is known for a callsign.
const UnknownCodes = "unknown"

// RouteRecord is the persisted and returned route entry for one callsign.
// The leading underscore on the IATA field is part of the wire format used
// by tar1090-style front ends and must be preserved.
type RouteRecord struct {
	AirportCodesIATA string `json:"_airport_codes_iata"`
	AirportCodes     string `json:"airport_codes"`
	Callsign         string `json:"callsign"`
	Plausible        int    `json:"plausible"`
}

// PlaneInstance is a single aircraft in a routeset request. Position is
// informational only and ignored by route resolution.
type PlaneInstance struct {
	Callsign string   `json:"callsign"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

// UnknownRoute returns the default record for a callsign with no stored
// route: both code fields "unknown", plausible 0, callsign echoed back.
func UnknownRoute(callsign string) RouteRecord {
	return RouteRecord{
		AirportCodesIATA: UnknownCodes,
		AirportCodes:     UnknownCodes,
		Callsign:         callsign,
		Plausible:        0,
	}
}
