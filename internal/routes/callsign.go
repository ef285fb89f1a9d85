package routes

import "regexp"

// callsignPattern matches flight-identifier callsigns: a three-letter
// operator code, one digit, then up to four more letters or digits.
// Tokens that do not fit this shape (registrations, garbled decodes) have
// no entry in the route dataset and are dropped rather than looked up.
var callsignPattern = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z0-9]{0,4}$`)

// ValidCallsign reports whether token is a well-formed callsign.
// Case-sensitive, no whitespace tolerance.
func ValidCallsign(token string) bool {
	return callsignPattern.MatchString(token)
}
