// Package profile names the gateway's deployment personality — a purely
// descriptive label surfaced in logs and the status endpoint, carried over
// from the original firmware's gw_profile module (dropped from the
// distilled spec but present in the source this module is rehosted from).
package profile

import "github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"

type Profile int

const (
	IIoTGateway Profile = iota
	GenericGateway
	LightingGateway
)

var names = [...]string{
	"iiot_gateway",
	"generic_gateway",
	"lighting_gateway",
}

// Name returns p's name, or "unknown" for an out-of-range value.
func Name(p Profile) string {
	if p < 0 || int(p) >= len(names) {
		return "unknown"
	}
	return names[p]
}

// FromName looks up a Profile by its Name().
func FromName(name string) (Profile, error) {
	for i, n := range names {
		if n == name {
			return Profile(i), nil
		}
	}
	return 0, gwerr.New("profile.FromName", gwerr.InvalidArgument)
}
