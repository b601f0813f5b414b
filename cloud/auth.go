package cloud

import (
	"fmt"
	"time"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/cryptox"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

// identityKey picks the identity the device signs with: hardware_id first,
// falling back to device_id, then a raw identity_key — the same precedence
// the original firmware's gw_identity_key uses.
func identityKey(cfg Config) string {
	if cfg.HardwareID != "" {
		return cfg.HardwareID
	}
	if cfg.DeviceID != "" {
		return cfg.DeviceID
	}
	return cfg.IdentityKey
}

// nowTimestamp returns the current time as an RFC 3339 UTC timestamp.
var nowTimestamp = func() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

func makeSignature(cfg Config, identity, timestamp string) (string, error) {
	if cfg.ManufacturingKey == "" {
		return "", gwerr.New("cloud.makeSignature", gwerr.InvalidArgument)
	}

	msg := identity + ":" + timestamp
	mac := cryptox.HMACSHA256([]byte(cfg.ManufacturingKey), []byte(msg))
	return cryptox.HexEncode(mac[:]), nil
}

// buildAuthPayload builds the JSON body sent to the bootstrap/secret
// endpoints: identity + timestamp + HMAC signature over "identity:timestamp".
func buildAuthPayload(cfg Config) (string, error) {
	identity := identityKey(cfg)
	if identity == "" {
		return "", gwerr.New("cloud.buildAuthPayload", gwerr.InvalidArgument)
	}

	ts := nowTimestamp()

	sig, err := makeSignature(cfg, identity, ts)
	if err != nil {
		return "", err
	}

	if cfg.HardwareID != "" {
		return fmt.Sprintf(`{"hardware_id":%q,"timestamp":%q,"signature":%q}`, cfg.HardwareID, ts, sig), nil
	}
	if cfg.DeviceID != "" {
		return fmt.Sprintf(`{"device_id":%q,"timestamp":%q,"signature":%q}`, cfg.DeviceID, ts, sig), nil
	}

	return "", gwerr.New("cloud.buildAuthPayload", gwerr.InvalidArgument)
}
