package cloud

import (
	"strconv"
	"strings"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

// Scheme is a recognized URL scheme for bootstrap/secret/broker endpoints.
type Scheme int

const (
	SchemeHTTP Scheme = iota
	SchemeHTTPS
	SchemeWS
	SchemeWSS
)

// maxHostLen and maxPathLen mirror the original firmware's fixed
// host[96]/path[128] buffers — an oversized hostname or path is rejected
// rather than silently truncated.
const (
	maxHostLen = 96
	maxPathLen = 128
)

// URL is a minimal parsed representation covering exactly what the cloud
// client needs: scheme, host, port, path.
type URL struct {
	Scheme Scheme
	Host   string
	Port   uint16
	Path   string
}

// IsTLS reports whether Scheme requires a TLS dial.
func (u URL) IsTLS() bool {
	return u.Scheme == SchemeHTTPS || u.Scheme == SchemeWSS
}

// ParseURL parses raw, defaulting the scheme to defaultScheme when raw has
// none, and the path to "/mqtt" (when defaultPathMQTT) or "/" when raw has
// no path component. Supports a bracketed IPv6 host.
func ParseURL(raw string, defaultScheme Scheme, defaultPathMQTT bool) (URL, error) {
	var out URL

	authority := raw
	out.Scheme = defaultScheme

	if idx := strings.Index(raw, "://"); idx >= 0 {
		schemeStr := raw[:idx]
		authority = raw[idx+3:]

		switch schemeStr {
		case "http":
			out.Scheme = SchemeHTTP
		case "https":
			out.Scheme = SchemeHTTPS
		case "ws":
			out.Scheme = SchemeWS
		case "wss":
			out.Scheme = SchemeWSS
		default:
			return URL{}, gwerr.New("cloud.ParseURL", gwerr.NotSupported)
		}
	}

	var path string
	hostEnd := len(authority)
	if slash := strings.IndexByte(authority, '/'); slash >= 0 {
		path = authority[slash:]
		hostEnd = slash
	} else if defaultPathMQTT {
		path = "/mqtt"
	} else {
		path = "/"
	}

	hostPart := authority[:hostEnd]
	host, portStr, err := splitHostPort(hostPart)
	if err != nil {
		return URL{}, err
	}
	if host == "" {
		return URL{}, gwerr.New("cloud.ParseURL", gwerr.BufferTooSmall)
	}
	if len(host) > maxHostLen {
		return URL{}, gwerr.New("cloud.ParseURL", gwerr.BufferTooSmall)
	}
	if len(path) > maxPathLen {
		return URL{}, gwerr.New("cloud.ParseURL", gwerr.BufferTooSmall)
	}
	out.Host = host

	if portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil || p <= 0 || p > 65535 {
			return URL{}, gwerr.New("cloud.ParseURL", gwerr.InvalidArgument)
		}
		out.Port = uint16(p)
	} else {
		switch out.Scheme {
		case SchemeHTTP, SchemeWS:
			out.Port = 80
		case SchemeHTTPS, SchemeWSS:
			out.Port = 443
		}
	}

	out.Path = path
	return out, nil
}

// splitHostPort handles both "[::1]:443" and "host:443" forms without
// requiring the host to resolve — net.SplitHostPort rejects a bare host
// with no port, which ParseURL must still accept.
func splitHostPort(hostPort string) (host, port string, err error) {
	if strings.HasPrefix(hostPort, "[") {
		end := strings.IndexByte(hostPort, ']')
		if end < 0 {
			return "", "", gwerr.New("cloud.splitHostPort", gwerr.InvalidArgument)
		}
		host = hostPort[1:end]
		rest := hostPort[end+1:]
		if strings.HasPrefix(rest, ":") {
			port = rest[1:]
		}
		return host, port, nil
	}

	if idx := strings.LastIndexByte(hostPort, ':'); idx >= 0 {
		return hostPort[:idx], hostPort[idx+1:], nil
	}

	return hostPort, "", nil
}
