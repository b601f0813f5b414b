package cloud

import (
	"strconv"
	"strings"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

// jsonFindKey locates `"key":` in json and returns the index right after
// the colon, or -1 if not found. It deliberately does not parse the whole
// document — the response bodies here are small, flat objects.
func jsonFindKey(json, key string) int {
	pattern := "\"" + key + "\""
	idx := strings.Index(json, pattern)
	if idx < 0 {
		return -1
	}

	colon := strings.IndexByte(json[idx+len(pattern):], ':')
	if colon < 0 {
		return -1
	}

	return idx + len(pattern) + colon + 1
}

// jsonGetString extracts the quoted string value of key from json.
func jsonGetString(json, key string) (string, error) {
	p := jsonFindKey(json, key)
	if p < 0 {
		return "", gwerr.New("cloud.jsonGetString", gwerr.NoData)
	}

	rest := strings.TrimLeft(json[p:], " \t")
	if len(rest) == 0 || rest[0] != '"' {
		return "", gwerr.New("cloud.jsonGetString", gwerr.BadMessage)
	}
	rest = rest[1:]

	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", gwerr.New("cloud.jsonGetString", gwerr.BadMessage)
	}

	return rest[:end], nil
}

// jsonGetUint extracts the decimal integer value of key from json.
func jsonGetUint(json, key string) (uint32, error) {
	p := jsonFindKey(json, key)
	if p < 0 {
		return 0, gwerr.New("cloud.jsonGetUint", gwerr.NoData)
	}

	rest := strings.TrimLeft(json[p:], " \t")

	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, gwerr.New("cloud.jsonGetUint", gwerr.BadMessage)
	}

	v, err := strconv.ParseUint(rest[:end], 10, 32)
	if err != nil {
		return 0, gwerr.Wrap("cloud.jsonGetUint", gwerr.BadMessage, err)
	}

	return uint32(v), nil
}
