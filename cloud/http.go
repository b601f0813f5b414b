package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

const maxHTTPBody = 1024

type httpResult struct {
	Body       string
	StatusCode int
}

// postJSON POSTs payload to u and returns the status code and a body
// capped at maxHTTPBody bytes, matching the original firmware's fixed-size
// response buffer.
func postJSON(ctx context.Context, u URL, payload string, timeout time.Duration) (httpResult, error) {
	scheme := "http"
	if u.IsTLS() {
		scheme = "https"
	}
	fullURL := fmt.Sprintf("%s://%s:%d%s", scheme, u.Host, u.Port, u.Path)

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, fullURL, strings.NewReader(payload))
	if err != nil {
		return httpResult{}, gwerr.Wrap("cloud.postJSON", gwerr.InvalidArgument, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Connection", "close")

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return httpResult{}, gwerr.Wrap("cloud.postJSON", gwerr.TimedOut, err)
		}
		return httpResult{}, gwerr.Wrap("cloud.postJSON", gwerr.HostUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHTTPBody))
	if err != nil {
		return httpResult{}, gwerr.Wrap("cloud.postJSON", gwerr.IO, err)
	}

	return httpResult{Body: string(bytes.TrimRight(body, "\x00")), StatusCode: resp.StatusCode}, nil
}

// buildAPIURL resolves the concrete URL to call: an explicit override wins,
// otherwise it's apiBaseURL+pathSuffix (de-duplicating a trailing slash).
func buildAPIURL(explicitURL, apiBaseURL, pathSuffix string) (string, error) {
	if explicitURL != "" {
		return explicitURL, nil
	}
	if apiBaseURL == "" {
		return "", gwerr.New("cloud.buildAPIURL", gwerr.InvalidArgument)
	}

	if strings.HasSuffix(apiBaseURL, "/") {
		return apiBaseURL + strings.TrimPrefix(pathSuffix, "/"), nil
	}
	return apiBaseURL + pathSuffix, nil
}

// deriveSecretFromBootstrap rewrites a bootstrap URL's "/bootstrap" suffix
// to "/secret" — the fallback used only when neither secret_url nor
// api_base_url is configured but a bootstrap_url is.
func deriveSecretFromBootstrap(bootstrapURL string) (string, error) {
	const suffix = "/bootstrap"
	if !strings.HasSuffix(bootstrapURL, suffix) {
		return "", gwerr.New("cloud.deriveSecretFromBootstrap", gwerr.InvalidArgument)
	}
	return strings.TrimSuffix(bootstrapURL, suffix) + "/secret", nil
}
