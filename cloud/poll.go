package cloud

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/gwerr"
)

const defaultPollInterval = 30 * time.Second

// Poller retries Client.Connect on a ticker, using the bootstrap-supplied
// poll interval once known, and reports each status transition to OnChange.
// This lives outside the synchronous Connect/Retry contract — it's the
// thing a real gateway binary wires up to drive retries.
type Poller struct {
	client       *Client
	onChange     func(Status)
	minInterval  time.Duration
	lastStatus   Status
}

// NewPoller builds a Poller over client. minInterval floors the retry
// cadence even if the server suggests something shorter.
func NewPoller(client *Client, minInterval time.Duration) *Poller {
	if minInterval <= 0 {
		minInterval = time.Second
	}
	return &Poller{client: client, minInterval: minInterval}
}

// OnChange registers a callback invoked whenever the client's claim status
// changes (including the first successful read).
func (p *Poller) OnChange(fn func(Status)) {
	p.onChange = fn
}

// Run blocks, retrying Connect until it succeeds or ctx is cancelled.
// Every outcome other than Retry/HostUnreachable/TimedOut is terminal and
// returned to the caller; those three keep the loop going.
func (p *Poller) Run(ctx context.Context) error {
	interval := defaultPollInterval

	for {
		err := p.client.Connect(ctx)
		if err == nil {
			p.notify()
			return nil
		}

		if !retryable(err) {
			return err
		}

		p.notify()
		if poll := p.client.PollIntervalS(); poll > 0 {
			candidate := time.Duration(poll) * time.Second
			if candidate > p.minInterval {
				interval = candidate
			} else {
				interval = p.minInterval
			}
		}

		log.WithField("retry_in", interval).Debug("cloud connect not ready, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (p *Poller) notify() {
	status := p.client.Status()
	if status == p.lastStatus {
		return
	}
	p.lastStatus = status
	if p.onChange != nil {
		p.onChange(status)
	}
}

func retryable(err error) bool {
	return gwerr.Is(err, gwerr.Retry) ||
		gwerr.Is(err, gwerr.HostUnreachable) ||
		gwerr.Is(err, gwerr.TimedOut)
}
