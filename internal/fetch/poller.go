package fetch

import (
	"context"
	"log"
	"time"
)

// DefaultPollInterval is how often the poller re-fetches the page.
const DefaultPollInterval = 10 * time.Second

// Snapshotter produces a fresh page snapshot.
type Snapshotter func(ctx context.Context) (*Result, error)

// Poller re-fetches the page on an interval and reports snapshots whose
// content actually changed. It is the change-notification collaborator:
// delivery is best-effort and the consumer debounces.
type Poller struct {
	snapshot Snapshotter
	interval time.Duration
	onChange func(*Result)
	verbose  bool

	lastChecksum string
}

// NewPoller creates a Poller calling onChange for every changed snapshot.
func NewPoller(snapshot Snapshotter, interval time.Duration, onChange func(*Result), verbose bool) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{snapshot: snapshot, interval: interval, onChange: onChange, verbose: verbose}
}

// Run polls until ctx is done. The first successful snapshot always
// counts as a change. Fetch failures are logged and skipped; the page
// being briefly unreachable must never surface as an error.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	result, err := p.snapshot(ctx)
	if err != nil {
		if p.verbose {
			log.Printf("[POLL] snapshot failed: %v", err)
		}
		return
	}
	if result.Checksum == p.lastChecksum {
		return
	}
	p.lastChecksum = result.Checksum
	if p.verbose {
		log.Printf("[POLL] page changed (%d bytes)", len(result.HTML))
	}
	p.onChange(result)
}
