package classifier

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Strategy assigns a category label to a piece of text. Implementations may
// fail; Classifier turns any failure into a fall-through to the next tier.
type Strategy interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Classifier composes a remote strategy with a deterministic local fallback.
// The remote tier is optional and bounded by a timeout; the local tier never
// fails, so Classify always produces a non-empty label.
type Classifier struct {
	remote  Strategy
	local   *Keyword
	timeout time.Duration
}

func New(remote Strategy, local *Keyword, timeout time.Duration) *Classifier {
	return &Classifier{
		remote:  remote,
		local:   local,
		timeout: timeout,
	}
}

func (c *Classifier) Classify(ctx context.Context, title string, summary string) string {
	text := strings.ToLower(strings.TrimSpace(title + "\n" + summary))

	if c.remote != nil {
		remoteCtx, cancel := context.WithTimeout(ctx, c.timeout)
		label, err := c.remote.Classify(remoteCtx, text)
		cancel()
		if err == nil {
			return label
		}
		log.WithFields(log.Fields{
			"error": err,
		}).Warn("Remote classification failed, falling back to keyword match")
	}

	// The keyword tier cannot fail.
	label, _ := c.local.Classify(ctx, text)
	return label
}
