package email

import (
	"context"
	"sync"

	"memberhub_backend/internal/logger"
)

// LogProvider writes messages to the log instead of sending them. Used in
// development and tests; it keeps the last messages for inspection.
type LogProvider struct {
	mu   sync.Mutex
	sent []Email
}

func NewLogProvider() *LogProvider {
	return &LogProvider{}
}

func (p *LogProvider) Send(ctx context.Context, email *Email) error {
	p.mu.Lock()
	p.sent = append(p.sent, *email)
	if len(p.sent) > 100 {
		p.sent = p.sent[len(p.sent)-100:]
	}
	p.mu.Unlock()

	logger.CtxInfo(ctx, "email (log provider)",
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}

// Sent returns a copy of the captured messages.
func (p *LogProvider) Sent() []Email {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Email, len(p.sent))
	copy(out, p.sent)
	return out
}

func (p *LogProvider) Validate() error { return nil }
func (p *LogProvider) Close() error    { return nil }
