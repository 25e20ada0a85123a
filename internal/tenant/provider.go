package tenant

import "sync"

// Provider holds the current scope and fans out change notifications.
// Subscribers receive the full replacement scope; when a subscriber lags, the
// oldest buffered value is dropped in favor of the newest, so the last value
// a subscriber sees is always the current selection.
type Provider struct {
	mu    sync.RWMutex
	scope Scope
	subs  []chan Scope
}

func NewProvider(initial Scope) *Provider {
	return &Provider{scope: initial}
}

// Scope returns the current tenant selection.
func (p *Provider) Scope() Scope {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scope
}

// Replace swaps in a new scope and notifies subscribers. Invalid scopes are
// rejected before any notification goes out.
func (p *Provider) Replace(s Scope) error {
	if err := s.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.scope = s
	subs := make([]chan Scope, len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- s:
		default:
			// Buffer full: evict the oldest value so the newest always
			// lands. Intermediate selections are superseded anyway.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
	return nil
}

// Subscribe registers a buffered channel receiving scope replacements.
func (p *Provider) Subscribe() <-chan Scope {
	ch := make(chan Scope, 8)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}
