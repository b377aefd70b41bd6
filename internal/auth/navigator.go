package auth

import "sync"

// PendingRedirect records the last navigation so a request handler can turn it
// into an HTTP redirect once the operation returns.
type PendingRedirect struct {
	mu   sync.Mutex
	path string
}

// Navigate implements Navigator.
func (p *PendingRedirect) Navigate(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.path = path
}

// Destination returns the recorded path, if any.
func (p *PendingRedirect) Destination() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path, p.path != ""
}

// Reset forgets the recorded path.
func (p *PendingRedirect) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.path = ""
}
