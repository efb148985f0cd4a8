package bot

import "sync"

// KeyRing rotates through a pool of completion API keys so a single key's
// rate limit does not throttle every room at once.
type KeyRing struct {
	keys []string
	next int
	mu   sync.Mutex
}

func NewKeyRing(keys []string) *KeyRing {
	return &KeyRing{keys: keys}
}

// Next returns the next key in round-robin order, or "" when the ring is
// empty.
func (r *KeyRing) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.keys) == 0 {
		return ""
	}
	key := r.keys[r.next]
	r.next = (r.next + 1) % len(r.keys)
	return key
}

// Size reports how many keys the ring holds.
func (r *KeyRing) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}
