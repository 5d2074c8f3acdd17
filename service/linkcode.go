package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()_+-=[]{}|;:<>?"
	codeLength   = 10
)

type pendingCode struct {
	code      string
	expiresAt time.Time
	timer     *time.Timer
}

// LinkCodeRegistry holds the outstanding one-time link codes. At most one
// code is outstanding per owner, and a code string is unique among all
// currently outstanding codes. State is process-local and intentionally lost
// on restart; users re-issue.
type LinkCodeRegistry struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	onExpire func(ownerID string)
	byOwner  map[string]*pendingCode
	byCode   map[string]string // code -> owner
}

// NewLinkCodeRegistry creates a registry issuing codes with the given TTL
func NewLinkCodeRegistry(ttl time.Duration) *LinkCodeRegistry {
	return &LinkCodeRegistry{
		ttl:     ttl,
		now:     time.Now,
		byOwner: make(map[string]*pendingCode),
		byCode:  make(map[string]string),
	}
}

// SetExpiryHandler installs the callback invoked when a code expires unused.
// Must be called before codes are issued.
func (r *LinkCodeRegistry) SetExpiryHandler(fn func(ownerID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = fn
}

// Issue generates and stores a new code for the owner. Returns
// ErrAlreadyPending if the owner already has an outstanding code.
func (r *LinkCodeRegistry) Issue(ownerID string) (string, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byOwner[ownerID]; exists {
		return "", time.Time{}, ErrAlreadyPending
	}

	code, err := r.generateCodeLocked()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate link code: %w", err)
	}

	expiresAt := r.now().Add(r.ttl)
	entry := &pendingCode{
		code:      code,
		expiresAt: expiresAt,
	}
	entry.timer = time.AfterFunc(r.ttl, func() {
		r.expire(ownerID, code)
	})
	r.byOwner[ownerID] = entry
	r.byCode[code] = ownerID

	log.WithField("ownerID", ownerID).Debug("Issued link code")

	return code, expiresAt, nil
}

// ResolveOwner returns the owner of an outstanding code
func (r *LinkCodeRegistry) ResolveOwner(code string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ownerID, ok := r.byCode[code]
	return ownerID, ok
}

// Claim atomically resolves and consumes a code. Exactly one of any number
// of racing claims for the same code succeeds.
func (r *LinkCodeRegistry) Claim(code string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ownerID, ok := r.byCode[code]
	if !ok {
		return "", false
	}

	r.removeLocked(ownerID)
	return ownerID, true
}

// Revoke removes the owner's outstanding code if present; no-op otherwise
func (r *LinkCodeRegistry) Revoke(ownerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byOwner[ownerID]; !exists {
		return false
	}

	r.removeLocked(ownerID)
	return true
}

// expire is the timer callback. A code consumed or revoked before the timer
// fires leaves no entry, or a newer entry with a different code; either way
// the callback must do nothing user-visible.
func (r *LinkCodeRegistry) expire(ownerID, code string) {
	r.mu.Lock()
	entry, ok := r.byOwner[ownerID]
	if !ok || entry.code != code {
		r.mu.Unlock()
		return
	}
	r.removeLocked(ownerID)
	onExpire := r.onExpire
	r.mu.Unlock()

	log.WithField("ownerID", ownerID).Info("Link code expired unused")
	if onExpire != nil {
		onExpire(ownerID)
	}
}

func (r *LinkCodeRegistry) removeLocked(ownerID string) {
	entry := r.byOwner[ownerID]
	entry.timer.Stop()
	delete(r.byCode, entry.code)
	delete(r.byOwner, ownerID)
}

// generateCodeLocked draws codes until one not currently outstanding comes
// up. Collisions are vanishingly rare at this length but the contract is to
// re-draw, never to hand out a duplicate.
func (r *LinkCodeRegistry) generateCodeLocked() (string, error) {
	buf := make([]byte, codeLength)
	for {
		for i := range buf {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
			if err != nil {
				return "", err
			}
			buf[i] = codeAlphabet[n.Int64()]
		}
		code := string(buf)
		if _, exists := r.byCode[code]; !exists {
			return code, nil
		}
	}
}
