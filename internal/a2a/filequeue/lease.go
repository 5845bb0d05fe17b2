package filequeue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"

	"choreographer/pkg/platform/sentinel"
)

const (
	DefaultLeaseTTL       = 10 * time.Second
	DefaultAcquireTimeout = 5 * time.Second
	defaultPollDelay      = 100 * time.Millisecond
)

type leaseRecord struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LeaseLock is a cross-process lock backed by an O_EXCL lock file. A holder
// that crashes leaves a lease which others may steal once it expires.
type LeaseLock struct {
	path           string
	ttl            time.Duration
	acquireTimeout time.Duration
	pollDelay      time.Duration
	now            func() time.Time

	// beforeSteal runs between the expiry check and the rename (tests).
	beforeSteal func()
}

// Lease is a held lock. Release it exactly once.
type Lease struct {
	lock  *LeaseLock
	token string
}

// NewLeaseLock creates a lock at path. Non-positive durations use defaults.
func NewLeaseLock(path string, ttl, acquireTimeout time.Duration) *LeaseLock {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	if acquireTimeout <= 0 {
		acquireTimeout = DefaultAcquireTimeout
	}
	return &LeaseLock{
		path:           path,
		ttl:            ttl,
		acquireTimeout: acquireTimeout,
		pollDelay:      defaultPollDelay,
		now:            time.Now,
	}
}

// Acquire polls until the lock is held, the acquire timeout passes
// (sentinel.ErrLockTimeout) or ctx is done.
func (l *LeaseLock) Acquire(ctx context.Context) (*Lease, error) {
	deadline := l.now().Add(l.acquireTimeout)
	for {
		lease, err := l.tryCreate()
		if err == nil {
			return lease, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, err
		}

		stolen, err := l.removeIfExpired()
		if err != nil {
			return nil, err
		}
		if stolen {
			continue
		}

		if !l.now().Before(deadline) {
			return nil, fmt.Errorf("%w: %s", sentinel.ErrLockTimeout, l.path)
		}
		timer := time.NewTimer(l.pollDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *LeaseLock) tryCreate() (*Lease, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	rec := leaseRecord{Token: uuid.NewString(), ExpiresAt: l.now().Add(l.ttl)}
	encodeErr := json.NewEncoder(f).Encode(rec)
	closeErr := f.Close()
	if err := errors.Join(encodeErr, closeErr); err != nil {
		_ = os.Remove(l.path)
		return nil, fmt.Errorf("write lease %s: %w", l.path, err)
	}
	return &Lease{lock: l, token: rec.Token}, nil
}

// removeIfExpired steals a lock file whose lease has lapsed. The file is
// renamed aside first so only one contender can take it, then the renamed
// copy is checked to be the same expired lease. An unreadable lock file is
// judged by its modification time.
func (l *LeaseLock) removeIfExpired() (bool, error) {
	seen, expired, err := l.inspect(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil || !expired {
		return false, err
	}

	if l.beforeSteal != nil {
		l.beforeSteal()
	}
	aside := l.path + "." + uuid.NewString() + ".stale"
	if err := os.Rename(l.path, aside); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("steal expired lease %s: %w", l.path, err)
	}
	got, stillExpired, err := l.inspect(aside)
	if err == nil && got.Token == seen.Token && stillExpired {
		_ = os.Remove(aside)
		return true, nil
	}
	// Took someone else's fresh lease; put it back.
	return false, l.restore(aside)
}

// restore moves aside back into place unless a new lock file already exists.
func (l *LeaseLock) restore(aside string) error {
	defer os.Remove(aside)
	if err := os.Link(aside, l.path); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("restore lease %s: %w", l.path, err)
	}
	return nil
}

func (l *LeaseLock) inspect(path string) (leaseRecord, bool, error) {
	var rec leaseRecord
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, false, err
	}
	if err := json.Unmarshal(data, &rec); err == nil && !rec.ExpiresAt.IsZero() {
		return rec, l.now().After(rec.ExpiresAt), nil
	}
	rec = leaseRecord{}
	info, err := os.Stat(path)
	if err != nil {
		return rec, false, err
	}
	return rec, l.now().Sub(info.ModTime()) > l.ttl, nil
}

// Release removes the lock file only if it still holds this lease's token.
// The file is renamed aside before the token check so a lease stolen and
// recreated by another process is never deleted.
func (le *Lease) Release() error {
	l := le.lock
	aside := l.path + "." + le.token + ".release"
	if err := os.Rename(l.path, aside); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("release lease %s: %w", l.path, err)
	}
	data, err := os.ReadFile(aside)
	if err != nil {
		return errors.Join(fmt.Errorf("read lease %s: %w", aside, err), l.restore(aside))
	}
	var rec leaseRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Token != le.token {
		return l.restore(aside)
	}
	if err := os.Remove(aside); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("release lease %s: %w", l.path, err)
	}
	return nil
}
