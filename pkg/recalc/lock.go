package recalc

import "sync"

// upgradeableRWMutex is a reader-writer lock with an upgradeable read mode.
// At most one goroutine holds the upgradeable mode; it coexists with plain
// readers and excludes writers, and can promote itself to the write lock.
//
// The holder of the upgradeable mode may read the guarded fields without
// taking the read lock: no one else can write them.
type upgradeableRWMutex struct {
	upgrade sync.Mutex
	rw      sync.RWMutex
}

func (m *upgradeableRWMutex) RLock()   { m.rw.RLock() }
func (m *upgradeableRWMutex) RUnlock() { m.rw.RUnlock() }

// Lock takes the write lock directly.
func (m *upgradeableRWMutex) Lock() {
	m.upgrade.Lock()
	m.rw.Lock()
}

// Unlock releases a lock taken by Lock.
func (m *upgradeableRWMutex) Unlock() {
	m.rw.Unlock()
	m.upgrade.Unlock()
}

// UpgradeableLock takes the upgradeable read mode.
func (m *upgradeableRWMutex) UpgradeableLock() { m.upgrade.Lock() }

// UpgradeableUnlock releases the upgradeable read mode.
func (m *upgradeableRWMutex) UpgradeableUnlock() { m.upgrade.Unlock() }

// Upgrade promotes the upgradeable mode to the write lock. It waits for
// current readers to leave.
func (m *upgradeableRWMutex) Upgrade() { m.rw.Lock() }

// Downgrade returns from the write lock to the upgradeable mode.
func (m *upgradeableRWMutex) Downgrade() { m.rw.Unlock() }
