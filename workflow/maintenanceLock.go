package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/itehadironstore/steelbooks_backend/config"
	"gorm.io/gorm"
)

// MaintenanceLock gates offline maintenance passes so they never run
// concurrently with live writers or with each other. The MySQL advisory
// lock is the lock of record; the redis lock is a best-effort optimization
// across instances and is skipped when redis is unavailable.
type MaintenanceLock struct {
	db        *gorm.DB
	name      string
	redisLock *redislock.Lock
}

// AcquireMaintenanceLock takes both locks. GET_LOCK is connection-scoped,
// so release must happen on the same *gorm.DB.
func AcquireMaintenanceLock(ctx context.Context, db *gorm.DB, name string, ttl time.Duration) (*MaintenanceLock, error) {
	lockName := fmt.Sprintf("maintenance:%s", name)

	var ok int
	if err := db.Raw("SELECT GET_LOCK(?, 5)", lockName).Scan(&ok).Error; err != nil {
		return nil, err
	}
	if ok != 1 {
		return nil, fmt.Errorf("could not acquire maintenance lock %q; another maintenance pass is running", name)
	}

	lock := &MaintenanceLock{db: db, name: lockName}
	if locker := config.GetRedisLock(); locker != nil {
		redisLock, err := locker.Obtain(ctx, "lock:"+lockName, ttl, nil)
		if err == nil {
			lock.redisLock = redisLock
		}
		// Not obtained or redis error: proceed; the advisory lock already
		// serializes within this database.
	}
	return lock, nil
}

func (l *MaintenanceLock) Release(ctx context.Context) {
	if l.redisLock != nil {
		_ = l.redisLock.Release(ctx)
	}
	var ok int
	_ = l.db.Raw("SELECT RELEASE_LOCK(?)", l.name).Scan(&ok).Error
}
