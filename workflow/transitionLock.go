package workflow

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/procurement_backend/config"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

// Redis lock is a best-effort optimization that keeps concurrent transition
// attempts on the same PR from racing into the database. Correctness must
// not depend on Redis: the store's status compare-and-swap is the guard
// that makes exactly one of two concurrent transitions win.
func obtainTransitionLock(ctx context.Context, logger *logrus.Logger, prId string) *redislock.Lock {
	redisLock := config.GetRedisLock()
	if redisLock == nil {
		return nil
	}

	lock, err := redisLock.Obtain(ctx, "pr-transition:"+prId, 10*time.Second, nil)
	if err != nil {
		if err == redislock.ErrNotObtained {
			logger.WithFields(logrus.Fields{
				"funcName": "obtainTransitionLock",
				"pr_id":    prId,
			}).Warn("could not obtain transition lock; proceeding with status CAS only")
		} else {
			config.LogError(logger, "transitionLock.go", "obtainTransitionLock", "Obtain", prId, err)
		}
		return nil
	}
	return lock
}

func releaseTransitionLock(ctx context.Context, lock *redislock.Lock) {
	if lock != nil {
		_ = lock.Release(ctx)
	}
}
