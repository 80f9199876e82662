package lock

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/webhook-relay/internal/domain/entities"
)

func TestRedisLocker_UnreachableServer(t *testing.T) {
	g := NewWithT(t)

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	locker := NewRedisLocker(client, time.Second, nil)
	defer locker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	_, err := locker.Lock(ctx, "260305-sync")
	g.Expect(err).To(MatchError(entities.ErrLockNotAcquired))
	g.Expect(time.Since(start)).To(BeNumerically("<", time.Second))
}
