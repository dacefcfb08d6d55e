//go:build integration

package lock_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/lock"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RedisLockerIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
	locker    *lock.RedisLocker
}

func (suite *RedisLockerIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	suite.Require().NoError(err)
	suite.container = container

	endpoint, err := container.Endpoint(ctx, "")
	suite.Require().NoError(err)

	suite.client = redis.NewClient(&redis.Options{Addr: endpoint})
	suite.locker = lock.NewRedisLocker(suite.client, "dispatch:test:")
}

func (suite *RedisLockerIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.client.FlushAll(context.Background()).Err())
}

func (suite *RedisLockerIntegrationTestSuite) TearDownSuite() {
	if suite.client != nil {
		_ = suite.client.Close()
	}
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *RedisLockerIntegrationTestSuite) TestTryLock_SecondHolderIsRefused() {
	ctx := suite.T().Context()

	unlock, ok, err := suite.locker.TryLock(ctx, "sweeper", time.Minute)
	suite.Require().NoError(err)
	suite.Require().True(ok)

	_, ok, err = suite.locker.TryLock(ctx, "sweeper", time.Minute)
	suite.Require().NoError(err)
	suite.False(ok)

	suite.Require().NoError(unlock(ctx))
	_, ok, err = suite.locker.TryLock(ctx, "sweeper", time.Minute)
	suite.Require().NoError(err)
	suite.True(ok)
}

func (suite *RedisLockerIntegrationTestSuite) TestUnlock_AfterExpiry_DoesNotReleaseNewHolder() {
	ctx := suite.T().Context()

	stale, ok, err := suite.locker.TryLock(ctx, "sweeper", 100*time.Millisecond)
	suite.Require().NoError(err)
	suite.Require().True(ok)

	suite.Eventually(func() bool {
		_, taken, lockErr := suite.locker.TryLock(ctx, "sweeper", time.Minute)
		return lockErr == nil && taken
	}, 2*time.Second, 50*time.Millisecond)

	suite.ErrorIs(stale(ctx), lock.ErrLockLost)
	_, ok, err = suite.locker.TryLock(ctx, "sweeper", time.Minute)
	suite.Require().NoError(err)
	suite.False(ok, "the new holder must keep the lease")
}

func TestRedisLockerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RedisLockerIntegrationTestSuite))
}
