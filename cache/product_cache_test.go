package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minishop/logger"
	"minishop/models"
)

var mug = &models.Product{PublicID: "p1", Name: "Mug", Price: 1000, AvailableQuantity: 3}

func TestGetMissLoadsAndStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewProductCache(db, time.Minute, logger.Discard())
	data, err := json.Marshal(mug)
	require.NoError(t, err)

	mock.ExpectGet(ProductKey("p1")).RedisNil()
	mock.ExpectSet(ProductKey("p1"), data, time.Minute).SetVal("OK")

	calls := 0
	p, err := c.Get(context.Background(), "p1", func(context.Context, string) (*models.Product, error) {
		calls++
		return mug, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Mug", p.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHitSkipsLoader(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewProductCache(db, time.Minute, logger.Discard())
	data, err := json.Marshal(mug)
	require.NoError(t, err)

	mock.ExpectGet(ProductKey("p1")).SetVal(string(data))

	p, err := c.Get(context.Background(), "p1", func(context.Context, string) (*models.Product, error) {
		t.Fatal("loader must not run on a cache hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), p.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFallsBackWhenRedisFails(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewProductCache(db, time.Minute, logger.Discard())
	data, err := json.Marshal(mug)
	require.NoError(t, err)

	mock.ExpectGet(ProductKey("p1")).SetErr(errors.New("connection refused"))
	mock.ExpectSet(ProductKey("p1"), data, time.Minute).SetErr(errors.New("connection refused"))

	p, err := c.Get(context.Background(), "p1", func(context.Context, string) (*models.Product, error) {
		return mug, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.PublicID)
}

func TestGetPropagatesLoaderError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewProductCache(db, time.Minute, logger.Discard())
	notFound := errors.New("not found")

	mock.ExpectGet(ProductKey("p9")).RedisNil()

	_, err := c.Get(context.Background(), "p9", func(context.Context, string) (*models.Product, error) {
		return nil, notFound
	})
	assert.ErrorIs(t, err, notFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadOutlivesCallerCancellation(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewProductCache(db, time.Minute, logger.Discard())
	data, err := json.Marshal(mug)
	require.NoError(t, err)

	mock.ExpectGet(ProductKey("p1")).RedisNil()
	mock.ExpectSet(ProductKey("p1"), data, time.Minute).SetVal("OK")

	// the load is shared with any caller collapsed onto the same key, so the
	// first caller's cancellation must not reach the loader
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, err := c.Get(ctx, "p1", func(ctx context.Context, _ string) (*models.Product, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return mug, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewProductCache(db, time.Minute, logger.Discard())

	mock.ExpectDel(ProductKey("p1"), ProductKey("p2")).SetVal(2)

	c.Invalidate(context.Background(), "p1", "p2")
	assert.NoError(t, mock.ExpectationsWereMet())
}
