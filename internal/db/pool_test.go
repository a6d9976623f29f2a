package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var _ Pool = (*pgxpool.Pool)(nil)

func TestPool_MockSatisfiesInterface(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	var pool Pool = mock
	mock.ExpectPing()
	require.NoError(t, pool.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
