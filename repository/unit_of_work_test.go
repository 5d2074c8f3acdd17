package repository

import (
	"context"
	"testing"

	"steward/models"
	"steward/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersists(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	user, err := uow.UserRepository().Create(ctx, "alice", 100)
	require.NoError(t, err)

	entry := testutil.CreateTestLedgerEntry(user.ID, 100, 100, models.LedgerReasonInitial)
	require.NoError(t, uow.LedgerRepository().Record(ctx, entry))

	require.NoError(t, uow.Commit())

	// Visible outside the transaction after commit
	outside := NewUserRepository(testDB.DB)
	found, err := outside.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(100), found.Balance)

	entries, err := NewLedgerRepository(testDB.DB).ListByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.LedgerReasonInitial, entries[0].Reason)
}

func TestUnitOfWork_RollbackDiscards(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	user, err := uow.UserRepository().Create(ctx, "bob", 50)
	require.NoError(t, err)
	require.NoError(t, uow.Rollback())

	outside := NewUserRepository(testDB.DB)
	found, err := outside.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUnitOfWork_RollbackAfterCommitIsNoop(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.UserRepository().Create(ctx, "carol", 0)
	require.NoError(t, err)

	require.NoError(t, uow.Commit())
	assert.NoError(t, uow.Rollback())
}

func TestUnitOfWork_DoubleBeginFails(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	assert.Error(t, uow.Begin(ctx))
}
