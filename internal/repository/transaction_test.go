package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/game/pet"
	"github.com/wfunc/pet-game/internal/models"
)

func TestTransactionManager_BeginCommit(t *testing.T) {
	db := newTestDB(t)
	manager := NewTransactionManager(db)
	ctx := context.Background()

	tx, err := manager.BeginWithOptions(ctx, &TxOptions{ReadOnly: true})
	require.NoError(t, err)
	assert.NotNil(t, tx.GetDB())
	assert.Equal(t, ctx, tx.Context())

	require.NoError(t, tx.Commit())
	assert.Error(t, tx.Commit())
	assert.Error(t, tx.Rollback())
}

func TestTransactionManager_CommitsAcrossRepositories(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	ctx := context.Background()

	_, err := m.Wallet().Credit(ctx, "alice", 100, LedgerRef{Type: models.TxTypeGrant})
	require.NoError(t, err)
	require.NoError(t, m.Pet().Create(ctx, CreateTestPet("mint-1", "alice", 1000)))

	err = m.WithTransaction(ctx, func(tx *Transaction) error {
		p, err := tx.Pet().LockForUpdate(ctx, "mint-1")
		if err != nil {
			return err
		}
		if _, err := tx.Wallet().Debit(ctx, p.Owner, 10, LedgerRef{Type: models.TxTypeBurn, RefID: p.PetID}); err != nil {
			return err
		}
		s := p.State()
		s.Hunger = 0
		s.Energy = 100
		if err := tx.Pet().SaveState(ctx, p.PetID, s); err != nil {
			return err
		}
		return tx.PetEvent().Create(ctx, &models.PetEvent{EventID: "ev-1", PetID: p.PetID, Owner: p.Owner, Action: "feed", OccurredAt: 1000})
	})
	require.NoError(t, err)

	w, err := m.Wallet().FindByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(90), w.Balance)

	events, err := m.PetEvent().ListByPet(ctx, "mint-1", NewPagination(1, 10))
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestTransactionManager_RollbackOnError(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	ctx := context.Background()

	_, err := m.Wallet().Credit(ctx, "alice", 100, LedgerRef{Type: models.TxTypeGrant})
	require.NoError(t, err)
	require.NoError(t, m.Pet().Create(ctx, CreateTestPet("mint-1", "alice", 1000)))

	boom := errors.New("boom")
	err = m.WithTransaction(ctx, func(tx *Transaction) error {
		if _, err := tx.Wallet().Debit(ctx, "alice", 10, LedgerRef{Type: models.TxTypeBurn}); err != nil {
			return err
		}
		if err := tx.Pet().SaveState(ctx, "mint-1", pet.State{Hunger: 99, LastObservedAt: 9999}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// 余额、宠物、流水全部保持原样
	w, err := m.Wallet().FindByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), w.Balance)

	p, err := m.Pet().FindByPetID(ctx, "mint-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), p.LastObservedAt)
	assert.Equal(t, uint8(0), p.Hunger)

	burned, err := m.TransactionRepo().SumByType(ctx, "alice", models.TxTypeBurn)
	require.NoError(t, err)
	assert.Zero(t, burned)
}

func TestTransactionManager_InsufficientFundsRollsBack(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	ctx := context.Background()

	require.NoError(t, m.Pet().Create(ctx, CreateTestPet("mint-1", "alice", 1000)))

	err := m.WithTransaction(ctx, func(tx *Transaction) error {
		if err := tx.Pet().SaveState(ctx, "mint-1", pet.State{Hunger: 50, LastObservedAt: 4600}); err != nil {
			return err
		}
		_, err := tx.Wallet().Debit(ctx, "alice", 10, LedgerRef{Type: models.TxTypeBurn})
		return err
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientTokens))

	p, err := m.Pet().FindByPetID(ctx, "mint-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), p.LastObservedAt)
}

func TestManager_WithTransactionOptions(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	ctx := context.Background()
	opts := &TxOptions{IsolationLevel: sql.LevelReadCommitted}

	// SQLite 忽略隔离级别，事务语义不变
	err := m.WithTransactionOptions(ctx, opts, func(tx *Transaction) error {
		_, err := tx.Wallet().Credit(ctx, "alice", 100, LedgerRef{Type: models.TxTypeGrant})
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.WithTransactionOptions(ctx, opts, func(tx *Transaction) error {
		if _, err := tx.Wallet().Debit(ctx, "alice", 40, LedgerRef{Type: models.TxTypeBurn}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	w, err := m.Wallet().FindByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), w.Balance)
}

func TestTransactionManager_PanicRollsBack(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = m.WithTransaction(ctx, func(tx *Transaction) error {
			_, _ = tx.Wallet().Credit(ctx, "alice", 5, LedgerRef{Type: models.TxTypeMint})
			panic("boom")
		})
	})

	_, err := m.Wallet().FindByOwner(ctx, "alice")
	assert.True(t, apperrors.Is(err, apperrors.ErrWalletNotFound))
}
