package chain_test

import (
	"testing"
	"time"

	"supplychain/internal/adapters/out/ledger/chain"
	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newOrder(t *testing.T) *order.Order {
	t.Helper()
	parties, _ := order.NewParties("s", "b", "")
	commitment := services.NewCommitmentVerifier().Commit("10", "n")
	terms, _ := order.NewTerms(10, "enc", commitment, kernel.Commitment{})
	destination, _ := kernel.NewLocation(1, 1)
	o, err := order.NewOrder(kernel.NewUUID(), parties, terms, destination, fixedNow)
	require.NoError(t, err)
	return o
}

func TestLedger_RecordsFormAVerifiableChain(t *testing.T) {
	ledger := chain.NewLedger().WithClock(func() time.Time { return fixedNow })
	o := newOrder(t)
	loc, _ := kernel.NewLocation(1, 1)

	first, err := ledger.RecordCreate(t.Context(), o)
	require.NoError(t, err)
	_, err = ledger.RecordApprove(t.Context(), o.ID(), services.Proof{Value: "10", Nonce: "n"})
	require.NoError(t, err)
	_, err = ledger.RecordDeliver(t.Context(), o.ID(), loc)
	require.NoError(t, err)
	last, err := ledger.RecordPay(t.Context(), o.ID())
	require.NoError(t, err)

	assert.Equal(t, chain.Backend, first.Backend)
	assert.Equal(t, fixedNow, first.RecordedAt)
	assert.Equal(t, last.Reference, ledger.Head())
	assert.Equal(t, 4, ledger.Len())
	require.NoError(t, ledger.Verify())

	entries := ledger.Entries()
	assert.Equal(t, chain.GenesisHash, entries[0].PrevHash)
	assert.Equal(t, entries[0].Hash, entries[1].PrevHash)
	assert.Equal(t, "approve", entries[1].Kind)
	assert.NotContains(t, entries[1].Data, "value", "the opened value never reaches the ledger")
}

func TestLedger_EntriesAreCopies(t *testing.T) {
	// Arrange
	ledger := chain.NewLedger()
	o := newOrder(t)
	_, err := ledger.RecordCancel(t.Context(), o.ID(), "duplicate order")
	require.NoError(t, err)

	// Act
	entries := ledger.Entries()
	entries[0].Data["reason"] = "tampered"

	// Assert
	require.NoError(t, ledger.Verify())
	assert.Equal(t, "duplicate order", ledger.Entries()[0].Data["reason"])
}

func TestLedger_RejectsInvalidInput(t *testing.T) {
	ledger := chain.NewLedger()

	_, err := ledger.RecordPay(t.Context(), kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	_, err = ledger.RecordCreate(t.Context(), &order.Order{})
	require.ErrorIs(t, err, order.ErrOrderIsNotConstructed)
	assert.Zero(t, ledger.Len())
}
