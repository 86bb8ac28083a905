package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/anyswap/CKB-BatchTx/checkpoint"
	"github.com/anyswap/CKB-BatchTx/common"
	"github.com/anyswap/CKB-BatchTx/params"
	"github.com/anyswap/CKB-BatchTx/tokens"
	"github.com/anyswap/CKB-BatchTx/tokens/ckb"
	"github.com/anyswap/CKB-BatchTx/tokens/ckb/ckbtest"
	"github.com/nervosnetwork/ckb-sdk-go/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrivateKey = "0xd00c06bfd800d27397002dca6fb0993d5ba6399b4238b2f29ee9deb97593d2bc"

// lostResponseChain accepts transactions but loses the response
type lostResponseChain struct {
	*ckbtest.FakeChain
	lose bool
}

func (c *lostResponseChain) SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Hash, error) {
	hash, err := c.FakeChain.SendTransaction(ctx, tx)
	if err == nil && c.lose {
		return nil, errors.New("connection reset by peer")
	}
	return hash, err
}

func newTestBatchConfig() *params.BatchConfig {
	return &params.BatchConfig{
		TxCount:         params.DefaultTxCount,
		CellCapacity:    params.DefaultCellCapacity,
		SplitChunk:      params.DefaultSplitChunk,
		SendBatchSize:   params.DefaultSendBatchSize,
		MaxCollectCells: params.DefaultMaxCollectCells,
		FeeRate:         params.DefaultFeeRate,
	}
}

func newTestWorker(t *testing.T, client ckb.Client, config *params.BatchConfig) (*Worker, *checkpoint.Store) {
	key, err := ckb.NewKeyFromHex(testPrivateKey, ckb.TestnetParams)
	require.NoError(t, err)
	store, err := checkpoint.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewWorker(client, store, key, ckb.TestnetParams, config), store
}

func fundSender(w *Worker, chain *ckbtest.FakeChain, count int, ckbAmount uint64) {
	for i := 0; i < count; i++ {
		chain.AddCell(&types.CellOutput{Capacity: common.CKBToShannons(ckbAmount), Lock: w.sender()}, nil)
	}
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	chain := ckbtest.NewFakeChain()
	w, store := newTestWorker(t, chain, newTestBatchConfig())
	fundSender(w, chain, 20, 3200)

	// merge
	mergeHash, err := w.MergeUtxos(ctx)
	require.NoError(t, err)
	require.Len(t, chain.Sent, 1)
	mergeTx := chain.Sent[0]
	assert.Equal(t, mergeHash, mergeTx.Hash)
	assert.Len(t, mergeTx.Inputs, 20)
	require.Len(t, mergeTx.Outputs, 1)

	offer, err := store.GetOfferCell()
	require.NoError(t, err)
	mergedCapacity := offer.Capacity()
	assert.Equal(t, mergeTx.Outputs[0].Capacity, mergedCapacity)
	assert.Equal(t, types.Hash(offer.OutPoint.TxHash), mergeHash)
	assert.Less(t, mergedCapacity, common.CKBToShannons(64000))

	// split
	require.NoError(t, w.SplitCells(ctx, false))
	require.Len(t, chain.Sent, 3)
	splitCapacity := uint64(500) * common.CKBToShannons(62)
	for i, tx := range chain.Sent[1:] {
		require.Len(t, tx.Outputs, 501)
		for _, output := range tx.Outputs[1:] {
			assert.Equal(t, common.CKBToShannons(62), output.Capacity)
		}
		// output 0 is the change minus fee
		change := mergedCapacity - uint64(i)*(splitCapacity+common.ShannonsPerCKB) - splitCapacity
		assert.Less(t, tx.Outputs[0].Capacity, change)
		assert.Greater(t, tx.Outputs[0].Capacity, change-common.ShannonsPerCKB)
	}

	cells, err := store.GetSplitCells()
	require.NoError(t, err)
	require.Len(t, cells, 1000)
	for i, cell := range cells {
		tx := chain.Sent[1+i/500]
		assert.Equal(t, tx.Hash, types.Hash(cell.OutPoint.TxHash))
		assert.Equal(t, uint64(i%500+1), uint64(cell.OutPoint.Index))
	}
	offer, err = store.GetOfferCell()
	require.NoError(t, err)
	assert.Equal(t, mergedCapacity-2*splitCapacity-2*common.ShannonsPerCKB, offer.Capacity())
	assert.Equal(t, uint64(0), uint64(offer.OutPoint.Index))

	// batch send
	sentCount, err := w.BatchSendTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000, sentCount)
	assert.Equal(t, []int{400, 400, 200}, chain.BatchSizes)
	assert.Len(t, chain.Sent, 1003)
	for _, cell := range cells {
		assert.False(t, chain.IsLive(cell.OutPoint.ToCKB()))
	}
	for _, tx := range chain.Sent[3:] {
		require.Len(t, tx.Inputs, 1)
		require.Len(t, tx.Outputs, 1)
		assert.Equal(t, common.CKBToShannons(62)-710, tx.Outputs[0].Capacity)
	}

	// nothing left to send
	sentCount, err = w.BatchSendTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sentCount)
	assert.Len(t, chain.BatchSizes, 3)

	summary, err := store.GetSummary()
	require.NoError(t, err)
	assert.Equal(t, uint(1000), summary.BatchSentCount)
	assert.Empty(t, summary.PendingEntries)
}

func TestSplitMargin(t *testing.T) {
	config := newTestBatchConfig()
	config.TxCount = 5
	config.SplitChunk = 2
	w, _ := newTestWorker(t, ckbtest.NewFakeChain(), config)
	// 61 CKB change cell and 3 split txs of 1 CKB reserve
	assert.Equal(t, common.CKBToShannons(64), w.splitMargin())

	config.SplitChunk = 5
	assert.Equal(t, common.CKBToShannons(62), w.splitMargin())
}

func TestMergeWithSplitMargin(t *testing.T) {
	ctx := context.Background()
	chain := ckbtest.NewFakeChain()
	config := newTestBatchConfig()
	config.TxCount = 5
	config.SplitChunk = 2
	w, store := newTestWorker(t, chain, config)
	// one cell holds the 310 CKB target, the 64 CKB margin and the fees
	fundSender(w, chain, 1, 375)

	_, err := w.MergeUtxos(ctx)
	require.NoError(t, err)
	offer, err := store.GetOfferCell()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, offer.Capacity(), common.CKBToShannons(310)+w.splitMargin())

	require.NoError(t, w.SplitCells(ctx, false))
	cells, err := store.GetSplitCells()
	require.NoError(t, err)
	assert.Len(t, cells, 5)
}

func TestMergeCapReached(t *testing.T) {
	chain := ckbtest.NewFakeChain()
	config := newTestBatchConfig()
	config.TxCount = 10
	config.MaxCollectCells = 5
	w, store := newTestWorker(t, chain, config)
	fundSender(w, chain, 20, 100)

	_, err := w.MergeUtxos(context.Background())
	assert.True(t, errors.Is(err, tokens.ErrInsufficientFunds))
	assert.Empty(t, chain.Sent)
	assert.Equal(t, 20, chain.LiveCellsCount())
	_, err = store.GetOfferCell()
	assert.True(t, errors.Is(err, checkpoint.ErrNotFound))
}

func TestMergeDryRun(t *testing.T) {
	chain := ckbtest.NewFakeChain()
	config := newTestBatchConfig()
	config.TxCount = 5
	w, store := newTestWorker(t, chain, config)
	w.DryRun = true
	fundSender(w, chain, 2, 500)

	hash, err := w.MergeUtxos(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, types.Hash{}, hash)
	assert.Empty(t, chain.Sent)
	_, err = store.GetOfferCell()
	assert.True(t, errors.Is(err, checkpoint.ErrNotFound))
}

func TestSplitResumeAndReset(t *testing.T) {
	ctx := context.Background()
	chain := ckbtest.NewFakeChain()
	config := newTestBatchConfig()
	config.TxCount = 7
	config.SplitChunk = 3
	w, store := newTestWorker(t, chain, config)
	fundSender(w, chain, 1, 2000)

	err := w.SplitCells(ctx, false)
	assert.Error(t, err, "split without offer cell")

	_, err = w.MergeUtxos(ctx)
	require.NoError(t, err)
	require.NoError(t, w.SplitCells(ctx, false))
	require.Len(t, chain.Sent, 4)
	assert.Len(t, chain.Sent[1].Outputs, 4)
	assert.Len(t, chain.Sent[2].Outputs, 4)
	assert.Len(t, chain.Sent[3].Outputs, 2)

	cells, err := store.GetSplitCells()
	require.NoError(t, err)
	assert.Len(t, cells, 7)

	// enough cells, nothing to do
	require.NoError(t, w.SplitCells(ctx, false))
	assert.Len(t, chain.Sent, 4)

	// resume to a larger count
	config.TxCount = 9
	require.NoError(t, w.SplitCells(ctx, false))
	require.Len(t, chain.Sent, 5)
	assert.Len(t, chain.Sent[4].Outputs, 3)
	cells, err = store.GetSplitCells()
	require.NoError(t, err)
	assert.Len(t, cells, 9)

	// reset starts over from the current offer cell
	config.TxCount = 2
	require.NoError(t, w.SplitCells(ctx, true))
	require.Len(t, chain.Sent, 6)
	cells, err = store.GetSplitCells()
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, chain.Sent[5].Hash, types.Hash(cells[0].OutPoint.TxHash))
}

func TestSplitInsufficientOffer(t *testing.T) {
	ctx := context.Background()
	chain := ckbtest.NewFakeChain()
	config := newTestBatchConfig()
	config.TxCount = 5
	w, _ := newTestWorker(t, chain, config)
	fundSender(w, chain, 1, 350)

	_, err := w.MergeUtxos(ctx)
	require.NoError(t, err)

	// 350 CKB can not hold 5 * 62 CKB and the change cell
	err = w.SplitCells(ctx, false)
	assert.True(t, errors.Is(err, tokens.ErrInsufficientFunds))
	assert.Len(t, chain.Sent, 1)
}

func TestSplitFeeAboveReserve(t *testing.T) {
	ctx := context.Background()
	chain := ckbtest.NewFakeChain()
	config := newTestBatchConfig()
	config.TxCount = 5
	config.SplitChunk = 2
	config.FeeRate = 1000000000 // 10 CKB per KB, every split tx pays more than the reserve
	w, store := newTestWorker(t, chain, config)
	fundSender(w, chain, 1, 500)

	_, err := w.MergeUtxos(ctx)
	require.NoError(t, err)
	require.NoError(t, w.SplitCells(ctx, false))
	require.Len(t, chain.Sent, 4)

	// the recorded offer is the change output of the last split tx
	last := chain.Sent[3]
	offer, err := store.GetOfferCell()
	require.NoError(t, err)
	assert.Equal(t, last.Hash, types.Hash(offer.OutPoint.TxHash))
	assert.Equal(t, last.Outputs[0].Capacity, offer.Capacity())
	for i := 1; i < len(chain.Sent); i++ {
		fee := chain.Sent[i-1].Outputs[0].Capacity
		for _, output := range chain.Sent[i].Outputs {
			fee -= output.Capacity
		}
		assert.Greater(t, fee, offerReserve)
	}
}

func TestRecoverLostResponse(t *testing.T) {
	ctx := context.Background()
	chain := &lostResponseChain{FakeChain: ckbtest.NewFakeChain(), lose: true}
	config := newTestBatchConfig()
	config.TxCount = 5
	w, store := newTestWorker(t, chain, config)
	fundSender(w, chain.FakeChain, 1, 500)

	_, err := w.MergeUtxos(ctx)
	require.Error(t, err)
	require.Len(t, chain.Sent, 1)
	_, err = store.GetOfferCell()
	assert.True(t, errors.Is(err, checkpoint.ErrNotFound))
	entries, err := store.PendingEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// the merge tx is known by the chain, recovery commits the offer cell
	chain.lose = false
	require.NoError(t, w.SplitCells(ctx, false))
	offer, err := store.GetOfferCell()
	require.NoError(t, err)
	assert.NotEqual(t, chain.Sent[0].Hash, types.Hash(offer.OutPoint.TxHash))
	cells, err := store.GetSplitCells()
	require.NoError(t, err)
	assert.Len(t, cells, 5)
	assert.Equal(t, chain.Sent[1].Hash, types.Hash(cells[0].OutPoint.TxHash))
}

func TestRecoverRejectedSubmission(t *testing.T) {
	ctx := context.Background()
	chain := &lostResponseChain{FakeChain: ckbtest.NewFakeChain(), lose: true}
	config := newTestBatchConfig()
	config.TxCount = 5
	w, store := newTestWorker(t, chain, config)
	fundSender(w, chain.FakeChain, 1, 500)

	_, err := w.MergeUtxos(ctx)
	require.Error(t, err)
	require.Len(t, chain.Sent, 1)

	// the node dropped the merge tx later, recovery must not record its offer cell
	chain.SetTxStatus(chain.Sent[0].Hash, ckb.TxStatusRejected)
	require.NoError(t, w.Recover(ctx))
	entries, err := store.PendingEntries()
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = store.GetOfferCell()
	assert.True(t, errors.Is(err, checkpoint.ErrNotFound))
}

func TestRecoverUnsentSubmission(t *testing.T) {
	ctx := context.Background()
	chain := ckbtest.NewFakeChain()
	config := newTestBatchConfig()
	config.TxCount = 5
	config.SendBatchSize = 2
	w, store := newTestWorker(t, chain, config)
	fundSender(w, chain, 1, 500)

	_, err := w.MergeUtxos(ctx)
	require.NoError(t, err)
	require.NoError(t, w.SplitCells(ctx, false))

	// the second batch call fails and is not applied
	chain.FailBatch = 2
	sentCount, err := w.BatchSendTransactions(ctx)
	assert.True(t, errors.Is(err, ckbtest.ErrInjected))
	assert.Equal(t, 2, sentCount)
	entries, err := store.PendingEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	sentCount, err = w.BatchSendTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sentCount)
	assert.Equal(t, []int{2, 2, 2, 1}, chain.BatchSizes)

	sent, err := store.GetBatchSent()
	require.NoError(t, err)
	assert.Equal(t, uint(5), sent.Count())
	entries, err = store.PendingEntries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBatchSendDryRun(t *testing.T) {
	ctx := context.Background()
	chain := ckbtest.NewFakeChain()
	config := newTestBatchConfig()
	config.TxCount = 3
	w, store := newTestWorker(t, chain, config)
	fundSender(w, chain, 1, 500)

	_, err := w.MergeUtxos(ctx)
	require.NoError(t, err)
	require.NoError(t, w.SplitCells(ctx, false))

	w.DryRun = true
	sentCount, err := w.BatchSendTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sentCount)
	assert.Empty(t, chain.BatchSizes)
	sent, err := store.GetBatchSent()
	require.NoError(t, err)
	assert.Equal(t, uint(0), sent.Count())
}
