package ckb

import (
	"context"
	"fmt"
	"io"

	"github.com/anyswap/CKB-BatchTx/log"
	"github.com/anyswap/CKB-BatchTx/tokens"
	ckbtypes "github.com/anyswap/CKB-BatchTx/types"
	mapset "github.com/deckarep/golang-set"
	"github.com/nervosnetwork/ckb-sdk-go/indexer"
	"github.com/nervosnetwork/ckb-sdk-go/types"
)

const (
	// DefaultPageSize indexer page size of get_cells
	DefaultPageSize = 100
	// DefaultMaxCollectCells max number of cells collected for one target
	DefaultMaxCollectCells = 100

	searchOrderAsc = indexer.SearchOrder("asc")
)

// CollectResult cells collected for a target capacity
type CollectResult struct {
	Cells    []*ckbtypes.Cell
	Capacity uint64
}

// CellProvider provides more input cells when paying fee
type CellProvider interface {
	Next(ctx context.Context) (*ckbtypes.Cell, error)
}

// CellCollector iterates live plain capacity cells of a lock in ascending order
type CellCollector struct {
	client   Client
	lock     *types.Script
	pageSize uint64
	maxCells int

	excluded mapset.Set

	cursor    string
	buffer    []*indexer.LiveCell
	exhausted bool
}

var _ CellProvider = &CellCollector{}

// NewCellCollector new collector of cells owned by lock.
// maxCells caps the number of cells returned by Collect (0 means default).
func NewCellCollector(client Client, lock *types.Script, maxCells int) *CellCollector {
	if maxCells <= 0 {
		maxCells = DefaultMaxCollectCells
	}
	return &CellCollector{
		client:   client,
		lock:     lock,
		pageSize: DefaultPageSize,
		maxCells: maxCells,
		excluded: mapset.NewSet(),
	}
}

// SetPageSize set indexer page size
func (c *CellCollector) SetPageSize(size uint64) {
	if size > 0 {
		c.pageSize = size
	}
}

// Exclude never return cells of these out points
func (c *CellCollector) Exclude(ops ...*types.OutPoint) {
	for _, op := range ops {
		c.excluded.Add(ckbtypes.NewOutPoint(op).Key())
	}
}

// IsExcluded is out point excluded
func (c *CellCollector) IsExcluded(op *types.OutPoint) bool {
	return c.excluded.Contains(ckbtypes.NewOutPoint(op).Key())
}

// Next return the next spendable cell, io.EOF if there is no more.
// The returned cell is excluded from later calls.
func (c *CellCollector) Next(ctx context.Context) (*ckbtypes.Cell, error) {
	for {
		if len(c.buffer) == 0 {
			if c.exhausted {
				return nil, io.EOF
			}
			if err := c.fetchPage(ctx); err != nil {
				return nil, err
			}
			continue
		}
		liveCell := c.buffer[0]
		c.buffer = c.buffer[1:]
		if !isPlainCell(liveCell) || c.IsExcluded(liveCell.OutPoint) {
			continue
		}
		c.Exclude(liveCell.OutPoint)
		return ckbtypes.NewCell(liveCell.Output, liveCell.OutputData, liveCell.OutPoint), nil
	}
}

func (c *CellCollector) fetchPage(ctx context.Context) error {
	searchKey := &indexer.SearchKey{
		Script:     c.lock,
		ScriptType: indexer.ScriptTypeLock,
	}
	cells, err := c.client.GetCells(ctx, searchKey, searchOrderAsc, c.pageSize, c.cursor)
	if err != nil {
		return err
	}
	if cells == nil || len(cells.Objects) == 0 {
		c.exhausted = true
		return nil
	}
	c.buffer = append(c.buffer, cells.Objects...)
	c.cursor = cells.LastCursor
	if uint64(len(cells.Objects)) < c.pageSize {
		c.exhausted = true
	}
	log.Trace("fetch live cells page", "count", len(cells.Objects), "cursor", c.cursor)
	return nil
}

// cells with type script or data are not spendable as plain capacity
func isPlainCell(cell *indexer.LiveCell) bool {
	return cell.Output != nil && cell.Output.Type == nil && len(cell.OutputData) == 0
}

// Collect accumulate cells until target capacity is reached.
// It returns ErrInsufficientFunds when cells run out or the cap of
// collected cells is reached before the target. At most maxCells cells
// are ever fetched, the cell after the cap is not tried.
func (c *CellCollector) Collect(ctx context.Context, target uint64) (*CollectResult, error) {
	result := &CollectResult{}
	for result.Capacity < target {
		if len(result.Cells) >= c.maxCells {
			return nil, fmt.Errorf("%w: collected %d cells with capacity %v, target %v",
				tokens.ErrInsufficientFunds, len(result.Cells), result.Capacity, target)
		}
		cell, err := c.Next(ctx)
		if err == io.EOF {
			return nil, fmt.Errorf("%w: no more cells, collected capacity %v, target %v",
				tokens.ErrInsufficientFunds, result.Capacity, target)
		}
		if err != nil {
			return nil, err
		}
		result.Cells = append(result.Cells, cell)
		result.Capacity += cell.Capacity()
	}
	log.Debug("collect cells success", "cells", len(result.Cells), "capacity", result.Capacity, "target", target)
	return result, nil
}

// TotalCapacity sum capacity of all live plain cells of lock
func TotalCapacity(ctx context.Context, client Client, lock *types.Script) (total uint64, count int, err error) {
	collector := NewCellCollector(client, lock, 0)
	for {
		cell, err := collector.Next(ctx)
		if err == io.EOF {
			return total, count, nil
		}
		if err != nil {
			return 0, 0, err
		}
		total += cell.Capacity()
		count++
	}
}
