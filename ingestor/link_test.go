// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ingestor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nchashch/sdk/chainhash"
)

func rec(label string, burnIndex uint32, inputs ...ParentOutpoint) record {
	return record{
		tx:        ParentTx{Txid: chainhash.HashH([]byte(label)), Inputs: inputs, Outputs: []uint64{1}},
		burnIndex: burnIndex,
	}
}

func TestSortDepositsEmpty(t *testing.T) {
	t.Parallel()
	ordered, err := sortDeposits(nil)
	require.NoError(t, err)
	require.Nil(t, ordered)
}

func TestSortDepositsSingleChain(t *testing.T) {
	t.Parallel()
	a := rec("a", 0)
	b := rec("b", 0, a.outpoint())
	c := rec("c", 0, b.outpoint())

	ordered, err := sortDeposits([]record{c, a, b})
	require.NoError(t, err)
	require.Equal(t, []record{a, b, c}, ordered)
}

func TestSortDepositsRejectsMultipleRoots(t *testing.T) {
	t.Parallel()
	a := rec("a", 0)
	b := rec("b", 0)

	_, err := sortDeposits([]record{a, b})
	require.Error(t, err)
}

// TestSortDepositsRejectsPartialCoverage covers a chunk where a record
// spends the root's output but a later record also spends it, so the
// spending-graph walk from the root only reaches some of the records.
func TestSortDepositsRejectsPartialCoverage(t *testing.T) {
	t.Parallel()
	a := rec("a", 0)
	orphan := rec("orphan", 0, a.outpoint())
	d := rec("d", 0, a.outpoint())

	_, err := sortDeposits([]record{a, orphan, d})
	require.Error(t, err)
}

// TestSortDepositsRejectsCycle covers a chunk whose spending graph loops
// back on itself once the walk leaves the root: b spends both the root
// and c, while c spends b.
func TestSortDepositsRejectsCycle(t *testing.T) {
	t.Parallel()
	a := rec("a", 0)
	b := rec("b", 0, a.outpoint(), ParentOutpoint{Txid: chainhash.HashH([]byte("c")), Vout: 0})
	c := rec("c", 0, b.outpoint())

	_, err := sortDeposits([]record{a, b, c})
	require.Error(t, err)
}
