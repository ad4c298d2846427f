package sync

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchResultAggregation(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	var batch BatchResult
	batch.add(StoreSyncResult{
		StoreID:              node.Generate(),
		OrdersChecked:        10,
		ProtectionSalesFound: 3,
		NewSalesInserted:     2,
		AlreadyExisting:      1,
		TotalRevenue:         1470,
		TotalCommission:      369,
	})
	batch.add(StoreSyncResult{
		StoreID: node.Generate(),
		Error:   "storefront responded 500",
	})
	batch.add(StoreSyncResult{
		StoreID:              node.Generate(),
		OrdersChecked:        5,
		ProtectionSalesFound: 1,
		NewSalesInserted:     1,
		TotalRevenue:         490,
		TotalCommission:      123,
	})

	require.Len(t, batch.Stores, 3)
	assert.Equal(t, 3, batch.StoresSynced)
	assert.Equal(t, 2, batch.SuccessfulSyncs)
	assert.Equal(t, 1, batch.FailedSyncs)
	assert.Equal(t, 15, batch.OrdersChecked)
	assert.Equal(t, 4, batch.ProtectionSalesFound)
	assert.Equal(t, 3, batch.NewSalesInserted)
	assert.Equal(t, 1, batch.AlreadyExisting)
	assert.Equal(t, int64(1960), batch.TotalRevenue)
	assert.Equal(t, int64(492), batch.TotalCommission)
}

// A failed store still contributes whatever it processed before failing.
func TestBatchResultCountsPartialWork(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	var batch BatchResult
	batch.add(StoreSyncResult{
		StoreID:          node.Generate(),
		OrdersChecked:    7,
		NewSalesInserted: 1,
		Error:            "list orders page 2: storefront responded 429",
	})

	assert.Equal(t, 1, batch.FailedSyncs)
	assert.Equal(t, 7, batch.OrdersChecked)
	assert.Equal(t, 1, batch.NewSalesInserted)
}
