package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemsCSV = `order_id,order_item_id,product_id,seller_id,price,freight_value
o1,1,p1,s1,100.00,10.5
o1,2,p2,s1,25.50,3.1
o2,1,p1,s2,42.00,7.0
`

const ordersCSV = `order_id,customer_id,order_status,order_purchase_timestamp,order_delivered_customer_date,order_estimated_delivery_date
o1,c1,delivered,2023-01-05 10:00:00,2023-01-10 12:00:00,2023-01-08 00:00:00
o2,c2,shipped,2023-02-01 09:30:00,,2023-02-15 00:00:00
`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestConvertAndReadParquet(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileNames[TableItems]+".csv", itemsCSV)
	writeFile(t, dir, FileNames[TableOrders]+".csv", ordersCSV)

	ctx := context.Background()
	results, err := Convert(ctx, dir)
	require.NoError(t, err)
	require.Len(t, results, len(Tables))

	converted := 0
	for _, r := range results {
		if r.Skipped {
			continue
		}
		converted++
		_, err := os.Stat(r.Parquet)
		assert.NoError(t, err)
	}
	assert.Equal(t, 2, converted)

	src := NewParquetSource(&ParquetConfig{DataPath: dir})

	items, err := src.Read(ctx, TableItems, []string{"order_id", "price"})
	require.NoError(t, err)
	assert.Equal(t, 3, items.Len())
	assert.Equal(t, []string{"order_id", "price"}, items.Columns())

	price, err := items.Column("price")
	require.NoError(t, err)
	d, ok := price.Decimal(1)
	require.True(t, ok)
	assert.Equal(t, "25.5", d.String())

	orders, err := src.Read(ctx, TableOrders, []string{"order_id", "order_purchase_timestamp", "order_delivered_customer_date"})
	require.NoError(t, err)
	assert.Equal(t, 2, orders.Len())

	purchased, err := orders.Column("order_purchase_timestamp")
	require.NoError(t, err)
	ts, ok := purchased.Timestamp(0)
	require.True(t, ok)
	assert.Equal(t, "2023-01-05 10:00:00", ts.Format("2006-01-02 15:04:05"))

	delivered, err := orders.Column("order_delivered_customer_date")
	require.NoError(t, err)
	_, ok = delivered.Timestamp(1)
	assert.False(t, ok)
}

func TestReadParquetMissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileNames[TableItems]+".csv", itemsCSV)
	_, err := Convert(context.Background(), dir)
	require.NoError(t, err)

	src := NewParquetSource(&ParquetConfig{DataPath: dir})
	_, err = src.Read(context.Background(), TableItems, []string{"order_id", "discount"})
	assert.Error(t, err)
}

func TestReadParquetMissingFile(t *testing.T) {
	src := NewParquetSource(&ParquetConfig{DataPath: t.TempDir()})
	_, err := src.Read(context.Background(), TablePayments, []string{"order_id"})
	assert.Error(t, err)
}
