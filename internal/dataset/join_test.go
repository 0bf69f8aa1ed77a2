package dataset

import (
	"testing"

	"github.com/jekabolt/ecomm-insights/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinFanOut(t *testing.T) {
	orders := []orderRow{
		{OrderID: "o1", CustomerID: "c1", PurchasedOK: true},
		{OrderID: "o2", CustomerID: "c2", PurchasedOK: true},
	}
	items := []itemRow{
		{OrderID: "o1", ProductID: "p1", Price: decimal.NewFromInt(10)},
		{OrderID: "o2", ProductID: "p1", Price: decimal.NewFromInt(7)},
		{OrderID: "o1", ProductID: "p2", Price: decimal.NewFromInt(20)},
	}
	payments := []paymentRow{
		{OrderID: "o1", Type: "credit_card", Value: decimal.NewFromInt(15)},
		{OrderID: "o1", Type: "voucher", Value: decimal.NewFromInt(15)},
	}

	rows := joinOrderItems(orders, items)
	require.Len(t, rows, 3)
	// left order first, then right order
	assert.Equal(t, "o1", rows[0].OrderID)
	assert.Equal(t, "p1", rows[0].ProductID)
	assert.Equal(t, 0, rows[0].ItemSeq)
	assert.Equal(t, "p2", rows[1].ProductID)
	assert.Equal(t, 1, rows[1].ItemSeq)
	assert.Equal(t, "o2", rows[2].OrderID)

	rows = joinPayments(rows, payments)
	// o2 has no payment and is dropped; o1 fans out to 2 items x 2 payments
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.Equal(t, "o1", r.OrderID)
	}
	assert.Equal(t, []int{0, 1, 0, 1}, []int{rows[0].PaymentSeq, rows[1].PaymentSeq, rows[2].PaymentSeq, rows[3].PaymentSeq})
	assert.Equal(t, []int{0, 0, 1, 1}, []int{rows[0].ItemSeq, rows[1].ItemSeq, rows[2].ItemSeq, rows[3].ItemSeq})
}

func TestJoinInnerDropsUnmatched(t *testing.T) {
	rows := []joined{
		{OrderID: "o1", CustomerID: "c1", ProductID: "p1"},
		{OrderID: "o2", CustomerID: "missing", ProductID: "p1"},
		{OrderID: "o3", CustomerID: "c1", ProductID: "missing"},
		{OrderID: "o4", CustomerID: "", ProductID: "p1"},
	}
	rows = joinCustomers(rows, []customerRow{{CustomerID: "c1", UniqueID: "u1", State: "SP"}})
	require.Len(t, rows, 2)
	assert.Equal(t, "SP", rows[0].State)
	assert.Equal(t, "u1", rows[0].CustomerUniqueID)

	rows = joinProducts(rows, []productRow{{ProductID: "p1", Category: "beleza_saude"}})
	require.Len(t, rows, 1)
	assert.Equal(t, "o1", rows[0].OrderID)
	assert.Equal(t, "beleza_saude", rows[0].CategoryRaw)
}

func TestJoinTranslationLeft(t *testing.T) {
	rows := []joined{
		{OrderID: "o1", CategoryRaw: "beleza_saude"},
		{OrderID: "o2", CategoryRaw: "pc_gamer"},
		{OrderID: "o3", CategoryRaw: ""},
	}
	out := joinTranslation(rows, []translationRow{{Category: "beleza_saude", CategoryEnglish: "health_beauty"}})
	require.Len(t, out, 3)
	assert.Equal(t, "health_beauty", out[0].CategoryEnglish)
	assert.Equal(t, entity.UnknownCategory, out[1].CategoryEnglish)
	assert.Equal(t, entity.UnknownCategory, out[2].CategoryEnglish)
	assert.Equal(t, []string{"o1", "o2", "o3"}, []string{out[0].OrderID, out[1].OrderID, out[2].OrderID})
}

func TestJoinPlanOrder(t *testing.T) {
	require.Len(t, JoinPlan, 5)
	for _, s := range JoinPlan[:4] {
		assert.Equal(t, JoinInner, s.Kind)
	}
	assert.Equal(t, JoinLeft, JoinPlan[4].Kind)
	assert.Equal(t, "translation", JoinPlan[4].Right)
}
