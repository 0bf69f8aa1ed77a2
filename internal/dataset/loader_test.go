package dataset_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/internal/dataset/datasettest"
	"github.com/jekabolt/ecomm-insights/internal/dependency/mocks"
	"github.com/jekabolt/ecomm-insights/internal/entity"
	gerr "github.com/jekabolt/ecomm-insights/internal/errors"
	"github.com/jekabolt/ecomm-insights/internal/source"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func singleOrder() *datasettest.Builder {
	return datasettest.New().Add(datasettest.Order{
		ID:        "o1",
		Customer:  "c1",
		UniqueID:  "u1",
		State:     "SP",
		Purchased: "2023-01-05 10:00:00",
		Delivered: "2023-01-10 12:00:00",
		Estimated: "2023-01-08 00:00:00",
		Items:     []datasettest.Item{{Product: "p1", Category: "beleza_saude", Price: "100.00"}},
		Payments:  []datasettest.Payment{{Type: "credit_card", Value: "100.00"}},
	})
}

func TestLoadSingleOrder(t *testing.T) {
	ds, rep, err := dataset.NewLoader(singleOrder().Source()).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, 1, rep.Records)
	assert.Equal(t, 0, rep.DroppedTimestamp)
	assert.Equal(t, []int{1, 1, 1, 1, 1}, rep.JoinRows)

	r := ds.Records[0]
	assert.Equal(t, "o1", r.OrderID)
	assert.Equal(t, "u1", r.CustomerUniqueID)
	assert.Equal(t, "SP", ds.States.Value(r.State))
	assert.Equal(t, "health_beauty", ds.Categories.Value(r.Category))
	assert.Equal(t, "credit_card", ds.PaymentTypes.Value(r.PaymentType))
	assert.True(t, r.Price.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, time.Date(2023, 1, 5, 10, 0, 0, 0, time.UTC), r.PurchasedAt)
	assert.True(t, r.HasDeliveryDates())
}

func TestLoadDropsUnparsablePurchase(t *testing.T) {
	b := singleOrder().Add(
		datasettest.Order{
			ID: "o2", Customer: "c2", UniqueID: "u2", State: "RJ", Purchased: "not a date",
			Items:    []datasettest.Item{{Product: "p1", Category: "beleza_saude", Price: "10"}},
			Payments: []datasettest.Payment{{Type: "boleto", Value: "10"}},
		},
		datasettest.Order{
			ID: "o3", Customer: "c3", UniqueID: "u3", State: "MG",
			Items:    []datasettest.Item{{Product: "p1", Category: "beleza_saude", Price: "10"}},
			Payments: []datasettest.Payment{{Type: "boleto", Value: "10"}},
		},
	)
	ds, rep, err := dataset.NewLoader(b.Source()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Joined)
	assert.Equal(t, 2, rep.DroppedTimestamp)
	require.Equal(t, 1, ds.Len())
	// domains are built from the working set only
	assert.Equal(t, []string{"SP"}, ds.States.Values())
}

func TestLoadUnknownCategory(t *testing.T) {
	b := datasettest.New().Add(datasettest.Order{
		ID: "o1", Customer: "c1", UniqueID: "u1", State: "SP", Purchased: "2023-01-05",
		Items:    []datasettest.Item{{Product: "p1", Category: "pc_gamer", Price: "10"}},
		Payments: []datasettest.Payment{{Type: "boleto", Value: "10"}},
	})
	ds := b.Load(t)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, entity.UnknownCategory, ds.Categories.Value(ds.Records[0].Category))
	assert.Equal(t, "pc_gamer", ds.Records[0].CategoryRaw)
	assert.Equal(t, "Desconhecida", ds.Translator.CategoryLabel(entity.UnknownCategory))
}

func TestLoadFatalOnTableError(t *testing.T) {
	src := mocks.NewTableSource(t)
	mem := singleOrder().Source()
	src.EXPECT().Read(mock.Anything, mock.Anything, mock.Anything).RunAndReturn(
		func(ctx context.Context, table source.Table, cols []string) (*source.Frame, error) {
			if table == source.TablePayments {
				return nil, errors.New("corrupt file")
			}
			return mem.Read(ctx, table, cols)
		},
	)

	ds, rep, err := dataset.NewLoader(src).Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, ds)
	assert.Nil(t, rep)
	assert.Equal(t, gerr.KindFatal, gerr.KindOf(err))
	assert.Contains(t, err.Error(), "corrupt file")
}

func TestLoadReadsDeclaredColumnsOnly(t *testing.T) {
	src := mocks.NewTableSource(t)
	mem := singleOrder().Source()
	for _, table := range source.Tables {
		src.EXPECT().Read(mock.Anything, table, dataset.Columns[table]).RunAndReturn(mem.Read).Once()
	}
	_, _, err := dataset.NewLoader(src).Load(context.Background())
	require.NoError(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	s := dataset.NewSession(dataset.NewLoader(singleOrder().Source()))
	assert.NotEmpty(t, s.ID())

	_, err := s.Dataset()
	assert.ErrorIs(t, err, gerr.ErrNotLoaded)
	assert.Nil(t, s.Report())

	rep, err := s.Load(context.Background())
	require.NoError(t, err)
	first, err := s.Dataset()
	require.NoError(t, err)

	// Load is idempotent once loaded
	again, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, rep, again)
	same, _ := s.Dataset()
	assert.Same(t, first, same)

	_, err = s.Reload(context.Background())
	require.NoError(t, err)
	reloaded, _ := s.Dataset()
	assert.NotSame(t, first, reloaded)
}

func TestSessionReloadFailureKeepsDataset(t *testing.T) {
	src := mocks.NewTableSource(t)
	mem := singleOrder().Source()
	fail := false
	src.EXPECT().Read(mock.Anything, mock.Anything, mock.Anything).RunAndReturn(
		func(ctx context.Context, table source.Table, cols []string) (*source.Frame, error) {
			if fail {
				return nil, errors.New("gone")
			}
			return mem.Read(ctx, table, cols)
		},
	)
	s := dataset.NewSession(dataset.NewLoader(src))
	_, err := s.Load(context.Background())
	require.NoError(t, err)
	before, _ := s.Dataset()

	fail = true
	_, err = s.Reload(context.Background())
	require.Error(t, err)
	after, err := s.Dataset()
	require.NoError(t, err)
	assert.Same(t, before, after)
}

func TestOptionsAndSelection(t *testing.T) {
	ds := singleOrder().Add(datasettest.Order{
		ID: "o2", Customer: "c2", UniqueID: "u2", State: "RJ", Purchased: "2023-03-01 09:00:00",
		Items:    []datasettest.Item{{Product: "p2", Category: "informatica_acessorios", Price: "50"}},
		Payments: []datasettest.Payment{{Type: "boleto", Value: "50"}},
	}).Load(t)

	opts := ds.Options()
	assert.Equal(t, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), opts.MinDate)
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), opts.MaxDate)
	assert.Equal(t, []string{"RJ", "SP"}, opts.States)
	require.Len(t, opts.Categories, 2)
	assert.Equal(t, "Beleza Saude", opts.Categories[0].Label)
	assert.Equal(t, "Informatica Acessorios", opts.Categories[1].Label)

	f := ds.NewFilter(dataset.Selection{
		StartDate:      opts.MinDate,
		EndDate:        opts.MaxDate,
		States:         []string{"RJ"},
		CategoryLabels: []string{"Informatica Acessorios"},
	})
	assert.Equal(t, time.Date(2023, 3, 2, 0, 0, 0, 0, time.UTC), f.To)
	assert.Equal(t, []string{"computers_accessories"}, f.Categories)

	m := ds.Matcher(f)
	var matched []string
	for i := range ds.Records {
		if m.Match(&ds.Records[i]) {
			matched = append(matched, ds.Records[i].OrderID)
		}
	}
	assert.Equal(t, []string{"o2"}, matched)

	all := ds.Matcher(ds.AllFilter())
	for i := range ds.Records {
		assert.True(t, all.Match(&ds.Records[i]))
	}
}
