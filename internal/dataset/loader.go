package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/cache"
	"github.com/jekabolt/ecomm-insights/internal/dependency"
	"github.com/jekabolt/ecomm-insights/internal/entity"
	gerr "github.com/jekabolt/ecomm-insights/internal/errors"
	"github.com/jekabolt/ecomm-insights/internal/source"
	"golang.org/x/sync/errgroup"
)

// LoadReport describes one dataset load.
type LoadReport struct {
	TableRows        map[source.Table]int
	JoinRows         []int
	Joined           int
	DroppedTimestamp int
	Records          int
	Took             time.Duration
}

// Loader reads the source tables and builds the unified records.
type Loader struct {
	src dependency.TableSource
}

func NewLoader(src dependency.TableSource) *Loader {
	return &Loader{src: src}
}

// Load reads every table concurrently and joins them. A failure of any table
// fails the whole load.
func (l *Loader) Load(ctx context.Context) (*Dataset, *LoadReport, error) {
	start := time.Now()

	frames := make([]*source.Frame, len(source.Tables))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range source.Tables {
		g.Go(func() error {
			f, err := l.src.Read(gctx, t, Columns[t])
			if err != nil {
				return fmt.Errorf("can't read table %s: %w", t, err)
			}
			frames[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, gerr.Wrap(gerr.KindFatal, "dataset load failed", err)
	}

	byTable := make(map[source.Table]*source.Frame, len(frames))
	rep := &LoadReport{TableRows: make(map[source.Table]int, len(frames))}
	for i, t := range source.Tables {
		byTable[t] = frames[i]
		rep.TableRows[t] = frames[i].Len()
	}

	ds, err := build(byTable, rep)
	if err != nil {
		return nil, nil, gerr.Wrap(gerr.KindFatal, "dataset load failed", err)
	}
	rep.Took = time.Since(start)

	slog.Default().InfoContext(ctx, "dataset loaded",
		slog.Int("joined", rep.Joined),
		slog.Int("records", rep.Records),
		slog.Int("dropped_timestamp", rep.DroppedTimestamp),
		slog.Duration("took", rep.Took),
	)
	return ds, rep, nil
}

func build(frames map[source.Table]*source.Frame, rep *LoadReport) (*Dataset, error) {
	orders, err := readOrders(frames[source.TableOrders])
	if err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	items, err := readItems(frames[source.TableItems])
	if err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}
	payments, err := readPayments(frames[source.TablePayments])
	if err != nil {
		return nil, fmt.Errorf("payments: %w", err)
	}
	customers, err := readCustomers(frames[source.TableCustomers])
	if err != nil {
		return nil, fmt.Errorf("customers: %w", err)
	}
	products, err := readProducts(frames[source.TableProducts])
	if err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	translations, err := readTranslations(frames[source.TableTranslation])
	if err != nil {
		return nil, fmt.Errorf("translation: %w", err)
	}

	rows := joinOrderItems(orders, items)
	rep.JoinRows = append(rep.JoinRows, len(rows))
	rows = joinPayments(rows, payments)
	rep.JoinRows = append(rep.JoinRows, len(rows))
	rows = joinCustomers(rows, customers)
	rep.JoinRows = append(rep.JoinRows, len(rows))
	rows = joinProducts(rows, products)
	rep.JoinRows = append(rep.JoinRows, len(rows))
	rows = joinTranslation(rows, translations)
	rep.JoinRows = append(rep.JoinRows, len(rows))
	rep.Joined = len(rows)

	for i, step := range JoinPlan {
		slog.Default().Debug("join step",
			slog.String("right", step.Right),
			slog.String("key", step.Key),
			slog.String("kind", string(step.Kind)),
			slog.Int("rows", rep.JoinRows[i]),
		)
	}

	kept := rows[:0]
	for _, r := range rows {
		if !r.PurchasedOK {
			rep.DroppedTimestamp++
			continue
		}
		kept = append(kept, r)
	}
	rep.Records = len(kept)

	tr := make([]entity.CategoryTranslation, 0, len(translations))
	for _, t := range translations {
		if t.CategoryEnglish == "" {
			continue
		}
		tr = append(tr, entity.CategoryTranslation{Name: t.Category, NameEnglish: t.CategoryEnglish})
	}
	translator, err := cache.NewTranslator(tr)
	if err != nil {
		return nil, err
	}

	return newDataset(kept, tr, translator), nil
}
