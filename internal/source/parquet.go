package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ParquetConfig configures the columnar file source.
type ParquetConfig struct {
	DataPath  string `mapstructure:"data_path"`
	BatchSize int64  `mapstructure:"batch_size"`
}

// ParquetSource reads dataset tables from parquet files, projecting only the
// requested columns.
type ParquetSource struct {
	c   *ParquetConfig
	mem memory.Allocator
}

// NewParquetSource returns a source reading files under c.DataPath.
func NewParquetSource(c *ParquetConfig) *ParquetSource {
	if c.BatchSize <= 0 {
		c.BatchSize = 64 * 1024
	}
	return &ParquetSource{
		c:   c,
		mem: memory.NewGoAllocator(),
	}
}

// Path returns the parquet file path of table.
func (s *ParquetSource) Path(table Table) string {
	return filepath.Join(s.c.DataPath, FileNames[table]+".parquet")
}

// Read implements dependency.TableSource.
func (s *ParquetSource) Read(ctx context.Context, table Table, columns []string) (*Frame, error) {
	path := s.Path(table)
	start := time.Now()

	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("can't open %s: %w", path, err)
	}
	defer pf.Close()

	sc := pf.MetaData().Schema
	indices := make([]int, 0, len(columns))
	for _, name := range columns {
		idx := sc.ColumnIndexByName(name)
		if idx < 0 {
			return nil, fmt.Errorf("%s: column %s not found", path, name)
		}
		indices = append(indices, idx)
	}

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: s.c.BatchSize}, s.mem)
	if err != nil {
		return nil, fmt.Errorf("can't create arrow reader for %s: %w", path, err)
	}

	rr, err := fr.GetRecordReader(ctx, indices, nil)
	if err != nil {
		return nil, fmt.Errorf("can't read %s: %w", path, err)
	}
	defer rr.Release()

	cols := make([]*Column, len(columns))
	for i, name := range columns {
		cols[i] = &Column{Name: name, Kind: -1}
	}

	for rr.Next() {
		rec := rr.Record()
		for i, name := range columns {
			fi := rec.Schema().FieldIndices(name)
			if len(fi) == 0 {
				return nil, fmt.Errorf("%s: column %s missing from record", path, name)
			}
			if err := appendArray(cols[i], rec.Column(fi[0])); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	if err := rr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("can't read records of %s: %w", path, err)
	}

	frame := NewFrame(table)
	for _, c := range cols {
		if c.Kind < 0 {
			c.Kind = KindString
		}
		if err := frame.AddColumn(c); err != nil {
			return nil, err
		}
	}

	slog.Default().DebugContext(ctx, "parquet table read",
		slog.String("table", string(table)),
		slog.Int("rows", frame.Len()),
		slog.Duration("took", time.Since(start)),
	)
	return frame, nil
}

func setKind(c *Column, k Kind) error {
	if c.Kind < 0 {
		c.Kind = k
		return nil
	}
	if c.Kind != k {
		return fmt.Errorf("column %s changes type between batches", c.Name)
	}
	return nil
}

// appendArray copies the values of arr into c.
func appendArray(c *Column, arr arrow.Array) error {
	n := arr.Len()
	switch a := arr.(type) {
	case *array.String:
		if err := setKind(c, KindString); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			c.AppendString(strings.Clone(a.Value(i)), a.IsValid(i))
		}
	case *array.LargeString:
		if err := setKind(c, KindString); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			c.AppendString(strings.Clone(a.Value(i)), a.IsValid(i))
		}
	case *array.Binary:
		if err := setKind(c, KindString); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			c.AppendString(string(a.Value(i)), a.IsValid(i))
		}
	case *array.Float64:
		if err := setKind(c, KindFloat); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			c.AppendFloat(a.Value(i), a.IsValid(i))
		}
	case *array.Float32:
		if err := setKind(c, KindFloat); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			c.AppendFloat(float64(a.Value(i)), a.IsValid(i))
		}
	case *array.Int64:
		if err := setKind(c, KindFloat); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			c.AppendFloat(float64(a.Value(i)), a.IsValid(i))
		}
	case *array.Int32:
		if err := setKind(c, KindFloat); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			c.AppendFloat(float64(a.Value(i)), a.IsValid(i))
		}
	case *array.Timestamp:
		if err := setKind(c, KindTime); err != nil {
			return err
		}
		unit := a.DataType().(*arrow.TimestampType).Unit
		for i := 0; i < n; i++ {
			c.AppendTime(a.Value(i).ToTime(unit).UTC(), a.IsValid(i))
		}
	case *array.Date32:
		if err := setKind(c, KindTime); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			c.AppendTime(a.Value(i).ToTime().UTC(), a.IsValid(i))
		}
	case *array.Dictionary:
		// decode the dictionary once, then index into it
		dict := a.Dictionary()
		tmp := &Column{Name: c.Name, Kind: c.Kind}
		if err := appendArray(tmp, dict); err != nil {
			return err
		}
		if err := setKind(c, tmp.Kind); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if !a.IsValid(i) {
				appendNull(c)
				continue
			}
			j := a.GetValueIndex(i)
			switch tmp.Kind {
			case KindFloat:
				c.AppendFloat(tmp.Float[j], tmp.Valid[j])
			case KindTime:
				c.AppendTime(tmp.Time[j], tmp.Valid[j])
			default:
				c.AppendString(tmp.Str[j], tmp.Valid[j])
			}
		}
	case *array.Null:
		if c.Kind < 0 {
			c.Kind = KindString
		}
		for i := 0; i < n; i++ {
			appendNull(c)
		}
	default:
		return fmt.Errorf("column %s: unsupported arrow type %s", c.Name, arr.DataType())
	}
	return nil
}

func appendNull(c *Column) {
	switch c.Kind {
	case KindFloat:
		c.AppendFloat(0, false)
	case KindTime:
		c.AppendTime(time.Time{}, false)
	default:
		c.AppendString("", false)
	}
}
