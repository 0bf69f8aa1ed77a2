package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ConvertResult reports one converted table.
type ConvertResult struct {
	Table   Table
	CSV     string
	Parquet string
	Rows    int64
	Skipped bool
}

// Convert rewrites every dataset CSV found under dir as a parquet file next to
// it, column for column. Missing CSV files are skipped, not fatal.
func Convert(ctx context.Context, dir string) ([]ConvertResult, error) {
	results := make([]ConvertResult, 0, len(Tables))
	for _, t := range Tables {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := ConvertResult{
			Table:   t,
			CSV:     filepath.Join(dir, FileNames[t]+".csv"),
			Parquet: filepath.Join(dir, FileNames[t]+".parquet"),
		}
		if _, err := os.Stat(res.CSV); errors.Is(err, os.ErrNotExist) {
			slog.Default().WarnContext(ctx, "csv file not found, skipping",
				slog.String("file", res.CSV),
			)
			res.Skipped = true
			results = append(results, res)
			continue
		}
		n, err := ConvertFile(res.CSV, res.Parquet)
		if err != nil {
			return results, fmt.Errorf("can't convert %s: %w", res.CSV, err)
		}
		res.Rows = n
		slog.Default().InfoContext(ctx, "converted csv to parquet",
			slog.String("file", res.CSV),
			slog.Int64("rows", n),
		)
		results = append(results, res)
	}
	return results, nil
}

// ConvertFile converts a single headered CSV file to parquet with inferred types.
func ConvertFile(csvPath, parquetPath string) (int64, error) {
	in, err := os.Open(csvPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(parquetPath)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	return convert(in, out)
}

func convert(in io.Reader, out io.Writer) (int64, error) {
	rdr := csv.NewInferringReader(in,
		csv.WithHeader(true),
		csv.WithChunk(64*1024),
		csv.WithNullReader(true, ""),
	)
	defer rdr.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	var (
		w    *pqarrow.FileWriter
		rows int64
		err  error
	)
	for rdr.Next() {
		rec := rdr.Record()
		if w == nil {
			w, err = pqarrow.NewFileWriter(rec.Schema(), out, props, pqarrow.DefaultWriterProps())
			if err != nil {
				return 0, err
			}
		}
		if err := w.Write(rec); err != nil {
			return rows, err
		}
		rows += rec.NumRows()
	}
	if err := rdr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return rows, err
	}
	if w == nil {
		return 0, fmt.Errorf("empty csv input")
	}
	return rows, w.Close()
}
