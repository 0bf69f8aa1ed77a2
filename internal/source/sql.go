package source

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// SQLConfig defines configurations to read the dataset tables from MySQL.
type SQLConfig struct {
	DSN                string `mapstructure:"dsn"`
	MaxOpenConnections int    `mapstructure:"max_open_connections"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections"`
	TLSCAPath          string `mapstructure:"tls_ca_path"`
	// TablePrefix is prepended to the on-disk table base names, e.g. "olist." for a schema.
	TablePrefix string `mapstructure:"table_prefix"`
}

// SQLSource reads dataset tables from a MySQL warehouse.
type SQLSource struct {
	db *sqlx.DB
	c  *SQLConfig
}

// registerTLSConfig registers a custom TLS configuration with the MySQL driver
// when a CA certificate path is configured.
func registerTLSConfig(cfg *SQLConfig) error {
	if cfg.TLSCAPath == "" {
		return nil
	}
	caCert, err := os.ReadFile(cfg.TLSCAPath)
	if err != nil {
		return fmt.Errorf("failed to read CA certificate from %s: %w", cfg.TLSCAPath, err)
	}
	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return fmt.Errorf("failed to parse CA certificate")
	}
	return mysql.RegisterTLSConfig("custom", &tls.Config{RootCAs: caCertPool})
}

// NewSQLSource connects to the database and returns a new SQLSource.
func NewSQLSource(ctx context.Context, cfg *SQLConfig) (*SQLSource, error) {
	if err := registerTLSConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to register TLS config: %w", err)
	}

	d, err := sqlx.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("couldn't open database : %v", err)
	}
	if cfg.MaxOpenConnections > 0 {
		d.SetMaxOpenConns(cfg.MaxOpenConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		d.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	d.SetConnMaxLifetime(2 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := d.PingContext(pingCtx); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLSource{db: d, c: cfg}, nil
}

// Close closes the underlying connection pool.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// selectQuery builds the projection query for table, quoting identifiers.
func selectQuery(prefix string, table Table, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = "`" + strings.ReplaceAll(c, "`", "") + "`"
	}
	return fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(quoted, ", "), prefix, FileNames[table])
}

// Read implements dependency.TableSource. Every column is read as text and
// typed later by the loader.
func (s *SQLSource) Read(ctx context.Context, table Table, columns []string) (*Frame, error) {
	query := selectQuery(s.c.TablePrefix, table, columns)
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("can't query %s: %w", table, err)
	}
	defer rows.Close()

	cols := make([]*Column, len(columns))
	for i, name := range columns {
		cols[i] = &Column{Name: name, Kind: KindString}
	}
	vals := make([]sql.NullString, len(columns))
	ptrs := make([]any, len(columns))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("can't scan %s: %w", table, err)
		}
		for i, v := range vals {
			cols[i].AppendString(v.String, v.Valid && v.String != "")
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read %s: %w", table, err)
	}

	frame := NewFrame(table)
	for _, c := range cols {
		if err := frame.AddColumn(c); err != nil {
			return nil, err
		}
	}
	slog.Default().DebugContext(ctx, "sql table read",
		slog.String("table", string(table)),
		slog.Int("rows", frame.Len()),
	)
	return frame, nil
}
