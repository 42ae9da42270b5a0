package sqlwire

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/gridstore-io/gridlink/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// Config addresses the SQL gateway of one Gridstore deployment. The gateway
// speaks the PostgreSQL wire protocol.
type Config struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
	TLS      *tls.Config
}

// DB wraps the gateway handle together with its scoped driver registration.
type DB struct {
	*sqlx.DB
	registration string
}

// Open parses the gateway URL, scopes credentials and TLS to a dedicated
// driver registration and verifies the connection with a ping. Nothing
// process-global is mutated; concurrent sessions with different TLS settings
// stay isolated.
func Open(ctx context.Context, config Config) (*DB, error) {
	connConfig, err := pgx.ParseConfig(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sql gateway url: %s", err)
	}
	if config.Username != "" {
		connConfig.User = config.Username
		connConfig.Password = config.Password
	}
	if config.TLS != nil {
		connConfig.TLSConfig = config.TLS
	}
	if config.Timeout > 0 {
		connConfig.ConnectTimeout = config.Timeout
	}

	registration := stdlib.RegisterConnConfig(connConfig)
	db, err := sqlx.Open("pgx", registration)
	if err != nil {
		stdlib.UnregisterConnConfig(registration)
		return nil, fmt.Errorf("failed to open sql gateway connection: %s", err)
	}

	pingCtx := ctx
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		stdlib.UnregisterConnConfig(registration)
		return nil, fmt.Errorf("failed to ping sql gateway: %s", err)
	}

	return &DB{DB: db, registration: registration}, nil
}

// Close releases the handle and drops its driver registration.
func (d *DB) Close() error {
	err := d.DB.Close()
	stdlib.UnregisterConnConfig(d.registration)
	return err
}

// Count runs the filtered count on a connection scoped to this call. Failures
// come back as CountQueryError and must not be retried; a count that cannot
// produce a row signals a gateway problem, not a transient fault.
func Count(ctx context.Context, db *sqlx.DB, table types.TableRef, filter types.Filter) (int64, error) {
	query, err := CountQuery(table, filter)
	if err != nil {
		return 0, err
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		return 0, &types.CountQueryError{Query: query, Err: err}
	}
	defer conn.Close()

	var count int64
	if err := conn.QueryRowxContext(ctx, query).Scan(&count); err != nil {
		return 0, &types.CountQueryError{Query: query, Err: err}
	}
	return count, nil
}
