/*
 * Copyright 2025 Gridstore
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package connector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gridstore-io/gridlink/constants"
	"github.com/gridstore-io/gridlink/pkg/rowapi"
	"github.com/gridstore-io/gridlink/pkg/sqlwire"
	"github.com/gridstore-io/gridlink/types"
	"github.com/gridstore-io/gridlink/utils"
	"github.com/gridstore-io/gridlink/utils/logger"
	"github.com/jmoiron/sqlx"
	"github.com/mitchellh/hashstructure"
)

// Process-local sessions keyed by configuration fingerprint. Handles are never
// shared across processes; distributed workers each build their own session
// from the same configuration.
var (
	sessionsMu sync.Mutex
	sessions   = map[uint64]*Session{}
)

// Session owns the live handles of one configuration: the row API client and
// the SQL gateway connection, both created lazily on first use. The
// configuration itself stays immutable; all mutable state lives here.
type Session struct {
	config      *Config
	fingerprint uint64
	shared      bool

	mu      sync.Mutex
	client  *rowapi.Client
	db      *sqlwire.DB
	schema  *types.TableSchema
	version string
}

// NewSession validates the configuration and wraps it in a fresh session. No
// network call happens until a handle is first used.
func NewSession(config *Config) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Session{config: config}, nil
}

// SharedSession returns the process-cached session for an equivalent
// configuration, building one on first use. Two equal configurations map to
// the same session until it is closed.
func SharedSession(config *Config) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	fingerprint, err := hashstructure.Hash(config, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint configuration: %s", err)
	}

	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	if session, found := sessions[fingerprint]; found {
		return session, nil
	}

	session, err := NewSession(config)
	if err != nil {
		return nil, err
	}
	session.fingerprint = fingerprint
	session.shared = true
	sessions[fingerprint] = session
	return session, nil
}

// Connect builds a session and verifies both transport paths before returning
// it. The session is closed again when the probe fails.
func Connect(ctx context.Context, config *Config) (*Session, error) {
	session, err := NewSession(config)
	if err != nil {
		return nil, err
	}
	if err := session.Check(ctx); err != nil {
		_ = session.Close()
		return nil, err
	}
	return session, nil
}

func (s *Session) Config() *Config {
	return s.config
}

// Client returns the lazily created row API client.
func (s *Session) Client() (*rowapi.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	tlsConfig, err := s.config.SSLConfig.BuildTLSConfig(hostOf(s.config.URLs()[0]))
	if err != nil {
		return nil, err
	}
	client, err := rowapi.NewClient(rowapi.Options{
		URLs:        s.config.URLs(),
		Username:    s.config.Username,
		Password:    s.config.Password,
		Timeout:     s.config.Timeout(),
		Compression: s.config.Compression,
		TLS:         tlsConfig,
	})
	if err != nil {
		return nil, err
	}
	s.client = client
	return client, nil
}

// DB returns the lazily opened SQL gateway handle. Opening verifies the
// connection with a ping, so the first call is a network call.
func (s *Session) DB(ctx context.Context) (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.DB, nil
	}

	tlsConfig, err := s.config.SSLConfig.BuildTLSConfig(hostOf(s.config.SQLURL))
	if err != nil {
		return nil, err
	}
	db, err := sqlwire.Open(ctx, sqlwire.Config{
		URL:      s.config.SQLURL,
		Username: s.config.Username,
		Password: s.config.Password,
		Timeout:  s.config.Timeout(),
		TLS:      tlsConfig,
	})
	if err != nil {
		return nil, err
	}
	s.db = db
	return db.DB, nil
}

// Check verifies both transport paths: the row API must answer the system
// property probe and identify itself with a core version, the SQL gateway
// must answer a ping. Check is idempotent and updates cached state only on
// success.
func (s *Session) Check(ctx context.Context) error {
	return utils.ErrExec(
		func() error { return s.checkRowAPI(ctx) },
		func() error { return s.checkSQL(ctx) },
	)
}

func (s *Session) checkRowAPI(ctx context.Context) error {
	client, err := s.Client()
	if err != nil {
		return &types.ConnectionError{Endpoint: s.config.URLs()[0], Err: err}
	}
	properties, err := client.SystemProperties(ctx, constants.PropCoreVersion)
	if err != nil {
		return &types.ConnectionError{Endpoint: client.URL(), Err: err}
	}
	version := properties[constants.PropCoreVersion]
	if version == "" {
		return &types.ConnectionError{
			Endpoint: client.URL(),
			Err:      fmt.Errorf("endpoint did not report a core version, not a gridstore head node"),
		}
	}

	s.mu.Lock()
	s.version = version
	s.mu.Unlock()
	logger.Infof("connected to gridstore core version %s at %s", version, client.URL())
	return nil
}

func (s *Session) checkSQL(ctx context.Context) error {
	db, err := s.DB(ctx)
	if err != nil {
		return &types.ConnectionError{Endpoint: s.config.SQLURL, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		return &types.ConnectionError{Endpoint: s.config.SQLURL, Err: err}
	}
	return nil
}

// Version returns the core version reported by the last successful probe.
func (s *Session) Version() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// TableExists reports whether the target table exists remotely.
func (s *Session) TableExists(ctx context.Context) (bool, error) {
	client, err := s.Client()
	if err != nil {
		return false, err
	}
	return client.HasTable(ctx, s.config.TableRef().String())
}

// CollectionMatches reports whether the target table belongs to exactly the
// collection its qualified name expects. A name without a collection prefix
// always matches; a missing table, an unqualified remote table or a different
// collection do not.
func (s *Session) CollectionMatches(ctx context.Context) (bool, error) {
	expected := s.config.TableRef().Collection
	if expected == "" {
		return true, nil
	}

	client, err := s.Client()
	if err != nil {
		return false, err
	}
	exists, err := client.HasTable(ctx, s.config.TableRef().String())
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	info, err := client.ShowTable(ctx, s.config.TableRef().String())
	if err != nil {
		return false, err
	}
	return info.Collection == expected, nil
}

// RowCount returns the current total row count of the target table.
func (s *Session) RowCount(ctx context.Context) (int64, error) {
	client, err := s.Client()
	if err != nil {
		return 0, err
	}
	info, err := client.ShowTable(ctx, s.config.TableRef().String())
	if err != nil {
		return 0, fmt.Errorf("failed to read row count of table %s: %s", s.config.TableRef(), err)
	}
	return info.TotalSize, nil
}

// Count pushes the filter down to the SQL gateway and returns the matching
// row count.
func (s *Session) Count(ctx context.Context, filter types.Filter) (int64, error) {
	db, err := s.DB(ctx)
	if err != nil {
		return 0, err
	}
	return sqlwire.Count(ctx, db, s.config.TableRef(), filter)
}

// ResolveTableType resolves the type of the target table, preferring the
// remote truth and reconciling an explicitly supplied schema against it. A
// missing table adopts the explicit schema; a missing table without one is a
// TypeResolutionError. The result is cached until Reset; nothing is cached on
// failure.
func (s *Session) ResolveTableType(ctx context.Context, explicit *types.TableSchema) (*types.TableSchema, error) {
	s.mu.Lock()
	cached := s.schema
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	table := s.config.TableRef().String()
	exists, err := s.TableExists(ctx)
	if err != nil {
		return nil, err
	}

	if !exists {
		if explicit == nil {
			return nil, &types.TypeResolutionError{Table: table}
		}
		s.mu.Lock()
		s.schema = explicit
		s.mu.Unlock()
		return explicit, nil
	}

	client, err := s.Client()
	if err != nil {
		return nil, err
	}
	info, err := client.ShowTable(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %s", table, err)
	}
	schema, err := FromNativeColumns(table, info.Columns)
	if err != nil {
		return nil, err
	}
	if explicit != nil {
		if err := MatchSchemas(table, explicit, schema); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.schema = schema
	s.mu.Unlock()
	return schema, nil
}

// Reset drops the cached table type so the next resolution queries the remote
// again, e.g. after this session created or cleared the table.
func (s *Session) Reset() {
	s.mu.Lock()
	s.schema = nil
	s.mu.Unlock()
}

// PrepareTable applies the configured write mode before ingestion: it creates
// a missing table for modes that create, clears rows for the truncating mode,
// fails for append and upsert against a missing table, and reconciles the
// incoming schema with the existing type.
func (s *Session) PrepareTable(ctx context.Context, schema *types.TableSchema) error {
	client, err := s.Client()
	if err != nil {
		return err
	}

	table := s.config.TableRef()
	mode := s.config.ResolvedWriteMode()
	exists, err := client.HasTable(ctx, table.String())
	if err != nil {
		return err
	}

	switch {
	case !exists && !mode.CreatesTable():
		return fmt.Errorf("table %s does not exist and write mode %s does not create it", table, mode)
	case !exists:
		columns, err := ToNativeColumns(schema)
		if err != nil {
			return err
		}
		logger.Infof("creating table %s with %d columns", table, len(columns))
		if err := client.CreateTable(ctx, rowapi.CreateTableRequest{
			Table:      table.Name,
			Collection: table.Collection,
			Replicated: s.config.Replicated,
			Columns:    columns,
		}); err != nil {
			return fmt.Errorf("failed to create table %s: %s", table, err)
		}
		s.Reset()
	case mode.Truncates():
		logger.Infof("clearing existing rows of table %s", table)
		if err := client.ClearTable(ctx, table.String()); err != nil {
			return fmt.Errorf("failed to clear table %s: %s", table, err)
		}
	}

	resolved, err := s.ResolveTableType(ctx, schema)
	if err != nil {
		return err
	}
	if mode.Upserts() && len(resolved.PrimaryKeys()) == 0 {
		return fmt.Errorf("write mode %s requires a primary key on table %s", mode, table)
	}
	return nil
}

// WorkerURLs discovers the per-worker ingest endpoints advertised by the head
// node. An empty result means the cluster ingests through the head only.
func (s *Session) WorkerURLs(ctx context.Context) ([]string, error) {
	client, err := s.Client()
	if err != nil {
		return nil, err
	}
	properties, err := client.SystemProperties(ctx, constants.PropWorkerHTTPURLs, constants.PropMultiHead)
	if err != nil {
		return nil, err
	}
	if properties[constants.PropMultiHead] != "true" {
		return nil, nil
	}

	urls := []string{}
	for _, one := range strings.Split(properties[constants.PropWorkerHTTPURLs], ";") {
		if one = strings.TrimSpace(one); one != "" {
			urls = append(urls, strings.TrimRight(one, "/"))
		}
	}
	return urls, nil
}

// Close releases the live handles and evicts a shared session from the
// process cache so a later equivalent configuration builds a fresh one.
func (s *Session) Close() error {
	s.mu.Lock()
	client, db := s.client, s.db
	s.client, s.db, s.schema = nil, nil, nil
	s.mu.Unlock()

	if s.shared {
		sessionsMu.Lock()
		delete(sessions, s.fingerprint)
		sessionsMu.Unlock()
	}

	return utils.ErrExecSequential(
		func() error {
			if client != nil {
				client.Close()
			}
			return nil
		},
		func() error {
			if db != nil {
				return db.Close()
			}
			return nil
		},
	)
}

func hostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
