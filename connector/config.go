package connector

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gridstore-io/gridlink/constants"
	"github.com/gridstore-io/gridlink/types"
	"github.com/gridstore-io/gridlink/utils"
)

// Config describes one Gridstore deployment plus the movement options for a
// single table. Validate resolves every derived value exactly once; after it
// returns the config is treated as frozen and sessions only read from it.
type Config struct {
	// Head node base URL; semicolon separated candidates are tried in order
	URL      string `json:"url" validate:"required"`
	SQLURL   string `json:"sql_url"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`

	// Table name, optionally collection-qualified when SchemaQualified is set
	Table           string `json:"table" validate:"required"`
	SchemaQualified bool   `json:"schema_qualified"`
	WriteMode       string `json:"write_mode"`

	BatchSize      int `json:"batch_size"`
	FetchSize      int `json:"fetch_size"`
	MaxThreads     int `json:"max_threads"`
	PartitionCount int `json:"partition_count"`
	RetryCount     int `json:"retry_count"`
	RetryBackoffMS int `json:"retry_backoff_ms"`
	TimeoutMS      int `json:"timeout_ms"`

	MultiHead   bool   `json:"multi_head"`
	Replicated  bool   `json:"replicated"`
	Compression bool   `json:"compression"`
	DryRun      bool   `json:"dry_run"`
	FailOnError bool   `json:"fail_on_error"`
	Flatten     bool   `json:"flatten"`
	Timezone    string `json:"timezone"`

	SSLConfig *utils.SSLConfig `json:"ssl"`

	// resolved by Validate
	urls      []string
	tableRef  types.TableRef
	writeMode types.WriteMode
	location  *time.Location
}

// Validate checks the configuration, applies defaults and resolves the parse
// time artifacts (URL candidates, table reference, write mode, timezone).
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("empty head node url")
	}

	c.urls = c.urls[:0]
	for _, candidate := range strings.Split(c.URL, ";") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
			candidate = fmt.Sprintf("http://%s", candidate)
		}
		c.urls = append(c.urls, strings.TrimRight(candidate, "/"))
	}
	if len(c.urls) == 0 {
		return fmt.Errorf("no usable head node url in %q", c.URL)
	}

	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(c.Table) == "" {
		return fmt.Errorf("table is required")
	}

	tableRef, err := types.ParseTableRef(c.Table, c.SchemaQualified)
	if err != nil {
		return err
	}
	c.tableRef = tableRef

	writeMode, err := types.ParseWriteMode(c.WriteMode)
	if err != nil {
		return err
	}
	c.writeMode = writeMode

	c.location = time.UTC
	if c.Timezone != "" {
		location, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %s", c.Timezone, err)
		}
		c.location = location
	}

	if c.SQLURL == "" {
		head, err := url.Parse(c.urls[0])
		if err != nil {
			return fmt.Errorf("failed to parse head node url %q: %s", c.urls[0], err)
		}
		c.SQLURL = fmt.Sprintf("postgres://%s:%d/gridstore", head.Hostname(), constants.DefaultSQLPort)
	}

	// Set defaults for every unset tuning knob
	if c.BatchSize <= 0 {
		c.BatchSize = constants.DefaultBatchSize
	}
	if c.FetchSize <= 0 {
		c.FetchSize = constants.DefaultFetchSize
	}
	if c.MaxThreads <= 0 {
		c.MaxThreads = constants.DefaultThreadCount
	}
	if c.PartitionCount <= 0 {
		c.PartitionCount = constants.DefaultPartitionCount
	}
	if c.RetryCount <= 0 {
		c.RetryCount = constants.DefaultRetryCount
	}
	if c.RetryBackoffMS <= 0 {
		c.RetryBackoffMS = int(constants.DefaultRetryBackoff / time.Millisecond)
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = constants.DefaultTimeoutMS
	}

	if c.SSLConfig != nil {
		if err := c.SSLConfig.Validate(); err != nil {
			return fmt.Errorf("failed to validate SSL config: %s", err)
		}
	}

	return utils.Validate(c)
}

// URLs returns the resolved head node candidates.
func (c *Config) URLs() []string {
	return c.urls
}

// TableRef returns the resolved table reference.
func (c *Config) TableRef() types.TableRef {
	return c.tableRef
}

// ResolvedWriteMode returns the write mode resolved at parse time.
func (c *Config) ResolvedWriteMode() types.WriteMode {
	return c.writeMode
}

// Location returns the timezone used when parsing date and datetime strings.
func (c *Config) Location() *time.Location {
	return c.location
}

// Timeout returns the per-operation timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// RetryBackoff returns the initial delay between retry attempts.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}
