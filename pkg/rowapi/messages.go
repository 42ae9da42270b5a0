package rowapi

import (
	"github.com/goccy/go-json"
)

// paths of the head node row API
const (
	pathHasTable         = "/v1/has/table"
	pathShowTable        = "/v1/show/table"
	pathCreateTable      = "/v1/create/table"
	pathClearTable       = "/v1/clear/table"
	pathGetRecords       = "/v1/get/records"
	pathInsertRecords    = "/v1/insert/records"
	pathSystemProperties = "/v1/show/system/properties"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// envelope is the response wrapper every row-API endpoint returns.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ColumnSpec describes one column of a native table type.
type ColumnSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Key      bool   `json:"key,omitempty"`
}

// TableInfo is the table description returned by /v1/show/table.
type TableInfo struct {
	Table      string       `json:"table"`
	Collection string       `json:"collection"`
	TotalSize  int64        `json:"total_size"`
	Replicated bool         `json:"replicated"`
	Columns    []ColumnSpec `json:"columns"`
}

type tableRequest struct {
	Table string `json:"table"`
}

type hasTableResponse struct {
	Exists bool `json:"exists"`
}

// CreateTableRequest creates a table with the given native column types.
type CreateTableRequest struct {
	Table      string       `json:"table"`
	Collection string       `json:"collection,omitempty"`
	Replicated bool         `json:"replicated"`
	Columns    []ColumnSpec `json:"columns"`
}

// GetRecordsRequest fetches a window of rows. Columns narrows the projection;
// empty means every column in table order.
type GetRecordsRequest struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns,omitempty"`
	Offset  int64    `json:"offset"`
	Limit   int64    `json:"limit"`
}

// RecordsPage is a positional row window: Rows[i] is aligned with Columns.
type RecordsPage struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// InsertRecordsRequest appends or upserts a batch of positional rows.
type InsertRecordsRequest struct {
	Table               string   `json:"table"`
	Columns             []string `json:"columns"`
	Rows                [][]any  `json:"rows"`
	UpdateOnExistingKey bool     `json:"update_on_existing_key"`
}

// InsertResult reports how the head node applied a batch.
type InsertResult struct {
	CountInserted int64 `json:"count_inserted"`
	CountUpdated  int64 `json:"count_updated"`
}

type systemPropertiesRequest struct {
	Keys []string `json:"keys,omitempty"`
}

type systemPropertiesResponse struct {
	Properties map[string]string `json:"properties"`
}
