package rowapi

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

const defaultTimeout = 30 * time.Second

// APIError is a failure reported by the row API itself rather than the
// transport. It is final: retrying the same request cannot succeed.
type APIError struct {
	Path    string
	Status  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("row api %s failed: %s", e.Path, e.Message)
}

// Options configures a row-API client. URLs lists head-node candidates in
// failover order; the client pins the first one that answers.
type Options struct {
	URLs        []string
	Username    string
	Password    string
	Timeout     time.Duration
	Compression bool
	TLS         *tls.Config
}

// Client talks to the Gridstore head node row API.
type Client struct {
	options    Options
	httpClient *http.Client
	pinned     atomic.Int32
}

// NewClient builds a client from options. The TLS config is scoped to this
// client's transport only.
func NewClient(options Options) (*Client, error) {
	if len(options.URLs) == 0 {
		return nil, fmt.Errorf("at least one head node url is required")
	}
	for i, u := range options.URLs {
		options.URLs[i] = strings.TrimRight(strings.TrimSpace(u), "/")
	}
	if options.Timeout <= 0 {
		options.Timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if options.TLS != nil {
		transport.TLSClientConfig = options.TLS
	}

	return &Client{
		options: options,
		httpClient: &http.Client{
			Timeout:   options.Timeout,
			Transport: transport,
		},
	}, nil
}

// URL returns the currently pinned head-node URL.
func (c *Client) URL() string {
	return c.options.URLs[int(c.pinned.Load())%len(c.options.URLs)]
}

// Close releases idle transport connections. The client stays usable and
// simply dials again on the next call.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) buildRequest(ctx context.Context, url string, body []byte) (*http.Request, error) {
	var reader io.Reader = bytes.NewReader(body)
	if c.options.Compression {
		compressed := &bytes.Buffer{}
		writer := gzip.NewWriter(compressed)
		if _, err := writer.Write(body); err != nil {
			return nil, fmt.Errorf("failed to compress request body: %s", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("failed to compress request body: %s", err)
		}
		reader = compressed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %s", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.options.Compression {
		req.Header.Set("Content-Encoding", "gzip")
	}
	if c.options.Username != "" {
		req.SetBasicAuth(c.options.Username, c.options.Password)
	}
	return req, nil
}

// post sends payload to path, trying head-node candidates in order starting at
// the pinned one. Transport failures move to the next candidate; API failures
// are final. The data section of the envelope is decoded into out when non-nil.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %s", path, err)
	}

	total := len(c.options.URLs)
	start := int(c.pinned.Load())
	var lastErr error
	for attempt := 0; attempt < total; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		index := (start + attempt) % total
		url := c.options.URLs[index] + path

		req, err := c.buildRequest(ctx, url, body)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		err = decodeEnvelope(resp, path, out)
		if isUnreachable(resp.StatusCode) {
			lastErr = err
			continue
		}
		if err == nil {
			c.pinned.Store(int32(index))
		}
		return err
	}

	return fmt.Errorf("all %d head node candidates failed: %s", total, lastErr)
}

// isUnreachable reports whether the status marks a node worth failing over
// from; anything else is answered authoritatively by the node.
func isUnreachable(statusCode int) bool {
	switch statusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func decodeEnvelope(resp *http.Response, path string, out any) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %s", path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &APIError{Path: path, Status: statusError, Message: "authentication failed: invalid credentials"}
	}

	var response envelope
	if err := json.Unmarshal(raw, &response); err != nil {
		return fmt.Errorf("failed to decode %s response (http %d): %s", path, resp.StatusCode, err)
	}
	if response.Status != statusOK {
		return &APIError{Path: path, Status: response.Status, Message: response.Message}
	}
	if out != nil {
		if err := json.Unmarshal(response.Data, out); err != nil {
			return fmt.Errorf("failed to decode %s data: %s", path, err)
		}
	}
	return nil
}

// HasTable reports whether the table exists on the head node.
func (c *Client) HasTable(ctx context.Context, table string) (bool, error) {
	var result hasTableResponse
	if err := c.post(ctx, pathHasTable, tableRequest{Table: table}, &result); err != nil {
		return false, err
	}
	return result.Exists, nil
}

// ShowTable returns the table description including its native column types
// and total row count.
func (c *Client) ShowTable(ctx context.Context, table string) (*TableInfo, error) {
	var info TableInfo
	if err := c.post(ctx, pathShowTable, tableRequest{Table: table}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CreateTable creates a table with the given native columns.
func (c *Client) CreateTable(ctx context.Context, request CreateTableRequest) error {
	return c.post(ctx, pathCreateTable, request, nil)
}

// ClearTable removes every row of the table, keeping its type.
func (c *Client) ClearTable(ctx context.Context, table string) error {
	return c.post(ctx, pathClearTable, tableRequest{Table: table}, nil)
}

// GetRecords fetches one positional row window.
func (c *Client) GetRecords(ctx context.Context, request GetRecordsRequest) (*RecordsPage, error) {
	var page RecordsPage
	if err := c.post(ctx, pathGetRecords, request, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// InsertRecords sends one batch of positional rows.
func (c *Client) InsertRecords(ctx context.Context, request InsertRecordsRequest) (*InsertResult, error) {
	var result InsertResult
	if err := c.post(ctx, pathInsertRecords, request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SystemProperties returns head-node properties, optionally narrowed to keys.
func (c *Client) SystemProperties(ctx context.Context, keys ...string) (map[string]string, error) {
	var result systemPropertiesResponse
	if err := c.post(ctx, pathSystemProperties, systemPropertiesRequest{Keys: keys}, &result); err != nil {
		return nil, err
	}
	if result.Properties == nil {
		result.Properties = map[string]string{}
	}
	return result.Properties, nil
}
