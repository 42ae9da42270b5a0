package constants

import "time"

// Viper keys shared across protocol commands.
const (
	ConfigFolder = "CONFIG_FOLDER"
	LogLevel     = "LOG_LEVEL"
)

// Defaults applied by Config.Validate; every integer/boolean option of the
// configuration surface has one.
const (
	DefaultThreadCount    = 4
	DefaultRetryCount     = 3
	DefaultRetryBackoff   = time.Second
	DefaultBatchSize      = 10000
	DefaultFetchSize      = 10000
	DefaultPartitionCount = 4
	DefaultTimeoutMS      = 30000
	DefaultSQLPort        = 5432
)

// System property keys served by /v1/show/system/properties.
const (
	PropCoreVersion    = "version.core"
	PropWorkerHTTPURLs = "conf.worker_http_urls"
	PropMultiHead      = "conf.multi_head_ingest"
)
