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

package types

type MessageType string

const (
	LogMessage              MessageType = "LOG"
	ConnectionStatusMessage MessageType = "CONNECTION_STATUS"
	SchemaMessage           MessageType = "SCHEMA"
	RecordMessage           MessageType = "RECORD"
	IngestStatsMessage      MessageType = "INGEST_STATS"
)

type ConnectionStatus string

const (
	ConnectionSucceed ConnectionStatus = "SUCCEEDED"
	ConnectionFailed  ConnectionStatus = "FAILED"
)

type StatusRow struct {
	Status  ConnectionStatus `json:"status"`
	Message string           `json:"message,omitempty"`
}

// IngestStats is a snapshot of the ingestion progress counters.
type IngestStats struct {
	Total     int64 `json:"total"`
	Converted int64 `json:"converted"`
	Failed    int64 `json:"failed"`
}

// Message is the JSON line emitted on stdout by protocol commands.
type Message struct {
	Type             MessageType  `json:"type"`
	ConnectionStatus *StatusRow   `json:"connectionStatus,omitempty"`
	Schema           *TableSchema `json:"schema,omitempty"`
	Record           Record       `json:"record,omitempty"`
	IngestStats      *IngestStats `json:"ingestStats,omitempty"`
}
