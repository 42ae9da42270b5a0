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

package utils

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/gridstore-io/gridlink/utils/logger"
)

// SSLConfig is a dto for deserialized secure-transport overrides
type SSLConfig struct {
	// Skip server certificate verification entirely
	//
	// @jsonschema(
	// title="Bypass Verification"
	// )
	BypassVerify bool `mapstructure:"bypass_verify,omitempty" json:"bypass_verify,omitempty" yaml:"bypass_verify,omitempty"`
	// Path to a PEM file with the CA certificates to trust
	//
	// @jsonschema(
	// title="Server CA Path"
	// )
	ServerCAPath string `mapstructure:"server_ca_path,omitempty" json:"server_ca_path,omitempty" yaml:"server_ca_path,omitempty"`
	// Path to a PEM client certificate
	//
	// @jsonschema(
	// title="Client Certificate Path"
	// )
	ClientCertPath string `mapstructure:"client_cert_path,omitempty" json:"client_cert_path,omitempty" yaml:"client_cert_path,omitempty"`
	// Path to the PEM key of the client certificate
	//
	// @jsonschema(
	// title="Client Certificate Key Path"
	// )
	ClientKeyPath string `mapstructure:"client_key_path,omitempty" json:"client_key_path,omitempty" yaml:"client_key_path,omitempty"`
}

// Configured reports whether any override is set.
func (sc *SSLConfig) Configured() bool {
	if sc == nil {
		return false
	}
	return sc.BypassVerify || sc.ServerCAPath != "" || sc.ClientCertPath != "" || sc.ClientKeyPath != ""
}

// Validate returns err if the ssl configuration is invalid
func (sc *SSLConfig) Validate() error {
	if sc == nil {
		return nil
	}

	if (sc.ClientCertPath == "") != (sc.ClientKeyPath == "") {
		return fmt.Errorf("'ssl.client_cert_path' and 'ssl.client_key_path' must be set together")
	}

	return nil
}

// BuildTLSConfig materializes the overrides into a TLS config scoped to one
// session. The bypass flag wins over a custom trust store when both are set;
// at most one of the two verification behaviors is ever active.
func (sc *SSLConfig) BuildTLSConfig(serverName string) (*tls.Config, error) {
	if sc == nil {
		return nil, nil
	}

	if sc.BypassVerify {
		if sc.ServerCAPath != "" {
			logger.Warnf("both bypass_verify and server_ca_path are set, bypassing certificate verification")
		}
		// #nosec G402 -- InsecureSkipVerify is the configured bypass behavior
		tlsConfig := &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
			MinVersion:         tls.VersionTLS12,
		}
		return sc.withClientCert(tlsConfig)
	}

	tlsConfig := &tls.Config{
		ServerName: serverName,
		MinVersion: tls.VersionTLS12,
	}

	if sc.ServerCAPath != "" {
		pem, err := os.ReadFile(sc.ServerCAPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read server CA file: %s", err)
		}
		rootCertPool := x509.NewCertPool()
		if ok := rootCertPool.AppendCertsFromPEM(pem); !ok {
			return nil, fmt.Errorf("failed to append CA certificate from %s", sc.ServerCAPath)
		}
		tlsConfig.RootCAs = rootCertPool
	}

	return sc.withClientCert(tlsConfig)
}

func (sc *SSLConfig) withClientCert(tlsConfig *tls.Config) (*tls.Config, error) {
	if sc.ClientCertPath == "" {
		return tlsConfig, nil
	}
	cert, err := tls.LoadX509KeyPair(sc.ClientCertPath, sc.ClientKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate and key: %s", err)
	}
	tlsConfig.Certificates = []tls.Certificate{cert}
	return tlsConfig, nil
}
