/*
 * Copyright 2025 Carver Automation Corporation.
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

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/logquery/pkg/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultLogsTable = "logs"
)

var (
	errInvalidDuration        = errors.New("invalid duration")
	errListenAddrRequired     = errors.New("listen address is required")
	errDatabaseDriverRequired = errors.New("database driver is required")
	errUnsupportedDriver      = errors.New("unsupported database driver")
	errPostgresConfigRequired = errors.New("database.postgres is required when driver is postgres")
	errPostgresHostRequired   = errors.New("database.postgres.host is required")
	errPostgresNameRequired   = errors.New("database.postgres.database is required")
	errSQLitePathRequired     = errors.New("database.sqlite.path is required when driver is sqlite")
	errNATSURLRequired        = errors.New("ingest.nats_url is required")
	errStreamNameRequired     = errors.New("ingest.stream_name is required")
	errConsumerNameRequired   = errors.New("ingest.consumer_name is required")
	errSubjectRequired        = errors.New("ingest.subject is required")
)

// Duration wraps time.Duration so it can be configured as "30s" or as nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// TLSConfig holds certificate paths. Relative paths resolve against CertDir.
type TLSConfig struct {
	CertFile     string `json:"cert_file"`
	KeyFile      string `json:"key_file"`
	CAFile       string `json:"ca_file"`
	ClientCAFile string `json:"client_ca_file"`
}

// SecurityConfig holds common security configuration.
type SecurityConfig struct {
	Mode       string    `json:"mode"`
	CertDir    string    `json:"cert_dir"`
	ServerName string    `json:"server_name,omitempty"`
	TLS        TLSConfig `json:"tls"`
}

// CORSConfig controls which browser origins may call the API.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// PostgresDatabase describes how to reach the Postgres cluster holding the logs table.
type PostgresDatabase struct {
	Host               string            `json:"host"`
	Port               int               `json:"port"`
	Database           string            `json:"database"`
	Username           string            `json:"username"`
	Password           string            `json:"password" sensitive:"true"`
	ApplicationName    string            `json:"application_name,omitempty"`
	SSLMode            string            `json:"ssl_mode,omitempty"`
	CertDir            string            `json:"cert_dir,omitempty"`
	TLS                *TLSConfig        `json:"tls,omitempty"`
	MaxConnections     int32             `json:"max_connections,omitempty"`
	MinConnections     int32             `json:"min_connections,omitempty"`
	MaxConnLifetime    Duration          `json:"max_conn_lifetime,omitempty"`
	HealthCheckPeriod  Duration          `json:"health_check_period,omitempty"`
	StatementTimeout   Duration          `json:"statement_timeout,omitempty"`
	ExtraRuntimeParams map[string]string `json:"extra_runtime_params,omitempty"`
}

// SQLiteDatabase configures the embedded store.
type SQLiteDatabase struct {
	Path         string   `json:"path"`
	BusyTimeout  Duration `json:"busy_timeout,omitempty"`
	MaxOpenConns int      `json:"max_open_conns,omitempty"`
}

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	Driver   string            `json:"driver"`
	Table    string            `json:"table,omitempty"`
	Postgres *PostgresDatabase `json:"postgres,omitempty"`
	SQLite   *SQLiteDatabase   `json:"sqlite,omitempty"`
}

// IngestConfig enables the NATS JetStream ingest consumer.
type IngestConfig struct {
	Enabled      bool            `json:"enabled"`
	NATSURL      string          `json:"nats_url"`
	StreamName   string          `json:"stream_name"`
	ConsumerName string          `json:"consumer_name"`
	Subject      string          `json:"subject"`
	Domain       string          `json:"domain,omitempty"`
	MaxDeliver   int             `json:"max_deliver,omitempty"`
	Security     *SecurityConfig `json:"security,omitempty"`
}

// ServiceConfig is the top-level configuration of the logquery service.
type ServiceConfig struct {
	ListenAddr string         `json:"listen_addr"`
	APIKey     string         `json:"api_key,omitempty" sensitive:"true"`
	CORS       CORSConfig     `json:"cors,omitempty"`
	Database   DatabaseConfig `json:"database"`
	Ingest     *IngestConfig  `json:"ingest,omitempty"`
	Logging    *logger.Config `json:"logging,omitempty"`
}

// Validate checks the configuration for required fields.
func (c *ServiceConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.ListenAddr) == "" {
		errs = append(errs, errListenAddrRequired)
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Ingest != nil && c.Ingest.Enabled {
		if err := c.Ingest.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Validate checks that the selected driver has its settings.
func (c *DatabaseConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "":
		return errDatabaseDriverRequired
	case DriverPostgres:
		if c.Postgres == nil {
			return errPostgresConfigRequired
		}

		var errs []error

		if c.Postgres.Host == "" {
			errs = append(errs, errPostgresHostRequired)
		}

		if c.Postgres.Database == "" {
			errs = append(errs, errPostgresNameRequired)
		}

		return errors.Join(errs...)
	case DriverSQLite:
		if c.SQLite == nil || strings.TrimSpace(c.SQLite.Path) == "" {
			return errSQLitePathRequired
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", errUnsupportedDriver, c.Driver)
	}
}

// Validate checks the ingest consumer settings.
func (c *IngestConfig) Validate() error {
	var errs []error

	if c.NATSURL == "" {
		errs = append(errs, errNATSURLRequired)
	}

	if c.StreamName == "" {
		errs = append(errs, errStreamNameRequired)
	}

	if c.ConsumerName == "" {
		errs = append(errs, errConsumerNameRequired)
	}

	if c.Subject == "" {
		errs = append(errs, errSubjectRequired)
	}

	return errors.Join(errs...)
}

// SecurityConfigs returns the security blocks whose TLS paths are resolved
// against their cert_dir after loading.
func (c *ServiceConfig) SecurityConfigs() []*SecurityConfig {
	if c.Ingest == nil || c.Ingest.Security == nil {
		return nil
	}

	return []*SecurityConfig{c.Ingest.Security}
}
