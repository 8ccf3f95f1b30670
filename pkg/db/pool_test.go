/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/logquery/pkg/models"
)

func TestBuildConnURL_DefaultsSSLModeDisableWithoutTLS(t *testing.T) {
	t.Parallel()

	u, err := buildConnURL(&models.PostgresDatabase{
		Host:     "pg-rw",
		Database: "logs",
		Username: "logquery",
		Password: "s3cret",
	})
	require.NoError(t, err)

	assert.Equal(t, "pg-rw:5432", u.Host)
	assert.Equal(t, "/logs", u.Path)
	assert.Equal(t, "logquery", u.User.Username())
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
}

func TestBuildConnURL_DefaultsSSLModeVerifyFullWithTLS(t *testing.T) {
	t.Parallel()

	u, err := buildConnURL(&models.PostgresDatabase{
		Host:     "pg-rw",
		Port:     5433,
		Database: "logs",
		TLS: &models.TLSConfig{
			CertFile: "client.crt",
			KeyFile:  "client.key",
			CAFile:   "ca.crt",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "pg-rw:5433", u.Host)
	assert.Equal(t, "verify-full", u.Query().Get("sslmode"))
}

func TestBuildConnURL_RejectsTLSWithSSLModeDisable(t *testing.T) {
	t.Parallel()

	_, err := buildConnURL(&models.PostgresDatabase{
		Host:     "pg-rw",
		Database: "logs",
		SSLMode:  "disable",
		TLS: &models.TLSConfig{
			CertFile: "client.crt",
			KeyFile:  "client.key",
			CAFile:   "ca.crt",
		},
	})
	if !errors.Is(err, ErrTLSDisabled) {
		t.Fatalf("error=%v, want %v", err, ErrTLSDisabled)
	}
}

func TestBuildConnURL_RequiresAllTLSFiles(t *testing.T) {
	t.Parallel()

	_, err := buildConnURL(&models.PostgresDatabase{
		Host:     "pg-rw",
		Database: "logs",
		TLS:      &models.TLSConfig{CertFile: "client.crt"},
	})
	require.ErrorIs(t, err, ErrLackingTLSFiles)
}

func TestBuildConnURL_TLSPathsResolveViaCertDir(t *testing.T) {
	t.Parallel()

	u, err := buildConnURL(&models.PostgresDatabase{
		Host:     "pg-rw",
		Database: "logs",
		CertDir:  "/etc/logquery/certs",
		TLS: &models.TLSConfig{
			CertFile: "client.crt",
			KeyFile:  "/abs/client.key",
			CAFile:   "ca.crt",
		},
	})
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "/etc/logquery/certs/client.crt", q.Get("sslcert"))
	assert.Equal(t, "/abs/client.key", q.Get("sslkey"))
	assert.Equal(t, "/etc/logquery/certs/ca.crt", q.Get("sslrootcert"))
}

func TestBuildConnURL_CarriesRuntimeParams(t *testing.T) {
	t.Parallel()

	u, err := buildConnURL(&models.PostgresDatabase{
		Host:            "pg-rw",
		Database:        "logs",
		ApplicationName: "logquery",
		ExtraRuntimeParams: map[string]string{
			"search_path": "observability",
			"":            "ignored",
		},
	})
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "logquery", q.Get("application_name"))
	assert.Equal(t, "observability", q.Get("search_path"))
	assert.False(t, q.Has(""))
}

func TestResolveSSLMode_UsesRuntimeParamsFallback(t *testing.T) {
	t.Parallel()

	got, err := resolveSSLMode(&models.PostgresDatabase{
		ExtraRuntimeParams: map[string]string{
			"sslmode": "Verify-CA",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "verify-ca", got)
}

func TestResolveSSLMode_ExplicitWins(t *testing.T) {
	t.Parallel()

	got, err := resolveSSLMode(&models.PostgresDatabase{
		SSLMode:            "Require",
		ExtraRuntimeParams: map[string]string{"sslmode": "verify-ca"},
	})
	require.NoError(t, err)
	assert.Equal(t, "require", got)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), &models.DatabaseConfig{Driver: "mysql"}, nil)
	require.ErrorIs(t, err, ErrUnsupportedDriver)

	_, err = Open(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrDatabaseConfigNil)
}

func TestNewPostgresPoolRequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := NewPostgresPool(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrDatabaseConfigNil)
}
