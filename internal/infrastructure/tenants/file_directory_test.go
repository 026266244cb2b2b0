package tenants_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/tenants"
)

const sample = `
version: 1
tenants:
  - id: 2
    code: globex
    name: Globex
    database_url: postgres://globex:pwd@db:5432/tenant_globex
  - id: 1
    code: acme
    name: Acme
    database_url: postgres://acme:pwd@db:5432/tenant_acme
  - id: 3
    code: initech
    database_url: postgres://initech:pwd@db:5432/tenant_initech
    active: false
`

func TestFileDirectory_ResolveYList(t *testing.T) {
	d, err := tenants.Parse([]byte(sample))
	require.NoError(t, err)

	tc, err := d.Resolve(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tc.TenantID)
	assert.Equal(t, "postgres://acme:pwd@db:5432/tenant_acme", tc.StoreLocator)

	list, err := d.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "acme", list[0].TenantCode)
	assert.Equal(t, "globex", list[1].TenantCode)
}

func TestFileDirectory_InactivoODesconocido(t *testing.T) {
	d, err := tenants.Parse([]byte(sample))
	require.NoError(t, err)

	_, err = d.Resolve(context.Background(), "initech")
	assert.ErrorIs(t, err, domain.ErrUnknownTenant)
	_, err = d.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownTenant)
}

func TestFileDirectory_ArchivosInvalidos(t *testing.T) {
	cases := map[string]string{
		"version":   "version: 2\ntenants:\n  - {id: 1, code: a, database_url: x}\n",
		"vacio":     "version: 1\ntenants: []\n",
		"sin url":   "version: 1\ntenants:\n  - {id: 1, code: a}\n",
		"duplicado": "version: 1\ntenants:\n  - {id: 1, code: a, database_url: x}\n  - {id: 2, code: a, database_url: y}\n",
		"yaml roto": "version: [1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tenants.Parse([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_DesdeArchivo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenants.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	d, err := tenants.Load(path)
	require.NoError(t, err)
	_, err = d.Resolve(context.Background(), "globex")
	assert.NoError(t, err)

	_, err = tenants.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
