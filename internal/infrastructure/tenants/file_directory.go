// Package tenants implementa un directorio de tenants estático leído de un archivo YAML,
// alternativa a la tabla tenants de la base maestra para despliegues pequeños y pruebas.
package tenants

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/tenant"
)

var _ tenant.Directory = (*FileDirectory)(nil)

type tenantEntry struct {
	ID          int64  `yaml:"id"`
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	DatabaseURL string `yaml:"database_url"`
	Active      *bool  `yaml:"active"` // ausente = activo
}

type tenantsFile struct {
	Version int           `yaml:"version"`
	Tenants []tenantEntry `yaml:"tenants"`
}

// FileDirectory directorio inmutable cargado una vez al arrancar.
type FileDirectory struct {
	byCode map[string]tenant.Context
}

// Load lee y valida el archivo de tenants.
func Load(path string) (*FileDirectory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tenants: leer %s: %w", path, err)
	}
	return Parse(b)
}

// Parse construye el directorio a partir del contenido YAML.
func Parse(b []byte) (*FileDirectory, error) {
	var tf tenantsFile
	if err := yaml.Unmarshal(b, &tf); err != nil {
		return nil, fmt.Errorf("tenants: %w", err)
	}
	if tf.Version != 1 {
		return nil, errors.New("tenants: unsupported version")
	}
	if len(tf.Tenants) == 0 {
		return nil, errors.New("tenants: empty")
	}

	d := &FileDirectory{byCode: make(map[string]tenant.Context, len(tf.Tenants))}
	for _, t := range tf.Tenants {
		if t.Code == "" || t.ID <= 0 || t.DatabaseURL == "" {
			return nil, fmt.Errorf("tenants: entrada inválida %q", t.Code)
		}
		if _, dup := d.byCode[t.Code]; dup {
			return nil, fmt.Errorf("tenants: código duplicado %q", t.Code)
		}
		if t.Active != nil && !*t.Active {
			continue
		}
		d.byCode[t.Code] = tenant.Context{TenantID: t.ID, TenantCode: t.Code, StoreLocator: t.DatabaseURL}
	}
	return d, nil
}

// Resolve devuelve el tenant activo con ese código.
func (d *FileDirectory) Resolve(_ context.Context, code string) (tenant.Context, error) {
	tc, ok := d.byCode[code]
	if !ok {
		return tenant.Context{}, fmt.Errorf("tenant %q: %w", code, domain.ErrUnknownTenant)
	}
	return tc, nil
}

// List tenants activos ordenados por código.
func (d *FileDirectory) List(context.Context) ([]tenant.Context, error) {
	list := make([]tenant.Context, 0, len(d.byCode))
	for _, tc := range d.byCode {
		list = append(list, tc)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].TenantCode < list[j].TenantCode })
	return list, nil
}
