package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return New([]Product{
		{ID: 101, Name: "Camiseta azul", Price: 15.99, Category: "Ropa"},
		{ID: 402, Name: "Gorra negra", Price: 9.99, Category: "Accesorios"},
	})
}

func TestFindByID(t *testing.T) {
	cat := testCatalog()

	p, ok := cat.FindByID(101)
	require.True(t, ok)
	assert.Equal(t, "Camiseta azul", p.Name)

	_, ok = cat.FindByID(999)
	assert.False(t, ok)
}

func TestFindByName(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		name     string
		text     string
		found    bool
		expected int
	}{
		{"product name inside a phrase", "añade la camiseta azul al carrito", true, 101},
		{"partial name inside product name", "Camiseta", true, 101},
		{"case insensitive", "GORRA NEGRA", true, 402},
		{"no match", "zapatillas rojas", false, 0},
		{"empty text", "   ", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := cat.FindByName(tt.text)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, p.ID)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	data := `[{"id": 1, "name": "Producto A", "price": 10.5}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cat.Products(), 1)
	assert.Equal(t, "Producto A", cat.Products()[0].Name)
	assert.Equal(t, 10.5, cat.Products()[0].Price)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
