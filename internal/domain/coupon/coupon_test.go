package coupon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByCode(t *testing.T) {
	book := NewBook([]Coupon{
		{Code: "VIP20", Kind: KindPercent, Value: 20, MinTotal: 100},
		{Code: "SUPER5", Kind: KindFixed, Value: 5},
	})

	c, ok := book.FindByCode("VIP20")
	require.True(t, ok)
	assert.Equal(t, KindPercent, c.Kind)
	assert.Equal(t, 100.0, c.MinTotal)

	c, ok = book.FindByCode("super5")
	require.True(t, ok, "codes match ignoring case")
	assert.Equal(t, "SUPER5", c.Code)

	_, ok = book.FindByCode("NADA")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coupons.json")
	data := `[{"code": "BIENVENIDA10", "type": "percent", "value": 10, "min_total": 0}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	book, err := Load(path)
	require.NoError(t, err)
	require.Len(t, book.Coupons(), 1)
	assert.Equal(t, KindPercent, book.Coupons()[0].Kind)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coupons.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
