package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	t.Run("valid CPF with punctuation", func(t *testing.T) {
		doc, err := ParseDocument("529.982.247-25")
		require.NoError(t, err)
		assert.Equal(t, "52998224725", doc.Number())
		assert.Equal(t, DocumentCPF, doc.Type())
		assert.False(t, doc.IsCompany())
		assert.Equal(t, "529.982.247-25", doc.Formatted())
	})

	t.Run("valid CNPJ", func(t *testing.T) {
		doc, err := ParseDocument("11222333000181")
		require.NoError(t, err)
		assert.Equal(t, DocumentCNPJ, doc.Type())
		assert.True(t, doc.IsCompany())
		assert.Equal(t, "11.222.333/0001-81", doc.Formatted())
	})

	t.Run("wrong check digit", func(t *testing.T) {
		_, err := ParseDocument("529.982.247-26")
		assert.Error(t, err)
		_, err = ParseDocument("11.222.333/0001-82")
		assert.Error(t, err)
	})

	t.Run("repeated digits are rejected", func(t *testing.T) {
		assert.False(t, IsValidCPF("11111111111"))
		assert.False(t, IsValidCNPJ("00000000000000"))
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := ParseDocument("12345")
		assert.Error(t, err)
	})
}

func TestOnlyDigits(t *testing.T) {
	assert.Equal(t, "01310100", OnlyDigits("01310-100"))
	assert.Equal(t, "", OnlyDigits("abc"))
}

func TestNewAddress(t *testing.T) {
	addr, err := NewAddress(Address{
		ZipCode: "01310-100",
		Street:  " Avenida Paulista ",
		Number:  "1000",
		City:    "São Paulo",
		State:   "sp",
	})
	require.NoError(t, err)
	assert.Equal(t, "01310100", addr.ZipCode)
	assert.Equal(t, "Avenida Paulista", addr.Street)
	assert.Equal(t, "SP", addr.State)
	assert.Equal(t, "01310-100", addr.FormattedZip())
	assert.Equal(t, "Avenida Paulista, 1000, São Paulo/SP, CEP 01310-100", addr.String())

	_, err = NewAddress(Address{ZipCode: "123"})
	assert.Error(t, err)

	_, err = NewAddress(Address{State: "XX"})
	assert.Error(t, err)
}

func TestAddressMergeAndLookup(t *testing.T) {
	partial := Address{ZipCode: "01310100", Number: "200"}
	assert.True(t, partial.NeedsLookup())

	merged := partial.Merge(Address{ZipCode: "01310100", Street: "Avenida Paulista", Number: "1", City: "São Paulo", State: "SP"})
	assert.Equal(t, "200", merged.Number)
	assert.Equal(t, "Avenida Paulista", merged.Street)
	assert.False(t, merged.NeedsLookup())
	assert.True(t, Address{}.IsEmpty())
}
