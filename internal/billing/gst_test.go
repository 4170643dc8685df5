package billing

import (
	"testing"

	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResolveGSTMode(t *testing.T) {
	tests := []struct {
		name        string
		companyCode string
		clientCode  string
		want        types.GSTMode
	}{
		{"same state", "27", "27", types.GSTModeDualTax},
		{"different state", "27", "29", types.GSTModeSingleTax},
		{"blank client code defaults to intra-state", "27", "", types.GSTModeDualTax},
		{"whitespace only client code", "27", "   ", types.GSTModeDualTax},
		{"codes compared after trimming", "27", " 27 ", types.GSTModeDualTax},
		{"codes compared case-insensitively", "mh", "MH", types.GSTModeDualTax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveGSTMode(tt.companyCode, tt.clientCode))
		})
	}
}

func TestSplitDualTax(t *testing.T) {
	tests := []struct {
		name       string
		total      string
		wantFirst  string
		wantSecond string
	}{
		{"even split", "10260", "5130", "5130"},
		{"residue goes to first component", "100.01", "50.01", "50"},
		{"odd paisa", "0.01", "0.01", "0"},
		{"zero", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			first, second := SplitDualTax(total)
			assert.Equal(t, tt.wantFirst, first.String())
			assert.Equal(t, tt.wantSecond, second.String())
			assert.True(t, first.Add(second).Equal(total), "components must sum exactly to the total")
		})
	}
}

func TestBuildTaxBreakup(t *testing.T) {
	rate := decimal.NewFromInt(18)

	dual := BuildTaxBreakup(types.GSTModeDualTax, rate, decimal.RequireFromString("10260"))
	assert.Equal(t, types.GSTModeDualTax, dual.Mode)
	assert.Equal(t, "5130", dual.CGST.String())
	assert.Equal(t, "5130", dual.SGST.String())
	assert.True(t, dual.IGST.IsZero())
	assert.Equal(t, "10260", dual.TotalTax.String())

	single := BuildTaxBreakup(types.GSTModeSingleTax, rate, decimal.RequireFromString("10260"))
	assert.Equal(t, types.GSTModeSingleTax, single.Mode)
	assert.Equal(t, "10260", single.IGST.String())
	assert.True(t, single.CGST.IsZero())
	assert.True(t, single.SGST.IsZero())
}
