package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

func TestValidateHeader(t *testing.T) {
	t.Run("accepts the exact contract", func(t *testing.T) {
		records := [][]string{uploadHeaders[models.UploadCustomerPoints]}
		assert.NoError(t, validateHeader(records, models.UploadCustomerPoints))
	})

	t.Run("accepts mixed case and padding", func(t *testing.T) {
		records := [][]string{{
			" Customer_Code ", "FIRST_NAME", "last_name", "phone", "phone_secondary",
			"total_points", "points_tl_value", "birth_date",
		}}
		assert.NoError(t, validateHeader(records, models.UploadCustomerPoints))
	})

	t.Run("rejects empty file", func(t *testing.T) {
		assert.Error(t, validateHeader(nil, models.UploadCustomerPoints))
	})

	t.Run("rejects wrong column name", func(t *testing.T) {
		records := [][]string{{
			"customer_id", "first_name", "last_name", "phone", "phone_secondary",
			"total_points", "points_tl_value", "birth_date",
		}}
		err := validateHeader(records, models.UploadCustomerPoints)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "customer_id")
	})

	t.Run("rejects missing columns", func(t *testing.T) {
		records := [][]string{{"customer_code", "first_name"}}
		assert.Error(t, validateHeader(records, models.UploadCustomerPoints))
	})
}

func TestParseCSV(t *testing.T) {
	input := "customer_code,first_name,last_name\nC001,Ayşe,Yılmaz\nC002,Mehmet,Demir\n"

	records, err := parseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"C001", "Ayşe", "Yılmaz"}, records[1])
}

func TestToCustomerPointsRows(t *testing.T) {
	records := [][]string{
		{"C001", "Ayşe", "Yılmaz", "05321234567", "", "1250,50", "12.51", "1985-03-15"},
		{"C002", "Mehmet", "Demir", "", "", "", "", ""},
	}

	rows := toCustomerPointsRows(records)
	require.Len(t, rows, 2)

	assert.Equal(t, "C001", rows[0].CustomerCode)
	assert.Equal(t, 1250.50, rows[0].TotalPoints)
	assert.Equal(t, 12.51, rows[0].PointsTLValue)
	require.NotNil(t, rows[0].BirthDate)
	assert.Equal(t, time.March, rows[0].BirthDate.Month())

	assert.Equal(t, float64(0), rows[1].TotalPoints)
	assert.Nil(t, rows[1].BirthDate)
}

func TestToCustomerSalesRows(t *testing.T) {
	records := [][]string{
		{"C001", "Ayşe Yılmaz", "8690000000001", "Vitamin D3", "15.07.2026", "2", "120,00", "240,00", "24,00"},
		{"C002", "Mehmet Demir", "8690000000002", "Serum", "2026-07-20", "", "300", "300", "30"},
	}

	rows := toCustomerSalesRows(records)
	require.Len(t, rows, 2)

	assert.Equal(t, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), rows[0].SaleDate)
	assert.Equal(t, 2, rows[0].Quantity)
	assert.Equal(t, 240.0, rows[0].TotalAmount)

	// Dotted and ISO dates both parse; a missing quantity defaults to 1.
	assert.Equal(t, time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC), rows[1].SaleDate)
	assert.Equal(t, 1, rows[1].Quantity)
}

func TestToProductSalesRows(t *testing.T) {
	records := [][]string{
		{"8690000000001", "P100", "Vitamin D3", "Solgar", "vitamin", "120,50", "8", "10", "30"},
	}

	rows := toProductSalesRows(records)
	require.Len(t, rows, 1)
	assert.Equal(t, models.CategoryVitamin, rows[0].Category)
	assert.Equal(t, 120.50, rows[0].UnitPrice)
	assert.Equal(t, 8, rows[0].StockQuantity)
	assert.Equal(t, 30, rows[0].UsageDuration)
}
