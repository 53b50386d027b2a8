package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Display(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "R$ 0,00"},
		{in: "1234.5", want: "R$ 1234,50"},
		{in: "1234567.891", want: "R$ 1234567,89"},
		{in: "0.005", want: "R$ 0,01"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MustMoney(tt.in).Display())
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	price := MustMoney("19.99")

	assert.Equal(t, "59.97", price.Times(decimal.NewFromInt(3)).String())
	assert.Equal(t, "20.00", price.Add(MustMoney("0.01")).String())
	assert.True(t, MustMoney("1.5").Equal(MustMoney("1.50")))
	assert.True(t, MustMoney("-1").IsNegative())
	assert.True(t, Zero.IsZero())
	assert.Equal(t, "2.68", MustMoney("2.675").Rounded().String())
}

func TestMoneyFromString_Invalid(t *testing.T) {
	_, err := MoneyFromString("12,50")

	require.Error(t, err)
	assert.Panics(t, func() { MustMoney("abc") })
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(MustMoney("7.5"))
	require.NoError(t, err)
	assert.JSONEq(t, `"7.50"`, string(data))

	var fromNumber, fromString Money
	require.NoError(t, json.Unmarshal([]byte(`12.3`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"12.30"`), &fromString))
	assert.True(t, fromNumber.Equal(fromString))

	require.Error(t, json.Unmarshal([]byte(`"twelve"`), &fromNumber))
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-03-09")
	require.NoError(t, err)

	assert.Equal(t, "09/03/2024", d.Display())
	assert.Equal(t, "2024-03-09", d.String())

	later, err := ParseDate("2024-03-10")
	require.NoError(t, err)
	assert.True(t, d.Before(later))
	assert.False(t, later.Before(d))

	empty, err := ParseDate("  ")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
	assert.Empty(t, empty.Display())

	_, err = ParseDate("09/03/2024")
	require.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-12-31"`), &d))
	assert.Equal(t, "31/12/2024", d.Display())

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-12-31"`, string(data))

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())

	data, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
