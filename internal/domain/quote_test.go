package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	brakePads = Part{ID: "p-1", Name: "Pastilha de freio"}
	oilChange = Service{ID: "s-1", Name: "Troca de óleo"}
)

func newTestQuote() *Quote {
	return NewQuote(QuoteHeader{
		ClientID:   "c-1",
		VehicleID:  "v-1",
		QuoteDate:  NewDate(2024, time.March, 1),
		ValidUntil: NewDate(2024, time.March, 31),
	})
}

func TestNewQuote_Defaults(t *testing.T) {
	q := newTestQuote()

	assert.Equal(t, StatusPending, q.Status)
	assert.True(t, q.Total().IsZero())
	assert.Empty(t, q.Number)
	assert.Empty(t, q.ID)
	assert.Empty(t, q.PartsLines())
	assert.Empty(t, q.LaborLines())
}

func TestQuote_TotalFollowsLines(t *testing.T) {
	q := newTestQuote()

	_, err := q.AddPartsLine(brakePads, 2, MustMoney("50.00"))
	require.NoError(t, err)
	_, err = q.AddLaborLine(oilChange, decimal.RequireFromString("1.5"), MustMoney("80.00"))
	require.NoError(t, err)

	assert.True(t, q.Total().Equal(MustMoney("220.00")), "got %s", q.Total())
	assert.True(t, q.Total().Equal(q.ComputeTotal()))
}

func TestQuote_ZeroHoursLabor(t *testing.T) {
	q := newTestQuote()

	_, err := q.AddLaborLine(oilChange, decimal.Zero, MustMoney("100"))
	require.NoError(t, err)

	require.Len(t, q.LaborLines(), 1)
	assert.True(t, q.Total().IsZero())
}

func TestQuote_SubtotalsRoundBeforeSumming(t *testing.T) {
	q := newTestQuote()

	// 0.333 * 1 rounds to 0.33 per line, so three lines give 0.99, not 1.00.
	for range 3 {
		_, err := q.AddLaborLine(oilChange, decimal.RequireFromString("0.333"), MustMoney("1"))
		require.NoError(t, err)
	}

	assert.Equal(t, "0.99", q.Total().String())
}

func TestQuote_AddPartsLine_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		part      Part
		quantity  int
		unitPrice Money
		field     string
	}{
		{name: "zero quantity", part: brakePads, quantity: 0, unitPrice: MustMoney("10"), field: "quantity"},
		{name: "negative quantity", part: brakePads, quantity: -1, unitPrice: MustMoney("10"), field: "quantity"},
		{name: "negative price", part: brakePads, quantity: 1, unitPrice: MustMoney("-0.01"), field: "unitPrice"},
		{name: "missing part", part: Part{}, quantity: 1, unitPrice: MustMoney("10"), field: "partId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQuote()

			_, err := q.AddPartsLine(tt.part, tt.quantity, tt.unitPrice)

			require.Error(t, err)
			assert.True(t, IsValidation(err))

			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Empty(t, q.PartsLines())
			assert.True(t, q.Total().IsZero())
		})
	}
}

func TestQuote_AddLaborLine_Rejects(t *testing.T) {
	q := newTestQuote()

	_, err := q.AddLaborLine(oilChange, decimal.RequireFromString("-1"), MustMoney("10"))
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = q.AddLaborLine(oilChange, decimal.NewFromInt(1), MustMoney("-10"))
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	assert.Empty(t, q.LaborLines())
}

func TestQuote_RemoveLine(t *testing.T) {
	q := newTestQuote()

	partID, err := q.AddPartsLine(brakePads, 1, MustMoney("30"))
	require.NoError(t, err)
	laborID, err := q.AddLaborLine(oilChange, decimal.NewFromInt(2), MustMoney("40"))
	require.NoError(t, err)

	require.NoError(t, q.RemoveLine(partID))
	assert.Empty(t, q.PartsLines())
	assert.Equal(t, "80.00", q.Total().String())

	require.NoError(t, q.RemoveLine(laborID))
	assert.True(t, q.Total().IsZero())

	err = q.RemoveLine("missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestQuote_LinesAreCopies(t *testing.T) {
	q := newTestQuote()
	_, err := q.AddPartsLine(brakePads, 1, MustMoney("30"))
	require.NoError(t, err)

	lines := q.PartsLines()
	lines[0].Quantity = 100

	assert.Equal(t, 1, q.PartsLines()[0].Quantity)
	assert.Equal(t, "30.00", q.Total().String())
}

func TestQuote_ReplaceLines(t *testing.T) {
	q := newTestQuote()

	err := q.ReplaceLines(
		[]PartsLine{{Part: brakePads, Quantity: 3, UnitPrice: MustMoney("10")}},
		[]LaborLine{{Service: oilChange, Hours: decimal.NewFromInt(1), HourlyRate: MustMoney("5")}},
	)
	require.NoError(t, err)

	assert.Equal(t, "35.00", q.Total().String())
	assert.NotEmpty(t, q.PartsLines()[0].ID)
	assert.NotEmpty(t, q.LaborLines()[0].ID)

	err = q.ReplaceLines([]PartsLine{{Part: brakePads, Quantity: 0, UnitPrice: MustMoney("1")}}, nil)
	require.Error(t, err)
	assert.Equal(t, "35.00", q.Total().String(), "failed replace leaves quote untouched")
}

func TestQuote_Apply(t *testing.T) {
	t.Run("changes header fields and lines", func(t *testing.T) {
		q := newTestQuote()
		client := "c-2"
		vehicle := "v-9"

		err := q.Apply(QuotePatch{
			ClientID:  &client,
			VehicleID: &vehicle,
			Lines: &QuoteLines{
				Parts: []PartsLine{{Part: brakePads, Quantity: 2, UnitPrice: MustMoney("12.5")}},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "c-2", q.ClientID)
		assert.Equal(t, "v-9", q.VehicleID)
		assert.Equal(t, "25.00", q.Total().String())
	})

	t.Run("rejects transition out of terminal status", func(t *testing.T) {
		q := newTestQuote()
		q.Status = StatusRejected
		next := StatusApproved

		err := q.Apply(QuotePatch{Status: &next})

		require.Error(t, err)
		assert.True(t, IsConflict(err))
		assert.Equal(t, StatusRejected, q.Status)
	})

	t.Run("empty patch", func(t *testing.T) {
		assert.True(t, QuotePatch{}.IsEmpty())
	})
}

func TestQuote_Clone(t *testing.T) {
	q := newTestQuote()
	q.Client = &Client{ID: "c-1", Name: "Ana"}
	_, err := q.AddPartsLine(brakePads, 1, MustMoney("1"))
	require.NoError(t, err)

	c := q.Clone()
	c.Client.Name = "Bia"
	require.NoError(t, c.RemoveLine(c.PartsLines()[0].ID))

	assert.Equal(t, "Ana", q.Client.Name)
	assert.Len(t, q.PartsLines(), 1)
}

func TestVehicle_Label(t *testing.T) {
	v := Vehicle{Make: "Fiat", Model: "Uno", Year: 2012, Plate: "ABC-1234"}

	assert.Equal(t, "Fiat Uno 2012 - ABC-1234", v.Label())
}
