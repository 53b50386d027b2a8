package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/ports"
)

var _ ports.QuoteRepository = (*QuoteRepository)(nil)

var (
	quoteColumns = []string{"id", "numero", "cliente_id", "veiculo_id", "data_orcamento", "validade", "status", "created_at", "updated_at"}
	partsColumns = []string{"id", "orcamento_id", "peca_id", "peca_nome", "quantidade", "valor_unitario"}
	laborColumns = []string{"id", "orcamento_id", "servico_id", "servico_nome", "horas", "valor_hora"}

	createdAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	march1    = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	march31   = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
)

const (
	quoteID1 = "7f3c9a52-0d4e-4a8e-9a43-5f3f0c6c2a11"
	quoteID2 = "0b6c2b1e-52a1-4f3e-8d1b-3a9f4c2e7d22"
)

// newMockRepository creates a QuoteRepository over a mocked SQL connection.
func newMockRepository(t *testing.T) (*QuoteRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return NewQuoteRepository(db, Options{OpTimeout: time.Second}), mock
}

func quoteValues(id, number, status string) []driver.Value {
	return []driver.Value{id, number, "c1", "v1", march1, march31, status, createdAt, createdAt}
}

func expectLines(mock sqlmock.Sqlmock, parts, labor *sqlmock.Rows) {
	mock.ExpectQuery(`FROM orcamento_pecas`).WillReturnRows(parts)
	mock.ExpectQuery(`FROM orcamento_servicos`).WillReturnRows(labor)
}

func TestQuoteRepository_List(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM orcamentos ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(quoteColumns).
			AddRow(quoteValues(quoteID2, "ORC-002", "Aprovado")...).
			AddRow(quoteValues(quoteID1, "ORC-001", "Pendente")...))
	expectLines(mock,
		sqlmock.NewRows(partsColumns).
			AddRow("a1", quoteID1, "p1", "Filtro", int64(2), "35.50").
			AddRow("a2", quoteID2, "p2", "Pastilha", int64(1), "120"),
		sqlmock.NewRows(laborColumns).
			AddRow("b1", quoteID1, "s1", "Troca de óleo", "1.5", "80"),
	)

	quotes, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, "ORC-002", quotes[0].Number)
	assert.Equal(t, domain.StatusApproved, quotes[0].Status)
	assert.Equal(t, "R$ 120,00", quotes[0].Total().Display())

	assert.Equal(t, "ORC-001", quotes[1].Number)
	assert.Equal(t, "R$ 191,00", quotes[1].Total().Display())
	assert.Equal(t, "01/03/2026", quotes[1].QuoteDate.Display())
	assert.Equal(t, "31/03/2026", quotes[1].ValidUntil.Display())
	require.Len(t, quotes[1].LaborLines(), 1)
	assert.Equal(t, "Troca de óleo", quotes[1].LaborLines()[0].Service.Name)
}

func TestQuoteRepository_List_Empty(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM orcamentos ORDER BY`).WillReturnRows(sqlmock.NewRows(quoteColumns))

	quotes, err := repo.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, quotes, "an empty store lists as an empty slice")
	assert.Empty(t, quotes)
}

func TestQuoteRepository_List_QueryFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM orcamentos`).WillReturnError(errors.New("connection reset by peer"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsRepository(err))

	var repoErr *domain.RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, "list", repoErr.Op)
}

func TestQuoteRepository_Get(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM orcamentos WHERE id = \$1`).
		WithArgs(quoteID1).
		WillReturnRows(sqlmock.NewRows(quoteColumns).AddRow(quoteValues(quoteID1, "ORC-001", "Pendente")...))
	expectLines(mock,
		sqlmock.NewRows(partsColumns).AddRow("a1", quoteID1, "p1", "Filtro", int64(3), "10.005"),
		sqlmock.NewRows(laborColumns),
	)

	q, err := repo.Get(context.Background(), quoteID1)
	require.NoError(t, err)
	assert.Equal(t, quoteID1, q.ID)
	assert.Equal(t, "30.02", q.Total().String())
}

func TestQuoteRepository_Get_NotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "no rows", err: sql.ErrNoRows},
		{name: "malformed id", err: &pgconn.PgError{Code: pgInvalidTextRepresentation}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)

			mock.ExpectQuery(`FROM orcamentos WHERE id`).WillReturnError(tt.err)

			_, err := repo.Get(context.Background(), "missing")
			assert.True(t, domain.IsNotFound(err), "got %v", err)
		})
	}
}

func TestQuoteRepository_Create(t *testing.T) {
	repo, mock := newMockRepository(t)

	draft := domain.NewQuote(domain.QuoteHeader{
		ClientID:   "c1",
		VehicleID:  "v1",
		QuoteDate:  domain.NewDate(2026, time.March, 1),
		ValidUntil: domain.NewDate(2026, time.March, 31),
	})
	partLine, err := draft.AddPartsLine(domain.Part{ID: "p1", Name: "Filtro"}, 2, domain.MustMoney("35.50"))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orcamentos`).
		WithArgs("c1", "v1", march1, march31, "Pendente", "71").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(quoteID1))
	mock.ExpectExec(`INSERT INTO orcamento_pecas`).
		WithArgs(partLine, quoteID1, 0, "p1", "Filtro", 2, "35.5").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM orcamentos WHERE id = \$1`).
		WithArgs(quoteID1).
		WillReturnRows(sqlmock.NewRows(quoteColumns).AddRow(quoteValues(quoteID1, "ORC-001", "Pendente")...))
	expectLines(mock,
		sqlmock.NewRows(partsColumns).AddRow(partLine, quoteID1, "p1", "Filtro", int64(2), "35.50"),
		sqlmock.NewRows(laborColumns),
	)
	mock.ExpectCommit()

	saved, err := repo.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "ORC-001", saved.Number)
	assert.Equal(t, domain.StatusPending, saved.Status)
	assert.True(t, saved.Total().Equal(draft.Total()))
	assert.Equal(t, partLine, saved.PartsLines()[0].ID)
}

func TestQuoteRepository_Create_RollsBackOnLineFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	draft := domain.NewQuote(domain.QuoteHeader{ClientID: "c1", VehicleID: "v1"})
	_, err := draft.AddPartsLine(domain.Part{ID: "p1"}, 1, domain.MustMoney("1"))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orcamentos`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(quoteID1))
	mock.ExpectExec(`INSERT INTO orcamento_pecas`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = repo.Create(context.Background(), draft)
	require.Error(t, err)
	assert.True(t, domain.IsRepository(err))
	assert.ErrorContains(t, err, "disk full")
}

func TestQuoteRepository_Create_NumberCollision(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orcamentos`).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, Detail: "Key (numero)=(ORC-001) already exists."})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), domain.NewQuote(domain.QuoteHeader{ClientID: "c1", VehicleID: "v1"}))
	assert.True(t, domain.IsConflict(err))
}

func TestQuoteRepository_Update_ReplacesLinesAndTotal(t *testing.T) {
	repo, mock := newMockRepository(t)

	status := domain.StatusApproved
	patch := domain.QuotePatch{
		Status: &status,
		Lines: &domain.QuoteLines{
			Labor: []domain.LaborLine{{ID: "b9", Service: domain.Service{ID: "s1", Name: "Alinhamento"}, Hours: decimal.RequireFromString("2"), HourlyRate: domain.MustMoney("60")}},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM orcamentos WHERE id = \$1 FOR UPDATE`).
		WithArgs(quoteID1).
		WillReturnRows(sqlmock.NewRows(quoteColumns).AddRow(quoteValues(quoteID1, "ORC-001", "Pendente")...))
	expectLines(mock, sqlmock.NewRows(partsColumns), sqlmock.NewRows(laborColumns))
	mock.ExpectExec(`UPDATE orcamentos SET status = \$1, valor_total = \$2, updated_at = now\(\) WHERE id = \$3`).
		WithArgs("Aprovado", "120", quoteID1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM orcamento_pecas`).WithArgs(quoteID1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM orcamento_servicos`).WithArgs(quoteID1).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO orcamento_servicos`).
		WithArgs("b9", quoteID1, 0, "s1", "Alinhamento", "2", "60").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM orcamentos WHERE id = \$1`).
		WithArgs(quoteID1).
		WillReturnRows(sqlmock.NewRows(quoteColumns).AddRow(quoteValues(quoteID1, "ORC-001", "Aprovado")...))
	expectLines(mock,
		sqlmock.NewRows(partsColumns),
		sqlmock.NewRows(laborColumns).AddRow("b9", quoteID1, "s1", "Alinhamento", "2", "60"),
	)
	mock.ExpectCommit()

	updated, err := repo.Update(context.Background(), quoteID1, patch)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)
	assert.Equal(t, "R$ 120,00", updated.Total().Display())
	assert.Equal(t, "ORC-001", updated.Number)
}

func TestQuoteRepository_Update_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	vehicle := "v2"
	_, err := repo.Update(context.Background(), quoteID1, domain.QuotePatch{VehicleID: &vehicle})
	assert.True(t, domain.IsNotFound(err))
}

func TestQuoteRepository_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectExec(`DELETE FROM orcamentos WHERE id = \$1`).
			WithArgs(quoteID1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), quoteID1))
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectExec(`DELETE FROM orcamentos`).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.True(t, domain.IsNotFound(repo.Delete(context.Background(), quoteID1)))
	})

	t.Run("failure", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectExec(`DELETE FROM orcamentos`).WillReturnError(errors.New("timeout"))

		assert.True(t, domain.IsRepository(repo.Delete(context.Background(), quoteID1)))
	})
}

func TestPatchColumns(t *testing.T) {
	client := "c9"
	date := domain.NewDate(2026, time.May, 2)

	sets, args := patchColumns(domain.QuotePatch{ClientID: &client, ValidUntil: &date})

	assert.Equal(t, []string{"cliente_id = $1", "validade = $2", "updated_at = now()"}, sets)
	assert.Equal(t, []any{"c9", date.Time()}, args)
}

func TestHealthChecker(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()

	checker := NewHealthChecker(db)
	assert.Equal(t, "postgres", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))
}
