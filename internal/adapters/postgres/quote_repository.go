package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/logging"
)

// Postgres error codes the repository translates.
const (
	pgUniqueViolation           = "23505"
	pgInvalidTextRepresentation = "22P02"
	pgCheckViolation            = "23514"
)

const defaultOpTimeout = 3 * time.Second

const selectQuote = `SELECT id::text, numero, cliente_id, veiculo_id, data_orcamento, validade,
	status, created_at, updated_at FROM orcamentos`

const selectParts = `SELECT id::text, orcamento_id::text, peca_id, peca_nome, quantidade, valor_unitario
	FROM orcamento_pecas`

const selectLabor = `SELECT id::text, orcamento_id::text, servico_id, servico_nome, horas, valor_hora
	FROM orcamento_servicos`

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// QuoteRepository implements ports.QuoteRepository on PostgreSQL.
type QuoteRepository struct {
	db        *sql.DB
	opTimeout time.Duration
	logger    *slog.Logger
}

// Options tunes the repository.
type Options struct {
	// OpTimeout bounds every repository call. Zero uses three seconds.
	OpTimeout time.Duration
	Logger    *slog.Logger
}

// NewQuoteRepository creates a repository over db.
func NewQuoteRepository(db *sql.DB, opts Options) *QuoteRepository {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &QuoteRepository{db: db, opTimeout: opts.OpTimeout, logger: opts.Logger}
}

// List implements ports.QuoteRepository. Client and Vehicle are left for
// the caller to resolve from the catalog.
func (r *QuoteRepository) List(ctx context.Context) ([]*domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	r.trace(ctx, "list")

	rows, err := r.db.QueryContext(ctx, selectQuote+` ORDER BY created_at DESC, numero DESC`)
	if err != nil {
		return nil, r.fail("list", err)
	}

	quotes, err := scanQuotes(rows)
	if err != nil {
		return nil, r.fail("list", err)
	}

	if len(quotes) == 0 {
		return []*domain.Quote{}, nil
	}

	byID := make(map[string]*quoteRow, len(quotes))
	for _, q := range quotes {
		byID[q.quote.ID] = q
	}

	if err := loadLines(ctx, r.db, byID, "", nil); err != nil {
		return nil, r.fail("list", err)
	}

	out := make([]*domain.Quote, 0, len(quotes))
	for _, q := range quotes {
		built, err := q.build()
		if err != nil {
			return nil, r.fail("list", err)
		}

		out = append(out, built)
	}

	return out, nil
}

// Get implements ports.QuoteRepository.
func (r *QuoteRepository) Get(ctx context.Context, id string) (*domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	r.trace(ctx, "get", slog.String("quote_id", id))

	q, err := getQuote(ctx, r.db, id, false)
	if err != nil {
		return nil, r.fail("get", translate(err, id))
	}

	return q, nil
}

// Create implements ports.QuoteRepository. The number comes from the
// orcamento_numero_seq sequence.
func (r *QuoteRepository) Create(ctx context.Context, draft *domain.Quote) (*domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	r.trace(ctx, "create", slog.String("client_id", draft.ClientID))

	var created *domain.Quote

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var id string

		err := tx.QueryRowContext(ctx,
			`INSERT INTO orcamentos (cliente_id, veiculo_id, data_orcamento, validade, status, valor_total)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id::text`,
			draft.ClientID, draft.VehicleID, dateArg(draft.QuoteDate), dateArg(draft.ValidUntil),
			string(domain.StatusPending), draft.ComputeTotal().Decimal(),
		).Scan(&id)
		if err != nil {
			return err
		}

		if err := insertLines(ctx, tx, id, draft.PartsLines(), draft.LaborLines()); err != nil {
			return err
		}

		created, err = getQuote(ctx, tx, id, false)

		return err
	})
	if err != nil {
		return nil, r.fail("create", translate(err, ""))
	}

	return created, nil
}

// Update implements ports.QuoteRepository. Replacing the lines also
// replaces the stored total.
func (r *QuoteRepository) Update(ctx context.Context, id string, patch domain.QuotePatch) (*domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	r.trace(ctx, "update", slog.String("quote_id", id))

	var updated *domain.Quote

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getQuote(ctx, tx, id, true); err != nil {
			return err
		}

		sets, args := patchColumns(patch)
		args = append(args, id)

		query := `UPDATE orcamentos SET ` + strings.Join(sets, ", ") +
			` WHERE id = $` + strconv.Itoa(len(args))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		if patch.Lines != nil {
			for _, table := range []string{"orcamento_pecas", "orcamento_servicos"} {
				if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE orcamento_id = $1`, id); err != nil {
					return err
				}
			}

			if err := insertLines(ctx, tx, id, patch.Lines.Parts, patch.Lines.Labor); err != nil {
				return err
			}
		}

		var err error
		updated, err = getQuote(ctx, tx, id, false)

		return err
	})
	if err != nil {
		return nil, r.fail("update", translate(err, id))
	}

	return updated, nil
}

// patchColumns lists the SET clauses for patch. updated_at always changes.
func patchColumns(patch domain.QuotePatch) ([]string, []any) {
	var (
		sets []string
		args []any
	)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.ClientID != nil {
		add("cliente_id", *patch.ClientID)
	}

	if patch.VehicleID != nil {
		add("veiculo_id", *patch.VehicleID)
	}

	if patch.QuoteDate != nil {
		add("data_orcamento", dateArg(*patch.QuoteDate))
	}

	if patch.ValidUntil != nil {
		add("validade", dateArg(*patch.ValidUntil))
	}

	if patch.Status != nil {
		add("status", string(*patch.Status))
	}

	if patch.Lines != nil {
		add("valor_total", patch.Lines.Total().Decimal())
	}

	sets = append(sets, "updated_at = now()")

	return sets, args
}

// Delete implements ports.QuoteRepository. Lines go with the quote.
func (r *QuoteRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	r.trace(ctx, "delete", slog.String("quote_id", id))

	res, err := r.db.ExecContext(ctx, `DELETE FROM orcamentos WHERE id = $1`, id)
	if err != nil {
		return r.fail("delete", translate(err, id))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return r.fail("delete", err)
	}

	if n == 0 {
		return domain.NewNotFoundError(domain.EntityQuote, id)
	}

	return nil
}

func (r *QuoteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *QuoteRepository) trace(ctx context.Context, op string, attrs ...slog.Attr) {
	logging.FromContextOr(ctx, r.logger).LogAttrs(ctx, logging.LevelTrace, "quote repository call",
		append([]slog.Attr{slog.String("op", op)}, attrs...)...)
}

// fail passes domain errors through and wraps everything else as a
// repository failure.
func (r *QuoteRepository) fail(op string, err error) error {
	if domain.IsNotFound(err) || domain.IsConflict(err) || domain.IsValidation(err) {
		return err
	}

	return domain.NewRepositoryError(op, err)
}

// translate maps driver errors that have a domain meaning.
func translate(err error, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(domain.EntityQuote, id)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgInvalidTextRepresentation:
		// A malformed id cannot name a stored quote.
		return domain.NewNotFoundError(domain.EntityQuote, id)
	case pgUniqueViolation:
		return domain.NewConflictError(domain.EntityQuote, "number already taken: "+pgErr.Detail)
	case pgCheckViolation:
		return domain.NewValidationError(pgErr.ConstraintName, pgErr.Message)
	default:
		return err
	}
}

func dateArg(d domain.Date) any {
	if d.IsZero() {
		return nil
	}

	return d.Time()
}

// quoteRow collects a quote and its lines while scanning.
type quoteRow struct {
	quote *domain.Quote
	parts []domain.PartsLine
	labor []domain.LaborLine
}

func (q *quoteRow) build() (*domain.Quote, error) {
	if err := q.quote.ReplaceLines(q.parts, q.labor); err != nil {
		return nil, fmt.Errorf("stored lines of quote %s: %w", q.quote.ID, err)
	}

	return q.quote, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(s scanner) (*quoteRow, error) {
	var (
		q                     domain.Quote
		status                string
		quoteDate, validUntil sql.NullTime
	)

	if err := s.Scan(&q.ID, &q.Number, &q.ClientID, &q.VehicleID, &quoteDate, &validUntil,
		&status, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}

	q.Status = domain.Status(status)

	if quoteDate.Valid {
		q.QuoteDate = domain.DateOf(quoteDate.Time)
	}

	if validUntil.Valid {
		q.ValidUntil = domain.DateOf(validUntil.Time)
	}

	return &quoteRow{quote: &q}, nil
}

func scanQuotes(rows *sql.Rows) ([]*quoteRow, error) {
	defer rows.Close()

	var out []*quoteRow

	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, q)
	}

	return out, rows.Err()
}

func getQuote(ctx context.Context, db queryer, id string, forUpdate bool) (*domain.Quote, error) {
	query := selectQuote + ` WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	q, err := scanQuote(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := loadLines(ctx, db, map[string]*quoteRow{id: q}, ` WHERE orcamento_id = $1`, []any{id}); err != nil {
		return nil, err
	}

	return q.build()
}

// loadLines appends the stored lines to their quotes in position order.
func loadLines(ctx context.Context, db queryer, quotes map[string]*quoteRow, where string, args []any) error {
	rows, err := db.QueryContext(ctx, selectParts+where+` ORDER BY orcamento_id, posicao`, args...)
	if err != nil {
		return err
	}

	err = eachRow(rows, func() error {
		var (
			line      domain.PartsLine
			quoteID   string
			unitPrice decimal.Decimal
		)

		if err := rows.Scan(&line.ID, &quoteID, &line.Part.ID, &line.Part.Name, &line.Quantity, &unitPrice); err != nil {
			return err
		}

		line.UnitPrice = domain.NewMoney(unitPrice)

		if q, ok := quotes[quoteID]; ok {
			q.parts = append(q.parts, line)
		}

		return nil
	})
	if err != nil {
		return err
	}

	rows, err = db.QueryContext(ctx, selectLabor+where+` ORDER BY orcamento_id, posicao`, args...)
	if err != nil {
		return err
	}

	return eachRow(rows, func() error {
		var (
			line       domain.LaborLine
			quoteID    string
			hourlyRate decimal.Decimal
		)

		if err := rows.Scan(&line.ID, &quoteID, &line.Service.ID, &line.Service.Name, &line.Hours, &hourlyRate); err != nil {
			return err
		}

		line.HourlyRate = domain.NewMoney(hourlyRate)

		if q, ok := quotes[quoteID]; ok {
			q.labor = append(q.labor, line)
		}

		return nil
	})
}

func eachRow(rows *sql.Rows, fn func() error) error {
	defer rows.Close()

	for rows.Next() {
		if err := fn(); err != nil {
			return err
		}
	}

	return rows.Err()
}

func insertLines(ctx context.Context, tx *sql.Tx, quoteID string, parts []domain.PartsLine, labor []domain.LaborLine) error {
	for i, l := range parts {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orcamento_pecas (id, orcamento_id, posicao, peca_id, peca_nome, quantidade, valor_unitario)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, quoteID, i, l.Part.ID, l.Part.Name, l.Quantity, l.UnitPrice.Decimal(),
		); err != nil {
			return fmt.Errorf("inserting parts line %d: %w", i, err)
		}
	}

	for i, l := range labor {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orcamento_servicos (id, orcamento_id, posicao, servico_id, servico_nome, horas, valor_hora)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, quoteID, i, l.Service.ID, l.Service.Name, l.Hours, l.HourlyRate.Decimal(),
		); err != nil {
			return fmt.Errorf("inserting labor line %d: %w", i, err)
		}
	}

	return nil
}
