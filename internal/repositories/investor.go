package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/opencrew/pitchboard/internal/db"
	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/opencrew/pitchboard/internal/models"
)

var ErrInvestorNotFound = errors.NewSentinel("investor not found")

type InvestorRepository struct {
	dbs    *db.Database
	logger *slog.Logger
}

func NewInvestorRepository(dbs *db.Database, logger *slog.Logger) *InvestorRepository {
	return &InvestorRepository{
		dbs:    dbs,
		logger: logger.With("source", "InvestorRepository"),
	}
}

const investorColumns = `id, name, fund, domain, sector_focus, stage_focus, portfolio_companies,
notes_for_pitch, bio, thesis, linkedin_url, twitter_handle, avatar_url, status`

// List returns all investors ordered by id.
func (r *InvestorRepository) List(ctx context.Context) ([]models.Investor, error) {
	var investors []models.Investor
	stmt := `SELECT ` + investorColumns + ` FROM investors ORDER BY id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &investors, stmt); err != nil {
		return nil, errors.Wrap(err, "list investors")
	}
	return investors, nil
}

// Get returns the investor with the given id or ErrInvestorNotFound.
func (r *InvestorRepository) Get(ctx context.Context, id int64) (*models.Investor, error) {
	var investor models.Investor
	stmt := `SELECT ` + investorColumns + ` FROM investors WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &investor, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrInvestorNotFound, "get investor", slog.Int64("id", id))
		}
		return nil, errors.Wrap(err, "get investor", slog.Int64("id", id))
	}
	return &investor, nil
}

const insertInvestorStmt = `INSERT INTO investors (name, fund, domain, sector_focus, stage_focus,
portfolio_companies, notes_for_pitch, bio, thesis, linkedin_url, twitter_handle, avatar_url, status)
VALUES (:name, :fund, :domain, :sector_focus, :stage_focus, :portfolio_companies, :notes_for_pitch,
:bio, :thesis, :linkedin_url, :twitter_handle, :avatar_url, :status)`

// Insert stores a new investor and returns its id.
func (r *InvestorRepository) Insert(ctx context.Context, investor models.Investor) (int64, error) {
	if investor.Status == "" {
		investor.Status = models.StatusToResearch
	}
	res, err := r.dbs.ReadWrite.NamedExecContext(ctx, insertInvestorStmt, investor)
	if err != nil {
		return 0, errors.Wrap(err, "insert investor", slog.String("name", investor.Name))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "read inserted investor id")
	}
	return id, nil
}

// BulkInsert stores the given investors in a single transaction and returns the number inserted.
func (r *InvestorRepository) BulkInsert(ctx context.Context, investors []models.Investor) (int, error) {
	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin bulk insert")
	}
	defer func() {
		if err = tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback bulk insert", errors.SlogError(err))
		}
	}()

	inserted := 0
	for _, investor := range investors {
		if investor.Status == "" {
			investor.Status = models.StatusToResearch
		}
		if _, err = tx.NamedExecContext(ctx, insertInvestorStmt, investor); err != nil {
			return 0, errors.Wrap(err, "insert investor", slog.String("name", investor.Name))
		}
		inserted++
	}
	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit bulk insert")
	}
	return inserted, nil
}

// UpdateStatus moves the investor to a new pipeline status.
func (r *InvestorRepository) UpdateStatus(ctx context.Context, id int64, status models.Status) error {
	stmt := `UPDATE investors SET status = ? WHERE id = ?`
	res, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, status, id)
	if err != nil {
		return errors.Wrap(err, "update status", slog.Int64("id", id), slog.String("status", string(status)))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "read affected rows")
	}
	if affected == 0 {
		return errors.Wrap(ErrInvestorNotFound, "update status", slog.Int64("id", id))
	}
	return nil
}
