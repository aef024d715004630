/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements campaign.CampaignStore and campaign.OperationStore using
  SQLite. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  campaigns:  One row per candidacy account
  operations: Finalized operations, including both halves of mirrored pairs

PAIR STORAGE:
  The two halves of a mirrored zero-net pair are ordinary rows sharing a
  pair_id. There is no pair table; the submission service owns the
  insert/compensate sequencing and this store stays a plain row store.

  Structured sub-records (donor, collection, party, attachment) are stored
  as JSON columns. They are read back whole and never queried into.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - campaign/store.go: Interface definitions
  - campaign/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/quitus/campaign-ledger/campaign"
	"github.com/quitus/campaign-ledger/compliance"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS campaigns (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		candidate_id TEXT NOT NULL,
		mandataire_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		plafond TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_campaigns_mandataire
		ON campaigns(mandataire_id);

	CREATE TABLE IF NOT EXISTS operations (
		id TEXT PRIMARY KEY,
		campaign_id TEXT NOT NULL,
		mandataire_id TEXT NOT NULL,
		pair_id TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		op_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		category TEXT NOT NULL,
		account_code TEXT NOT NULL,
		payment_mode TEXT NOT NULL,
		bank_statement_ref TEXT,
		beneficiary TEXT NOT NULL DEFAULT '',
		is_collection BOOLEAN NOT NULL DEFAULT FALSE,
		donor_json TEXT,
		collection_json TEXT,
		party_json TEXT,
		attachment_json TEXT,
		comment TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_operations_campaign
		ON operations(campaign_id, op_date);

	-- Pair sibling lookup during deletes
	CREATE INDEX IF NOT EXISTS idx_operations_pair
		ON operations(pair_id) WHERE pair_id != '';

	CREATE INDEX IF NOT EXISTS idx_operations_status
		ON operations(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CAMPAIGN STORE (campaign.CampaignStore interface)
// =============================================================================

// SaveCampaign upserts a campaign.
func (s *Store) SaveCampaign(ctx context.Context, c campaign.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO campaigns
		(id, name, candidate_id, mandataire_id, start_date, end_date, plafond, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			candidate_id = excluded.candidate_id,
			mandataire_id = excluded.mandataire_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			plafond = excluded.plafond
	`

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		string(c.ID),
		c.Name,
		string(c.CandidateID),
		string(c.MandataireID),
		c.Start.String(),
		c.End.String(),
		c.Plafond.String(),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save campaign: %w", err)
	}
	return nil
}

// GetCampaign returns the campaign or campaign.ErrCampaignNotFound.
func (s *Store) GetCampaign(ctx context.Context, id campaign.CampaignID) (*campaign.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, candidate_id, mandataire_id, start_date, end_date, plafond, created_at
		FROM campaigns WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, string(id))
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, campaign.ErrCampaignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

// ListCampaigns returns all campaigns ordered by start date.
func (s *Store) ListCampaigns(ctx context.Context) ([]campaign.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, candidate_id, mandataire_id, start_date, end_date, plafond, created_at
		FROM campaigns ORDER BY start_date ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var out []campaign.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row scanner) (*campaign.Campaign, error) {
	var (
		c                  campaign.Campaign
		start, end         string
		plafond, createdAt string
	)
	err := row.Scan(&c.ID, &c.Name, &c.CandidateID, &c.MandataireID, &start, &end, &plafond, &createdAt)
	if err != nil {
		return nil, err
	}

	if c.Start, err = compliance.ParseDate(start); err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	if c.End, err = compliance.ParseDate(end); err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if c.Plafond, err = decimal.NewFromString(plafond); err != nil {
		return nil, fmt.Errorf("invalid plafond %q: %w", plafond, err)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

// =============================================================================
// OPERATION STORE (campaign.OperationStore interface)
// =============================================================================

// SaveOperation upserts an operation row.
func (s *Store) SaveOperation(ctx context.Context, op campaign.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	donorJSON, err := marshalNullable(op.Donor)
	if err != nil {
		return fmt.Errorf("failed to encode donor: %w", err)
	}
	collectionJSON, err := marshalNullable(op.Collection)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	partyJSON, err := marshalNullable(op.Party)
	if err != nil {
		return fmt.Errorf("failed to encode party: %w", err)
	}
	attachmentJSON, err := marshalNullable(op.Attachment)
	if err != nil {
		return fmt.Errorf("failed to encode attachment: %w", err)
	}

	query := `
		INSERT INTO operations
		(id, campaign_id, mandataire_id, pair_id, kind, op_date, amount, category,
		 account_code, payment_mode, bank_statement_ref, beneficiary, is_collection,
		 donor_json, collection_json, party_json, attachment_json, comment, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			op_date = excluded.op_date,
			amount = excluded.amount,
			category = excluded.category,
			account_code = excluded.account_code,
			payment_mode = excluded.payment_mode,
			bank_statement_ref = excluded.bank_statement_ref,
			beneficiary = excluded.beneficiary,
			is_collection = excluded.is_collection,
			donor_json = excluded.donor_json,
			collection_json = excluded.collection_json,
			party_json = excluded.party_json,
			attachment_json = excluded.attachment_json,
			comment = excluded.comment,
			status = excluded.status
	`

	createdAt := op.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, query,
		string(op.ID),
		string(op.CampaignID),
		string(op.MandataireID),
		op.PairID,
		string(op.Kind),
		op.Date.String(),
		op.Amount.String(),
		string(op.Category),
		op.AccountCode,
		string(op.PaymentMode),
		op.BankStatementRef,
		op.Beneficiary,
		op.IsCollection,
		donorJSON,
		collectionJSON,
		partyJSON,
		attachmentJSON,
		op.Comment,
		string(op.Status),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save operation: %w", err)
	}
	return nil
}

// GetOperation returns the operation or campaign.ErrOperationNotFound.
func (s *Store) GetOperation(ctx context.Context, id campaign.OperationID) (*campaign.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := operationColumns + ` FROM operations WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, string(id))
	op, err := scanOperation(row)
	if err == sql.ErrNoRows {
		return nil, campaign.ErrOperationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operation: %w", err)
	}
	return op, nil
}

// ListOperations returns a campaign's operations ordered by date, then
// insertion. Filtering happens in memory: the filter is small and the
// per-campaign row count stays in the hundreds.
func (s *Store) ListOperations(ctx context.Context, campaignID campaign.CampaignID, filter campaign.OperationFilter) ([]campaign.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := operationColumns + `
		FROM operations
		WHERE campaign_id = ?
		ORDER BY op_date ASC, created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, string(campaignID))
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	var out []campaign.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		if filter.Matches(*op) {
			out = append(out, *op)
		}
	}
	return out, rows.Err()
}

// DeleteOperation removes a single row. Pair sequencing is the submission
// service's job; this deletes exactly the row it is given.
func (s *Store) DeleteOperation(ctx context.Context, id campaign.OperationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM operations WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete operation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return campaign.ErrOperationNotFound
	}
	return nil
}

// UpdateStatus flips the validation status of an operation.
func (s *Store) UpdateStatus(ctx context.Context, id campaign.OperationID, status compliance.ValidationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE operations SET status = ? WHERE id = ?`,
		string(status), string(id))
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return campaign.ErrOperationNotFound
	}
	return nil
}

// =============================================================================
// ROW MAPPING
// =============================================================================

const operationColumns = `
	SELECT id, campaign_id, mandataire_id, pair_id, kind, op_date, amount, category,
	       account_code, payment_mode, bank_statement_ref, beneficiary, is_collection,
	       donor_json, collection_json, party_json, attachment_json, comment, status, created_at`

func scanOperation(row scanner) (*campaign.Operation, error) {
	var (
		op        campaign.Operation
		opDate    string
		amount    string
		bankRef   sql.NullString
		donorJSON sql.NullString
		collJSON  sql.NullString
		partyJSON sql.NullString
		attJSON   sql.NullString
		createdAt string
	)

	err := row.Scan(
		&op.ID, &op.CampaignID, &op.MandataireID, &op.PairID,
		&op.Kind, &opDate, &amount, &op.Category,
		&op.AccountCode, &op.PaymentMode, &bankRef, &op.Beneficiary, &op.IsCollection,
		&donorJSON, &collJSON, &partyJSON, &attJSON, &op.Comment, &op.Status, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if op.Date, err = compliance.ParseDate(opDate); err != nil {
		return nil, fmt.Errorf("invalid operation date %q: %w", opDate, err)
	}
	if op.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if bankRef.Valid {
		ref := bankRef.String
		op.BankStatementRef = &ref
	}

	if err := unmarshalNullable(donorJSON, &op.Donor); err != nil {
		return nil, fmt.Errorf("failed to decode donor: %w", err)
	}
	if err := unmarshalNullable(collJSON, &op.Collection); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	if err := unmarshalNullable(partyJSON, &op.Party); err != nil {
		return nil, fmt.Errorf("failed to decode party: %w", err)
	}
	if err := unmarshalNullable(attJSON, &op.Attachment); err != nil {
		return nil, fmt.Errorf("failed to decode attachment: %w", err)
	}

	op.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &op, nil
}

// marshalNullable encodes a sub-record pointer, keeping NULL for nil.
func marshalNullable[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalNullable[T any](col sql.NullString, dst **T) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	v := new(T)
	if err := json.Unmarshal([]byte(col.String), v); err != nil {
		return err
	}
	*dst = v
	return nil
}
