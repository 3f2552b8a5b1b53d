package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/regsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/regsync/internal/core/domain"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the record,
// document and audit store interfaces through wrapper types. Document blob
// bytes live on disk next to the database; only their metadata is in SQLite.
type Store struct {
	db      *sql.DB
	path    string
	blobDir string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.regsync/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".regsync", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	blobDir := filepath.Join(dataDir, "blobs")
	if err := os.MkdirAll(blobDir, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "regsync.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:      db,
		path:    dbPath,
		blobDir: blobDir,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordStore returns a RecordStore interface backed by this store.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{store: s}
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// AuditStore returns an AuditStore interface backed by this store.
func (s *Store) AuditStore() driven.AuditStore {
	return &auditStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// encodePayload serializes a flavour payload for storage. The audience column
// carries the type discriminator.
func encodePayload(payload domain.FlavourPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshalling flavour payload: %w", err)
	}
	return string(data), nil
}

// decodePayload deserializes a flavour payload by its audience kind.
func decodePayload(audience domain.AudienceKind, data string) (domain.FlavourPayload, error) {
	switch audience {
	case domain.AudiencePublicNotice:
		var p domain.NoticePayload
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("unmarshalling notice payload: %w", err)
		}
		return p, nil
	case domain.AudienceSummary:
		var p domain.SummaryPayload
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("unmarshalling summary payload: %w", err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown audience %q", audience)
}

// ==================== Record Store ====================

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// FindByExternalID looks up a master record by its idempotency key.
func (s *recordStore) FindByExternalID(ctx context.Context, schema domain.RecordKind, sourceSystem, externalID string) (*domain.Record, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, schema, source_system, source_external_id, date_issued,
		       issuing_agency, author, legislation, issued_to, location,
		       outcome_description, documents, date_added, date_updated
		FROM records
		WHERE schema = ? AND source_system = ? AND source_external_id = ?
	`, string(schema), sourceSystem, externalID)

	rec, err := scanRecord(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadFlavourRefs(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create persists a new master record plus one flavour per payload in a
// single transaction.
func (s *recordStore) Create(ctx context.Context, rec *domain.Record, flavours []domain.FlavourPayload, publishFlavours bool) (*domain.Record, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stored := *rec
	stored.ID = uuid.NewString()
	now := time.Now().UTC()
	stored.DateAdded = now
	stored.DateUpdated = now
	stored.Flavours = nil

	legislationJSON, err := json.Marshal(stored.Legislation)
	if err != nil {
		return nil, fmt.Errorf("marshalling legislation: %w", err)
	}
	issuedToJSON, err := json.Marshal(stored.IssuedTo)
	if err != nil {
		return nil, fmt.Errorf("marshalling issued-to entity: %w", err)
	}
	locationJSON, err := json.Marshal(stored.Location)
	if err != nil {
		return nil, fmt.Errorf("marshalling location: %w", err)
	}
	documentsJSON, err := json.Marshal(append([]string{}, stored.Documents...))
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (id, schema, source_system, source_external_id,
			date_issued, issuing_agency, author, legislation, issued_to,
			location, outcome_description, documents, date_added, date_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, stored.ID, string(stored.Schema), stored.SourceSystem, stored.SourceExternalID,
		stored.DateIssued, stored.IssuingAgency, stored.Author, string(legislationJSON),
		string(issuedToJSON), string(locationJSON), stored.OutcomeDescription,
		string(documentsJSON), stored.DateAdded, stored.DateUpdated)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("inserting record: %w", err)
	}

	for _, payload := range flavours {
		readRoles := []string{domain.RoleSysadmin}
		if publishFlavours {
			readRoles = domain.DocumentReadRoles(stored.IssuedTo)
		}
		rolesJSON, err := json.Marshal(readRoles)
		if err != nil {
			return nil, fmt.Errorf("marshalling read roles: %w", err)
		}
		payloadJSON, err := encodePayload(payload)
		if err != nil {
			return nil, err
		}

		flavourID := uuid.NewString()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO flavours (id, record_id, audience, payload, read_roles)
			VALUES (?, ?, ?, ?, ?)
		`, flavourID, stored.ID, string(payload.Audience()), payloadJSON, string(rolesJSON))
		if err != nil {
			return nil, fmt.Errorf("inserting flavour: %w", err)
		}
		stored.Flavours = append(stored.Flavours, domain.FlavourRef{ID: flavourID, Audience: payload.Audience()})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing record: %w", err)
	}
	return &stored, nil
}

// Update applies a patch to an existing master record and its flavours in a
// single transaction. When the refreshed issued-to entity classifies as an
// anonymous individual, the public read role is stripped from every flavour
// of the record.
func (s *recordStore) Update(ctx context.Context, patch domain.RecordPatch) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	legislationJSON, err := json.Marshal(patch.Legislation)
	if err != nil {
		return fmt.Errorf("marshalling legislation: %w", err)
	}
	issuedToJSON, err := json.Marshal(patch.IssuedTo)
	if err != nil {
		return fmt.Errorf("marshalling issued-to entity: %w", err)
	}
	locationJSON, err := json.Marshal(patch.Location)
	if err != nil {
		return fmt.Errorf("marshalling location: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE records SET
			date_issued = ?,
			issuing_agency = ?,
			legislation = ?,
			issued_to = ?,
			location = ?,
			outcome_description = ?,
			date_updated = ?
		WHERE id = ?
	`, patch.DateIssued, patch.IssuingAgency, string(legislationJSON),
		string(issuedToJSON), string(locationJSON), patch.OutcomeDescription,
		patch.DateUpdated, patch.RecordID)
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	for flavourID, payload := range patch.Flavours {
		payloadJSON, err := encodePayload(payload)
		if err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `
			UPDATE flavours SET payload = ? WHERE id = ? AND record_id = ?
		`, payloadJSON, flavourID, patch.RecordID)
		if err != nil {
			return fmt.Errorf("updating flavour: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking flavour update: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: flavour %s", domain.ErrNotFound, flavourID)
		}
	}

	if patch.IssuedTo.IsAnonymous() {
		if err := stripPublicFlavourRoles(ctx, tx, patch.RecordID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// stripPublicFlavourRoles removes the public read role from every flavour of
// the record.
func stripPublicFlavourRoles(ctx context.Context, tx *sql.Tx, recordID string) error {
	rows, err := tx.QueryContext(ctx, "SELECT id, read_roles FROM flavours WHERE record_id = ?", recordID)
	if err != nil {
		return fmt.Errorf("listing flavour roles: %w", err)
	}

	roleSets := make(map[string]string)
	for rows.Next() {
		var id, rolesJSON string
		if err := rows.Scan(&id, &rolesJSON); err != nil {
			rows.Close()
			return fmt.Errorf("scanning flavour roles: %w", err)
		}
		roleSets[id] = rolesJSON
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for id, rolesJSON := range roleSets {
		var roles []string
		if err := json.Unmarshal([]byte(rolesJSON), &roles); err != nil {
			return fmt.Errorf("unmarshalling read roles: %w", err)
		}
		stripped := domain.RemoveRole(roles, domain.RolePublic)
		if len(stripped) == len(roles) {
			continue
		}
		updated, err := json.Marshal(append([]string{}, stripped...))
		if err != nil {
			return fmt.Errorf("marshalling read roles: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "UPDATE flavours SET read_roles = ? WHERE id = ?", string(updated), id); err != nil {
			return fmt.Errorf("restricting flavour: %w", err)
		}
	}
	return nil
}

// AttachDocument appends a staged document identity to the record.
func (s *recordStore) AttachDocument(ctx context.Context, recordID, documentID string) error {
	row := s.store.db.QueryRowContext(ctx, "SELECT documents FROM records WHERE id = ?", recordID)

	var documentsJSON string
	if err := row.Scan(&documentsJSON); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return fmt.Errorf("reading record documents: %w", err)
	}

	var documents []string
	if err := json.Unmarshal([]byte(documentsJSON), &documents); err != nil {
		return fmt.Errorf("unmarshalling documents: %w", err)
	}
	documents = append(documents, documentID)

	updated, err := json.Marshal(documents)
	if err != nil {
		return fmt.Errorf("marshalling documents: %w", err)
	}
	_, err = s.store.db.ExecContext(ctx, "UPDATE records SET documents = ? WHERE id = ?", string(updated), recordID)
	if err != nil {
		return fmt.Errorf("attaching document: %w", err)
	}
	return nil
}

// GetFlavour retrieves a flavour record by identity.
func (s *recordStore) GetFlavour(ctx context.Context, flavourID string) (*domain.FlavourRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, record_id, audience, payload, read_roles FROM flavours WHERE id = ?
	`, flavourID)

	var flavour domain.FlavourRecord
	var audience, payloadJSON, rolesJSON string
	if err := row.Scan(&flavour.ID, &flavour.RecordID, &audience, &payloadJSON, &rolesJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning flavour: %w", err)
	}

	payload, err := decodePayload(domain.AudienceKind(audience), payloadJSON)
	if err != nil {
		return nil, err
	}
	flavour.Payload = payload

	if err := json.Unmarshal([]byte(rolesJSON), &flavour.ReadRoles); err != nil {
		return nil, fmt.Errorf("unmarshalling read roles: %w", err)
	}
	return &flavour, nil
}

// ListMissingDocuments returns records for the source system with an empty
// document list.
func (s *recordStore) ListMissingDocuments(ctx context.Context, sourceSystem string, limit int) ([]domain.Record, error) {
	query := `
		SELECT id, schema, source_system, source_external_id, date_issued,
		       issuing_agency, author, legislation, issued_to, location,
		       outcome_description, documents, date_added, date_updated
		FROM records
		WHERE source_system = ? AND documents = '[]'
		ORDER BY date_added
	`
	args := []any{sourceSystem}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if err := s.loadFlavourRefs(ctx, rec); err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// loadFlavourRefs populates the record's flavour references.
func (s *recordStore) loadFlavourRefs(ctx context.Context, rec *domain.Record) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, audience FROM flavours WHERE record_id = ?
	`, rec.ID)
	if err != nil {
		return fmt.Errorf("listing flavours: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref domain.FlavourRef
		var audience string
		if err := rows.Scan(&ref.ID, &audience); err != nil {
			return fmt.Errorf("scanning flavour ref: %w", err)
		}
		ref.Audience = domain.AudienceKind(audience)
		rec.Flavours = append(rec.Flavours, ref)
	}
	return rows.Err()
}

// scanner covers sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one records row into a domain record.
func scanRecord(row scanner) (*domain.Record, error) {
	var rec domain.Record
	var schema, legislationJSON, issuedToJSON, locationJSON, documentsJSON string
	var dateIssued sql.NullTime

	err := row.Scan(&rec.ID, &schema, &rec.SourceSystem, &rec.SourceExternalID,
		&dateIssued, &rec.IssuingAgency, &rec.Author, &legislationJSON,
		&issuedToJSON, &locationJSON, &rec.OutcomeDescription, &documentsJSON,
		&rec.DateAdded, &rec.DateUpdated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	rec.Schema = domain.RecordKind(schema)
	if dateIssued.Valid {
		rec.DateIssued = dateIssued.Time
	}
	if err := json.Unmarshal([]byte(legislationJSON), &rec.Legislation); err != nil {
		return nil, fmt.Errorf("unmarshalling legislation: %w", err)
	}
	if err := json.Unmarshal([]byte(issuedToJSON), &rec.IssuedTo); err != nil {
		return nil, fmt.Errorf("unmarshalling issued-to entity: %w", err)
	}
	if err := json.Unmarshal([]byte(locationJSON), &rec.Location); err != nil {
		return nil, fmt.Errorf("unmarshalling location: %w", err)
	}
	if err := json.Unmarshal([]byte(documentsJSON), &rec.Documents); err != nil {
		return nil, fmt.Errorf("unmarshalling documents: %w", err)
	}
	return &rec, nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// CreateDocument writes the bytes to the blob directory and records the
// document metadata.
func (s *documentStore) CreateDocument(ctx context.Context, fileName string, data []byte, uploadedBy string, readRoles, writeRoles []string, _ string) (string, error) {
	id := uuid.NewString()
	sanitized := domain.SanitizeFileName(fileName)
	key := id + "-" + sanitized

	if err := os.WriteFile(filepath.Join(s.store.blobDir, key), data, 0600); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}

	readJSON, err := json.Marshal(readRoles)
	if err != nil {
		return "", fmt.Errorf("marshalling read roles: %w", err)
	}
	writeJSON, err := json.Marshal(writeRoles)
	if err != nil {
		return "", fmt.Errorf("marshalling write roles: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, key, file_name, uploaded_by, read_roles, write_roles, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, key, sanitized, uploadedBy, string(readJSON), string(writeJSON), time.Now().UTC())
	if err != nil {
		os.Remove(filepath.Join(s.store.blobDir, key))
		return "", fmt.Errorf("inserting document: %w", err)
	}
	return id, nil
}

// FindDocumentByName returns the identity of a staged document with the given
// sanitized file name.
func (s *documentStore) FindDocumentByName(ctx context.Context, name string) (string, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT id FROM documents WHERE file_name = ? LIMIT 1", name)

	var id string
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("finding document: %w", err)
	}
	return id, nil
}

// RestrictDocumentAccess removes the public read role from the document.
func (s *documentStore) RestrictDocumentAccess(ctx context.Context, id string) error {
	row := s.store.db.QueryRowContext(ctx, "SELECT read_roles FROM documents WHERE id = ?", id)

	var rolesJSON string
	if err := row.Scan(&rolesJSON); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return fmt.Errorf("reading document roles: %w", err)
	}

	var roles []string
	if err := json.Unmarshal([]byte(rolesJSON), &roles); err != nil {
		return fmt.Errorf("unmarshalling read roles: %w", err)
	}
	stripped := domain.RemoveRole(roles, domain.RolePublic)
	if len(stripped) == len(roles) {
		return nil
	}

	updated, err := json.Marshal(append([]string{}, stripped...))
	if err != nil {
		return fmt.Errorf("marshalling read roles: %w", err)
	}
	if _, err := s.store.db.ExecContext(ctx, "UPDATE documents SET read_roles = ? WHERE id = ?", string(updated), id); err != nil {
		return fmt.Errorf("restricting document: %w", err)
	}
	return nil
}

// GetDocument retrieves document metadata by identity.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.AttachmentDocument, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, key, file_name, uploaded_by, read_roles, write_roles, added_at
		FROM documents WHERE id = ?
	`, id)

	var doc domain.AttachmentDocument
	var readJSON, writeJSON string
	if err := row.Scan(&doc.ID, &doc.Key, &doc.FileName, &doc.UploadedBy, &readJSON, &writeJSON, &doc.AddedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	if err := json.Unmarshal([]byte(readJSON), &doc.ReadRoles); err != nil {
		return nil, fmt.Errorf("unmarshalling read roles: %w", err)
	}
	if err := json.Unmarshal([]byte(writeJSON), &doc.WriteRoles); err != nil {
		return nil, fmt.Errorf("unmarshalling write roles: %w", err)
	}
	return &doc, nil
}

// ==================== Audit Store ====================

// auditStore implements driven.AuditStore.
type auditStore struct {
	store *Store
}

var _ driven.AuditStore = (*auditStore)(nil)

// CreateTaskRecord persists a new audit record.
func (s *auditStore) CreateTaskRecord(ctx context.Context, rec *domain.TaskAuditRecord) (string, error) {
	id := uuid.NewString()
	errorsJSON, err := json.Marshal(append([]domain.RecordError{}, rec.RecordErrors...))
	if err != nil {
		return "", fmt.Errorf("marshalling record errors: %w", err)
	}

	var endedAt any
	if !rec.EndedAt.IsZero() {
		endedAt = rec.EndedAt
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO import_tasks (id, source, status, items_processed, item_total,
			message, record_errors, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, rec.Source, string(rec.Status), rec.ItemsProcessed, rec.ItemTotal,
		rec.Message, string(errorsJSON), rec.StartedAt, endedAt)
	if err != nil {
		return "", fmt.Errorf("inserting task record: %w", err)
	}
	return id, nil
}

// UpdateTaskRecord applies a partial update to an audit record.
func (s *auditStore) UpdateTaskRecord(ctx context.Context, id string, patch domain.TaskPatch) error {
	var sets []string
	var args []any

	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.ItemsProcessed != nil {
		sets = append(sets, "items_processed = ?")
		args = append(args, *patch.ItemsProcessed)
	}
	if patch.ItemTotal != nil {
		sets = append(sets, "item_total = ?")
		args = append(args, *patch.ItemTotal)
	}
	if patch.Message != nil {
		sets = append(sets, "message = ?")
		args = append(args, *patch.Message)
	}
	if patch.RecordErrors != nil {
		errorsJSON, err := json.Marshal(patch.RecordErrors)
		if err != nil {
			return fmt.Errorf("marshalling record errors: %w", err)
		}
		sets = append(sets, "record_errors = ?")
		args = append(args, string(errorsJSON))
	}
	if patch.EndedAt != nil {
		sets = append(sets, "ended_at = ?")
		args = append(args, *patch.EndedAt)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	result, err := s.store.db.ExecContext(ctx,
		"UPDATE import_tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating task record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetTaskRecord retrieves an audit record by identity.
func (s *auditStore) GetTaskRecord(ctx context.Context, id string) (*domain.TaskAuditRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source, status, items_processed, item_total, message,
		       record_errors, started_at, ended_at
		FROM import_tasks WHERE id = ?
	`, id)
	return scanTask(row)
}

// ListTaskRecords returns audit records, most recently started first.
func (s *auditStore) ListTaskRecords(ctx context.Context, limit int) ([]domain.TaskAuditRecord, error) {
	query := `
		SELECT id, source, status, items_processed, item_total, message,
		       record_errors, started_at, ended_at
		FROM import_tasks ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing task records: %w", err)
	}
	defer rows.Close()

	var out []domain.TaskAuditRecord
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *task)
	}
	return out, rows.Err()
}

// scanTask reads one import_tasks row into an audit record.
func scanTask(row scanner) (*domain.TaskAuditRecord, error) {
	var task domain.TaskAuditRecord
	var status, errorsJSON string
	var endedAt sql.NullTime

	err := row.Scan(&task.ID, &task.Source, &status, &task.ItemsProcessed,
		&task.ItemTotal, &task.Message, &errorsJSON, &task.StartedAt, &endedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning task record: %w", err)
	}

	task.Status = domain.TaskStatus(status)
	if endedAt.Valid {
		task.EndedAt = endedAt.Time
	}
	if err := json.Unmarshal([]byte(errorsJSON), &task.RecordErrors); err != nil {
		return nil, fmt.Errorf("unmarshalling record errors: %w", err)
	}
	return &task, nil
}
