// Package store is a caller-side, content-addressed cache for audit packets
// and integrity exports, keyed by the content hashes the core produces.
//
// The core itself owns no persistent state; this package exists for callers
// (the CLI included) that want to keep what they hashed. Because the key is
// the content hash, storage is naturally deduplicating: writing the same
// content twice is a no-op.
package store

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/caselight/caselight/errors"
	"github.com/caselight/caselight/export"
	"github.com/caselight/caselight/packet"
)

// Cache is a SQLite-backed content-addressed store.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path and applies pending
// migrations. If logger is provided, logs database operations; otherwise
// operates silently.
func Open(path string, logger *zap.SugaredLogger) (*Cache, error) {
	if logger != nil {
		logger.Debugw("Opening cache database", "path", path)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Enable WAL mode for concurrent reads during writes
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	// Set busy timeout to 5 seconds
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to set busy timeout")
	}

	if err := migrate(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	if logger != nil {
		logger.Infow("Cache database opened", "path", path, "wal_mode", true)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// PutPacket hashes the packet and stores its JSON body under that hash.
// Returns the hash. Storing a packet whose content is already cached is a
// no-op: content addressing makes the write idempotent.
func (c *Cache) PutPacket(p *packet.AuditPacket) (string, error) {
	hash, err := packet.Hash(p)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash packet")
	}

	body, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode packet")
	}

	_, err = c.db.Exec(
		`INSERT OR IGNORE INTO packets (hash, case_id, decision_id, body) VALUES (?, ?, ?, ?)`,
		hash, p.Metadata.CaseID, p.Metadata.DecisionID, string(body),
	)
	if err != nil {
		return "", errors.Wrapf(err, "failed to store packet %s", hash)
	}
	return hash, nil
}

// GetPacket retrieves a packet by content hash. Returns ErrNotFound when no
// packet with that hash is cached.
func (c *Cache) GetPacket(hash string) (*packet.AuditPacket, error) {
	var body string
	err := c.db.QueryRow(`SELECT body FROM packets WHERE hash = ?`, hash).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("packet %s", hash)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load packet %s", hash)
	}

	var p packet.AuditPacket
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, errors.Wrapf(err, "failed to decode cached packet %s", hash)
	}
	return &p, nil
}

// PutExport stores an export response under its canonical content hash.
// The export must carry its canonicalization block (BuildExport always
// attaches one).
func (c *Cache) PutExport(resp *export.Response) (string, error) {
	if resp.Canonicalization == nil || resp.Canonicalization.Hash == "" {
		return "", errors.WrapInvalidInput(
			errors.New("export has no canonicalization hash"), "store export")
	}
	hash := resp.Canonicalization.Hash

	body, err := json.Marshal(resp)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode export")
	}

	signed := 0
	if resp.Signature != nil {
		signed = 1
	}

	_, err = c.db.Exec(
		`INSERT OR IGNORE INTO exports (hash, export_id, entry_count, signed, body) VALUES (?, ?, ?, ?, ?)`,
		hash, resp.Metadata.ExportID, resp.Metadata.EntryCount, signed, string(body),
	)
	if err != nil {
		return "", errors.Wrapf(err, "failed to store export %s", hash)
	}
	return hash, nil
}

// GetExport retrieves an export by content hash. Returns ErrNotFound when no
// export with that hash is cached.
func (c *Cache) GetExport(hash string) (*export.Response, error) {
	var body string
	err := c.db.QueryRow(`SELECT body FROM exports WHERE hash = ?`, hash).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("export %s", hash)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load export %s", hash)
	}

	var resp export.Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, errors.Wrapf(err, "failed to decode cached export %s", hash)
	}
	return &resp, nil
}

// PacketHashesForCase lists cached packet hashes for one case, oldest first.
// Useful for picking diff endpoints out of the cache.
func (c *Cache) PacketHashesForCase(caseID string) ([]string, error) {
	rows, err := c.db.Query(
		`SELECT hash FROM packets WHERE case_id = ? ORDER BY stored_at, hash`, caseID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list packets for case %s", caseID)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, errors.Wrap(err, "failed to scan packet hash")
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}
