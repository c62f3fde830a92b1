package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"riskgate/artifacts"
)

// Bundle stores the artifact documents of one trained model in a single
// sqlite file. It is written by the bundle command and read once at startup.
type Bundle struct {
	database *sql.DB
}

func NewBundle(database *sql.DB) *Bundle {
	return &Bundle{database: database}
}

// OpenBundle opens (creating if needed) a bundle for writing.
func OpenBundle(path string) (*Bundle, error) {
	dsn, err := bundleDSN(path, "rwc")
	if err != nil {
		return nil, err
	}
	database, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	bundle := NewBundle(database)
	if err := bundle.Init(); err != nil {
		database.Close()
		return nil, err
	}
	return bundle, nil
}

func (b *Bundle) Init() error {
	_, err := b.database.Exec(`
    CREATE TABLE IF NOT EXISTS meta (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    );
    CREATE TABLE IF NOT EXISTS artifacts (
        name TEXT PRIMARY KEY,
        body TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );
    `)
	return err
}

// SaveArtifacts replaces the bundle contents in one transaction.
func (b *Bundle) SaveArtifacts(modelType string, docs map[string][]byte) error {
	tx, err := b.database.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('model_type', ?)`, modelType); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.Exec(`DELETE FROM artifacts`); err != nil {
		tx.Rollback()
		return err
	}

	now := time.Now().UTC()
	for _, name := range artifacts.Names() {
		body, ok := docs[name]
		if !ok {
			tx.Rollback()
			return fmt.Errorf("%w: missing %s", artifacts.ErrIncomplete, name)
		}
		if _, err := tx.Exec(`INSERT INTO artifacts (name, body, created_at) VALUES (?, ?, ?)`, name, string(body), now); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (b *Bundle) ModelType() (string, error) {
	var modelType string
	err := b.database.QueryRow(`SELECT value FROM meta WHERE key = 'model_type'`).Scan(&modelType)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("bundle has no model type")
	}
	return modelType, err
}

func (b *Bundle) ReadArtifacts() (map[string][]byte, error) {
	rows, err := b.database.Query(`SELECT name, body FROM artifacts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make(map[string][]byte)
	for rows.Next() {
		var name, body string
		if err := rows.Scan(&name, &body); err != nil {
			return nil, err
		}
		docs[name] = []byte(body)
	}
	return docs, rows.Err()
}

// Tables decodes the bundle contents.
func (b *Bundle) Tables() (*artifacts.Tables, error) {
	modelType, err := b.ModelType()
	if err != nil {
		return nil, err
	}
	docs, err := b.ReadArtifacts()
	if err != nil {
		return nil, err
	}
	return artifacts.Decode(modelType, docs)
}

func (b *Bundle) Close() error {
	return b.database.Close()
}

// LoadBundle opens an existing bundle read-only and decodes it.
func LoadBundle(path string) (*artifacts.Tables, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	dsn, err := bundleDSN(path, "ro")
	if err != nil {
		return nil, err
	}
	database, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	bundle := NewBundle(database)
	defer bundle.Close()
	return bundle.Tables()
}

// SaveBundle packs the artifact directory dir into a bundle at path. The
// documents are decoded first so a broken directory never produces a bundle.
func SaveBundle(path, dir, modelType string) error {
	docs, err := artifacts.ReadDir(dir)
	if err != nil {
		return err
	}
	if _, err := artifacts.Decode(modelType, docs); err != nil {
		return err
	}

	bundle, err := OpenBundle(path)
	if err != nil {
		return err
	}
	defer bundle.Close()
	return bundle.SaveArtifacts(modelType, docs)
}

// bundleDSN builds a sqlite URI for path. The path is made absolute and
// percent-escaped so '?', '#' and '%' in file names stay part of the name.
func bundleDSN(path, mode string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: url.Values{"mode": {mode}}.Encode(),
	}
	return u.String(), nil
}
