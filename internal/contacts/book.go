// Package contacts provides the persisted address book mapping contact
// names to relay identities.
//
// The book owns its backing SQLite store exclusively. Every operation
// holds the book's mutex for its full duration, so callers sharing one
// *Book across call sites never observe interleaved mutations.
package contacts

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Contact is one named relay identity.
type Contact struct {
	Name      string
	PublicKey string
}

// DuplicateError reports an attempt to add a name that already exists.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("contact %q already exists", e.Name)
}

// NotFoundError reports a lookup or removal of an unknown name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("contact %q not found", e.Name)
}

// Book is the mutex-guarded address book.
type Book struct {
	mu  sync.Mutex
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the address book store under dataPath and runs
// pending migrations.
func Open(dataPath string, logger *slog.Logger) (*Book, error) {
	if err := os.MkdirAll(dataPath, 0750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataPath, "contacts.db")
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open contacts store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping contacts store: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Book{db: db, log: logger}, nil
}

// openMemory opens an in-memory book. Used by tests.
func openMemory(logger *slog.Logger) (*Book, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open contacts store: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Book{db: db, log: logger}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("migrate contacts store: %w", err)
	}
	return nil
}

// Close closes the backing store.
func (b *Book) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.db.Close()
}

// Add inserts a contact. Names are unique: adding an existing name fails
// with DuplicateError and leaves the book unchanged. The single INSERT
// makes the in-memory view and the persisted store change together.
func (b *Book) Add(c Contact) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var exists int
	err := b.db.QueryRow(`SELECT COUNT(*) FROM contacts WHERE name = ?`, c.Name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check contact: %w", err)
	}
	if exists > 0 {
		return &DuplicateError{Name: c.Name}
	}
	if _, err := b.db.Exec(
		`INSERT INTO contacts (name, public_key) VALUES (?, ?)`,
		c.Name, c.PublicKey,
	); err != nil {
		return fmt.Errorf("add contact: %w", err)
	}
	b.log.Debug("contact added", "name", c.Name)
	return nil
}

// Remove deletes a contact by name, failing with NotFoundError if absent.
func (b *Book) Remove(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.db.Exec(`DELETE FROM contacts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("remove contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove contact: %w", err)
	}
	if n == 0 {
		return &NotFoundError{Name: name}
	}
	b.log.Debug("contact removed", "name", name)
	return nil
}

// Get looks up a contact by name.
func (b *Book) Get(name string) (Contact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var c Contact
	err := b.db.QueryRow(
		`SELECT name, public_key FROM contacts WHERE name = ?`, name,
	).Scan(&c.Name, &c.PublicKey)
	if err == sql.ErrNoRows {
		return Contact{}, &NotFoundError{Name: name}
	}
	if err != nil {
		return Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

// ForEach visits every contact in insertion order. The rows are scanned
// lazily; returning an error from fn stops the walk. The book stays
// locked for the whole walk, so fn must not call back into the book.
func (b *Book) ForEach(fn func(Contact) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows, err := b.db.Query(`SELECT name, public_key FROM contacts ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.Name, &c.PublicKey); err != nil {
			return fmt.Errorf("scan contact: %w", err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Len reports the number of contacts in the book.
func (b *Book) Len() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var n int
	if err := b.db.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}
