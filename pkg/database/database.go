package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (creating if necessary) the SQLite database at dbPath, applies
// pragmas, creates the schema and seeds reference data. The returned handle
// is owned by the caller: open it at process start, close it at shutdown.
func Open(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err = createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err = seedGenres(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed genres: %w", err)
	}

	if err = seedDefaultUser(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed default user: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT UNIQUE NOT NULL,
        nickname TEXT NOT NULL DEFAULT '',
        password_hash TEXT NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS genres (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT UNIQUE NOT NULL,
        description TEXT NOT NULL DEFAULT ''
    );

    CREATE TABLE IF NOT EXISTS books (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        title TEXT NOT NULL,
        author TEXT NOT NULL,
        publication_year INTEGER,
        description TEXT NOT NULL DEFAULT '',
        isbn TEXT NOT NULL DEFAULT '',
        page_count INTEGER,
        language TEXT NOT NULL DEFAULT '',
        publisher TEXT NOT NULL DEFAULT '',
        cover_image_url TEXT NOT NULL DEFAULT '',
        publication_date TEXT NOT NULL DEFAULT '',
        user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS book_genres (
        book_id INTEGER NOT NULL,
        genre_id INTEGER NOT NULL,
        PRIMARY KEY (book_id, genre_id),
        FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE CASCADE,
        FOREIGN KEY (genre_id) REFERENCES genres(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS user_books (
        user_id INTEGER NOT NULL,
        book_id INTEGER NOT NULL,
        read_status TEXT NOT NULL DEFAULT 'unread'
            CHECK (read_status IN ('unread', 'reading', 'read')),
        rating INTEGER CHECK (rating BETWEEN 1 AND 5),
        comments TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (user_id, book_id),
        FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
        FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS reading_lists (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        name TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        is_public INTEGER NOT NULL DEFAULT 0,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS reading_list_books (
        reading_list_id INTEGER NOT NULL,
        book_id INTEGER NOT NULL,
        position INTEGER NOT NULL DEFAULT 0,
        notes TEXT NOT NULL DEFAULT '',
        added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (reading_list_id, book_id),
        FOREIGN KEY (reading_list_id) REFERENCES reading_lists(id) ON DELETE CASCADE,
        FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_books_title ON books(title);
    CREATE INDEX IF NOT EXISTS idx_books_author ON books(author);
    CREATE INDEX IF NOT EXISTS idx_user_books_user ON user_books(user_id);
    CREATE INDEX IF NOT EXISTS idx_reading_lists_user ON reading_lists(user_id);
    `

	_, err := db.Exec(schema)
	return err
}

// defaultGenres is the static reference set inserted on first run.
var defaultGenres = []struct {
	Name        string
	Description string
}{
	{"Adventure", "Journeys, exploration and daring exploits"},
	{"Fantasy", "Magic, mythical creatures and imagined worlds"},
	{"Science Fiction", "Futuristic science and technology"},
	{"Mystery", "Crimes, puzzles and investigations"},
	{"Romance", "Love stories and relationships"},
	{"Thriller", "Suspense and high-stakes tension"},
	{"Horror", "Fear, dread and the supernatural"},
	{"Historical Fiction", "Stories set in the past"},
	{"Biography", "Accounts of real lives"},
	{"Non-Fiction", "Factual works on real subjects"},
	{"Poetry", "Verse and poetic collections"},
	{"Classic", "Enduring works of literature"},
}

func seedGenres(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM genres`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, g := range defaultGenres {
		if _, err := db.Exec(`INSERT INTO genres (name, description) VALUES (?, ?)`, g.Name, g.Description); err != nil {
			return err
		}
	}
	return nil
}

// seedDefaultUser creates the fallback identity unauthenticated requests
// resolve to, so rows owned by user 1 always have a matching users row. The
// empty password hash never matches a login attempt.
func seedDefaultUser(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE id = 1`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err := db.Exec(`INSERT INTO users (id, username, nickname, password_hash) VALUES (1, 'default', 'Default User', '')`)
	return err
}
