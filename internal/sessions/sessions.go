// Package sessions persists bucket login sessions between runs.
//
// Regular sessions land in a SQLite store keyed by bucket id. Private
// sessions stay in memory only and disappear with the process, so a shared
// machine never keeps their tokens. Loads filter expired sessions on the way
// out and prune them from the store.
package sessions

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/mediabucket/mbx/internal/models"
)

// SQLiteStore implements persistent session storage.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the store and its schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			bucket_id INTEGER PRIMARY KEY,
			token TEXT NOT NULL,
			share_token TEXT NOT NULL,
			base TEXT NOT NULL,
			lifetime INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save inserts or replaces the session for a bucket.
func (s *SQLiteStore) Save(auth models.Auth) error {
	query := `
		INSERT OR REPLACE INTO sessions (bucket_id, token, share_token, base, lifetime, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query, auth.BucketID, auth.Token, auth.ShareToken, auth.Base, auth.Lifetime, auth.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Get retrieves the session for a bucket, nil when none is stored.
func (s *SQLiteStore) Get(bucketID int64) (*models.Auth, error) {
	query := `
		SELECT bucket_id, token, share_token, base, lifetime, created_at
		FROM sessions
		WHERE bucket_id = ?
	`

	var (
		id         int64
		token      string
		shareToken string
		base       string
		lifetime   int64
		createdAt  time.Time
	)

	err := s.db.QueryRow(query, bucketID).Scan(&id, &token, &shareToken, &base, &lifetime, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return &models.Auth{
		BucketID:   id,
		Token:      token,
		ShareToken: shareToken,
		Base:       base,
		Lifetime:   lifetime,
		CreatedAt:  createdAt,
	}, nil
}

// Delete removes the session for a bucket. Deleting an absent session is not
// an error.
func (s *SQLiteStore) Delete(bucketID int64) error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE bucket_id = ?", bucketID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List retrieves every stored session.
func (s *SQLiteStore) List() ([]models.Auth, error) {
	query := `
		SELECT bucket_id, token, share_token, base, lifetime, created_at
		FROM sessions
		ORDER BY bucket_id ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var auths []models.Auth
	for rows.Next() {
		var auth models.Auth
		if err := rows.Scan(&auth.BucketID, &auth.Token, &auth.ShareToken, &auth.Base, &auth.Lifetime, &auth.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		auths = append(auths, auth)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return auths, nil
}

// Manager routes sessions between the persistent store and the in-memory
// map holding private sessions.
type Manager struct {
	store *SQLiteStore

	mu      sync.Mutex
	private map[int64]models.Auth
}

// NewManager creates a manager. store may be nil to run memory-only.
func NewManager(store *SQLiteStore) *Manager {
	return &Manager{
		store:   store,
		private: make(map[int64]models.Auth),
	}
}

// Save stores a session. Private sessions never touch the persistent store;
// saving one also shadows any persisted session for the same bucket.
func (m *Manager) Save(auth models.Auth) error {
	if auth.PrivateSession || m.store == nil {
		m.mu.Lock()
		m.private[auth.BucketID] = auth
		m.mu.Unlock()
		return nil
	}
	return m.store.Save(auth)
}

// Load returns the live session for a bucket, nil when none exists. Expired
// sessions are pruned and reported as absent; private sessions win over
// persisted ones.
func (m *Manager) Load(bucketID int64) (*models.Auth, error) {
	m.mu.Lock()
	auth, ok := m.private[bucketID]
	if ok && auth.IsExpired() {
		delete(m.private, bucketID)
		ok = false
	}
	m.mu.Unlock()
	if ok {
		return &auth, nil
	}

	if m.store == nil {
		return nil, nil
	}

	stored, err := m.store.Get(bucketID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	if stored.IsExpired() {
		if err := m.store.Delete(bucketID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return stored, nil
}

// Remove drops the session for a bucket from both layers.
func (m *Manager) Remove(bucketID int64) error {
	m.mu.Lock()
	delete(m.private, bucketID)
	m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	return m.store.Delete(bucketID)
}

// All returns every live session, private ones shadowing persisted ones.
func (m *Manager) All() ([]models.Auth, error) {
	seen := make(map[int64]bool)
	var auths []models.Auth

	m.mu.Lock()
	for _, auth := range m.private {
		if !auth.IsExpired() {
			auths = append(auths, auth)
			seen[auth.BucketID] = true
		}
	}
	m.mu.Unlock()

	if m.store == nil {
		return auths, nil
	}

	stored, err := m.store.List()
	if err != nil {
		return nil, err
	}
	for _, auth := range stored {
		if !seen[auth.BucketID] && !auth.IsExpired() {
			auths = append(auths, auth)
		}
	}
	return auths, nil
}
