package store

import (
	"database/sql"
	"errors"

	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/model"
)

// ErrAddressTaken is returned by CreateAccount when the alias address
// already exists.
var ErrAddressTaken = errors.New("address is already registered")

// PutAccount inserts or replaces an account.
func (s *Store) PutAccount(a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return putAccount(s.db, a)
}

// CreateAccount inserts a new account together with its first alias in one
// transaction. It fails with ErrAddressTaken if the address is in use.
func (s *Store) CreateAccount(a model.Account, alias model.Alias) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM aliases WHERE address = ?`, alias.Address).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrAddressTaken
	}

	alias.Account = a.ID
	if err := putAccount(tx, a); err != nil {
		return err
	}
	if err := putAlias(tx, alias); err != nil {
		return err
	}
	return tx.Commit()
}

func putAccount(db execer, a model.Account) error {
	var fullName *string
	hasMeta := 0
	if a.Meta != nil {
		fullName = a.Meta.FullName
		hasMeta = 1
	}

	_, err := db.Exec(`
		INSERT INTO accounts (id, flags, created_at, full_name, has_meta)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			flags = excluded.flags,
			created_at = excluded.created_at,
			full_name = excluded.full_name,
			has_meta = excluded.has_meta
	`, a.ID.String(), int64(a.Flags), a.CreatedAt, nullString(fullName), hasMeta)
	return err
}

// GetAccount retrieves an account by ID.
func (s *Store) GetAccount(id ident.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getAccount(id)
}

func (s *Store) getAccount(id ident.AccountID) (*model.Account, error) {
	var (
		rawID    string
		flags    int64
		a        model.Account
		fullName sql.NullString
		hasMeta  bool
	)
	err := s.db.QueryRow(`
		SELECT id, flags, created_at, full_name, has_meta
		FROM accounts WHERE id = ?
	`, id.String()).Scan(&rawID, &flags, &a.CreatedAt, &fullName, &hasMeta)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if a.ID, err = parseID(rawID); err != nil {
		return nil, err
	}
	a.Flags = uint64(flags)
	if hasMeta {
		a.Meta = &model.AccountPublicMeta{FullName: stringPtr(fullName)}
	}
	return &a, nil
}

// PutAlias inserts or replaces an alias. The account must exist.
func (s *Store) PutAlias(a model.Alias) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return putAlias(s.db, a)
}

func putAlias(db execer, a model.Alias) error {
	_, err := db.Exec(`
		INSERT INTO aliases (address, account_id, priority, flags, pw_salt, pw_hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			account_id = excluded.account_id,
			priority = excluded.priority,
			flags = excluded.flags,
			pw_salt = excluded.pw_salt,
			pw_hash = excluded.pw_hash
	`, a.Address, a.Account.String(), a.Priority, int64(a.Flags), nullString(a.PwSalt), nullString(a.PwHash))
	return err
}

// GetAlias retrieves an alias by address.
func (s *Store) GetAlias(address string) (*model.Alias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT address, account_id, priority, flags, pw_salt, pw_hash
		FROM aliases WHERE address = ?
	`, address)

	a, err := scanAlias(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// AliasesFor returns the aliases of an account ordered by priority.
func (s *Store) AliasesFor(account ident.AccountID) ([]model.Alias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.aliasesFor(account)
}

func (s *Store) aliasesFor(account ident.AccountID) ([]model.Alias, error) {
	rows, err := s.db.Query(`
		SELECT address, account_id, priority, flags, pw_salt, pw_hash
		FROM aliases WHERE account_id = ?
		ORDER BY priority, address
	`, account.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Alias
	for rows.Next() {
		a, err := scanAlias(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlias(row scanner) (*model.Alias, error) {
	var (
		a         model.Alias
		accountID string
		flags     int64
		salt      sql.NullString
		hash      sql.NullString
	)
	if err := row.Scan(&a.Address, &accountID, &a.Priority, &flags, &salt, &hash); err != nil {
		return nil, err
	}

	id, err := parseID(accountID)
	if err != nil {
		return nil, err
	}
	a.Account = id
	a.Flags = uint64(flags)
	a.PwSalt = stringPtr(salt)
	a.PwHash = stringPtr(hash)
	return &a, nil
}
