package model

import (
	"github.com/qbiq/biq-go/pkg/ident"
)

// Account is a user identity.
type Account struct {
	ID        ident.AccountID    `json:"id"`
	Flags     uint64             `json:"flags"`
	CreatedAt int64              `json:"createdAt"` // epoch seconds
	Meta      *AccountPublicMeta `json:"meta,omitempty"`
}

// NewAccount returns an account without public metadata.
func NewAccount(id ident.AccountID, flags uint64, createdAt int64) Account {
	return Account{ID: id, Flags: flags, CreatedAt: createdAt}
}

// Identity returns the account ID.
func (a Account) Identity() ident.AccountID {
	return a.ID
}

// WithMeta returns a copy of a with public metadata attached.
func (a Account) WithMeta(meta AccountPublicMeta) Account {
	a.Meta = &meta
	return a
}

// AccountPublicMeta is the part of an account other users may see.
type AccountPublicMeta struct {
	FullName *string `json:"fullName,omitempty"`
}

// NewAccountPublicMeta returns metadata with a display name.
func NewAccountPublicMeta(fullName string) AccountPublicMeta {
	return AccountPublicMeta{FullName: &fullName}
}

// DisplayName returns the full name, or "" if none was provided.
func (m AccountPublicMeta) DisplayName() string {
	if m.FullName == nil {
		return ""
	}
	return *m.FullName
}

// Alias is a login address of an account. Salt and hash are only present on
// aliases that log in with a password.
type Alias struct {
	Address  string          `json:"address"`
	Account  ident.AccountID `json:"account"`
	Priority int             `json:"priority"`
	Flags    uint64          `json:"flags"`
	PwSalt   *string         `json:"pwSalt,omitempty"`
	PwHash   *string         `json:"pwHash,omitempty"`
}

// NewAlias returns an alias without password material.
func NewAlias(address string, account ident.AccountID, priority int, flags uint64) Alias {
	return Alias{Address: address, Account: account, Priority: priority, Flags: flags}
}

// Brief returns the public form of a, without password material.
func (a Alias) Brief() AliasBrief {
	return AliasBrief{
		Address:  a.Address,
		Account:  a.Account,
		Priority: a.Priority,
		Flags:    a.Flags,
	}
}

// AliasBrief is the form of an Alias returned in public responses.
type AliasBrief struct {
	Address  string          `json:"address"`
	Account  ident.AccountID `json:"account"`
	Priority int             `json:"priority"`
	Flags    uint64          `json:"flags"`
}
