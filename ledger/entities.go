// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

// Package ledger defines the household finance entities tracked by
// hearthsync (transactions, assets, and debts) and the REST client used to
// reach the hosted data store.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entity kind names used for pending-log tagging, cache keys, and drainer
// replayer registration.
const (
	KindTransaction = "transaction"
	KindAsset       = "asset"
	KindDebt        = "debt"
)

// TxnType distinguishes money coming in from money going out.
type TxnType string

const (
	TxnIncome  TxnType = "income"
	TxnExpense TxnType = "expense"
)

// Transaction is one income or expense record. OwnerUserID is the
// financially responsible party (may be the family head rather than the
// recorder); CreatedBy is who authored the record; FamilyID scopes it to a
// shared family view when set.
type Transaction struct {
	ID          string          `json:"id" validate:"required,uuid4"`
	Type        TxnType         `json:"type" validate:"required,oneof=income expense"`
	Category    string          `json:"category" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Notes       string          `json:"notes,omitempty"`
	OwnerUserID string          `json:"owner_user_id" validate:"required"`
	CreatedBy   string          `json:"created_by" validate:"required"`
	FamilyID    string          `json:"family_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
}

func (t Transaction) EntityID() string { return t.ID }

// NewTransaction mints a transaction with a client-generated id so it is a
// valid primary key before the backend has ever seen it.
func NewTransaction(ownerUserID, createdBy string) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
}

// Asset is something the household owns: an account balance, property,
// vehicle, investment.
type Asset struct {
	ID           string          `json:"id" validate:"required,uuid4"`
	Name         string          `json:"name" validate:"required"`
	Category     string          `json:"category" validate:"required"`
	CurrentValue decimal.Decimal `json:"current_value"`
	Notes        string          `json:"notes,omitempty"`
	OwnerUserID  string          `json:"owner_user_id" validate:"required"`
	CreatedBy    string          `json:"created_by" validate:"required"`
	FamilyID     string          `json:"family_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at,omitempty"`
}

func (a Asset) EntityID() string { return a.ID }

// NewAsset mints an asset with a client-generated id.
func NewAsset(ownerUserID, createdBy string) Asset {
	return Asset{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
}

// Debt is something the household owes: a loan, mortgage, card balance.
type Debt struct {
	ID          string          `json:"id" validate:"required,uuid4"`
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Balance     decimal.Decimal `json:"balance"`
	Notes       string          `json:"notes,omitempty"`
	OwnerUserID string          `json:"owner_user_id" validate:"required"`
	CreatedBy   string          `json:"created_by" validate:"required"`
	FamilyID    string          `json:"family_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
}

func (d Debt) EntityID() string { return d.ID }

// NewDebt mints a debt with a client-generated id.
func NewDebt(ownerUserID, createdBy string) Debt {
	return Debt{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
}

// MonthBounds returns the inclusive start date and exclusive end date for a
// month in "2006-01" format, used for date-range filters on transaction
// fetches. The error reports an unparseable month.
func MonthBounds(month string) (start, end string, err error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", err
	}
	return t.Format("2006-01-02"), t.AddDate(0, 1, 0).Format("2006-01-02"), nil
}
