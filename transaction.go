package finboard

import (
	"fmt"
	"time"
)

// TxType is the sign of a transaction's effect on its account balance.
type TxType int

const (
	Income TxType = iota
	Expense
)

func (t TxType) String() string {
	switch t {
	case Income:
		return "income"
	case Expense:
		return "expense"
	default:
		return "unknown"
	}
}

// ParseTxType parses a string into a TxType.
func ParseTxType(s string) (TxType, error) {
	switch s {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return 0, fmt.Errorf("unknown transaction type: %q", s)
	}
}

func (t TxType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TxType) UnmarshalText(text []byte) error {
	v, err := ParseTxType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Transaction is one signed entry in the ledger. It is immutable once
// applied; edits are modeled as revert then apply.
type Transaction struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	Amount      Money     `json:"amount"` // always positive, the sign comes from Type
	Type        TxType    `json:"type"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
}

// Signed returns the transaction's effect on its account balance:
// +Amount for income, -Amount for expense.
func (t Transaction) Signed() Money {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}
