package finboard

import "fmt"

// AccountType classifies an account on the dashboard.
type AccountType int

const (
	Bank AccountType = iota
	Cash
	Investment
	CreditCard
)

func (t AccountType) String() string {
	switch t {
	case Bank:
		return "bank"
	case Cash:
		return "cash"
	case Investment:
		return "investment"
	case CreditCard:
		return "credit-card"
	default:
		return "unknown"
	}
}

// ParseAccountType parses a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch s {
	case "bank":
		return Bank, nil
	case "cash":
		return Cash, nil
	case "investment":
		return Investment, nil
	case "credit-card":
		return CreditCard, nil
	default:
		return 0, fmt.Errorf("unknown account type: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so the type persists as its name.
func (t AccountType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *AccountType) UnmarshalText(text []byte) error {
	v, err := ParseAccountType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Account is a user account on the dashboard.
//
// Balance is derived but cached: it must always equal the opening balance
// plus the sum of signed effects of all transactions referencing the account.
type Account struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	Currency       string      `json:"currency"`
	OpeningBalance Money       `json:"openingBalance"`
	Balance        Money       `json:"balance"`
}
