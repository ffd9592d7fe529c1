package finboard

import (
	"context"
	"errors"
	"testing"
	"time"
)

func checking(balance Money) Account {
	return Account{
		ID:             "checking",
		Name:           "Checking",
		Type:           Bank,
		Currency:       "EUR",
		OpeningBalance: balance,
	}
}

func TestLedger_ApplyRevertRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		txType TxType
		amount Money
	}{
		{"income", Income, EUR(1000)},
		{"expense", Expense, EUR(2500)},
		{"fractional expense", Expense, EUR(0.03)},
		{"large income", Income, EUR(123456789.99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ledger, store := newTestLedger(checking(EUR(5000)))

			tx, err := ledger.Apply(ctx, Transaction{
				AccountID: "checking",
				Amount:    tt.amount,
				Type:      tt.txType,
				Category:  "test",
			})
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if err := ledger.Revert(ctx, tx.ID); err != nil {
				t.Fatalf("Revert() error = %v", err)
			}

			account, _, _ := store.Account(ctx, "checking")
			if !account.Balance.Equal(EUR(5000)) {
				t.Errorf("balance after round trip = %s, want %s", account.Balance, EUR(5000))
			}
		})
	}
}

func TestLedger_EndToEnd(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(checking(EUR(5000)))

	balance := func() Money {
		a, _, _ := store.Account(ctx, "checking")
		return a.Balance
	}
	assertBalance := func(want Money) {
		t.Helper()
		if got := balance(); !got.Equal(want) {
			t.Fatalf("balance = %s, want %s", got, want)
		}
	}

	income, err := ledger.Apply(ctx, Transaction{AccountID: "checking", Amount: EUR(1000), Type: Income, Category: "salary"})
	if err != nil {
		t.Fatalf("Apply(income) error = %v", err)
	}
	assertBalance(EUR(6000))

	expense, err := ledger.Apply(ctx, Transaction{AccountID: "checking", Amount: EUR(2500), Type: Expense, Category: "rent"})
	if err != nil {
		t.Fatalf("Apply(expense) error = %v", err)
	}
	assertBalance(EUR(3500))

	if err := ledger.Revert(ctx, expense.ID); err != nil {
		t.Fatalf("Revert(expense) error = %v", err)
	}
	assertBalance(EUR(6000))

	if err := ledger.Revert(ctx, income.ID); err != nil {
		t.Fatalf("Revert(income) error = %v", err)
	}
	assertBalance(EUR(5000))

	if err := ledger.CheckIntegrity(ctx); err != nil {
		t.Errorf("CheckIntegrity() error = %v", err)
	}
}

func TestLedger_ApplyValidation(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
	}{
		{"zero amount", Transaction{AccountID: "checking", Amount: EUR(0), Type: Income, Category: "x"}},
		{"negative amount", Transaction{AccountID: "checking", Amount: EUR(-5), Type: Expense, Category: "x"}},
		{"missing category", Transaction{AccountID: "checking", Amount: EUR(10), Type: Expense}},
		{"unknown account", Transaction{AccountID: "nope", Amount: EUR(10), Type: Income, Category: "x"}},
		{"currency mismatch", Transaction{AccountID: "checking", Amount: USD(10), Type: Income, Category: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ledger, store := newTestLedger(checking(EUR(5000)))

			_, err := ledger.Apply(ctx, tt.tx)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Apply() error = %v, want *ValidationError", err)
			}

			// Nothing mutated.
			account, _, _ := store.Account(ctx, "checking")
			if !account.Balance.Equal(EUR(5000)) {
				t.Errorf("balance = %s, want untouched %s", account.Balance, EUR(5000))
			}
			txs, _ := store.Transactions(ctx)
			if len(txs) != 0 {
				t.Errorf("got %d stored transactions, want 0", len(txs))
			}
		})
	}
}

func TestLedger_ApplyTwiceRejected(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(checking(EUR(100)))

	tx, err := ledger.Apply(ctx, Transaction{ID: "t1", AccountID: "checking", Amount: EUR(10), Type: Income, Category: "x"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	_, err = ledger.Apply(ctx, Transaction{ID: tx.ID, AccountID: "checking", Amount: EUR(10), Type: Income, Category: "x"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("second Apply() error = %v, want *ValidationError", err)
	}
}

func TestLedger_ApplyFillsDefaults(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(checking(EUR(100)))

	tx, err := ledger.Apply(ctx, Transaction{AccountID: "checking", Amount: EUR(10), Type: Expense, Category: "x"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if tx.ID == "" {
		t.Error("Apply() did not assign an id")
	}
	if tx.Date.IsZero() {
		t.Error("Apply() did not assign a date")
	}
}

func TestLedger_RevertInvalidState(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(checking(EUR(100)))

	// never applied
	err := ledger.Revert(ctx, "ghost")
	var serr *InvalidStateError
	if !errors.As(err, &serr) {
		t.Fatalf("Revert(never applied) error = %v, want *InvalidStateError", err)
	}

	// already reverted
	tx, err := ledger.Apply(ctx, Transaction{AccountID: "checking", Amount: EUR(10), Type: Income, Category: "x"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := ledger.Revert(ctx, tx.ID); err != nil {
		t.Fatalf("Revert() error = %v", err)
	}
	err = ledger.Revert(ctx, tx.ID)
	if !errors.As(err, &serr) {
		t.Fatalf("Revert(already reverted) error = %v, want *InvalidStateError", err)
	}
}

func TestLedger_CreateAccount(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger()

	account, err := ledger.CreateAccount(ctx, Account{
		Name:           "Wallet",
		Type:           Cash,
		Currency:       "EUR",
		OpeningBalance: NO(250),
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if account.ID == "" {
		t.Error("CreateAccount() did not assign an id")
	}
	if !account.Balance.Equal(EUR(250)) {
		t.Errorf("balance = %s, want opening balance %s", account.Balance, EUR(250))
	}
	if account.Balance.Currency() != "EUR" {
		t.Errorf("balance currency = %q, want EUR", account.Balance.Currency())
	}

	if _, err := ledger.CreateAccount(ctx, Account{Name: "NoCurrency"}); err == nil {
		t.Error("CreateAccount() without currency succeeded, want error")
	}

	got, ok, _ := store.Account(ctx, account.ID)
	if !ok || got.Name != "Wallet" {
		t.Errorf("stored account = %+v, ok=%v", got, ok)
	}
}

func TestLedger_DeleteAccountPolicy(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(checking(EUR(100)))

	tx, err := ledger.Apply(ctx, Transaction{AccountID: "checking", Amount: EUR(10), Type: Expense, Category: "x"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// Deletion is refused while transactions reference the account.
	err = ledger.DeleteAccount(ctx, "checking")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("DeleteAccount() error = %v, want *ValidationError", err)
	}

	if err := ledger.Revert(ctx, tx.ID); err != nil {
		t.Fatalf("Revert() error = %v", err)
	}
	if err := ledger.DeleteAccount(ctx, "checking"); err != nil {
		t.Fatalf("DeleteAccount() after revert error = %v", err)
	}
	if _, ok, _ := store.Account(ctx, "checking"); ok {
		t.Error("account still present after deletion")
	}
}

func TestLedger_CheckIntegrityDetectsDrift(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(checking(EUR(100)))

	if _, err := ledger.Apply(ctx, Transaction{AccountID: "checking", Amount: EUR(10), Type: Income, Category: "x"}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := ledger.CheckIntegrity(ctx); err != nil {
		t.Fatalf("CheckIntegrity() on consistent ledger error = %v", err)
	}

	// Corrupt the cached balance behind the ledger's back.
	account, _, _ := store.Account(ctx, "checking")
	account.Balance = account.Balance.Add(EUR(1))
	if err := store.PutAccount(ctx, account); err != nil {
		t.Fatalf("PutAccount() error = %v", err)
	}
	if err := ledger.CheckIntegrity(ctx); err == nil {
		t.Error("CheckIntegrity() on drifted ledger returned nil, want error")
	}
}

func TestLedger_ConcurrentApplies(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(checking(EUR(0)))

	const n = 50
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := ledger.Apply(ctx, Transaction{
				AccountID: "checking",
				Amount:    EUR(1),
				Type:      Income,
				Category:  "x",
				Date:      time.Now(),
			})
			done <- err
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-done; err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}

	account, _, _ := store.Account(ctx, "checking")
	if !account.Balance.Equal(EUR(n)) {
		t.Errorf("balance = %s, want %s", account.Balance, EUR(n))
	}
}
