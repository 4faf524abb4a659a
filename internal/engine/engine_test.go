package engine

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/mintebank/minte/internal/config"
	"github.com/mintebank/minte/internal/domain"
	"github.com/mintebank/minte/internal/journal"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func testConfig() config.EngineConfig {
	return config.EngineConfig{
		ReferenceCurrency: "RON",
		MinimumAge:        21,
		BusinessLimit:     500,
		Seed:              1,
	}
}

func testBootstrap() Bootstrap {
	return Bootstrap{
		Users: []UserRecord{
			{FirstName: "Ana", LastName: "Pop", Email: "ana@minte.ro", BirthDate: "1990-01-01", Occupation: "engineer"},
			{FirstName: "Dan", LastName: "Ilie", Email: "dan@minte.ro", BirthDate: "1995-06-15", Occupation: "manager"},
			{FirstName: "Eva", LastName: "Radu", Email: "eva@minte.ro", BirthDate: "2000-03-20", Occupation: "student"},
		},
		Merchants: []MerchantRecord{
			{Name: "TechWorld", ID: 1, Account: "RO99MINT0000000000000001", Type: "Tech", CashbackStrategy: "nrOfTransactions"},
			{Name: "MegaStore", ID: 2, Account: "RO99MINT0000000000000002", Type: "Clothes", CashbackStrategy: "spendingThreshold"},
		},
		ExchangeRates: []RateRecord{
			{From: "RON", To: "EUR", Rate: 0.2},
		},
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(testConfig(), testBootstrap(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func mustUser(t *testing.T, e *Engine, email string) *domain.User {
	t.Helper()
	u, err := e.Registry().UserByEmail(email)
	if err != nil {
		t.Fatalf("UserByEmail(%s): %v", email, err)
	}
	return u
}

func hasEntry(log *journal.Log, description string) bool {
	for _, entry := range log.All() {
		if entry.Description == description {
			return true
		}
	}
	return false
}

func countEntries(log *journal.Log, description string) int {
	n := 0
	for _, entry := range log.All() {
		if entry.Description == description {
			n++
		}
	}
	return n
}

func TestNew_UnknownStrategyIsFatal(t *testing.T) {
	boot := testBootstrap()
	boot.Merchants[0].CashbackStrategy = "lottery"
	if _, err := New(testConfig(), boot, nil); err == nil {
		t.Fatal("New accepted an unknown cashback strategy")
	}
}

func TestExecute_UnknownUserReportsError(t *testing.T) {
	e := testEngine(t)
	out := e.Execute(&Command{Kind: "addAccount", Timestamp: 1, Email: "ghost@minte.ro", Currency: "RON", AccountType: "classic"})
	if out == nil {
		t.Fatal("missing error output for unknown user")
	}
	body, ok := out.Output.(errBody)
	if !ok {
		t.Fatalf("output payload = %T, want errBody", out.Output)
	}
	if body.Description != "User not found" {
		t.Errorf("description = %q, want %q", body.Description, "User not found")
	}
}

func TestExecute_UnknownCommandIsSkipped(t *testing.T) {
	e := testEngine(t)
	if out := e.Execute(&Command{Kind: "timeTravel", Timestamp: 1}); out != nil {
		t.Errorf("unknown command produced output %+v", out)
	}
}

func TestAddAccountAndFunds(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})

	ana := mustUser(t, e, "ana@minte.ro")
	if len(ana.Accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(ana.Accounts))
	}
	acc := ana.Accounts[0]
	if !hasEntry(ana.Journal, "New account created") {
		t.Error("missing account-created journal entry")
	}

	e.Execute(&Command{Kind: "addFunds", Timestamp: 2, Email: "ana@minte.ro", Account: acc.IBAN, Amount: 250})
	if acc.Balance != 250 {
		t.Errorf("balance = %v, want 250", acc.Balance)
	}
}

func TestDeleteAccount(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	acc := ana.Accounts[0]

	// With funds remaining, deletion is refused.
	e.Execute(&Command{Kind: "addFunds", Timestamp: 2, Email: "ana@minte.ro", Account: acc.IBAN, Amount: 100})
	out := e.Execute(&Command{Kind: "deleteAccount", Timestamp: 3, Email: "ana@minte.ro", Account: acc.IBAN})
	if out == nil {
		t.Fatal("deleteAccount produced no output")
	}
	if !strings.Contains(string(mustJSON(t, out.Output)), "couldn't be deleted") {
		t.Errorf("refusal output = %s", mustJSON(t, out.Output))
	}
	if len(ana.Accounts) != 1 {
		t.Fatal("account deleted despite remaining funds")
	}

	// Empty the account; deletion now succeeds.
	acc.Balance = 0
	out = e.Execute(&Command{Kind: "deleteAccount", Timestamp: 4, Email: "ana@minte.ro", Account: acc.IBAN})
	if out == nil {
		t.Fatal("deleteAccount produced no output")
	}
	if !strings.Contains(string(mustJSON(t, out.Output)), "Account deleted") {
		t.Errorf("success output = %s", mustJSON(t, out.Output))
	}
	if len(ana.Accounts) != 0 {
		t.Error("account still attached after deletion")
	}
}

func TestPayOnline_InsufficientFunds(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	acc := ana.Accounts[0]
	e.Execute(&Command{Kind: "createCard", Timestamp: 2, Email: "ana@minte.ro", Account: acc.IBAN})
	card := acc.Cards[0]

	out := e.Execute(&Command{Kind: "payOnline", Timestamp: 3, Email: "ana@minte.ro",
		CardNumber: card.Number, Amount: 50, Currency: "RON", Merchant: "TechWorld"})
	if out != nil {
		t.Fatalf("refusal produced output %+v, want journal entry only", out)
	}
	if !hasEntry(ana.Journal, "Insufficient funds") {
		t.Error("missing insufficient-funds journal entry")
	}
	if acc.Balance != 0 {
		t.Errorf("balance = %v, want 0", acc.Balance)
	}
}

func TestPayOnline_FrozenCard(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	acc := ana.Accounts[0]
	e.Execute(&Command{Kind: "createCard", Timestamp: 2, Email: "ana@minte.ro", Account: acc.IBAN})
	card := acc.Cards[0]
	card.Status = domain.CardFrozen
	acc.Balance = 1000

	e.Execute(&Command{Kind: "payOnline", Timestamp: 3, Email: "ana@minte.ro",
		CardNumber: card.Number, Amount: 50, Currency: "RON", Merchant: "TechWorld"})
	if !hasEntry(ana.Journal, "The card is frozen") {
		t.Error("missing frozen-card journal entry")
	}
	if acc.Balance != 1000 {
		t.Errorf("balance = %v, want 1000", acc.Balance)
	}
}

func TestPayOnline_OneTimeCardReplaced(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	acc := ana.Accounts[0]
	acc.Balance = 1000
	e.Execute(&Command{Kind: "createOneTimeCard", Timestamp: 2, Email: "ana@minte.ro", Account: acc.IBAN})
	old := acc.Cards[0].Number

	e.Execute(&Command{Kind: "payOnline", Timestamp: 3, Email: "ana@minte.ro",
		CardNumber: old, Amount: 50, Currency: "RON", Merchant: "TechWorld"})

	if acc.Cards[0].Number == old {
		t.Error("one-time card number not replaced after payment")
	}
	if !hasEntry(ana.Journal, "The card has been destroyed") {
		t.Error("missing destroyed-card journal entry")
	}
	if countEntries(ana.Journal, "New card created") != 2 {
		t.Errorf("card-created entries = %d, want 2 (original + reissue)",
			countEntries(ana.Journal, "New card created"))
	}
}

// Five qualifying card payments on a silver plan upgrade the user to gold on
// the fifth settlement.
func TestSilverAutoUpgradeToGold(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	ana.Plan = domain.PlanSilver
	acc := ana.Accounts[0]
	acc.Balance = 10000
	e.Execute(&Command{Kind: "createCard", Timestamp: 2, Email: "ana@minte.ro", Account: acc.IBAN})
	card := acc.Cards[0]

	for i := 0; i < 4; i++ {
		e.Execute(&Command{Kind: "payOnline", Timestamp: 3 + i, Email: "ana@minte.ro",
			CardNumber: card.Number, Amount: 300, Currency: "RON", Merchant: "TechWorld"})
		if ana.Plan != domain.PlanSilver {
			t.Fatalf("plan changed after %d qualifying payments", i+1)
		}
	}

	e.Execute(&Command{Kind: "payOnline", Timestamp: 10, Email: "ana@minte.ro",
		CardNumber: card.Number, Amount: 300, Currency: "RON", Merchant: "TechWorld"})
	if ana.Plan != domain.PlanGold {
		t.Fatalf("plan = %v after 5 qualifying payments, want gold", ana.Plan)
	}
	if !hasEntry(ana.Journal, "Upgrade plan") {
		t.Error("missing upgrade journal entry on user log")
	}
	if !hasEntry(acc.Journal, "Upgrade plan") {
		t.Error("missing upgrade journal entry on account log")
	}
}

// A payment below the qualifying floor never counts toward the upgrade.
func TestNonQualifyingPaymentsDoNotUpgrade(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	ana.Plan = domain.PlanSilver
	acc := ana.Accounts[0]
	acc.Balance = 10000
	e.Execute(&Command{Kind: "createCard", Timestamp: 2, Email: "ana@minte.ro", Account: acc.IBAN})
	card := acc.Cards[0]

	for i := 0; i < 10; i++ {
		e.Execute(&Command{Kind: "payOnline", Timestamp: 3 + i, Email: "ana@minte.ro",
			CardNumber: card.Number, Amount: 100, Currency: "RON", Merchant: "TechWorld"})
	}
	if ana.Plan != domain.PlanSilver {
		t.Errorf("plan = %v, want silver (payments below the qualifying floor)", ana.Plan)
	}
}

func TestUpgradePlan(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	acc := ana.Accounts[0]
	acc.Balance = 120

	e.Execute(&Command{Kind: "upgradePlan", Timestamp: 2, Account: acc.IBAN, NewPlanType: "silver"})
	if ana.Plan != domain.PlanSilver {
		t.Fatalf("plan = %v, want silver", ana.Plan)
	}
	if acc.Balance != 20 {
		t.Errorf("balance = %v, want 20 (100 upgrade fee charged)", acc.Balance)
	}

	// Downgrades are journaled refusals, not state changes.
	e.Execute(&Command{Kind: "upgradePlan", Timestamp: 3, Account: acc.IBAN, NewPlanType: "standard"})
	if ana.Plan != domain.PlanSilver {
		t.Error("downgrade changed the plan")
	}
	if !hasEntry(ana.Journal, "You cannot downgrade your plan.") {
		t.Error("missing downgrade refusal entry")
	}

	// Insufficient funds for the next upgrade.
	e.Execute(&Command{Kind: "upgradePlan", Timestamp: 4, Account: acc.IBAN, NewPlanType: "gold"})
	if ana.Plan != domain.PlanSilver {
		t.Error("upgrade applied without covering the fee")
	}
}

func TestBusinessDepositLimits(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "business"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	acc := ana.Accounts[0]
	if acc.Business.DepositLimit != 500 {
		t.Fatalf("initial deposit limit = %v, want 500", acc.Business.DepositLimit)
	}

	e.Run([]Command{
		{Kind: "addNewBusinessAssociate", Timestamp: 2, Account: acc.IBAN, Email: "dan@minte.ro", Role: "manager"},
		{Kind: "addNewBusinessAssociate", Timestamp: 3, Account: acc.IBAN, Email: "eva@minte.ro", Role: "employee"},
	})

	// Employee above the deposit limit: silently refused, no entry.
	before := ana.Journal.Len()
	e.Execute(&Command{Kind: "addFunds", Timestamp: 4, Email: "eva@minte.ro", Account: acc.IBAN, Amount: 600})
	if acc.Balance != 0 {
		t.Errorf("balance = %v after refused employee deposit, want 0", acc.Balance)
	}
	if ana.Journal.Len() != before {
		t.Error("refused employee deposit wrote a journal entry")
	}

	// The identical deposit by a manager succeeds.
	e.Execute(&Command{Kind: "addFunds", Timestamp: 5, Email: "dan@minte.ro", Account: acc.IBAN, Amount: 600})
	if acc.Balance != 600 {
		t.Errorf("balance = %v after manager deposit, want 600", acc.Balance)
	}
	if acc.Business.DepositedBy["dan@minte.ro"] != 600 {
		t.Errorf("manager deposited = %v, want 600", acc.Business.DepositedBy["dan@minte.ro"])
	}
}

func TestChangeLimits_RolePolicy(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "business"},
	})
	acc := mustUser(t, e, "ana@minte.ro").Accounts[0]
	e.Execute(&Command{Kind: "addNewBusinessAssociate", Timestamp: 2, Account: acc.IBAN, Email: "dan@minte.ro", Role: "manager"})

	// A manager holds a role but not the permission: reported error.
	out := e.Execute(&Command{Kind: "changeSpendingLimit", Timestamp: 3, Email: "dan@minte.ro", Account: acc.IBAN, Amount: 900})
	if out == nil {
		t.Fatal("manager limit change produced no reported error")
	}

	// A stranger with no role: silent no-op.
	out = e.Execute(&Command{Kind: "changeDepositLimit", Timestamp: 4, Email: "eva@minte.ro", Account: acc.IBAN, Amount: 900})
	if out != nil {
		t.Errorf("role-less caller produced output %+v, want silence", out)
	}

	// The owner succeeds.
	e.Execute(&Command{Kind: "changeSpendingLimit", Timestamp: 5, Email: "ana@minte.ro", Account: acc.IBAN, Amount: 900})
	if acc.Business.SpendingLimit != 900 {
		t.Errorf("spending limit = %v, want 900", acc.Business.SpendingLimit)
	}
}

func TestGrantRoleIdempotentThroughCommand(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "business"},
	})
	acc := mustUser(t, e, "ana@minte.ro").Accounts[0]

	e.Execute(&Command{Kind: "addNewBusinessAssociate", Timestamp: 2, Account: acc.IBAN, Email: "dan@minte.ro", Role: "employee"})
	e.Execute(&Command{Kind: "addNewBusinessAssociate", Timestamp: 3, Account: acc.IBAN, Email: "dan@minte.ro", Role: "manager"})

	role, _ := acc.RoleOf("dan@minte.ro")
	if role != domain.RoleEmployee {
		t.Errorf("role = %v, want employee (regrant is a no-op)", role)
	}
}

func TestCheckCardStatus_FreezesOnce(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	acc := ana.Accounts[0]
	e.Execute(&Command{Kind: "createCard", Timestamp: 2, Email: "ana@minte.ro", Account: acc.IBAN})
	card := acc.Cards[0]

	e.Execute(&Command{Kind: "setMinimumBalance", Timestamp: 3, Account: acc.IBAN, MinBalance: 50})
	acc.Balance = 50

	e.Execute(&Command{Kind: "checkCardStatus", Timestamp: 4, CardNumber: card.Number})
	if card.Status != domain.CardFrozen {
		t.Error("card not frozen at the minimum")
	}
	warn := "You have reached the minimum amount of funds, the card will be frozen"
	if countEntries(ana.Journal, warn) != 1 {
		t.Errorf("freeze entries = %d, want 1", countEntries(ana.Journal, warn))
	}

	e.Execute(&Command{Kind: "checkCardStatus", Timestamp: 5, CardNumber: card.Number})
	if countEntries(ana.Journal, warn) != 1 {
		t.Error("second check at the minimum logged again")
	}
}

func TestSendMoney(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
		{Kind: "addAccount", Timestamp: 2, Email: "dan@minte.ro", Currency: "EUR", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	dan := mustUser(t, e, "dan@minte.ro")
	sender, receiver := ana.Accounts[0], dan.Accounts[0]
	sender.Balance = 1000

	e.Execute(&Command{Kind: "sendMoney", Timestamp: 3, Email: "ana@minte.ro",
		Account: sender.IBAN, Receiver: receiver.IBAN, Amount: 100, Description: "rent"})

	// Standard plan fee: 0.2% of 100 RON.
	if want := 899.8; !almostEqual(sender.Balance, want) {
		t.Errorf("sender balance = %v, want %v", sender.Balance, want)
	}
	if receiver.Balance != 20 {
		t.Errorf("receiver balance = %v, want 20 EUR", receiver.Balance)
	}
	if !hasEntry(ana.Journal, "rent") || !hasEntry(dan.Journal, "rent") {
		t.Error("missing transfer journal entries")
	}
}

func TestSendMoney_UnknownReceiver(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	acc := mustUser(t, e, "ana@minte.ro").Accounts[0]

	out := e.Execute(&Command{Kind: "sendMoney", Timestamp: 2, Email: "ana@minte.ro",
		Account: acc.IBAN, Receiver: "RO00NOPE0000000000000000", Amount: 10, Description: "x"})
	if out == nil {
		t.Fatal("missing reported error for unknown receiver")
	}
	body := out.Output.(errBody)
	if body.Description != "User not found" {
		t.Errorf("description = %q, want %q", body.Description, "User not found")
	}
}

func TestSplitPaymentEndToEnd(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
		{Kind: "addAccount", Timestamp: 2, Email: "dan@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	dan := mustUser(t, e, "dan@minte.ro")
	a, b := ana.Accounts[0], dan.Accounts[0]
	a.Balance, b.Balance = 100, 100

	e.Run([]Command{
		{Kind: "splitPayment", Timestamp: 3, SplitKind: "equal", Accounts: []string{a.IBAN, b.IBAN}, Amount: 100, Currency: "RON"},
		{Kind: "acceptSplitPayment", Timestamp: 4, Email: "ana@minte.ro", SplitKind: "equal"},
		{Kind: "acceptSplitPayment", Timestamp: 5, Email: "dan@minte.ro", SplitKind: "equal"},
	})

	if a.Balance != 50 || b.Balance != 50 {
		t.Errorf("balances = %v, %v; want 50, 50", a.Balance, b.Balance)
	}
	if !hasEntry(ana.Journal, "Split payment of 100.00 RON") {
		t.Error("missing split journal entry on first participant")
	}
	if !hasEntry(dan.Journal, "Split payment of 100.00 RON") {
		t.Error("missing split journal entry on second participant")
	}
}

func TestSplitPaymentRejected(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
		{Kind: "addAccount", Timestamp: 2, Email: "dan@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	dan := mustUser(t, e, "dan@minte.ro")
	a, b := ana.Accounts[0], dan.Accounts[0]
	a.Balance, b.Balance = 100, 100

	e.Run([]Command{
		{Kind: "splitPayment", Timestamp: 3, SplitKind: "equal", Accounts: []string{a.IBAN, b.IBAN}, Amount: 100, Currency: "RON"},
		{Kind: "acceptSplitPayment", Timestamp: 4, Email: "ana@minte.ro", SplitKind: "equal"},
		{Kind: "rejectSplitPayment", Timestamp: 5, Email: "dan@minte.ro", SplitKind: "equal"},
	})

	if a.Balance != 100 || b.Balance != 100 {
		t.Errorf("balances changed on rejection: %v, %v", a.Balance, b.Balance)
	}
	found := false
	for _, entry := range ana.Journal.All() {
		if entry.Error == "One user rejected the payment." {
			found = true
		}
	}
	if !found {
		t.Error("missing rejection entry on participant journal")
	}
}

func TestWithdrawSavings_Refusals(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "eva@minte.ro", Currency: "RON", AccountType: "savings", InterestRate: 0.05},
	})
	eva := mustUser(t, e, "eva@minte.ro")
	savings := eva.Accounts[0]
	savings.Balance = 1000

	// Eva owns no classic account in the requested currency.
	e.Execute(&Command{Kind: "withdrawSavings", Timestamp: 2, Account: savings.IBAN, Amount: 100, Currency: "RON"})
	if savings.Balance != 1000 {
		t.Errorf("balance = %v after refused withdrawal, want 1000", savings.Balance)
	}
	refused := hasEntry(eva.Journal, "You don't have the minimum age required.") ||
		hasEntry(eva.Journal, "You do not have a classic account.")
	if !refused {
		t.Error("missing refusal journal entry")
	}
}

func TestInterestOperations(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "savings", InterestRate: 0.05},
		{Kind: "addAccount", Timestamp: 2, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	savings, classic := ana.Accounts[0], ana.Accounts[1]
	savings.Balance = 1000

	e.Execute(&Command{Kind: "addInterest", Timestamp: 3, Account: savings.IBAN})
	if savings.Balance != 1050 {
		t.Errorf("balance = %v after interest, want 1050", savings.Balance)
	}
	if !hasEntry(ana.Journal, "Interest rate income") {
		t.Error("missing interest journal entry")
	}

	e.Execute(&Command{Kind: "changeInterestRate", Timestamp: 4, Account: savings.IBAN, InterestRate: 0.1})
	if savings.Savings.InterestRate != 0.1 {
		t.Errorf("rate = %v, want 0.1", savings.Savings.InterestRate)
	}

	// Interest operations on a classic account are reported errors.
	out := e.Execute(&Command{Kind: "addInterest", Timestamp: 5, Account: classic.IBAN})
	if out == nil {
		t.Fatal("addInterest on classic account produced no error output")
	}
	body := out.Output.(errBody)
	if body.Description != "This is not a savings account" {
		t.Errorf("description = %q", body.Description)
	}
}

func TestReports(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	acc := ana.Accounts[0]
	acc.Balance = 1000
	e.Execute(&Command{Kind: "createCard", Timestamp: 2, Email: "ana@minte.ro", Account: acc.IBAN})
	card := acc.Cards[0]
	e.Run([]Command{
		{Kind: "payOnline", Timestamp: 3, Email: "ana@minte.ro", CardNumber: card.Number, Amount: 100, Currency: "RON", Merchant: "TechWorld"},
		{Kind: "payOnline", Timestamp: 4, Email: "ana@minte.ro", CardNumber: card.Number, Amount: 50, Currency: "RON", Merchant: "MegaStore"},
	})

	out := e.Execute(&Command{Kind: "report", Timestamp: 5, Account: acc.IBAN, StartTimestamp: 3, EndTimestamp: 4})
	view, ok := out.Output.(reportView)
	if !ok {
		t.Fatalf("report payload = %T", out.Output)
	}
	if len(view.Transactions) != 2 {
		t.Errorf("report transactions = %d, want 2", len(view.Transactions))
	}

	out = e.Execute(&Command{Kind: "spendingsReport", Timestamp: 6, Account: acc.IBAN, StartTimestamp: 0, EndTimestamp: 10})
	sp, ok := out.Output.(spendingsView)
	if !ok {
		t.Fatalf("spendings payload = %T", out.Output)
	}
	if len(sp.Merchants) != 2 {
		t.Fatalf("spendings merchants = %d, want 2", len(sp.Merchants))
	}
	// Alphabetical merchant order.
	if sp.Merchants[0].Merchant != "MegaStore" || sp.Merchants[1].Merchant != "TechWorld" {
		t.Errorf("merchant order = %s, %s", sp.Merchants[0].Merchant, sp.Merchants[1].Merchant)
	}
}

func TestSpendingsReport_SavingsRefused(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "savings", InterestRate: 0.05},
	})
	acc := mustUser(t, e, "ana@minte.ro").Accounts[0]

	out := e.Execute(&Command{Kind: "spendingsReport", Timestamp: 2, Account: acc.IBAN, StartTimestamp: 0, EndTimestamp: 10})
	if out == nil {
		t.Fatal("missing output")
	}
	if !strings.Contains(string(mustJSON(t, out.Output)), "not supported for a saving account") {
		t.Errorf("output = %s", mustJSON(t, out.Output))
	}
}

func TestBusinessReport(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "business"},
	})
	acc := mustUser(t, e, "ana@minte.ro").Accounts[0]
	e.Run([]Command{
		{Kind: "addNewBusinessAssociate", Timestamp: 2, Account: acc.IBAN, Email: "dan@minte.ro", Role: "manager"},
		{Kind: "addNewBusinessAssociate", Timestamp: 3, Account: acc.IBAN, Email: "eva@minte.ro", Role: "employee"},
		{Kind: "addFunds", Timestamp: 4, Email: "dan@minte.ro", Account: acc.IBAN, Amount: 400},
	})

	out := e.Execute(&Command{Kind: "businessReport", Timestamp: 5, Account: acc.IBAN, Type: "transaction"})
	view, ok := out.Output.(businessTxnView)
	if !ok {
		t.Fatalf("payload = %T", out.Output)
	}
	if len(view.Managers) != 1 || len(view.Employees) != 1 {
		t.Fatalf("managers = %d, employees = %d; want 1, 1", len(view.Managers), len(view.Employees))
	}
	if view.Managers[0].Username != "Ilie Dan" {
		t.Errorf("manager username = %q, want %q", view.Managers[0].Username, "Ilie Dan")
	}
	if view.Managers[0].Deposited != 400 {
		t.Errorf("manager deposited = %v, want 400", view.Managers[0].Deposited)
	}
	if view.TotalDeposited != 400 {
		t.Errorf("total deposited = %v, want 400", view.TotalDeposited)
	}
}

func TestPrintUsers(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	out := e.Execute(&Command{Kind: "printUsers", Timestamp: 2})
	views, ok := out.Output.([]userView)
	if !ok {
		t.Fatalf("payload = %T", out.Output)
	}
	if len(views) != 3 {
		t.Fatalf("users = %d, want 3 (bootstrap order)", len(views))
	}
	if views[0].Email != "ana@minte.ro" || len(views[0].Accounts) != 1 {
		t.Errorf("first user = %+v", views[0])
	}
}

// A zero-amount payment is dropped before any lookup, so even a bogus card
// number produces no output and no journal entry.
func TestPayOnline_ZeroAmountStaysSilent(t *testing.T) {
	e := testEngine(t)
	out := e.Execute(&Command{Kind: "payOnline", Timestamp: 1, Email: "ana@minte.ro",
		CardNumber: "0000000000000000", Amount: 0, Currency: "RON", Merchant: "TechWorld"})
	if out != nil {
		t.Fatalf("output = %+v, want silence for a zero-amount payment", out)
	}
}

// Qualifying payments count only while the owner is on silver: large payments
// made on the standard plan never bank toward the gold upgrade.
func TestQualifyingPaymentsCountOnlyOnSilver(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	acc := ana.Accounts[0]
	acc.Balance = 10000
	e.Execute(&Command{Kind: "createCard", Timestamp: 2, Email: "ana@minte.ro", Account: acc.IBAN})
	card := acc.Cards[0]

	for i := 0; i < 5; i++ {
		e.Execute(&Command{Kind: "payOnline", Timestamp: 3 + i, Email: "ana@minte.ro",
			CardNumber: card.Number, Amount: 300, Currency: "RON", Merchant: "TechWorld"})
	}
	if ana.Plan != domain.PlanStandard {
		t.Fatalf("plan = %v after standard-tier payments, want standard", ana.Plan)
	}
	if acc.QualifyingTxns != 0 {
		t.Fatalf("qualifying count = %d on standard plan, want 0", acc.QualifyingTxns)
	}

	ana.Plan = domain.PlanSilver
	e.Execute(&Command{Kind: "payOnline", Timestamp: 10, Email: "ana@minte.ro",
		CardNumber: card.Number, Amount: 300, Currency: "RON", Merchant: "TechWorld"})
	if ana.Plan != domain.PlanSilver {
		t.Errorf("plan = %v, want silver (count restarts at the silver purchase)", ana.Plan)
	}
	if acc.QualifyingTxns != 1 {
		t.Errorf("qualifying count = %d, want 1", acc.QualifyingTxns)
	}
}

func TestCashWithdrawal(t *testing.T) {
	e := testEngine(t)
	e.Run([]Command{
		{Kind: "addAccount", Timestamp: 1, Email: "ana@minte.ro", Currency: "RON", AccountType: "classic"},
	})
	ana := mustUser(t, e, "ana@minte.ro")
	acc := ana.Accounts[0]
	acc.Balance = 1000
	e.Execute(&Command{Kind: "createCard", Timestamp: 2, Email: "ana@minte.ro", Account: acc.IBAN})
	card := acc.Cards[0]

	e.Execute(&Command{Kind: "cashWithdrawal", Timestamp: 3, Email: "ana@minte.ro",
		CardNumber: card.Number, Amount: 500})

	// Standard plan fee: 0.2% of the 500 RON withdrawal.
	if want := 1000 - 500 - 1.0; !almostEqual(acc.Balance, want) {
		t.Errorf("balance = %v, want %v", acc.Balance, want)
	}
	if !hasEntry(ana.Journal, "Cash withdrawal of 500.0") {
		t.Error("missing withdrawal journal entry")
	}
}
