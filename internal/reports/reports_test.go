package reports

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/praxis-erp/praxis/internal/ledger"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return v
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return v
}

func TestBuildTrialBalance(t *testing.T) {
	accounts := []AccountBalance{
		{HeadCode: "1000", HeadName: "Cash in Hand", HeadType: "Asset", Opening: d(t, "100"), Debit: d(t, "200"), Credit: d(t, "150")},
		{HeadCode: "2000", HeadName: "Accounts Payable", HeadType: "Liability", Opening: d(t, "0"), Debit: d(t, "10"), Credit: d(t, "400")},
		{HeadCode: "3000", HeadName: "Dormant", HeadType: "Asset", Opening: d(t, "0"), Debit: d(t, "0"), Credit: d(t, "0")},
	}

	tb := BuildTrialBalance(accounts, true)
	if len(tb.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tb.Rows))
	}
	if !tb.Rows[0].ClosingDebit.Equal(d(t, "150")) {
		t.Fatalf("unexpected closing debit: %v", tb.Rows[0].ClosingDebit)
	}
	if !tb.Rows[1].ClosingCredit.Equal(d(t, "390")) {
		t.Fatalf("unexpected closing credit: %v", tb.Rows[1].ClosingCredit)
	}
	if !tb.TotalDebit.Equal(d(t, "150")) || !tb.TotalCredit.Equal(d(t, "390")) {
		t.Fatalf("unexpected totals: %v / %v", tb.TotalDebit, tb.TotalCredit)
	}
	if tb.IsBalanced {
		t.Fatal("expected unbalanced result for asymmetric fixture")
	}
}

func TestBuildTrialBalanceWithoutOpening(t *testing.T) {
	accounts := []AccountBalance{
		{HeadCode: "1000", HeadName: "Cash in Hand", HeadType: "Asset", Opening: d(t, "100"), Debit: d(t, "200"), Credit: d(t, "150")},
	}

	tb := BuildTrialBalance(accounts, false)
	if !tb.Rows[0].Opening.IsZero() {
		t.Fatalf("expected zero opening, got %v", tb.Rows[0].Opening)
	}
	if !tb.Rows[0].ClosingDebit.Equal(d(t, "50")) {
		t.Fatalf("expected closing 50, got %v", tb.Rows[0].ClosingDebit)
	}
}

func TestBuildTrialBalanceBalancedLedger(t *testing.T) {
	// A ledger written only through balanced vouchers always nets to zero.
	accounts := []AccountBalance{
		{HeadCode: "1000", HeadName: "Cash", HeadType: "Asset", Opening: d(t, "0"), Debit: d(t, "500"), Credit: d(t, "0")},
		{HeadCode: "4000", HeadName: "Service Income", HeadType: "Income", Opening: d(t, "0"), Debit: d(t, "0"), Credit: d(t, "500")},
	}

	tb := BuildTrialBalance(accounts, true)
	if !tb.IsBalanced {
		t.Fatalf("expected balanced, difference %v", tb.Difference)
	}
	if !tb.Difference.IsZero() {
		t.Fatalf("expected zero difference, got %v", tb.Difference)
	}
}

func TestBuildProfitAndLoss(t *testing.T) {
	accounts := []AccountBalance{
		{HeadCode: "4000", HeadName: "Service Income", HeadType: "Income", Debit: d(t, "0"), Credit: d(t, "1200")},
		{HeadCode: "5000", HeadName: "Salary Expense", HeadType: "Expense", Debit: d(t, "300"), Credit: d(t, "0")},
		{HeadCode: "5100", HeadName: "Rent Expense", HeadType: "Expense", Debit: d(t, "200"), Credit: d(t, "0")},
		{HeadCode: "1000", HeadName: "Cash", HeadType: "Asset", Debit: d(t, "700"), Credit: d(t, "0")},
	}

	pl := BuildProfitAndLoss(accounts)
	if !pl.Income.Total.Equal(d(t, "1200")) {
		t.Fatalf("expected income 1200 got %v", pl.Income.Total)
	}
	if !pl.Expense.Total.Equal(d(t, "500")) {
		t.Fatalf("expected expense 500 got %v", pl.Expense.Total)
	}
	if !pl.Net.Equal(d(t, "700")) {
		t.Fatalf("expected net 700 got %v", pl.Net)
	}
	if !pl.IsProfit {
		t.Fatal("expected profit")
	}
}

func TestBuildProfitAndLossLoss(t *testing.T) {
	accounts := []AccountBalance{
		{HeadCode: "4000", HeadName: "Service Income", HeadType: "Income", Debit: d(t, "0"), Credit: d(t, "100")},
		{HeadCode: "5000", HeadName: "Salary Expense", HeadType: "Expense", Debit: d(t, "300"), Credit: d(t, "0")},
	}

	pl := BuildProfitAndLoss(accounts)
	if !pl.Net.Equal(d(t, "-200")) {
		t.Fatalf("expected net -200 got %v", pl.Net)
	}
	if pl.IsProfit {
		t.Fatal("expected loss")
	}
}

func TestBuildBalanceSheet(t *testing.T) {
	accounts := []AccountBalance{
		{HeadCode: "1000", HeadName: "Cash", HeadType: "Asset", Opening: d(t, "0"), Debit: d(t, "100"), Credit: d(t, "20")},
		{HeadCode: "2000", HeadName: "Accounts Payable", HeadType: "Liability", Opening: d(t, "0"), Debit: d(t, "10"), Credit: d(t, "40")},
	}

	bs := BuildBalanceSheet(accounts)
	if !bs.Assets.Total.Equal(d(t, "80")) {
		t.Fatalf("expected assets 80 got %v", bs.Assets.Total)
	}
	if !bs.Liabilities.Total.Equal(d(t, "30")) {
		t.Fatalf("expected liabilities 30 got %v", bs.Liabilities.Total)
	}
	if !bs.Equity.Equal(d(t, "50")) {
		t.Fatalf("expected equity 50 got %v", bs.Equity)
	}
	if !bs.IsBalanced {
		t.Fatal("expected balanced sheet")
	}
}

func TestBuildBalanceSheetEmpty(t *testing.T) {
	bs := BuildBalanceSheet(nil)
	if !bs.Assets.Total.IsZero() || !bs.Liabilities.Total.IsZero() || !bs.Equity.IsZero() {
		t.Fatal("expected zero totals for empty input")
	}
	if !bs.IsBalanced {
		t.Fatal("empty sheet must still report balanced")
	}
	if bs.Assets.Accounts == nil || bs.Liabilities.Accounts == nil {
		t.Fatal("sections must carry empty slices, not nil")
	}
}

func TestBuildGeneralLedgerRunningBalance(t *testing.T) {
	lines := []ledger.Line{
		{VoucherNo: "DV-000001", VoucherType: ledger.TypeDebitVoucher, VoucherDate: date(t, "2026-01-05"), Debit: d(t, "50"), Credit: d(t, "0")},
		{VoucherNo: "CV-000001", VoucherType: ledger.TypeCreditVoucher, VoucherDate: date(t, "2026-01-07"), Debit: d(t, "0"), Credit: d(t, "30")},
	}

	gl := BuildGeneralLedger("1000", "Cash in Hand", d(t, "100"), lines)
	if len(gl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(gl.Rows))
	}
	if !gl.Rows[0].Balance.Equal(d(t, "150")) {
		t.Fatalf("expected running balance 150, got %v", gl.Rows[0].Balance)
	}
	if !gl.Rows[1].Balance.Equal(d(t, "120")) {
		t.Fatalf("expected running balance 120, got %v", gl.Rows[1].Balance)
	}
	if !gl.ClosingBalance.Equal(d(t, "120")) {
		t.Fatalf("expected closing 120, got %v", gl.ClosingBalance)
	}
}

func TestBuildGeneralLedgerNoLines(t *testing.T) {
	gl := BuildGeneralLedger("1000", "Cash in Hand", d(t, "75"), nil)
	if len(gl.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(gl.Rows))
	}
	if gl.Rows == nil {
		t.Fatal("rows must be an empty slice, not nil")
	}
	if !gl.ClosingBalance.Equal(d(t, "75")) {
		t.Fatalf("closing must equal opening, got %v", gl.ClosingBalance)
	}
}

func TestBuildBook(t *testing.T) {
	names := map[string]string{"1000": "Cash in Hand", "1001": "Petty Cash"}
	lines := []ledger.Line{
		{VoucherNo: "CV-000001", VoucherDate: date(t, "2026-02-01"), AccountHeadCode: "1000", Debit: d(t, "500"), Credit: d(t, "0")},
		{VoucherNo: "DV-000001", VoucherDate: date(t, "2026-02-03"), AccountHeadCode: "1001", Debit: d(t, "0"), Credit: d(t, "200")},
	}

	book := BuildBook([]string{"1000", "1001"}, names, d(t, "0"), lines)
	if !book.TotalReceipts.Equal(d(t, "500")) || !book.TotalPayments.Equal(d(t, "200")) {
		t.Fatalf("unexpected totals: %v / %v", book.TotalReceipts, book.TotalPayments)
	}
	if !book.ClosingBalance.Equal(d(t, "300")) {
		t.Fatalf("expected closing 300, got %v", book.ClosingBalance)
	}
	if book.Rows[1].AccountHeadName != "Petty Cash" {
		t.Fatalf("expected resolved account name, got %q", book.Rows[1].AccountHeadName)
	}
	// One running balance across the whole account set.
	if !book.Rows[0].Balance.Equal(d(t, "500")) || !book.Rows[1].Balance.Equal(d(t, "300")) {
		t.Fatalf("unexpected running balances: %v / %v", book.Rows[0].Balance, book.Rows[1].Balance)
	}
}

func TestClassifyActivity(t *testing.T) {
	cases := map[string]string{
		"Purchase of office asset": ActivityInvesting,
		"Investment in securities": ActivityInvesting,
		"Loan granted to staff":    ActivityFinancing,
		"Capital injection":        ActivityFinancing,
		"Office rent for February": ActivityOperating,
		"":                         ActivityOperating,
	}
	for narration, want := range cases {
		if got := classifyActivity(narration); got != want {
			t.Fatalf("classifyActivity(%q) = %s, want %s", narration, got, want)
		}
	}
}

func TestBuildCashFlow(t *testing.T) {
	lines := []ledger.Line{
		{VoucherNo: "CV-000001", VoucherDate: date(t, "2026-03-01"), Narration: "Service income received", Debit: d(t, "1000"), Credit: d(t, "0")},
		{VoucherNo: "DV-000001", VoucherDate: date(t, "2026-03-02"), Narration: "Purchase of office asset", Debit: d(t, "0"), Credit: d(t, "400")},
		{VoucherNo: "DV-000002", VoucherDate: date(t, "2026-03-03"), Narration: "Loan granted to staff", Debit: d(t, "0"), Credit: d(t, "100")},
	}

	cf := BuildCashFlow(d(t, "50"), lines)
	if !cf.Operating.Net.Equal(d(t, "1000")) {
		t.Fatalf("expected operating net 1000, got %v", cf.Operating.Net)
	}
	if !cf.Investing.Net.Equal(d(t, "-400")) {
		t.Fatalf("expected investing net -400, got %v", cf.Investing.Net)
	}
	if !cf.Financing.Net.Equal(d(t, "-100")) {
		t.Fatalf("expected financing net -100, got %v", cf.Financing.Net)
	}
	if !cf.NetFlow.Equal(d(t, "500")) {
		t.Fatalf("expected net flow 500, got %v", cf.NetFlow)
	}
	if !cf.ClosingBalance.Equal(d(t, "550")) {
		t.Fatalf("expected closing 550, got %v", cf.ClosingBalance)
	}
}

func TestCheckRange(t *testing.T) {
	from := date(t, "2026-01-01")
	to := date(t, "2026-01-31")

	if err := checkRange(from, to); err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
	if err := checkRange(time.Time{}, to); err == nil {
		t.Fatal("missing from must be rejected")
	}
	if err := checkRange(from, time.Time{}); err == nil {
		t.Fatal("missing to must be rejected")
	}
	err := checkRange(to, from)
	if err == nil {
		t.Fatal("inverted range must be rejected")
	}
	var param ParamError
	if !errors.As(err, &param) {
		t.Fatalf("expected ParamError, got %T", err)
	}
	if param.Field != "to" {
		t.Fatalf("expected field 'to', got %q", param.Field)
	}
	// Equal from and to is a valid single-day window.
	if err := checkRange(from, from); err != nil {
		t.Fatalf("single-day range rejected: %v", err)
	}
}

func TestBuildCashFlowEmpty(t *testing.T) {
	cf := BuildCashFlow(decimal.Zero, nil)
	if !cf.NetFlow.IsZero() || !cf.ClosingBalance.IsZero() {
		t.Fatal("expected zero flow for empty input")
	}
	if cf.Operating.Rows == nil {
		t.Fatal("sections must carry empty slices, not nil")
	}
}
