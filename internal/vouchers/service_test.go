package vouchers

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-erp/praxis/internal/ledger"
	"github.com/praxis-erp/praxis/internal/shared"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

// stubStore implements StorePort and ledger.TxStore in memory.
type stubStore struct {
	accounts    map[string]ledger.PostingAccount
	registered  map[string]ledger.VoucherType
	lines       []ledger.Line
	seq         int64
	conflictsOn int // fail RegisterVoucherNo this many times
}

func newStubStore() *stubStore {
	return &stubStore{
		accounts:   map[string]ledger.PostingAccount{},
		registered: map[string]ledger.VoucherType{},
	}
}

func (s *stubStore) addAccount(code string, active, transaction bool) {
	s.accounts[code] = ledger.PostingAccount{HeadCode: code, HeadName: code, IsActive: active, IsTransaction: transaction}
}

func (s *stubStore) WithTx(ctx context.Context, fn func(context.Context, ledger.TxStore) error) error {
	return fn(ctx, s)
}

func (s *stubStore) NextSequence(_ context.Context, _ ledger.VoucherType) (int64, error) {
	return s.seq + 1, nil
}

func (s *stubStore) RegisterVoucherNo(_ context.Context, voucherType ledger.VoucherType, voucherNo string, _ *int64) error {
	if s.conflictsOn > 0 {
		s.conflictsOn--
		return ledger.ErrVoucherNumberConflict
	}
	if _, dup := s.registered[voucherNo]; dup {
		return ledger.ErrVoucherNumberConflict
	}
	s.registered[voucherNo] = voucherType
	s.seq++
	return nil
}

func (s *stubStore) AppendLines(_ context.Context, lines []ledger.Line) error {
	s.lines = append(s.lines, lines...)
	return nil
}

func (s *stubStore) AccountForPosting(_ context.Context, headCode string) (ledger.PostingAccount, error) {
	acc, ok := s.accounts[headCode]
	if !ok {
		return ledger.PostingAccount{}, ledger.ErrAccountNotFound
	}
	return acc, nil
}

func (s *stubStore) LinesForVoucher(_ context.Context, voucherNo string) ([]ledger.Line, error) {
	var out []ledger.Line
	for _, l := range s.lines {
		if l.VoucherNo == voucherNo {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubStore) UpdateVoucher(context.Context, string, ledger.VoucherFields, int64) error {
	return nil
}

func (s *stubStore) ApproveVoucher(context.Context, string, int64) error { return nil }

func (s *stubStore) DeleteVoucher(context.Context, string) error { return nil }

type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) Record(_ context.Context, log shared.AuditLog) error {
	r.actions = append(r.actions, log.Action)
	return nil
}

func newTestService(store *stubStore) (*Service, *recordingAudit) {
	audit := &recordingAudit{}
	svc := NewService(store, audit, nil)
	svc.WithNow(func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) })
	return svc, audit
}

func TestPostDebitVoucher(t *testing.T) {
	store := newStubStore()
	store.addAccount("1000", true, true)
	store.addAccount("4000", true, true)
	svc, audit := newTestService(store)

	voucherNo, err := svc.PostDebitVoucher(context.Background(), DebitVoucherInput{
		VoucherDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DebitAccount: "1000",
		Amount:       dec(t, "500"),
		Credits: []AmountEntry{
			{AccountHeadCode: "4000", Amount: dec(t, "500")},
		},
		Narration: "Service income received",
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, "DV-000001", voucherNo)
	require.Len(t, store.lines, 2)

	debit := decimal.Zero
	credit := decimal.Zero
	for _, line := range store.lines {
		assert.Equal(t, voucherNo, line.VoucherNo)
		assert.Equal(t, ledger.TypeDebitVoucher, line.VoucherType)
		assert.True(t, line.IsPosted)
		assert.False(t, line.IsApproved)
		assert.EqualValues(t, 7, line.CreatedBy)
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	assert.True(t, debit.Equal(credit), "posted set must balance")
	assert.Contains(t, audit.actions, "voucher.post")
}

func TestPostJournalVoucherUnbalanced(t *testing.T) {
	store := newStubStore()
	store.addAccount("1000", true, true)
	store.addAccount("4000", true, true)
	svc, _ := newTestService(store)

	_, err := svc.PostJournalVoucher(context.Background(), JournalVoucherInput{
		VoucherDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Entries: []JournalEntryInput{
			{AccountHeadCode: "1000", Debit: dec(t, "100")},
			{AccountHeadCode: "4000", Credit: dec(t, "90")},
		},
	}, 1)
	var unbalanced *UnbalancedError
	require.ErrorAs(t, err, &unbalanced)
	assert.True(t, unbalanced.Debit.Equal(dec(t, "100")))
	assert.True(t, unbalanced.Credit.Equal(dec(t, "90")))
	assert.Empty(t, store.lines, "nothing may be written on validation failure")
}

func TestPostJournalVoucherTolerance(t *testing.T) {
	store := newStubStore()
	store.addAccount("1000", true, true)
	store.addAccount("4000", true, true)
	svc, _ := newTestService(store)

	// 0.009 below the 0.01 tolerance passes.
	_, err := svc.PostJournalVoucher(context.Background(), JournalVoucherInput{
		VoucherDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Entries: []JournalEntryInput{
			{AccountHeadCode: "1000", Debit: dec(t, "100.009")},
			{AccountHeadCode: "4000", Credit: dec(t, "100")},
		},
	}, 1)
	require.NoError(t, err)

	// Exactly 0.01 is rejected.
	_, err = svc.PostJournalVoucher(context.Background(), JournalVoucherInput{
		VoucherDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Entries: []JournalEntryInput{
			{AccountHeadCode: "1000", Debit: dec(t, "100.01")},
			{AccountHeadCode: "4000", Credit: dec(t, "100")},
		},
	}, 1)
	var unbalanced *UnbalancedError
	require.ErrorAs(t, err, &unbalanced)
}

func TestPostVoucherNegativeAmount(t *testing.T) {
	store := newStubStore()
	svc, _ := newTestService(store)

	_, err := svc.PostContraVoucher(context.Background(), ContraVoucherInput{
		VoucherDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DebitAccount:  "1000",
		CreditAccount: "1001",
		Amount:        dec(t, "-10"),
	}, 1)
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestPostVoucherTooFewLines(t *testing.T) {
	store := newStubStore()
	svc, _ := newTestService(store)

	_, err := svc.PostJournalVoucher(context.Background(), JournalVoucherInput{
		VoucherDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Entries: []JournalEntryInput{
			{AccountHeadCode: "1000", Debit: dec(t, "100"), Credit: dec(t, "100")},
		},
	}, 1)
	require.ErrorIs(t, err, ErrTooFewLines)
}

func TestPostVoucherInvalidAccount(t *testing.T) {
	store := newStubStore()
	store.addAccount("1000", true, true)
	store.addAccount("2000", false, true) // inactive
	store.addAccount("3000", true, false) // summary-only
	svc, _ := newTestService(store)

	cases := []struct {
		name   string
		credit string
		reason string
	}{
		{"unknown account", "9999", "does not exist"},
		{"inactive account", "2000", "is inactive"},
		{"non-transaction account", "3000", "does not accept transactions"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PostContraVoucher(context.Background(), ContraVoucherInput{
				VoucherDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				DebitAccount:  "1000",
				CreditAccount: tc.credit,
				Amount:        dec(t, "10"),
			}, 1)
			var invalid *InvalidAccountError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.credit, invalid.HeadCode)
			assert.Equal(t, tc.reason, invalid.Reason)
			assert.Empty(t, store.lines)
		})
	}
}

func TestPostVoucherRetriesOnNumberConflict(t *testing.T) {
	store := newStubStore()
	store.addAccount("1000", true, true)
	store.addAccount("1001", true, true)
	store.conflictsOn = 1
	svc, _ := newTestService(store)

	voucherNo, err := svc.PostContraVoucher(context.Background(), ContraVoucherInput{
		VoucherDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DebitAccount:  "1000",
		CreditAccount: "1001",
		Amount:        dec(t, "50"),
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "CNV-000001", voucherNo)
	assert.Len(t, store.lines, 2)
}

func TestPostVoucherConflictTwiceFails(t *testing.T) {
	store := newStubStore()
	store.addAccount("1000", true, true)
	store.addAccount("1001", true, true)
	store.conflictsOn = 2
	svc, _ := newTestService(store)

	_, err := svc.PostContraVoucher(context.Background(), ContraVoucherInput{
		VoucherDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DebitAccount:  "1000",
		CreditAccount: "1001",
		Amount:        dec(t, "50"),
	}, 1)
	require.ErrorIs(t, err, ledger.ErrVoucherNumberConflict)
}

func TestPostCreditVoucherShape(t *testing.T) {
	store := newStubStore()
	store.addAccount("1000", true, true)
	store.addAccount("5000", true, true)
	store.addAccount("5100", true, true)
	svc, _ := newTestService(store)

	voucherNo, err := svc.PostCreditVoucher(context.Background(), CreditVoucherInput{
		VoucherDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CreditAccount: "1000",
		Amount:        dec(t, "300"),
		Debits: []AmountEntry{
			{AccountHeadCode: "5000", Amount: dec(t, "200")},
			{AccountHeadCode: "5100", Amount: dec(t, "100")},
		},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "CV-000001", voucherNo)
	require.Len(t, store.lines, 3)
	assert.True(t, store.lines[2].Credit.Equal(dec(t, "300")))
}

func TestPostPrepared(t *testing.T) {
	store := newStubStore()
	store.addAccount("1200", true, true)
	store.addAccount("1000", true, true)

	entries := []JournalEntryInput{
		{AccountHeadCode: "1200", Debit: dec(t, "1000")},
		{AccountHeadCode: "1000", Credit: dec(t, "1000")},
	}
	err := PostPrepared(context.Background(), store, ledger.VoucherType("LoanGrant"), "LN-abc12345",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "Loan granted to staff", entries, 5)
	require.NoError(t, err)
	assert.Equal(t, ledger.VoucherType("LoanGrant"), store.registered["LN-abc12345"])
	require.Len(t, store.lines, 2)
	assert.Equal(t, "LN-abc12345", store.lines[0].VoucherNo)
}

func TestFormatVoucherNo(t *testing.T) {
	assert.Equal(t, "DV-000042", FormatVoucherNo(ledger.TypeDebitVoucher, 42))
	assert.Equal(t, "CV-000001", FormatVoucherNo(ledger.TypeCreditVoucher, 1))
	assert.Equal(t, "CNV-000007", FormatVoucherNo(ledger.TypeContraVoucher, 7))
	assert.Equal(t, "JV-000100", FormatVoucherNo(ledger.TypeJournalVoucher, 100))
	assert.Equal(t, "Payment-000003", FormatVoucherNo(ledger.VoucherType("Payment"), 3))
}

func TestLinesNotFound(t *testing.T) {
	store := newStubStore()
	svc, _ := newTestService(store)

	_, err := svc.Lines(context.Background(), "DV-999999")
	require.ErrorIs(t, err, ledger.ErrVoucherNotFound)
}
