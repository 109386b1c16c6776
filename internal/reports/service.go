package reports

import (
	"context"
	"fmt"
	"time"
)

// ParamError reports an invalid or missing report parameter.
type ParamError struct {
	Field  string
	Reason string
}

func (e ParamError) Error() string {
	return fmt.Sprintf("reports: %s %s", e.Field, e.Reason)
}

// Service composes snapshot reads with the pure builders and the report
// cache.
type Service struct {
	repo  *Repository
	cache *Cache
}

func NewService(repo *Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func checkRange(from, to time.Time) error {
	if from.IsZero() {
		return ParamError{Field: "from", Reason: "is required"}
	}
	if to.IsZero() {
		return ParamError{Field: "to", Reason: "is required"}
	}
	if to.Before(from) {
		return ParamError{Field: "to", Reason: "must not be before from"}
	}
	return nil
}

const dateKey = "2006-01-02"

// TrialBalance builds the trial balance for the window. With withOpening the
// closing columns include balances carried from before the window.
func (s *Service) TrialBalance(ctx context.Context, from, to time.Time, withOpening bool) (TrialBalance, error) {
	if err := checkRange(from, to); err != nil {
		return TrialBalance{}, err
	}
	key := fmt.Sprintf("tb:%s:%s:%t", from.Format(dateKey), to.Format(dateKey), withOpening)
	var cached TrialBalance
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	balances, err := s.repo.PeriodBalances(ctx, from, to)
	if err != nil {
		return TrialBalance{}, err
	}
	report := BuildTrialBalance(balances, withOpening)
	s.cache.Set(ctx, key, report)
	return report, nil
}

// ProfitAndLoss builds the income statement over period movements only.
func (s *Service) ProfitAndLoss(ctx context.Context, from, to time.Time) (ProfitAndLoss, error) {
	if err := checkRange(from, to); err != nil {
		return ProfitAndLoss{}, err
	}
	key := fmt.Sprintf("pl:%s:%s", from.Format(dateKey), to.Format(dateKey))
	var cached ProfitAndLoss
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	balances, err := s.repo.PeriodBalances(ctx, from, to)
	if err != nil {
		return ProfitAndLoss{}, err
	}
	report := BuildProfitAndLoss(balances)
	s.cache.Set(ctx, key, report)
	return report, nil
}

// BalanceSheet builds the statement of position as of a date.
func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (BalanceSheet, error) {
	if asOf.IsZero() {
		return BalanceSheet{}, ParamError{Field: "as_of_date", Reason: "is required"}
	}
	key := "bs:" + asOf.Format(dateKey)
	var cached BalanceSheet
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	balances, err := s.repo.ClosingBalances(ctx, asOf)
	if err != nil {
		return BalanceSheet{}, err
	}
	report := BuildBalanceSheet(balances)
	s.cache.Set(ctx, key, report)
	return report, nil
}

// GeneralLedger builds the running-balance statement for one account.
func (s *Service) GeneralLedger(ctx context.Context, headCode string, from, to time.Time) (GeneralLedger, error) {
	if headCode == "" {
		return GeneralLedger{}, ParamError{Field: "account_code", Reason: "is required"}
	}
	if err := checkRange(from, to); err != nil {
		return GeneralLedger{}, err
	}
	key := fmt.Sprintf("gl:%s:%s:%s", headCode, from.Format(dateKey), to.Format(dateKey))
	var cached GeneralLedger
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	headName, opening, lines, err := s.repo.GeneralLedgerData(ctx, headCode, from, to)
	if err != nil {
		return GeneralLedger{}, err
	}
	report := BuildGeneralLedger(headCode, headName, opening, lines)
	s.cache.Set(ctx, key, report)
	return report, nil
}

// CashBook builds the running-balance book over accounts named like Cash.
func (s *Service) CashBook(ctx context.Context, from, to time.Time) (Book, error) {
	return s.book(ctx, "cashbook", "Cash", from, to)
}

// BankBook builds the running-balance book over accounts named like Bank.
func (s *Service) BankBook(ctx context.Context, from, to time.Time) (Book, error) {
	return s.book(ctx, "bankbook", "Bank", from, to)
}

func (s *Service) book(ctx context.Context, name, keyword string, from, to time.Time) (Book, error) {
	if err := checkRange(from, to); err != nil {
		return Book{}, err
	}
	key := fmt.Sprintf("%s:%s:%s", name, from.Format(dateKey), to.Format(dateKey))
	var cached Book
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	codes, names, opening, lines, err := s.repo.BookData(ctx, keyword, from, to)
	if err != nil {
		return Book{}, err
	}
	report := BuildBook(codes, names, opening, lines)
	s.cache.Set(ctx, key, report)
	return report, nil
}

// CashFlow builds the classified cash flow statement over the union of cash
// and bank accounts.
func (s *Service) CashFlow(ctx context.Context, from, to time.Time) (CashFlow, error) {
	if err := checkRange(from, to); err != nil {
		return CashFlow{}, err
	}
	key := fmt.Sprintf("cashflow:%s:%s", from.Format(dateKey), to.Format(dateKey))
	var cached CashFlow
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	opening, lines, err := s.repo.CashFlowData(ctx, from, to)
	if err != nil {
		return CashFlow{}, err
	}
	report := BuildCashFlow(opening, lines)
	s.cache.Set(ctx, key, report)
	return report, nil
}
