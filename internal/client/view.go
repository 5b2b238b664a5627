package client

import (
	"context"
	"net/url"
	"strconv"

	"moneymigo/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Filters mirrors the list/stats query parameters. Zero values are omitted.
type Filters struct {
	StartDate string
	EndDate   string
	Month     int
	Year      int
	Purpose   string
}

func (f Filters) Values() url.Values {
	q := url.Values{}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	if f.Month != 0 {
		q.Set("month", strconv.Itoa(f.Month))
	}
	if f.Year != 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}
	if f.Purpose != "" {
		q.Set("purpose", f.Purpose)
	}
	return q
}

// View is the client-side state of the transactions screen. Every change of
// selection or successful mutation is followed by Refresh.
type View struct {
	api *Client

	Filters          Filters
	SortOrder        string
	IncludeWithdrawn bool

	Transactions []models.Transaction
	Stats        models.TransactionStats
	PaymentTypes []models.PaymentType
}

func NewView(api *Client) *View {
	return &View{api: api, SortOrder: "desc"}
}

func (v *View) ListQuery() url.Values {
	q := v.Filters.Values()
	if v.SortOrder == "asc" {
		q.Set("sortOrder", "asc")
	} else {
		q.Set("sortOrder", "desc")
	}
	if v.IncludeWithdrawn {
		q.Set("includeWithdrawn", "true")
	}
	return q
}

// Refresh re-fetches transactions, stats and payment types. The view keeps
// its previous data when any call fails.
func (v *View) Refresh(ctx context.Context) error {
	var (
		txs   []models.Transaction
		stats models.TransactionStats
		types []models.PaymentType
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = v.api.ListTransactions(gctx, v.ListQuery())
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = v.api.Stats(gctx, v.Filters.Values())
		return err
	})
	g.Go(func() error {
		var err error
		types, err = v.api.ListPaymentTypes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	v.Transactions, v.Stats, v.PaymentTypes = txs, stats, types
	return nil
}

func (v *View) SetFilters(ctx context.Context, f Filters) error {
	v.Filters = f
	return v.Refresh(ctx)
}

func (v *View) ToggleSort(ctx context.Context) error {
	if v.SortOrder == "asc" {
		v.SortOrder = "desc"
	} else {
		v.SortOrder = "asc"
	}
	return v.Refresh(ctx)
}

func (v *View) Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	t, err := v.api.CreateTransaction(ctx, in)
	if err != nil {
		return t, err
	}
	return t, v.Refresh(ctx)
}

func (v *View) Update(ctx context.Context, id int64, in models.TransactionInput) (models.Transaction, error) {
	t, err := v.api.UpdateTransaction(ctx, id, in)
	if err != nil {
		return t, err
	}
	return t, v.Refresh(ctx)
}

func (v *View) Delete(ctx context.Context, id int64) error {
	if err := v.api.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	return v.Refresh(ctx)
}

// InvestmentSummary is the total and count of open investments.
type InvestmentSummary struct {
	TotalInvested decimal.Decimal
	Count         int
}

func SummarizeInvestments(txs []models.Transaction) InvestmentSummary {
	var s InvestmentSummary
	for _, t := range txs {
		if t.Withdrawn {
			continue
		}
		s.TotalInvested = s.TotalInvested.Add(t.Amount)
		s.Count++
	}
	return s
}

// Investments is the investments screen: purpose fixed to investment, with
// a toggle to show withdrawn rows.
type Investments struct {
	api *Client

	ShowWithdrawn bool

	Items   []models.Transaction
	Summary InvestmentSummary
}

func NewInvestments(api *Client) *Investments {
	return &Investments{api: api}
}

func (iv *Investments) Refresh(ctx context.Context) error {
	q := url.Values{"purpose": {models.PurposeInvestment}}
	if iv.ShowWithdrawn {
		q.Set("includeWithdrawn", "true")
	}

	items, err := iv.api.ListTransactions(ctx, q)
	if err != nil {
		return err
	}
	iv.Items = items
	iv.Summary = SummarizeInvestments(items)
	return nil
}

func (iv *Investments) Withdraw(ctx context.Context, id int64) error {
	if err := iv.api.Withdraw(ctx, id); err != nil {
		return err
	}
	return iv.Refresh(ctx)
}

func (iv *Investments) Reopen(ctx context.Context, id int64) error {
	if err := iv.api.Reopen(ctx, id); err != nil {
		return err
	}
	return iv.Refresh(ctx)
}
