package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"moneymigo/internal/client"
	"moneymigo/internal/models"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

const usage = `Usage: moneymigo <command> [flags]

Commands:
  list           list transactions (-start defaults to this month -end -month -year -purpose -sort -withdrawn)
  stats          income, expense and balance for the same filters
  add            create a transaction (-type -amount -date -purpose -description -payment)
  edit           replace a transaction (-id plus the add flags)
  delete         delete a transaction (-id, -yes to skip the prompt)
  withdraw       mark an investment withdrawn (-id)
  reopen         reopen a withdrawn investment (-id)
  investments    open investments with total and count (-withdrawn)
  payment-types  list | add <name> | delete <id>
  health         check the API

The API base URL comes from MONEYMIGO_API_URL (default ` + client.DefaultBaseURL + `).`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	api := client.New(os.Getenv("MONEYMIGO_API_URL"), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, api, os.Args[1], os.Args[2:], os.Stdin, os.Stdout); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, api *client.Client, cmd string, args []string, in io.Reader, out io.Writer) error {
	switch cmd {
	case "list":
		return listCmd(ctx, api, args, out)
	case "stats":
		return statsCmd(ctx, api, args, out)
	case "add":
		return addCmd(ctx, api, args, out)
	case "edit":
		return editCmd(ctx, api, args, out)
	case "delete":
		return deleteCmd(ctx, api, args, in, out)
	case "withdraw", "reopen":
		return toggleCmd(ctx, api, cmd, args, out)
	case "investments":
		return investmentsCmd(ctx, api, args, out)
	case "payment-types":
		return paymentTypesCmd(ctx, api, args, out)
	case "health":
		status, err := api.Health(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, status)
		return nil
	default:
		fmt.Fprintln(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

type filterFlags struct {
	filters   client.Filters
	sort      string
	withdrawn bool
}

func bindFilters(fs *flag.FlagSet) *filterFlags {
	ff := &filterFlags{}
	fs.StringVar(&ff.filters.StartDate, "start", monthStart(time.Now()), "start date YYYY-MM-DD (inclusive, -start= for all history)")
	fs.StringVar(&ff.filters.EndDate, "end", "", "end date YYYY-MM-DD (inclusive)")
	fs.IntVar(&ff.filters.Month, "month", 0, "calendar month 1-12")
	fs.IntVar(&ff.filters.Year, "year", 0, "calendar year")
	fs.StringVar(&ff.filters.Purpose, "purpose", "", "exact purpose")
	fs.StringVar(&ff.sort, "sort", "desc", "asc or desc")
	fs.BoolVar(&ff.withdrawn, "withdrawn", false, "include withdrawn investments")
	return ff
}

// monthStart is the first day of now's month, the default lower bound of a
// listing.
func monthStart(now time.Time) string {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
}

func listCmd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	ff := bindFilters(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	v := client.NewView(api)
	v.Filters, v.SortOrder, v.IncludeWithdrawn = ff.filters, ff.sort, ff.withdrawn
	if err := v.Refresh(ctx); err != nil {
		return err
	}

	printTransactions(out, v.Transactions)
	printStats(out, v.Stats)
	return nil
}

func statsCmd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	ff := bindFilters(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	stats, err := api.Stats(ctx, ff.filters.Values())
	if err != nil {
		return err
	}
	printStats(out, stats)
	return nil
}

type formFlags struct {
	txType      string
	amount      string
	date        string
	purpose     string
	description string
	payment     string
}

func bindForm(fs *flag.FlagSet) *formFlags {
	f := &formFlags{}
	fs.StringVar(&f.txType, "type", models.TypeExpense, "income or expense")
	fs.StringVar(&f.amount, "amount", "", "amount, e.g. 250.00")
	fs.StringVar(&f.date, "date", time.Now().Format("2006-01-02"), "transaction date YYYY-MM-DD")
	fs.StringVar(&f.purpose, "purpose", "", "purpose, e.g. groceries or investment")
	fs.StringVar(&f.description, "description", "", "free text")
	fs.StringVar(&f.payment, "payment", "cash", "payment type name")
	return f
}

func (f *formFlags) input() (models.TransactionInput, error) {
	amount, err := decimal.NewFromString(f.amount)
	if err != nil {
		return models.TransactionInput{}, fmt.Errorf("invalid amount %q", f.amount)
	}
	in := models.TransactionInput{
		Type:            f.txType,
		Amount:          &amount,
		TransactionDate: f.date,
		PaymentType:     f.payment,
	}
	if f.purpose != "" {
		in.Purpose = &f.purpose
	}
	if f.description != "" {
		in.Description = &f.description
	}
	return in, nil
}

func addCmd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	form := bindForm(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	in, err := form.input()
	if err != nil {
		return err
	}

	t, err := client.NewView(api).Create(ctx, in)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "Created transaction %d\n", t.ID)
	return nil
}

func editCmd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	id := fs.Int64("id", 0, "transaction id")
	form := bindForm(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id < 1 {
		return errors.New("-id is required")
	}

	in, err := form.input()
	if err != nil {
		return err
	}

	if _, err := client.NewView(api).Update(ctx, *id, in); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "Updated transaction %d\n", *id)
	return nil
}

func deleteCmd(ctx context.Context, api *client.Client, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.Int64("id", 0, "transaction id")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id < 1 {
		return errors.New("-id is required")
	}

	if !*yes {
		ok, err := confirm(in, out, fmt.Sprintf("Are you sure you want to delete transaction %d?", *id))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled")
			return nil
		}
	}

	if err := client.NewView(api).Delete(ctx, *id); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "Deleted transaction %d\n", *id)
	return nil
}

// confirm blocks on a y/N answer. Piped input without -yes is refused so a
// script never deletes by accident.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, errors.New("refusing to delete without a terminal; pass -yes")
	}

	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func toggleCmd(ctx context.Context, api *client.Client, cmd string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	id := fs.Int64("id", 0, "transaction id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id < 1 {
		return errors.New("-id is required")
	}

	iv := client.NewInvestments(api)
	var err error
	if cmd == "withdraw" {
		err = iv.Withdraw(ctx, *id)
	} else {
		err = iv.Reopen(ctx, *id)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Investment %d %s\n", *id, map[string]string{"withdraw": "withdrawn", "reopen": "reopened"}[cmd])
	printInvestmentSummary(out, iv.Summary)
	return nil
}

func investmentsCmd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("investments", flag.ContinueOnError)
	withdrawn := fs.Bool("withdrawn", false, "show withdrawn investments too")
	if err := fs.Parse(args); err != nil {
		return err
	}

	iv := client.NewInvestments(api)
	iv.ShowWithdrawn = *withdrawn
	if err := iv.Refresh(ctx); err != nil {
		return err
	}

	printTransactions(out, iv.Items)
	printInvestmentSummary(out, iv.Summary)
	return nil
}

func paymentTypesCmd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		types, err := api.ListPaymentTypes(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tDEFAULT")
		for _, pt := range types {
			fmt.Fprintf(tw, "%d\t%s\t%t\n", pt.ID, pt.Name, pt.IsDefault)
		}
		return tw.Flush()
	case "add":
		if len(args) < 2 {
			return errors.New("usage: payment-types add <name>")
		}
		pt, err := api.AddPaymentType(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(out, "Added payment type %q (id %d)\n", pt.Name, pt.ID)
		return nil
	case "delete":
		if len(args) < 2 {
			return errors.New("usage: payment-types delete <id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}
		if err := api.DeletePaymentType(ctx, id); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(out, "Deleted payment type %d\n", id)
		return nil
	default:
		return fmt.Errorf("unknown payment-types command %q", sub)
	}
}

func printTransactions(out io.Writer, txs []models.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(out, "No transactions found")
		return
	}

	income := color.New(color.FgGreen).SprintFunc()
	expense := color.New(color.FgRed).SprintFunc()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tPURPOSE\tPAYMENT\tDESCRIPTION")
	for _, t := range txs {
		amount := t.Amount.StringFixed(2)
		if t.Type == models.TypeIncome {
			amount = income(amount)
		} else {
			amount = expense(amount)
		}
		purpose := deref(t.Purpose)
		if t.Withdrawn {
			purpose += " (withdrawn)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.TransactionDate, t.Type, amount, purpose, t.PaymentType, deref(t.Description))
	}
	tw.Flush()
}

func printStats(out io.Writer, s models.TransactionStats) {
	fmt.Fprintf(out, "Income: %s  Expense: %s  Balance: %s\n",
		color.GreenString(s.TotalIncome.StringFixed(2)),
		color.RedString(s.TotalExpense.StringFixed(2)),
		s.Balance.StringFixed(2))
}

func printInvestmentSummary(out io.Writer, s client.InvestmentSummary) {
	fmt.Fprintf(out, "Total invested: %s across %d open investments\n", s.TotalInvested.StringFixed(2), s.Count)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
