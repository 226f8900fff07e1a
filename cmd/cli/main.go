package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cloud.google.com/go/civil"

	"github.com/moneyapps/ledger/internal/auth"
	"github.com/moneyapps/ledger/internal/currency"
	"github.com/moneyapps/ledger/internal/domain"
	"github.com/moneyapps/ledger/internal/importer"
	infraBQ "github.com/moneyapps/ledger/internal/infra/bigquery"
	"github.com/moneyapps/ledger/internal/infra/sqlite"
	"github.com/moneyapps/ledger/internal/ledger"
	"github.com/moneyapps/ledger/internal/logger"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "register":
		runRegister(log)
	case "login":
		runLogin(log)
	case "account-add":
		runAccountAdd(log)
	case "accounts":
		runAccounts(log)
	case "tx-add":
		runTxAdd(log)
	case "transactions":
		runTransactions(log)
	case "import":
		runImport(log)
	case "metrics":
		runMetrics(log)
	case "breakdown":
		runBreakdown(log)
	case "networth":
		runNetWorth(log)
	case "recommend":
		runRecommend(log)
	case "rates":
		runRates(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Ledger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  register      Register a new user")
	fmt.Println("  login         Verify a user's credentials")
	fmt.Println("  account-add   Create an account for a user")
	fmt.Println("  accounts      List a user's accounts")
	fmt.Println("  tx-add        Record an income or expense transaction")
	fmt.Println("  transactions  List an account's transactions")
	fmt.Println("  import        Import a bank statement CSV into an account")
	fmt.Println("  metrics       Show a month's financial metrics")
	fmt.Println("  breakdown     Show a month's expense-category breakdown")
	fmt.Println("  networth      Show net worth in a target currency")
	fmt.Println("  recommend     Show a recommendation for a month")
	fmt.Println("  rates         Show the built-in exchange rates")
	fmt.Println("  help          Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
	fmt.Println("\nStorage: pass -db PATH for SQLite (default ledger.db), or -project ID for BigQuery.")
}

// storeFlags adds the shared storage flags to a command's flag set.
func storeFlags(fs *flag.FlagSet) (dbPath, project, dataset *string) {
	dbPath = fs.String("db", envOr("LEDGER_DB", "ledger.db"), "SQLite database path")
	project = fs.String("project", os.Getenv("GCP_PROJECT"), "GCP project; when set, BigQuery is used instead of SQLite")
	dataset = fs.String("dataset", envOr("BQ_DATASET", "ledger"), "BigQuery dataset name")
	return dbPath, project, dataset
}

type backend struct {
	accounts ledger.AccountStore
	txs      ledger.TransactionStore
	users    auth.UserStore
	runs     importer.RunStore
	close    func() error
}

func openBackend(ctx context.Context, dbPath, project, dataset string, log zerolog.Logger) (*backend, error) {
	if project != "" {
		client, err := infraBQ.NewClient(ctx, project, dataset)
		if err != nil {
			return nil, err
		}
		return &backend{
			accounts: infraBQ.NewAccountStore(client),
			txs:      infraBQ.NewTransactionStore(client),
			users:    infraBQ.NewUserStore(client),
			runs:     infraBQ.NewRunStore(client, log),
			close:    client.Close,
		}, nil
	}

	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &backend{
		accounts: sqlite.NewAccountStore(db),
		txs:      sqlite.NewTransactionStore(db),
		users:    sqlite.NewUserStore(db),
		runs:     sqlite.NewRunStore(db, log),
		close:    db.Close,
	}, nil
}

func mustBackend(ctx context.Context, dbPath, project, dataset string, log zerolog.Logger) *backend {
	b, err := openBackend(ctx, dbPath, project, dataset, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	return b
}

func (b *backend) ledgerService(log zerolog.Logger) *ledger.Service {
	return ledger.NewService(b.accounts, b.txs, currency.NewConverter(), log)
}

func runRegister(log zerolog.Logger) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	dbPath, project, dataset := storeFlags(fs)
	username := fs.String("username", "", "Username")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (at least 6 characters)")
	cur := fs.String("currency", currency.BaseCurrency, "Base currency code")
	fs.Parse(os.Args[2:])

	if *username == "" || *password == "" {
		log.Fatal().Msg("Usage: cli register -username NAME -password PASS [-email ADDR] [-currency CODE]")
	}

	ctx := context.Background()
	b := mustBackend(ctx, *dbPath, *project, *dataset, log)
	defer b.close()

	user, err := auth.NewService(b.users, log).Register(ctx, *username, *email, *password, *cur)
	if err != nil {
		log.Fatal().Err(err).Msg("Registration failed")
	}

	fmt.Printf("Registered user %q with id %d\n", user.Username, user.ID)
}

func runLogin(log zerolog.Logger) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	dbPath, project, dataset := storeFlags(fs)
	username := fs.String("username", "", "Username")
	password := fs.String("password", "", "Password")
	fs.Parse(os.Args[2:])

	if *username == "" || *password == "" {
		log.Fatal().Msg("Usage: cli login -username NAME -password PASS")
	}

	ctx := context.Background()
	b := mustBackend(ctx, *dbPath, *project, *dataset, log)
	defer b.close()

	user, err := auth.NewService(b.users, log).Login(ctx, *username, *password)
	if err != nil {
		log.Fatal().Err(err).Msg("Login failed")
	}

	fmt.Printf("Logged in as %q (user id %d, base currency %s)\n", user.Username, user.ID, user.BaseCurrency)
}

func runAccountAdd(log zerolog.Logger) {
	fs := flag.NewFlagSet("account-add", flag.ExitOnError)
	dbPath, project, dataset := storeFlags(fs)
	userID := fs.Int64("user", 0, "Owning user ID")
	name := fs.String("name", "", "Account name")
	accountType := fs.String("type", string(domain.AccountChecking), "Account type: CHECKING, SAVINGS, CREDIT_CARD, INVESTMENT, CASH")
	balance := fs.String("balance", "0", "Opening balance")
	cur := fs.String("currency", currency.BaseCurrency, "Account currency code")
	fs.Parse(os.Args[2:])

	if *userID == 0 || *name == "" {
		log.Fatal().Msg("Usage: cli account-add -user ID -name NAME [-type TYPE] [-balance AMOUNT] [-currency CODE]")
	}

	amount, err := decimal.NewFromString(*balance)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid balance")
	}
	parsedType, err := domain.ParseAccountType(strings.ToUpper(*accountType))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid account type")
	}

	ctx := context.Background()
	b := mustBackend(ctx, *dbPath, *project, *dataset, log)
	defer b.close()

	account, err := b.ledgerService(log).CreateAccount(ctx, &domain.Account{
		UserID:    *userID,
		Name:      *name,
		Type:      parsedType,
		Balance:   domain.Money{Amount: amount, Currency: *cur},
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create account")
	}

	fmt.Printf("Created account %d: %s (%s) %s\n", account.ID, account.Name, account.Type, account.Balance)
}

func runAccounts(log zerolog.Logger) {
	fs := flag.NewFlagSet("accounts", flag.ExitOnError)
	dbPath, project, dataset := storeFlags(fs)
	userID := fs.Int64("user", 0, "User ID")
	fs.Parse(os.Args[2:])

	if *userID == 0 {
		log.Fatal().Msg("Usage: cli accounts -user ID")
	}

	ctx := context.Background()
	b := mustBackend(ctx, *dbPath, *project, *dataset, log)
	defer b.close()

	accounts, err := b.ledgerService(log).AccountsByUser(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list accounts")
	}

	if len(accounts) == 0 {
		fmt.Println("No accounts.")
		return
	}
	for _, a := range accounts {
		fmt.Printf("%4d  %-24s %-12s %s\n", a.ID, a.Name, a.Type, a.Balance)
	}
}

func runTxAdd(log zerolog.Logger) {
	fs := flag.NewFlagSet("tx-add", flag.ExitOnError)
	dbPath, project, dataset := storeFlags(fs)
	userID := fs.Int64("user", 0, "User ID")
	accountID := fs.Int64("account", 0, "Account ID")
	txType := fs.String("type", string(domain.TransactionExpense), "INCOME or EXPENSE")
	amount := fs.String("amount", "", "Amount (positive)")
	category := fs.String("category", "", "Category name")
	date := fs.String("date", civil.DateOf(time.Now()).String(), "Date as YYYY-MM-DD")
	desc := fs.String("desc", "", "Description")
	notes := fs.String("notes", "", "Free-form notes")
	fs.Parse(os.Args[2:])

	if *userID == 0 || *accountID == 0 || *amount == "" || *category == "" {
		log.Fatal().Msg("Usage: cli tx-add -user ID -account ID -amount N -category NAME [-type INCOME|EXPENSE] [-date YYYY-MM-DD]")
	}

	value, err := decimal.NewFromString(*amount)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid amount")
	}
	day, err := civil.ParseDate(*date)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid date")
	}

	parsedType, err := domain.ParseTransactionType(strings.ToUpper(*txType))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid transaction type")
	}
	canonical, err := importer.NewCategoryValidator().Validate(parsedType, *category)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid category")
	}

	ctx := context.Background()
	b := mustBackend(ctx, *dbPath, *project, *dataset, log)
	defer b.close()

	account, err := b.ledgerService(log).ApplyTransaction(ctx, &domain.Transaction{
		UserID:      *userID,
		AccountID:   *accountID,
		Description: *desc,
		Amount:      value,
		Type:        parsedType,
		Category:    canonical,
		Date:        day,
		Notes:       *notes,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to apply transaction")
	}

	fmt.Printf("Recorded %s of %s. New balance: %s\n", parsedType, value, account.Balance)
}

func runTransactions(log zerolog.Logger) {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	dbPath, project, dataset := storeFlags(fs)
	accountID := fs.Int64("account", 0, "Account ID")
	fs.Parse(os.Args[2:])

	if *accountID == 0 {
		log.Fatal().Msg("Usage: cli transactions -account ID")
	}

	ctx := context.Background()
	b := mustBackend(ctx, *dbPath, *project, *dataset, log)
	defer b.close()

	txs, err := b.ledgerService(log).AccountTransactions(ctx, *accountID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list transactions")
	}

	if len(txs) == 0 {
		fmt.Println("No transactions.")
		return
	}
	for _, tx := range txs {
		fmt.Printf("%s  %-7s %12s  %-22s %s\n", tx.Date, tx.Type, tx.Amount.StringFixed(2), tx.Category, tx.Description)
	}
}

func runImport(log zerolog.Logger) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dbPath, project, dataset := storeFlags(fs)
	userID := fs.Int64("user", 0, "User ID")
	accountID := fs.Int64("account", 0, "Target account ID")
	file := fs.String("file", "", "Path to the statement CSV")
	year := fs.Int("year", time.Now().Year(), "Statement year for day-month dates")
	categorize := fs.Bool("categorize", false, "Interactively categorize each imported transaction")
	suggest := fs.Bool("suggest", false, "Use Gemini to suggest categories for imported transactions")
	fs.Parse(os.Args[2:])

	if *userID == 0 || *accountID == 0 || *file == "" {
		log.Fatal().Msg("Usage: cli import -user ID -account ID -file PATH [-year YYYY] [-categorize] [-suggest]")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open statement file")
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	b := mustBackend(ctx, *dbPath, *project, *dataset, log)
	defer b.close()

	converter := currency.NewConverter()
	svc := ledger.NewService(b.accounts, b.txs, converter, log)
	imp := importer.New(svc, b.runs, nil, converter, log)

	switch {
	case *categorize:
		imp.WithCategorizer(interactiveCategorizer(os.Stdin, os.Stdout))
	case *suggest:
		suggester, err := importer.NewSuggester(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create suggester")
		}
		imp.WithCategorizer(suggester.Suggest)
	}

	result, err := imp.ImportReader(ctx, *userID, *accountID, *year, f)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	fmt.Printf("Parsed %d rows: imported %d, skipped %d\n", result.Parsed, result.Imported, result.Skipped)
}

// interactiveCategorizer prompts for a category per transaction. An empty
// answer keeps the review category.
func interactiveCategorizer(in *os.File, out *os.File) importer.CategorizeFunc {
	reader := bufio.NewReader(in)
	validator := importer.NewCategoryValidator()

	return func(ctx context.Context, txType domain.TransactionType, description string) (string, error) {
		fmt.Fprintf(out, "\n%s: %s\n", txType, description)
		fmt.Fprintf(out, "Categories: %s\n", strings.Join(domain.CategoriesFor(txType), ", "))
		for {
			fmt.Fprint(out, "Category (blank to review later): ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return "", err
			}
			line = strings.TrimSpace(line)
			if line == "" {
				return "", nil
			}
			canonical, err := validator.Validate(txType, line)
			if err != nil {
				fmt.Fprintln(out, "Not a valid category, try again.")
				continue
			}
			return canonical, nil
		}
	}
}

func runMetrics(log zerolog.Logger) {
	fs := flag.NewFlagSet("metrics", flag.ExitOnError)
	dbPath, project, dataset := storeFlags(fs)
	userID := fs.Int64("user", 0, "User ID")
	year := fs.Int("year", time.Now().Year(), "Year")
	month := fs.Int("month", int(time.Now().Month()), "Month (1-12)")
	fs.Parse(os.Args[2:])

	if *userID == 0 {
		log.Fatal().Msg("Usage: cli metrics -user ID [-year YYYY] [-month M]")
	}

	ctx := context.Background()
	b := mustBackend(ctx, *dbPath, *project, *dataset, log)
	defer b.close()

	metrics, err := b.ledgerService(log).MonthlyMetrics(ctx, *userID, *year, time.Month(*month))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compute metrics")
	}

	fmt.Printf("Metrics for %04d-%02d:\n", *year, *month)
	fmt.Printf("  Total income:    %s\n", metrics.TotalIncome.StringFixed(2))
	fmt.Printf("  Total expenses:  %s\n", metrics.TotalExpenses.StringFixed(2))
	fmt.Printf("  Net cash flow:   %s\n", metrics.NetCashFlow.StringFixed(2))
	fmt.Printf("  Savings rate:    %s%%\n", metrics.SavingsRate)
	fmt.Printf("  Expense/income:  %s%%\n", metrics.ExpenseToIncomeRatio)
}

func runBreakdown(log zerolog.Logger) {
	fs := flag.NewFlagSet("breakdown", flag.ExitOnError)
	dbPath, project, dataset := storeFlags(fs)
	userID := fs.Int64("user", 0, "User ID")
	accountID := fs.Int64("account", 0, "Restrict to one account (0 = all)")
	year := fs.Int("year", time.Now().Year(), "Year")
	month := fs.Int("month", int(time.Now().Month()), "Month (1-12)")
	fs.Parse(os.Args[2:])

	if *userID == 0 {
		log.Fatal().Msg("Usage: cli breakdown -user ID [-account ID] [-year YYYY] [-month M]")
	}

	ctx := context.Background()
	b := mustBackend(ctx, *dbPath, *project, *dataset, log)
	defer b.close()

	breakdown, err := b.ledgerService(log).CategoryBreakdown(ctx, *userID, *year, time.Month(*month), *accountID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compute breakdown")
	}

	fmt.Println(breakdown)
}

func runNetWorth(log zerolog.Logger) {
	fs := flag.NewFlagSet("networth", flag.ExitOnError)
	dbPath, project, dataset := storeFlags(fs)
	userID := fs.Int64("user", 0, "User ID")
	cur := fs.String("currency", currency.BaseCurrency, "Target currency code")
	fs.Parse(os.Args[2:])

	if *userID == 0 {
		log.Fatal().Msg("Usage: cli networth -user ID [-currency CODE]")
	}

	ctx := context.Background()
	b := mustBackend(ctx, *dbPath, *project, *dataset, log)
	defer b.close()

	worth, err := b.ledgerService(log).NetWorth(ctx, *userID, *cur)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compute net worth")
	}

	fmt.Printf("Net worth: %s\n", worth)
}

func runRecommend(log zerolog.Logger) {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	dbPath, project, dataset := storeFlags(fs)
	userID := fs.Int64("user", 0, "User ID")
	year := fs.Int("year", time.Now().Year(), "Year")
	month := fs.Int("month", int(time.Now().Month()), "Month (1-12)")
	fs.Parse(os.Args[2:])

	if *userID == 0 {
		log.Fatal().Msg("Usage: cli recommend -user ID [-year YYYY] [-month M]")
	}

	ctx := context.Background()
	b := mustBackend(ctx, *dbPath, *project, *dataset, log)
	defer b.close()

	message, err := b.ledgerService(log).Recommendation(ctx, *userID, *year, time.Month(*month))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate recommendation")
	}

	fmt.Println(message)
}

func runRates(log zerolog.Logger) {
	fs := flag.NewFlagSet("rates", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	rates := currency.NewConverter().Rates()
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	fmt.Printf("Exchange rates (units of %s per 1 unit):\n", currency.BaseCurrency)
	for _, code := range codes {
		fmt.Printf("  %s: %s\n", code, rates[code])
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
