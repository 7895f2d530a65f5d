package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-petr/market-ledger/cmd/httpserver"
	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/internal/events"
	"github.com/go-petr/market-ledger/internal/middleware"
	"github.com/go-petr/market-ledger/internal/reportdelivery"
	"github.com/go-petr/market-ledger/internal/reportservice"
	"github.com/go-petr/market-ledger/pkg/configpkg"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print an analytics report",
	Long: `Report loads the last snapshot and prints one analytics report as json.

Examples:
  marketledger report customers
  marketledger report top-items -n 5
  marketledger report spending <buyer-id> --days 7
  marketledger report orders <user-id> --status PAID`,
}

var (
	reportDays   int
	reportN      int
	reportStatus string
)

type query struct {
	short string
	// withID is set for reports about one user.
	withID bool
	run    func(ctx context.Context, e *reportservice.Engine, now time.Time, id string) (any, error)
}

func days(def int) int {
	if reportDays > 0 {
		return reportDays
	}

	return def
}

func topN() int {
	if reportN > 0 {
		return reportN
	}

	return reportdelivery.DefaultTopN
}

var queries = map[string]query{
	"bank-activity": {
		short: "Top ups and withdrawals of the last days",
		run: func(ctx context.Context, e *reportservice.Engine, now time.Time, _ string) (any, error) {
			return e.BankActivity(ctx, now, time.Duration(days(reportdelivery.DefaultActivityDays))*reportservice.Day)
		},
	},
	"cash-flow": {
		short:  "Entries of an owner's account, today unless --days is given",
		withID: true,
		run: func(ctx context.Context, e *reportservice.Engine, now time.Time, id string) (any, error) {
			if reportDays == 0 {
				return e.CashFlowToday(ctx, id, now)
			}

			return e.CashFlow(ctx, id, now, time.Duration(reportDays)*reportservice.Day)
		},
	},
	"customers": {
		short: "Every account owner",
		run: func(ctx context.Context, e *reportservice.Engine, _ time.Time, _ string) (any, error) {
			return e.Customers(ctx)
		},
	},
	"dormant-accounts": {
		short: "Accounts without recent entries",
		run: func(ctx context.Context, e *reportservice.Engine, now time.Time, _ string) (any, error) {
			return e.DormantAccounts(ctx, now)
		},
	},
	"top-users-today": {
		short: "Owners ranked by today's turnover",
		run: func(ctx context.Context, e *reportservice.Engine, now time.Time, _ string) (any, error) {
			return e.TopUsersToday(ctx, now, topN())
		},
	},
	"transactions": {
		short: "Market transactions of the last days",
		run: func(ctx context.Context, e *reportservice.Engine, now time.Time, _ string) (any, error) {
			return e.TransactionsSince(ctx, now, days(reportdelivery.DefaultActivityDays))
		},
	},
	"paid-uncompleted": {
		short: "Transactions paid but not yet completed",
		run: func(ctx context.Context, e *reportservice.Engine, _ time.Time, _ string) (any, error) {
			return e.PaidUncompleted(ctx)
		},
	},
	"top-items": {
		short: "Items ranked by transaction count",
		run: func(ctx context.Context, e *reportservice.Engine, _ time.Time, _ string) (any, error) {
			return e.TopItems(ctx, topN())
		},
	},
	"top-buyers": {
		short: "Buyers ranked by transaction count",
		run: func(ctx context.Context, e *reportservice.Engine, _ time.Time, _ string) (any, error) {
			return e.TopBuyers(ctx, topN())
		},
	},
	"top-sellers": {
		short: "Sellers ranked by transaction count",
		run: func(ctx context.Context, e *reportservice.Engine, _ time.Time, _ string) (any, error) {
			return e.TopSellers(ctx, topN())
		},
	},
	"spending": {
		short:  "What a buyer spent over the last days",
		withID: true,
		run: func(ctx context.Context, e *reportservice.Engine, now time.Time, id string) (any, error) {
			return e.Spending(ctx, id, now, days(reportdelivery.DefaultSpendingDays))
		},
	},
	"orders": {
		short:  "A user's order ids having --status",
		withID: true,
		run: func(ctx context.Context, e *reportservice.Engine, _ time.Time, id string) (any, error) {
			status, err := domain.ParseStatus(reportStatus)
			if err != nil {
				return nil, err
			}

			return e.Orders(ctx, id, status)
		},
	},
	"popular-items": {
		short:  "A seller's items ranked by units sold",
		withID: true,
		run: func(ctx context.Context, e *reportservice.Engine, now time.Time, id string) (any, error) {
			return e.PopularItems(ctx, id, now, topN())
		},
	},
	"loyal-customer": {
		short:  "The buyer who spent most with a seller",
		withID: true,
		run: func(ctx context.Context, e *reportservice.Engine, now time.Time, id string) (any, error) {
			customer, found, err := e.LoyalCustomer(ctx, id, now)
			if err != nil || !found {
				return nil, err
			}

			return customer, nil
		},
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.PersistentFlags().IntVar(&reportDays, "days", 0, "window in days, the report default when 0")
	reportCmd.PersistentFlags().IntVarP(&reportN, "top", "n", 0, "ranking length, the report default when 0")
	reportCmd.PersistentFlags().StringVar(&reportStatus, "status", domain.StatusPaid.String(), "transaction status for orders")

	for name, q := range queries {
		sub := &cobra.Command{
			Use:   name,
			Short: q.short,
			Args:  cobra.NoArgs,
			RunE:  runReport(q),
		}

		if q.withID {
			sub.Use = name + " <id>"
			sub.Args = cobra.ExactArgs(1)
		}

		reportCmd.AddCommand(sub)
	}
}

func runReport(q query) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		config, err := configpkg.Load(configDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger := middleware.CreateLogger(config).Level(zerolog.WarnLevel)
		ctx := logger.WithContext(cmd.Context())

		store, err := httpserver.NewStore(ctx, config)
		if err != nil {
			return err
		}

		server, err := httpserver.New(ctx, logger, config, store, events.Nop{})
		if err != nil {
			store.Close()
			return err
		}
		defer server.Close()

		var id string
		if len(args) > 0 {
			id = args[0]
		}

		out, err := q.run(ctx, server.Reports, time.Now(), id)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(out)
	}
}
