// Command billing runs the restaurant billing API and its companion CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"restaurant-billing/internal/billno"
	"restaurant-billing/internal/config"
	"restaurant-billing/internal/database"
	"restaurant-billing/internal/logger"
	"restaurant-billing/internal/menu"
	"restaurant-billing/internal/messaging"
	"restaurant-billing/internal/metrics"
	"restaurant-billing/internal/receipt"
	"restaurant-billing/internal/services/billing"
	"restaurant-billing/internal/store"
)

var rootFlags struct {
	configFile string
	envFile    string
	storage    string
}

var rootCmd = &cobra.Command{
	Use:           "billing",
	Short:         "restaurant point-of-sale billing",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configFile, "config", "config.yaml", "path to the YAML config file")
	pf.StringVar(&rootFlags.envFile, "env-file", ".env", "dotenv file loaded before the config")
	pf.StringVar(&rootFlags.storage, "storage", "", "override billing.storage (postgres or memory)")

	rootCmd.AddCommand(
		serveCmd,
		migrateCmd,
		notifyCmd,
		menuCmd,
		quoteCmd,
		billCmd,
		customersCmd,
		ordersCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every command needs, built from the config file.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	catalog *menu.Catalog

	db        *database.DB
	conn      *messaging.Connection
	publisher *messaging.Publisher
}

// loadApp reads .env and the config file and builds the logger and menu.
func loadApp(service string, logOut io.Writer) (*app, error) {
	if err := godotenv.Load(rootFlags.envFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "load %s", rootFlags.envFile)
	}

	cfg, err := config.Load(rootFlags.configFile)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if rootFlags.storage != "" {
		cfg.Billing.Storage = rootFlags.storage
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	catalog := menu.Default()
	if cfg.Billing.MenuFile != "" {
		if catalog, err = menu.LoadFile(cfg.Billing.MenuFile); err != nil {
			return nil, errors.Wrap(err, "load menu")
		}
	}

	return &app{
		cfg:     cfg,
		log:     logger.NewWithWriter(service, cfg.Log.Level, logOut),
		catalog: catalog,
	}, nil
}

// openDB connects to Postgres and applies pending migrations.
func (a *app) openDB(ctx context.Context) (*database.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.New(ctx, a.cfg, a.log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize database")
	}
	a.log.Info("db_connected", "Connected to PostgreSQL database", "startup", nil)

	if err := db.RunMigrations(ctx, database.Migrations()); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to run migrations")
	}
	a.db = db
	return db, nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	if a.cfg.Billing.Storage == "memory" {
		return store.NewMemory(), nil
	}
	db, err := a.openDB(ctx)
	if err != nil {
		return nil, err
	}
	return store.NewPostgres(db), nil
}

// openMessaging connects to RabbitMQ when it is enabled; otherwise it is a no-op.
func (a *app) openMessaging(ctx context.Context) error {
	if !a.cfg.RabbitMQ.Enabled || a.conn != nil {
		return nil
	}
	conn, err := messaging.New(ctx, a.cfg, a.log)
	if err != nil {
		return errors.Wrap(err, "failed to initialize messaging")
	}
	a.log.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", nil)
	a.conn = conn
	a.publisher = messaging.NewPublisher(conn, a.log)
	return nil
}

// newService wires the billing service over the configured store.
func (a *app) newService(ctx context.Context, m *metrics.Metrics) (*billing.Service, error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.openMessaging(ctx); err != nil {
		return nil, err
	}

	opts := []billing.Option{
		billing.WithHeader(receipt.HeaderFromConfig(a.cfg.Restaurant)),
	}
	if a.publisher != nil {
		opts = append(opts, billing.WithPublisher(a.publisher))
	}
	if m != nil {
		opts = append(opts, billing.WithMetrics(m))
	}

	numbers := billno.New(billno.Hardened(a.cfg.Billing.HardenedBillNumbers))
	return billing.NewService(st, a.catalog, numbers, a.log, opts...), nil
}

func (a *app) Close() {
	if a.conn != nil {
		a.conn.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
