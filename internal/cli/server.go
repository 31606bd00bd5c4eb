package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/clearbid/auctiond/internal/assetledger/memory"
	"github.com/clearbid/auctiond/internal/authz"
	"github.com/clearbid/auctiond/internal/config"
	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/auction"
	grpcserver "github.com/clearbid/auctiond/internal/grpc"
	"github.com/clearbid/auctiond/internal/logging"
	"github.com/clearbid/auctiond/internal/rpc"
	"github.com/clearbid/auctiond/internal/storage/archive"
	"github.com/clearbid/auctiond/internal/storage/archive/postgres"
	"github.com/clearbid/auctiond/internal/storage/archive/sqlite"
	"github.com/clearbid/auctiond/internal/storage/keyValueDb"
	storeleveldb "github.com/clearbid/auctiond/internal/storage/keyValueDb/leveldb"
	storemem "github.com/clearbid/auctiond/internal/storage/keyValueDb/memory"
	storepebble "github.com/clearbid/auctiond/internal/storage/keyValueDb/pebble"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the auction service",
	Long:  `Start the auction engine with its JSON-RPC interface, optional WebSocket event feed, optional gRPC query server and optional settlement archive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	// Running auctiond without a subcommand starts the server.
	rootCmd.RunE = serverCmd.RunE
	rootCmd.SilenceUsage = true
}

func runServer(parent context.Context) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var logDest io.Writer = os.Stderr
	if cfg.DebugLogfile != "" {
		f, err := os.OpenFile(cfg.DebugLogfile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open debug logfile: %w", err)
		}
		defer f.Close()
		logDest = io.MultiWriter(os.Stderr, f)
	}
	lm, err := logging.NewLoggerMaker(logDest, logLevel(cfg.LogLevel))
	if err != nil {
		return err
	}
	log := lm.NewLogger("MAIN")

	if path := cfg.ConfigPath(); path != "" {
		log.Infof("Loaded configuration from %s", path)
	} else {
		log.Infof("No configuration file found, using defaults")
	}

	escrow, err := cfg.EscrowID()
	if err != nil {
		return err
	}
	admins, err := cfg.AdminIDs()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	log.Infof("Auction state database: %s", cfg.Database.Backend)

	store, err := auction.NewStore(db)
	if err != nil {
		return err
	}
	written, err := store.EnsureServiceConfig(parent, cfg.ServiceConfig())
	if err != nil {
		return err
	}
	if written {
		log.Infof("Installed initial auction parameters: fee=%d%% increase=%d%%",
			cfg.Auction.FeeRatePercent, cfg.Auction.BidIncreaseRatePercent)
	}

	auth, err := buildAuthorizer(cfg, admins)
	if err != nil {
		return err
	}
	log.Infof("Admin authorization mode: %s", cfg.Auth.Mode)

	notifiers := auction.MultiNotifier{
		auction.LogNotifier{Log: lm.NewLogger("EVNT")},
	}

	var feed *rpc.Feed
	if cfg.RPC.EnableEvents {
		feed = rpc.NewFeed(lm.NewLogger("FEED"))
		defer feed.Close()
		notifiers = append(notifiers, feed)
	}

	archiver, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("failed to open settlement archive: %w", err)
	}
	if archiver != nil {
		defer archiver.Close()
		log.Infof("Settlement archive: %s", cfg.Archive.Backend)
		notifiers = append(notifiers, archive.NewNotifier(archiver, nil, lm.NewLogger("ARCH")))
	}

	funds := memory.NewFungibleLedger(escrow)
	assets := memory.NewNonFungibleLedger()

	var fees auction.FeePolicy
	if cfg.Auction.ExemptionAsset != "" {
		// Holders of the exemption asset pay no refund fee. Its
		// balances live on their own ledger, separate from deposits.
		fees = auction.ExemptFeePolicy{Holdings: memory.NewFungibleLedger(escrow)}
		log.Infof("Fee exemption active for holders of %q", cfg.Auction.ExemptionAsset)
	}

	engine, err := auction.NewEngine(auction.Params{
		Store:  store,
		Funds:  funds,
		Assets: assets,
		Fees:   fees,
		Auth:   auth,
		Notify: notifiers,
		Escrow: escrow,
		Logger: lm.NewLogger("AUCT"),
	})
	if err != nil {
		return err
	}

	rpcServer := rpc.NewServer(rpc.Deps{
		Engine:  engine,
		Archive: archiver,
	}, time.Duration(cfg.RPC.TimeoutSeconds)*time.Second, lm.NewLogger("RPC"))

	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	mux.Handle("/rpc", rpcServer)
	if feed != nil {
		mux.Handle("/events", feed)
	}
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})
	httpServer := &http.Server{
		Addr:    cfg.RPC.Address,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("JSON-RPC server listening on %s", cfg.RPC.Address)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if cfg.GRPC.Enabled {
		gcfg := grpcserver.DefaultServerConfig()
		gcfg.Address = cfg.GRPC.Address
		gsrv, err := grpcserver.NewServer(gcfg, engine, lm.NewLogger("GRPC"))
		if err != nil {
			return err
		}
		g.Go(func() error {
			return gsrv.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			gsrv.Stop()
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Infof("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	log.Infof("auctiond started, escrow account %s", escrow)
	err = g.Wait()
	log.Infof("auctiond stopped")
	return err
}

// openDatabase opens the auction state store named by the configuration.
func openDatabase(cfg *config.Config) (keyValueDb.DB, error) {
	switch cfg.Database.Backend {
	case "memory":
		return storemem.NewDB(), nil
	case "pebble":
		return storepebble.Open(cfg.Database.Path)
	case "leveldb":
		return storeleveldb.Open(cfg.Database.Path)
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
}

// openArchive opens the settlement archive, or returns nil when archiving is
// disabled.
func openArchive(cfg *config.Config) (archive.Archiver, error) {
	switch cfg.Archive.Backend {
	case "", "none":
		return nil, nil
	case "sqlite":
		return sqlite.Open(cfg.Archive.Path)
	case "postgres":
		return postgres.Open(cfg.Archive.DSN)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Archive.Backend)
	}
}

// buildAuthorizer assembles the admin authorizer for the configured mode.
func buildAuthorizer(cfg *config.Config, admins []account.ID) (auction.Authorizer, error) {
	switch cfg.Auth.Mode {
	case "static":
		return authz.NewStaticAuthorizer(admins...), nil
	case "sig":
		return authz.NewSigAuthorizer(admins...), nil
	case "delayed":
		inner := authz.NewStaticAuthorizer(admins...)
		delay := time.Duration(cfg.Auth.DelaySeconds) * time.Second
		return authz.NewDelayedAuthorizer(inner, delay, nil), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}
