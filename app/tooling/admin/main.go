// This program performs offline inspection of the ledger storage.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powledger/app/tooling/admin/commands"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage"
	"github.com/ardanlabs/powledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args        conf.Args
		GenesisPath string `conf:"help:genesis settings file, built in settings when empty"`
		Storage     string `conf:"default:disk,help:memory|disk|bolt|sqlite"`
		DBPath      string `conf:"default:zblock/ledger"`
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "ledger admin: verify|pending|rewards",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	gen := genesis.Default()
	if cfg.GenesisPath != "" {
		if gen, err = genesis.Load(cfg.GenesisPath); err != nil {
			return fmt.Errorf("loading genesis: %w", err)
		}
	}

	strg, err := storage.Open(cfg.Storage, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer strg.Close()

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	return processCommands(cfg.Args, gen, strg, ev)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, gen genesis.Genesis, strg database.Storage, ev func(v string, args ...any)) error {
	switch args.Num(0) {
	case "verify":
		if err := commands.Verify(os.Stdout, gen, strg, ev); err != nil {
			return fmt.Errorf("verifying chain: %w", err)
		}
	case "pending":
		if err := commands.Pending(os.Stdout, strg, ev); err != nil {
			return fmt.Errorf("listing pending transactions: %w", err)
		}
	case "rewards":
		if err := commands.Rewards(os.Stdout, gen, strg, ev); err != nil {
			return fmt.Errorf("tallying rewards: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q, expecting verify|pending|rewards", args.Num(0))
	}

	return nil
}
