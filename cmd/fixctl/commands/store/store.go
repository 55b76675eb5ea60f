// Package store implements fixctl's "store" subcommand tree: read-only
// inspection of a session's durable message log, grounded on
// cmd/dittofsctl/commands/store's parent-command layout.
package store

import (
	"fmt"

	fixstore "github.com/ForgeFinx/ForgeFIX/internal/fix/store"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/store/badgerstore"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/store/sqlstore"
	"github.com/ForgeFinx/ForgeFIX/pkg/fixclient"
	"github.com/spf13/cobra"
)

// Cmd is the parent command for store inspection.
var Cmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect a session's durable message store",
	Long: `Read a session's Store directly, without running the session. The
store must not be open elsewhere (badgerstore holds an exclusive file
lock; sqlstore limits the database/sql pool to one connection).`,
}

func init() {
	Cmd.AddCommand(dumpCmd)
}

func open(s *fixclient.Settings) (fixstore.Store, error) {
	switch s.StoreBackend {
	case "", "badger":
		return badgerstore.Open(s.StorePath)
	case "sql":
		return sqlstore.Open(s.StorePath)
	default:
		return nil, fmt.Errorf("unknown store_backend %q", s.StoreBackend)
	}
}
