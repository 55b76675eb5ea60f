package commands

import (
	"context"
	"fmt"

	"github.com/ForgeFinx/ForgeFIX/internal/fix/store"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/store/badgerstore"
	"github.com/ForgeFinx/ForgeFIX/internal/fix/store/sqlstore"
	"github.com/ForgeFinx/ForgeFIX/pkg/fixclient"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted sequence numbers for a session's store",
	Long: `status opens the session's Store directly and only reads from it (the
session itself must not be running against the same store path; the
backend is opened with its normal options, not in a read-only mode) and
reports the highest durably
recorded outbound and inbound MsgSeqNum, grounded on cmd/dittofs/commands's
status.go / dfsctl's status command.`,
	RunE: runStatus,
}

func openStoreReadOnly(s *fixclient.Settings) (store.Store, error) {
	switch s.StoreBackend {
	case "", "badger":
		return badgerstore.Open(s.StorePath)
	case "sql":
		return sqlstore.Open(s.StorePath)
	default:
		return nil, fmt.Errorf("unknown store_backend %q", s.StoreBackend)
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := fixclient.Load(GetConfigFile())
	if err != nil {
		return err
	}

	st, err := openStoreReadOnly(s)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	outSeq, err := st.HighestSeq(ctx, store.Out)
	if err != nil {
		return fmt.Errorf("highest outbound seq: %w", err)
	}
	inSeq, err := st.HighestSeq(ctx, store.In)
	if err != nil {
		return fmt.Errorf("highest inbound seq: %w", err)
	}

	cmd.Printf("session:      %s-%s\n", s.SenderCompID, s.TargetCompID)
	cmd.Printf("store path:   %s (%s backend)\n", s.StorePath, defaultBackend(s.StoreBackend))
	cmd.Printf("out seq:      %d\n", outSeq)
	cmd.Printf("in seq:       %d\n", inSeq)
	return nil
}

func defaultBackend(b string) string {
	if b == "" {
		return "badger"
	}
	return b
}
