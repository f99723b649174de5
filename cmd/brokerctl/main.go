// Command brokerctl runs maintenance tasks against the configured document
// store: promoting admins and seeding sample data.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/iliyamo/insurance-lead-desk/internal/config"
	"github.com/iliyamo/insurance-lead-desk/internal/database"
	"github.com/iliyamo/insurance-lead-desk/internal/repository"
)

// app carries the repositories a command works on.  It is filled in by the
// root command's PersistentPreRunE.
type app struct {
	users    *repository.UserRepo
	leads    *repository.LeadRepo
	policies *repository.PolicyRepo
	close    func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(openApp).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// openApp loads configuration from the environment and opens the store.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, closeFn, err := database.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newApp(store, closeFn), nil
}

func newApp(store database.Store, closeFn func() error) *app {
	return &app{
		users:    repository.NewUserRepo(store),
		leads:    repository.NewLeadRepo(store),
		policies: repository.NewPolicyRepo(store),
		close:    closeFn,
	}
}

func newRootCmd(open func(context.Context) (*app, error)) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "brokerctl",
		Short:         "Maintenance commands for the lead desk",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opened, err := open(cmd.Context())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			*a = *opened
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.close == nil {
				return nil
			}
			return a.close()
		},
	}
	root.AddCommand(
		makeAdminCmd(a),
		promoteAllCmd(a),
		seedLeadsCmd(a),
		seedPolicyCmd(a),
	)
	return root
}
