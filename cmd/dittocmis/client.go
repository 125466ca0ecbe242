package main

import (
	"context"
	"fmt"

	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/config"
	"github.com/marmos91/dittocmis/pkg/registry"
	"github.com/marmos91/dittocmis/pkg/repository"
	"github.com/spf13/cobra"
)

var (
	clientUser     string
	clientPassword string
)

// addCredentialFlags registers the flags of commands that call the
// repository directly.
func addCredentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&clientUser, "user", "u", "", "user name (anonymous when empty)")
	cmd.Flags().StringVarP(&clientPassword, "password", "p", "", "password of --user")
}

// openRepository builds the configured registry in-process and returns
// its repository with a call context for the command's credentials. The
// caller must close the registry.
func openRepository(ctx context.Context) (*registry.Registry, *repository.Repository, repository.CallContext, error) {
	var cc repository.CallContext

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, cc, err
	}
	// keep command output readable
	if err := logger.Init("ERROR", cfg.Logging.Format, "stderr"); err != nil {
		return nil, nil, cc, err
	}

	reg, err := config.InitializeRegistry(ctx, cfg, nil)
	if err != nil {
		return nil, nil, cc, err
	}
	repo, err := reg.GetRepository(cfg.Repository.ID)
	if err != nil {
		_ = reg.Close()
		return nil, nil, cc, fmt.Errorf("repository %q: %w", cfg.Repository.ID, err)
	}

	cc = repository.CallContext{
		RepositoryID: cfg.Repository.ID,
		Username:     clientUser,
		Password:     clientPassword,
	}
	return reg, repo, cc, nil
}
