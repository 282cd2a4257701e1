package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mintlabs/mint-backend/internal/commands"
	"github.com/mintlabs/mint-backend/internal/database"
	"github.com/mintlabs/mint-backend/internal/services"
	"github.com/spf13/cobra"
)

// withCommands opens the configured store for the duration of fn.
func withCommands(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, c *commands.Commands) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	session, err := database.Open(ctx, opts.Config.DatabasePath)
	if err != nil {
		return err
	}
	client := services.NewDataClient(session)
	defer client.Close()
	return fn(ctx, commands.New(client))
}

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommands(cmd, opts, func(ctx context.Context, c *commands.Commands) error {
				msg, err := c.InitializeDB(ctx)
				if err != nil {
					return err
				}
				return printMessage(cmd.OutOrStdout(), opts.Format, msg)
			})
		},
	}
}

// NewUserCommand creates the user command group.
func NewUserCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <email>",
		Short: "Add a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommands(cmd, opts, func(ctx context.Context, c *commands.Commands) error {
				msg, err := c.AddUser(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printMessage(cmd.OutOrStdout(), opts.Format, msg)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommands(cmd, opts, func(ctx context.Context, c *commands.Commands) error {
				users, err := c.ListUsers(ctx)
				if err != nil {
					return err
				}
				return printUsers(cmd.OutOrStdout(), opts.Format, users)
			})
		},
	})

	return cmd
}

// NewSampleCommand creates the sample command group.
func NewSampleCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Manage time series samples",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <timestamp-ms> <value> [metadata]",
		Short: "Record a sample; the timestamp is milliseconds since the Unix epoch",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %q is not an integer", services.ErrInvalidTimestamp, args[0])
			}
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			metadata := ""
			if len(args) == 3 {
				metadata = args[2]
			}
			return withCommands(cmd, opts, func(ctx context.Context, c *commands.Commands) error {
				msg, err := c.AddSample(ctx, ts, value, metadata)
				if err != nil {
					return err
				}
				return printMessage(cmd.OutOrStdout(), opts.Format, msg)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every sample",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommands(cmd, opts, func(ctx context.Context, c *commands.Commands) error {
				samples, err := c.ListSamples(ctx)
				if err != nil {
					return err
				}
				return printSamples(cmd.OutOrStdout(), opts.Format, samples)
			})
		},
	})

	return cmd
}
