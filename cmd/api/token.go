package main

import (
	"errors"
	"fmt"
	"time"

	"Local_Market/internal/config"
	"Local_Market/internal/pkg"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// adminTokenCmd 管理员 token 只能由运维在服务器上签发
func adminTokenCmd(configPath *string) *cobra.Command {
	var ttl time.Duration
	var subject string
	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Mint an admin token for operators",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("jwt.secret is required")
			}
			pkg.SetSecret(cfg.JWT.Secret, cfg.JWT.TTL)
			if subject == "" {
				subject = uuid.NewString()
			} else if _, err := uuid.Parse(subject); err != nil {
				return fmt.Errorf("subject must be a uuid: %w", err)
			}
			token, err := pkg.IssueWithTTL(subject, pkg.RoleAdmin, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&subject, "subject", "", "admin id (uuid), random when empty")
	return cmd
}
