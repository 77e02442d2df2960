package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/springlegal/website/backend/internal/service/notify"
)

var mailTimeout time.Duration

var mailCheckCmd = &cobra.Command{
	Use:   "mail-check",
	Short: "Verify the SMTP credentials used for contact notices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Mail.Enabled() {
			return fmt.Errorf("mail is not configured: set SMTP_SERVER, SMTP_USERNAME, SMTP_PASSWORD and TO_EMAIL")
		}

		sender, err := notify.NewSMTPSender(cfg.Mail)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), mailTimeout)
		defer cancel()
		if err := sender.Verify(ctx); err != nil {
			return fmt.Errorf("verifying %s:%d: %w", cfg.Mail.Host, cfg.Mail.Port, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "SMTP %s:%d OK, notices go to %s\n", cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.To)
		return nil
	},
}

func init() {
	mailCheckCmd.Flags().DurationVar(&mailTimeout, "timeout", 15*time.Second, "connection timeout")
}
