package main

import (
	"fmt"

	"github.com/spf13/cobra"

	captchaService "github.com/springlegal/website/backend/internal/service/captcha"
)

var captchaCmd = &cobra.Command{
	Use:   "captcha",
	Short: "Render a sample challenge: SVG to stdout, answer to stderr",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		challenge, err := captchaService.NewIssuer(captchaService.DefaultOptions()).Issue()
		if err != nil {
			return fmt.Errorf("issuing challenge: %w", err)
		}

		if _, err := cmd.OutOrStdout().Write(challenge.Image); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "answer: %s\n", challenge.Text)
		return nil
	},
}
