package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"choreographer/internal/consent"
)

const defaultStoreFile = "/tmp/consents.json"

type options struct {
	storeFile string
	output    string
	out       io.Writer
}

func (o *options) manager() *consent.Manager {
	return consent.NewManager(consent.NewFileStore(o.storeFile))
}

func (o *options) json() bool { return o.output == "json" }

func (o *options) printJSON(v any) error {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (o *options) printf(format string, args ...any) {
	fmt.Fprintf(o.out, format, args...)
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}
	root := &cobra.Command{
		Use:           "consentctl",
		Short:         "Manage PSD3 consent records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if opts.output != "json" && opts.output != "pretty" {
				return fmt.Errorf("--output must be json or pretty, got %q", opts.output)
			}
			return nil
		},
	}
	storeDefault := os.Getenv("CONSENT_STORE_FILE")
	if storeDefault == "" {
		storeDefault = defaultStoreFile
	}
	root.PersistentFlags().StringVar(&opts.storeFile, "store", storeDefault, "consent store file")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "pretty", "output format: json or pretty")

	root.AddCommand(
		newGenerateCmd(opts),
		newValidateCmd(opts),
		newRevokeCmd(opts),
		newListCmd(opts),
		newSummaryCmd(opts),
	)
	return root
}

func newGenerateCmd(opts *options) *cobra.Command {
	var userID, purpose, thirdParty string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Grant a new consent from a template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.manager().Generate(cmd.Context(), userID, purpose, thirdParty)
			if err != nil {
				return err
			}
			if opts.json() {
				return opts.printJSON(c)
			}
			opts.printf("✅ Consent Generated Successfully!\n")
			opts.printf("Consent ID: %s\n", c.ID)
			opts.printf("User: %s\n", c.UserID)
			opts.printf("Purpose: %s\n", c.Purpose)
			opts.printf("Third Party: %s\n", c.ThirdPartyName)
			opts.printf("Valid Until: %s\n", c.ValidUntil.Format(time.RFC3339))
			opts.printf("Status: %s\n", c.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "user granting consent")
	cmd.Flags().StringVar(&purpose, "purpose", "", "template: "+strings.Join(consent.TemplateKeys(), ", "))
	cmd.Flags().StringVar(&thirdParty, "third-party", "", "third party name")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("purpose")
	return cmd
}

func newValidateCmd(opts *options) *cobra.Command {
	var id, action string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check whether a consent may be used",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := opts.manager().Validate(cmd.Context(), id, action)
			if err != nil {
				return err
			}
			if opts.json() {
				return opts.printJSON(v)
			}
			status := "❌ Invalid"
			if v.Valid {
				status = "✅ Valid"
			}
			opts.printf("Consent Validation: %s\n", status)
			opts.printf("Reason: %s\n", v.Reason)
			if v.ExpiresAt != nil {
				opts.printf("Expires: %s\n", v.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "consent-id", "", "consent to validate")
	cmd.Flags().StringVar(&action, "action", "", "action to check, e.g. read:balances")
	_ = cmd.MarkFlagRequired("consent-id")
	return cmd
}

func newRevokeCmd(opts *options) *cobra.Command {
	var id, reason string
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke a consent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := opts.manager().Revoke(cmd.Context(), id, reason)
			if opts.json() {
				resp := map[string]any{"success": err == nil}
				if err != nil {
					resp["error"] = err.Error()
				}
				if perr := opts.printJSON(resp); perr != nil {
					return perr
				}
				return err
			}
			if err != nil {
				opts.printf("❌ Failed to revoke consent\n")
				return err
			}
			opts.printf("✅ Consent revoked successfully!\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "consent-id", "", "consent to revoke")
	cmd.Flags().StringVar(&reason, "reason", "CLI revocation", "recorded in the audit trail")
	_ = cmd.MarkFlagRequired("consent-id")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	var userID, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List consents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if status != "" && status != string(consent.StatusActive) && status != string(consent.StatusRevoked) {
				return fmt.Errorf("--status must be active or revoked, got %q", status)
			}
			consents, err := opts.manager().List(cmd.Context(), userID, consent.Status(status))
			if err != nil {
				return err
			}
			if opts.json() {
				return opts.printJSON(consents)
			}
			opts.printf("Found %d consents:\n", len(consents))
			for _, c := range consents {
				opts.printf("  • %s: %s (%s)\n", c.ID, c.Purpose, c.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "only this user's consents")
	cmd.Flags().StringVar(&status, "status", "", "active or revoked")
	return cmd
}

func newSummaryCmd(opts *options) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarise a user's consents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.manager().Summary(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if opts.json() {
				return opts.printJSON(s)
			}
			opts.printf("Consent Summary for %s:\n", s.UserID)
			opts.printf("  Total Consents: %d\n", s.Total)
			opts.printf("  Active: %d\n", s.Active)
			opts.printf("  Revoked: %d\n", s.Revoked)
			opts.printf("  Purposes: %s\n", strings.Join(s.Purposes, ", "))
			opts.printf("  Third Parties: %s\n", strings.Join(s.ThirdParties, ", "))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "user to summarise")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
