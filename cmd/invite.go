// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canonical/brand-invite-service/internal/types"
	"github.com/canonical/brand-invite-service/pkg/invite"
)

var (
	acceptName     string
	acceptImage    string
	acceptAuthType string
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Inspect and redeem brand invites",
}

var inspectInviteCmd = &cobra.Command{
	Use:   "inspect [token]",
	Short: "Show what an invite grants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getClient().GetInvite(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get invite: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TOKEN\tBRAND\tSTATUS\tUSES\tEXPIRES")
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n", m.Token, brandLabel(m), m.Status, m.UsedCount, m.MaxUses, orDash(m.ExpiresAt))
		return w.Flush()
	},
}

var validateInviteCmd = &cobra.Command{
	Use:   "validate [token]",
	Short: "Check whether an invite can still be redeemed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := getClient().ValidateInvite(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("invite is not redeemable: %w", err)
		}

		fmt.Printf("Invite is valid for brand %s (%d/%d uses)\n", res.BrandID, res.UsedCount, res.MaxUses)
		return nil
	},
}

var acceptInviteCmd = &cobra.Command{
	Use:   "accept [token]",
	Short: "Redeem an invite as the current user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req invite.AcceptRequest
		if acceptName != "" {
			req.Name = &acceptName
		}
		if acceptImage != "" {
			req.Image = &acceptImage
		}
		if acceptAuthType != "" {
			req.AuthType = &acceptAuthType
		}

		res, err := getClient().AcceptInvite(cmd.Context(), args[0], req)
		if err != nil {
			return fmt.Errorf("failed to accept invite: %w", err)
		}

		fmt.Printf("Joined brand %s\n", res.BrandID)
		return nil
	},
}

func getClient() *httpInviteClient {
	return newHTTPInviteClient(httpEndpoint, types.Identity{UserID: userID, Email: userEmail}, bearerToken)
}

func brandLabel(m *invite.Metadata) string {
	if m.BrandName == nil {
		return m.BrandID
	}
	return fmt.Sprintf("%s (%s)", *m.BrandName, m.BrandID)
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func init() {
	acceptInviteCmd.Flags().StringVar(&acceptName, "name", "", "Display name to store on the user")
	acceptInviteCmd.Flags().StringVar(&acceptImage, "image", "", "Avatar URL to store on the user")
	acceptInviteCmd.Flags().StringVar(&acceptAuthType, "auth-type", "", "Authentication method to record")

	inviteCmd.AddCommand(inspectInviteCmd)
	inviteCmd.AddCommand(validateInviteCmd)
	inviteCmd.AddCommand(acceptInviteCmd)

	rootCmd.AddCommand(inviteCmd)
}
