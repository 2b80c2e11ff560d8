package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Lebyy/mofh-go/pkg/mofh"
)

func newCreateAccountCmd(a *app) *cobra.Command {
	var req mofh.CreateAccountRequest

	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Create a new hosting account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callContext(cmd)
			defer cancel()

			res, err := a.client.CreateAccount(ctx, req)
			if err != nil {
				return err
			}
			view := newAccountView(mofh.OpCreateAccount, &res.AccountResult)
			view.VPUsername = res.VPUsername
			return a.render(view)
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "account username (max 8 characters on most panels)")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	cmd.Flags().StringVar(&req.ContactEmail, "email", "", "contact email of the account owner")
	cmd.Flags().StringVar(&req.Domain, "domain", "", "subdomain or custom domain for the account")
	cmd.Flags().StringVar(&req.Plan, "plan", "", "hosting plan name")

	return cmd
}

func newSuspendCmd(a *app) *cobra.Command {
	var req mofh.SuspendAccountRequest

	cmd := &cobra.Command{
		Use:   "suspend",
		Short: "Suspend a hosting account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callContext(cmd)
			defer cancel()

			res, err := a.client.SuspendAccount(ctx, req)
			if err != nil {
				return err
			}
			return a.render(newAccountView(mofh.OpSuspendAccount, res))
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "vPanel username of the account")
	cmd.Flags().StringVar(&req.Reason, "reason", "", "suspension reason shown to the account owner")

	return cmd
}

func newUnsuspendCmd(a *app) *cobra.Command {
	var req mofh.UnsuspendAccountRequest

	cmd := &cobra.Command{
		Use:   "unsuspend",
		Short: "Reactivate a suspended hosting account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callContext(cmd)
			defer cancel()

			res, err := a.client.UnsuspendAccount(ctx, req)
			if err != nil {
				return err
			}
			return a.render(newAccountView(mofh.OpUnsuspendAccount, res))
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "vPanel username of the account")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")

	return cmd
}

func newPasswdCmd(a *app) *cobra.Command {
	var req mofh.ChangePasswordRequest

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of a hosting account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callContext(cmd)
			defer cancel()

			res, err := a.client.ChangePassword(ctx, req)
			if err != nil {
				return err
			}
			return a.render(newAccountView(mofh.OpChangePassword, res))
		},
	}

	// The panel wants the username chosen at creation here, not the vPanel one.
	cmd.Flags().StringVar(&req.User, "user", "", "username the account was created with")
	cmd.Flags().StringVar(&req.Pass, "pass", "", "new password")

	return cmd
}
