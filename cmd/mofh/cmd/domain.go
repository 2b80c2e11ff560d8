package cmd

import (
	"github.com/spf13/cobra"
)

func newCheckDomainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-domain <domain>",
		Short: "Check whether a domain is available for a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callContext(cmd)
			defer cancel()

			res, err := a.client.CheckDomainAvailability(ctx, args[0])
			if err != nil {
				return err
			}
			return a.render(availabilityView{Domain: res.Domain, Available: res.Available})
		},
	}
}

func newUserDomainsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "user-domains <username>",
		Short: "List the domains of a hosting account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callContext(cmd)
			defer cancel()

			res, err := a.client.GetUserDomains(ctx, args[0])
			if err != nil {
				return err
			}

			view := userDomainsView{Username: res.Username, Domains: []userDomainView{}}
			for _, d := range res.Domains {
				view.Domains = append(view.Domains, userDomainView{Status: d.Status, Domain: d.Domain})
			}
			return a.render(view)
		},
	}
}

func newDomainUserCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "domain-user <domain>",
		Short: "Find the hosting account a domain belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callContext(cmd)
			defer cancel()

			res, err := a.client.GetUserByDomain(ctx, args[0])
			if err != nil {
				return err
			}
			return a.render(domainUserView{
				Domain:   res.Domain,
				Found:    res.Found,
				Status:   res.Status,
				Path:     res.Path,
				Username: res.Username,
			})
		},
	}
}
