package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	pkgerrors "github.com/Lebyy/mofh-go/pkg/errors"
	"github.com/Lebyy/mofh-go/pkg/mofh"
)

// Exit codes
const (
	exitFailure    = 1
	exitValidation = 2
)

type accountView struct {
	Operation     string                 `json:"operation" yaml:"operation"`
	Status        int                    `json:"status" yaml:"status"`
	StatusMessage string                 `json:"status_message,omitempty" yaml:"status_message,omitempty"`
	VPUsername    string                 `json:"vp_username,omitempty" yaml:"vp_username,omitempty"`
	Fields        map[string]interface{} `json:"fields,omitempty" yaml:"fields,omitempty"`
}

func newAccountView(op string, res *mofh.AccountResult) accountView {
	return accountView{
		Operation:     op,
		Status:        res.Status,
		StatusMessage: res.StatusMessage,
		Fields:        res.Fields,
	}
}

type availabilityView struct {
	Domain    string `json:"domain" yaml:"domain"`
	Available bool   `json:"available" yaml:"available"`
}

type userDomainView struct {
	Status string `json:"status" yaml:"status"`
	Domain string `json:"domain" yaml:"domain"`
}

type userDomainsView struct {
	Username string           `json:"username" yaml:"username"`
	Domains  []userDomainView `json:"domains" yaml:"domains"`
}

type domainUserView struct {
	Domain   string `json:"domain" yaml:"domain"`
	Found    bool   `json:"found" yaml:"found"`
	Status   string `json:"status,omitempty" yaml:"status,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
}

// render writes v to stdout in the configured format
func (a *app) render(v interface{}) error {
	if a.cfg != nil && a.cfg.Output == "json" {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// printError reports err on stderr, followed by the panel's raw answer when
// there is one.
func (a *app) printError(err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(a.errOut, "Error: ")
	fmt.Fprintln(a.errOut, err)

	if body, ok := pkgerrors.RawResponse(err); ok && body != "" {
		color.New(color.FgHiBlack).Fprintln(a.errOut, "Raw response:")
		fmt.Fprintln(a.errOut, body)
	}
}

func exitCode(err error) int {
	var verr *pkgerrors.ValidationError
	if errors.As(err, &verr) {
		return exitValidation
	}
	return exitFailure
}
