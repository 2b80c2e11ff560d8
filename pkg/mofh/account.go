package mofh

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/Lebyy/mofh-go/pkg/errors"
)

// CreateAccountRequest holds the fields of createacct.php
type CreateAccountRequest struct {
	// Username of the new account. Use this one, not the returned vPanel
	// username, when calling ChangePassword later.
	Username     string `query:"username" validate:"required"`
	Password     string `query:"password" validate:"required"`
	ContactEmail string `query:"contactemail" validate:"required"`
	// Domain is either a subdomain of a reseller domain or a custom domain.
	Domain string `query:"domain" validate:"required"`
	// Plan is the hosting package name configured in the reseller panel.
	Plan string `query:"plan" validate:"required"`
}

func (r *CreateAccountRequest) values() url.Values {
	return url.Values{
		"username":     {r.Username},
		"password":     {r.Password},
		"contactemail": {r.ContactEmail},
		"domain":       {r.Domain},
		"plan":         {r.Plan},
	}
}

// SuspendAccountRequest holds the fields of suspendacct.php
type SuspendAccountRequest struct {
	Username string `query:"username" validate:"required"`
	Reason   string `query:"reason" validate:"required"`
}

func (r *SuspendAccountRequest) values() url.Values {
	return url.Values{
		"username": {r.Username},
		"reason":   {r.Reason},
	}
}

// UnsuspendAccountRequest holds the fields of unsuspendacct.php
type UnsuspendAccountRequest struct {
	Username string `query:"username" validate:"required"`
	Password string `query:"password" validate:"required"`
}

func (r *UnsuspendAccountRequest) values() url.Values {
	return url.Values{
		"username": {r.Username},
		"password": {r.Password},
	}
}

// ChangePasswordRequest holds the fields of passwd.php
type ChangePasswordRequest struct {
	User string `query:"user" validate:"required"`
	Pass string `query:"pass" validate:"required"`
}

func (r *ChangePasswordRequest) values() url.Values {
	return url.Values{
		"user": {r.User},
		"pass": {r.Pass},
	}
}

// AccountResult is the normalized answer of the XML account endpoints
type AccountResult struct {
	Status        int                    // 1 on success
	StatusMessage string                 // <statusmsg>, may be empty
	Fields        map[string]interface{} // every parsed field of the result element
	RawResponse   string                 // untouched response body
}

// Field returns the text of a nested leaf field, e.g. Field("options", "vpusername").
func (r *AccountResult) Field(path ...string) string {
	if len(path) == 0 {
		return ""
	}
	parent, ok := lookupMap(r.Fields, path[:len(path)-1]...)
	if !ok {
		return ""
	}
	s, _ := parent[path[len(path)-1]].(string)
	return s
}

// CreateAccountResult adds the vPanel username assigned by the panel
type CreateAccountResult struct {
	AccountResult
	VPUsername string
}

// CreateAccount creates a new free hosting account.
func (c *Client) CreateAccount(ctx context.Context, req CreateAccountRequest) (*CreateAccountResult, error) {
	var err error
	defer func() { c.finish(OpCreateAccount, err) }()

	if err = c.checkRequest(&req); err != nil {
		return nil, err
	}

	var res *AccountResult
	res, err = c.accountCall(ctx, OpCreateAccount, "result", req.values())
	if err != nil {
		return nil, err
	}

	return &CreateAccountResult{
		AccountResult: *res,
		VPUsername:    res.Field("options", "vpusername"),
	}, nil
}

// SuspendAccount deactivates an account with the given reason.
func (c *Client) SuspendAccount(ctx context.Context, req SuspendAccountRequest) (*AccountResult, error) {
	var err error
	defer func() { c.finish(OpSuspendAccount, err) }()

	if err = c.checkRequest(&req); err != nil {
		return nil, err
	}

	var res *AccountResult
	res, err = c.accountCall(ctx, OpSuspendAccount, "result", req.values())
	return res, err
}

// UnsuspendAccount reactivates a suspended account.
func (c *Client) UnsuspendAccount(ctx context.Context, req UnsuspendAccountRequest) (*AccountResult, error) {
	var err error
	defer func() { c.finish(OpUnsuspendAccount, err) }()

	if err = c.checkRequest(&req); err != nil {
		return nil, err
	}

	var res *AccountResult
	res, err = c.accountCall(ctx, OpUnsuspendAccount, "result", req.values())
	return res, err
}

// ChangePassword changes the password of an account. The panel answers
// with <passwd><passwd>...</passwd></passwd>.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*AccountResult, error) {
	var err error
	defer func() { c.finish(OpChangePassword, err) }()

	if err = c.checkRequest(&req); err != nil {
		return nil, err
	}

	var res *AccountResult
	res, err = c.accountCall(ctx, OpChangePassword, "passwd", req.values())
	return res, err
}

// accountCall posts query to op and expects <op><resultElem>...</resultElem></op>
// back, with <status>1</status> on success.
func (c *Client) accountCall(ctx context.Context, op, resultElem string, query url.Values) (*AccountResult, error) {
	body, err := c.post(ctx, op, query)
	if err != nil {
		return nil, err
	}

	tree, err := decodeXMLTree(body)
	if err != nil {
		return nil, pkgerrors.NewProtocolError(op, fmt.Sprintf("body is not XML: %v", err), body)
	}
	if _, ok := tree[op]; !ok {
		return nil, pkgerrors.NewProtocolError(op, fmt.Sprintf("missing <%s> root element", op), body)
	}
	fields, ok := lookupMap(tree, op, resultElem)
	if !ok {
		return nil, pkgerrors.NewProtocolError(op, fmt.Sprintf("missing <%s><%s> element", op, resultElem), body)
	}

	status, numeric := parseStatus(fields["status"])
	res := &AccountResult{
		Status:        status,
		StatusMessage: strings.TrimSpace(stringField(fields, "statusmsg")),
		Fields:        fields,
		RawResponse:   body,
	}

	if res.Status != 1 {
		msg := res.StatusMessage
		if !numeric {
			msg = strings.TrimSpace(fmt.Sprintf("unrecognized status %q %s", stringField(fields, "status"), msg))
		}
		return nil, pkgerrors.NewRemoteError(op, res.Status, msg, fields, body)
	}
	return res, nil
}

// parseStatus reads the numeric <status> field, so "1" and "1.0" are both 1.
// A missing, non-numeric or fractional status counts as 0 and numeric is
// false.
func parseStatus(v interface{}) (status int, numeric bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func stringField(fields map[string]interface{}, name string) string {
	s, _ := fields[name].(string)
	return s
}
