package mofh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	pkgerrors "github.com/Lebyy/mofh-go/pkg/errors"
)

// DomainAvailability is the answer of checkavailable.php
type DomainAvailability struct {
	Available   bool
	Domain      string
	RawResponse string
}

// UserDomain is one [status, domain] pair from getuserdomains.php
type UserDomain struct {
	Status string
	Domain string
}

// UserDomains is the answer of getuserdomains.php
type UserDomains struct {
	Username    string
	Domains     []UserDomain
	RawResponse string
}

// DomainUser is the answer of getdomainuser.php. Found is false when the
// panel knows no account for the domain; the other fields are then empty
// except Domain, which echoes the request.
type DomainUser struct {
	Found       bool
	Status      string
	Domain      string
	Path        string // document root on the hosting server
	Username    string // vPanel username
	RawResponse string
}

// CheckDomainAvailability asks the panel whether domain can still be used
// for a new account. The panel answers with a bare "1" or "0".
func (c *Client) CheckDomainAvailability(ctx context.Context, domain string) (*DomainAvailability, error) {
	var err error
	defer func() { c.finish(OpCheckAvailable, err) }()

	if err = c.checkRequired("domain", domain); err != nil {
		return nil, err
	}

	var body string
	body, err = c.post(ctx, OpCheckAvailable, c.withAPIKey(url.Values{"domain": {domain}}))
	if err != nil {
		return nil, err
	}

	if body != "1" && body != "0" {
		err = pkgerrors.NewProtocolError(OpCheckAvailable, `expected "0" or "1"`, body)
		return nil, err
	}

	return &DomainAvailability{
		Available:   body == "1",
		Domain:      domain,
		RawResponse: body,
	}, nil
}

// GetUserDomains lists the domains attached to a vPanel username.
func (c *Client) GetUserDomains(ctx context.Context, username string) (*UserDomains, error) {
	var err error
	defer func() { c.finish(OpGetUserDomains, err) }()

	if err = c.checkRequired("username", username); err != nil {
		return nil, err
	}

	var body string
	body, err = c.post(ctx, OpGetUserDomains, c.withAPIKey(url.Values{"username": {username}}))
	if err != nil {
		return nil, err
	}

	res := &UserDomains{
		Username:    username,
		Domains:     []UserDomain{},
		RawResponse: body,
	}
	if isEmptyBody(body) {
		return res, nil
	}

	var rows [][]interface{}
	if err = decodeJSONArray(OpGetUserDomains, body, &rows); err != nil {
		return nil, err
	}

	for i, row := range rows {
		if len(row) < 2 {
			err = pkgerrors.NewProtocolError(OpGetUserDomains, fmt.Sprintf("entry %d is not a [status, domain] pair", i), body)
			return nil, err
		}
		res.Domains = append(res.Domains, UserDomain{
			Status: jsonScalar(row[0]),
			Domain: jsonScalar(row[1]),
		})
	}

	return res, nil
}

// GetUserByDomain finds the account a domain belongs to.
func (c *Client) GetUserByDomain(ctx context.Context, domain string) (*DomainUser, error) {
	var err error
	defer func() { c.finish(OpGetDomainUser, err) }()

	if err = c.checkRequired("domain", domain); err != nil {
		return nil, err
	}

	var body string
	body, err = c.post(ctx, OpGetDomainUser, c.withAPIKey(url.Values{"domain": {domain}}))
	if err != nil {
		return nil, err
	}

	if isEmptyBody(body) {
		return &DomainUser{Domain: domain, RawResponse: body}, nil
	}

	var tuple []interface{}
	if err = decodeJSONArray(OpGetDomainUser, body, &tuple); err != nil {
		return nil, err
	}
	if len(tuple) < 4 {
		err = pkgerrors.NewProtocolError(OpGetDomainUser, "expected [status, domain, path, username]", body)
		return nil, err
	}

	return &DomainUser{
		Found:       true,
		Status:      jsonScalar(tuple[0]),
		Domain:      jsonScalar(tuple[1]),
		Path:        jsonScalar(tuple[2]),
		Username:    jsonScalar(tuple[3]),
		RawResponse: body,
	}, nil
}

// isEmptyBody reports the panel's two spellings of "nothing found".
func isEmptyBody(body string) bool {
	return body == "" || body == "null"
}

// decodeJSONArray requires body to be a JSON array (first byte '[') and
// decodes it into v.
func decodeJSONArray(op, body string, v interface{}) error {
	if body[0] != '[' {
		return pkgerrors.NewProtocolError(op, "expected a JSON array", body)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return pkgerrors.NewProtocolError(op, fmt.Sprintf("invalid JSON: %v", err), body)
	}
	return nil
}

// jsonScalar renders a decoded JSON scalar as the string the panel meant.
func jsonScalar(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
