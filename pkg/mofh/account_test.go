package mofh

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/Lebyy/mofh-go/pkg/errors"
)

const createAccountOK = `<?xml version="1.0" encoding="UTF-8"?>
<createacct>
<result>
<options><vpusername>epiz_31337</vpusername></options>
<rawout></rawout>
<status>1</status>
<statusmsg>This account has been successfully created</statusmsg>
</result>
</createacct>`

const createAccountTaken = `<createacct><result><status>0</status><statusmsg>Domain taken</statusmsg></result></createacct>`

func validCreateAccountRequest() CreateAccountRequest {
	return CreateAccountRequest{
		Username:     "alice123",
		Password:     "s3cret-pass",
		ContactEmail: "alice@example.com",
		Domain:       "alice.example-reseller.com",
		Plan:         "free",
	}
}

func TestCreateAccount_Success(t *testing.T) {
	client, httpClient := newTestClient(t, http.StatusOK, createAccountOK)

	res, err := client.CreateAccount(context.Background(), validCreateAccountRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Status)
	assert.Equal(t, "This account has been successfully created", res.StatusMessage)
	assert.Equal(t, "epiz_31337", res.VPUsername)
	assert.Equal(t, "epiz_31337", res.Field("options", "vpusername"))
	assert.Equal(t, "1", res.Fields["status"])
	assert.Contains(t, res.Fields, "rawout")
	assert.Equal(t, createAccountOK, res.RawResponse)

	require.Equal(t, 1, httpClient.CallCount())
	req := httpClient.LastCall()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/xml-api/createacct.php", req.URL.Path)

	q := req.URL.Query()
	assert.Equal(t, "alice123", q.Get("username"))
	assert.Equal(t, "s3cret-pass", q.Get("password"))
	assert.Equal(t, "alice@example.com", q.Get("contactemail"))
	assert.Equal(t, "alice.example-reseller.com", q.Get("domain"))
	assert.Equal(t, "free", q.Get("plan"))
	assert.Empty(t, q.Get("api_key"), "account endpoints authenticate with basic auth only")

	user, pass, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, testAPIUser, user)
	assert.Equal(t, testAPIKey, pass)
}

func TestCreateAccount_RemoteFailure(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, createAccountTaken)

	res, err := client.CreateAccount(context.Background(), validCreateAccountRequest())
	require.Error(t, err)
	assert.Nil(t, res)

	var rerr *pkgerrors.RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, OpCreateAccount, rerr.Op)
	assert.Equal(t, 0, rerr.Status)
	assert.Equal(t, "Domain taken", rerr.StatusMessage)
	assert.Equal(t, "Domain taken", rerr.Fields["statusmsg"])
	assert.Equal(t, createAccountTaken, rerr.RawResponse)
}

func TestCreateAccount_ProtocolFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "plain text error", body: "The API username you are using appears to be invalid"},
		{name: "wrong root element", body: `<suspendacct><result><status>1</status></result></suspendacct>`},
		{name: "root without result", body: `<createacct><status>1</status></createacct>`},
		{name: "result is a leaf", body: `<createacct><result>ok</result></createacct>`},
		{name: "empty body", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.StatusOK, tt.body)

			_, err := client.CreateAccount(context.Background(), validCreateAccountRequest())
			require.Error(t, err)

			var perr *pkgerrors.ProtocolError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.body, perr.RawResponse)
		})
	}
}

func TestCreateAccount_NonIntegerStatusIsFailure(t *testing.T) {
	tests := []struct {
		name   string
		status string
	}{
		{name: "word", status: "yes"},
		{name: "fraction", status: "1.5"},
		{name: "empty", status: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `<createacct><result><status>` + tt.status + `</status><statusmsg>odd</statusmsg></result></createacct>`
			client, _ := newTestClient(t, http.StatusOK, body)

			_, err := client.CreateAccount(context.Background(), validCreateAccountRequest())

			var rerr *pkgerrors.RemoteError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, 0, rerr.Status)
			assert.Equal(t, tt.status, rerr.Fields["status"])
			assert.Contains(t, rerr.Error(), `unrecognized status "`+tt.status+`"`)
			assert.Contains(t, rerr.Error(), "odd")
		})
	}
}

func TestCreateAccount_DecimalStatus(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK,
		`<createacct><result><status>1.0</status><statusmsg>Created</statusmsg></result></createacct>`)

	res, err := client.CreateAccount(context.Background(), validCreateAccountRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Status)

	client, _ = newTestClient(t, http.StatusOK,
		`<createacct><result><status>0.0</status><statusmsg>Domain taken</statusmsg></result></createacct>`)

	_, err = client.CreateAccount(context.Background(), validCreateAccountRequest())
	var rerr *pkgerrors.RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 0, rerr.Status)
	assert.Equal(t, "Domain taken", rerr.StatusMessage)
}

func TestCreateAccount_HTMLEntityInMessage(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK,
		`<createacct><result><status>1</status><statusmsg>ok&nbsp;done</statusmsg></result></createacct>`)

	res, err := client.CreateAccount(context.Background(), validCreateAccountRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok\u00a0done", res.StatusMessage)
}

func TestAccountOperations_Validation(t *testing.T) {
	tests := []struct {
		name      string
		call      func(c *Client) error
		wantField string
	}{
		{
			name: "create account without username",
			call: func(c *Client) error {
				req := validCreateAccountRequest()
				req.Username = ""
				_, err := c.CreateAccount(context.Background(), req)
				return err
			},
			wantField: "username",
		},
		{
			name: "create account without contact email",
			call: func(c *Client) error {
				req := validCreateAccountRequest()
				req.ContactEmail = ""
				_, err := c.CreateAccount(context.Background(), req)
				return err
			},
			wantField: "contactemail",
		},
		{
			name: "create account without plan",
			call: func(c *Client) error {
				req := validCreateAccountRequest()
				req.Plan = ""
				_, err := c.CreateAccount(context.Background(), req)
				return err
			},
			wantField: "plan",
		},
		{
			name: "create account stops at first missing field",
			call: func(c *Client) error {
				_, err := c.CreateAccount(context.Background(), CreateAccountRequest{Plan: "free"})
				return err
			},
			wantField: "username",
		},
		{
			name: "suspend without reason",
			call: func(c *Client) error {
				_, err := c.SuspendAccount(context.Background(), SuspendAccountRequest{Username: "epiz_1"})
				return err
			},
			wantField: "reason",
		},
		{
			name: "suspend without username",
			call: func(c *Client) error {
				_, err := c.SuspendAccount(context.Background(), SuspendAccountRequest{Reason: "abuse"})
				return err
			},
			wantField: "username",
		},
		{
			name: "unsuspend without password",
			call: func(c *Client) error {
				_, err := c.UnsuspendAccount(context.Background(), UnsuspendAccountRequest{Username: "epiz_1"})
				return err
			},
			wantField: "password",
		},
		{
			name: "change password without user",
			call: func(c *Client) error {
				_, err := c.ChangePassword(context.Background(), ChangePasswordRequest{Pass: "new"})
				return err
			},
			wantField: "user",
		},
		{
			name: "change password without pass",
			call: func(c *Client) error {
				_, err := c.ChangePassword(context.Background(), ChangePasswordRequest{User: "alice123"})
				return err
			},
			wantField: "pass",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, httpClient := newTestClient(t, http.StatusOK, createAccountOK)

			err := tt.call(client)
			require.Error(t, err)

			var verr *pkgerrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Equal(t, 0, httpClient.CallCount(), "no request may be sent for invalid input")
		})
	}
}

func TestAccountOperations_Endpoints(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		call      func(c *Client) (*AccountResult, error)
		wantPath  string
		wantQuery map[string]string
	}{
		{
			name: "suspend",
			body: `<suspendacct><result><status>1</status><statusmsg>Account suspended</statusmsg></result></suspendacct>`,
			call: func(c *Client) (*AccountResult, error) {
				return c.SuspendAccount(context.Background(), SuspendAccountRequest{Username: "epiz_1", Reason: "spam & abuse"})
			},
			wantPath:  "/xml-api/suspendacct.php",
			wantQuery: map[string]string{"username": "epiz_1", "reason": "spam & abuse"},
		},
		{
			name: "unsuspend",
			body: `<unsuspendacct><result><status>1</status><statusmsg>Account reactivated</statusmsg></result></unsuspendacct>`,
			call: func(c *Client) (*AccountResult, error) {
				return c.UnsuspendAccount(context.Background(), UnsuspendAccountRequest{Username: "epiz_1", Password: "pw"})
			},
			wantPath:  "/xml-api/unsuspendacct.php",
			wantQuery: map[string]string{"username": "epiz_1", "password": "pw"},
		},
		{
			name: "change password",
			body: `<passwd><passwd><status>1</status><statusmsg>Password changed</statusmsg></passwd></passwd>`,
			call: func(c *Client) (*AccountResult, error) {
				return c.ChangePassword(context.Background(), ChangePasswordRequest{User: "alice123", Pass: "n3w"})
			},
			wantPath:  "/xml-api/passwd.php",
			wantQuery: map[string]string{"user": "alice123", "pass": "n3w"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, httpClient := newTestClient(t, http.StatusOK, tt.body)

			res, err := tt.call(client)
			require.NoError(t, err)
			assert.Equal(t, 1, res.Status)
			assert.NotEmpty(t, res.StatusMessage)
			assert.Equal(t, tt.body, res.RawResponse)

			req := httpClient.LastCall()
			require.NotNil(t, req)
			assert.Equal(t, tt.wantPath, req.URL.Path)
			for k, v := range tt.wantQuery {
				assert.Equal(t, v, req.URL.Query().Get(k), "query %s", k)
			}
		})
	}
}

func TestChangePassword_Failures(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantRemote bool
	}{
		{name: "single passwd level", body: `<passwd><status>1</status></passwd>`},
		{name: "different root", body: `<createacct><result><status>1</status></result></createacct>`},
		{name: "status zero", body: `<passwd><passwd><status>0</status><statusmsg>Unknown user</statusmsg></passwd></passwd>`, wantRemote: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.StatusOK, tt.body)

			_, err := client.ChangePassword(context.Background(), ChangePasswordRequest{User: "alice123", Pass: "n3w"})
			require.Error(t, err)

			body, ok := pkgerrors.RawResponse(err)
			require.True(t, ok)
			assert.Equal(t, tt.body, body)

			if tt.wantRemote {
				assert.Equal(t, pkgerrors.CategoryRemote, pkgerrors.CategoryOf(err))
			} else {
				assert.Equal(t, pkgerrors.CategoryProtocol, pkgerrors.CategoryOf(err))
			}
		})
	}
}

func TestAccountResult_Field(t *testing.T) {
	res := &AccountResult{Fields: map[string]interface{}{
		"status":  "1",
		"options": map[string]interface{}{"vpusername": "epiz_9"},
	}}

	assert.Equal(t, "1", res.Field("status"))
	assert.Equal(t, "epiz_9", res.Field("options", "vpusername"))
	assert.Empty(t, res.Field("options"))
	assert.Empty(t, res.Field("missing", "vpusername"))
	assert.Empty(t, res.Field())
}
