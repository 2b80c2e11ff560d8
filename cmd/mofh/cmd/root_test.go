package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Lebyy/mofh-go/test/mocks"
)

// runCLI executes the command tree against a mock panel answering body
func runCLI(t *testing.T, statusCode int, body string, args ...string) (int, string, string, *mocks.MockHTTPClient) {
	t.Helper()
	t.Setenv("MOFH_API_USER", "reseller")
	t.Setenv("MOFH_API_KEY", "k3y")
	t.Setenv("MOFH_LOG_LEVEL", "error")

	httpClient := mocks.NewStaticHTTPClient(statusCode, body)
	var out, errOut bytes.Buffer
	rootCmd, a := newRootCmd(withOutput(&out, &errOut), withHTTPClient(httpClient))

	code := a.run(context.Background(), rootCmd, args)
	return code, out.String(), errOut.String(), httpClient
}

func TestCheckDomain_JSON(t *testing.T) {
	code, out, _, httpClient := runCLI(t, http.StatusOK, "1",
		"check-domain", "alice.example.com", "-o", "json", "--base-url", "https://panel.test/xml-api")
	require.Equal(t, 0, code)

	var got availabilityView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, availabilityView{Domain: "alice.example.com", Available: true}, got)

	req := httpClient.LastCall()
	require.NotNil(t, req)
	assert.Equal(t, "panel.test", req.URL.Host)
	assert.Equal(t, "/xml-api/checkavailable.php", req.URL.Path)
	assert.Equal(t, "reseller", req.URL.Query().Get("api_user"))
}

func TestUserDomains_YAML(t *testing.T) {
	code, out, _, _ := runCLI(t, http.StatusOK, `[["ACTIVE","alice.example.com"]]`,
		"user-domains", "epiz_1")
	require.Equal(t, 0, code)

	var got userDomainsView
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "epiz_1", got.Username)
	assert.Equal(t, []userDomainView{{Status: "ACTIVE", Domain: "alice.example.com"}}, got.Domains)
}

func TestDomainUser_NotFound(t *testing.T) {
	code, out, _, _ := runCLI(t, http.StatusOK, "null", "domain-user", "nobody.example.com", "-o", "json")
	require.Equal(t, 0, code)

	var got domainUserView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Found)
	assert.Equal(t, "nobody.example.com", got.Domain)
}

func TestCreateAccount(t *testing.T) {
	body := `<createacct><result><options><vpusername>epiz_42</vpusername></options><status>1</status><statusmsg>Created</statusmsg></result></createacct>`

	code, out, _, httpClient := runCLI(t, http.StatusOK, body,
		"create-account", "--username", "alice123", "--password", "pw", "--email", "a@example.com",
		"--domain", "alice.example.com", "--plan", "free", "-o", "json")
	require.Equal(t, 0, code)

	var got accountView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "createacct", got.Operation)
	assert.Equal(t, 1, got.Status)
	assert.Equal(t, "epiz_42", got.VPUsername)

	q := httpClient.LastCall().URL.Query()
	assert.Equal(t, "a@example.com", q.Get("contactemail"))
	assert.Equal(t, "free", q.Get("plan"))
}

func TestSuspend_RemoteFailurePrintsRawBody(t *testing.T) {
	body := `<suspendacct><result><status>0</status><statusmsg>Unknown account</statusmsg></result></suspendacct>`

	code, out, errOut, _ := runCLI(t, http.StatusOK, body,
		"suspend", "--username", "epiz_1", "--reason", "abuse")
	assert.Equal(t, exitFailure, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Error:")
	assert.Contains(t, errOut, "Unknown account")
	assert.Contains(t, errOut, body)
}

func TestPasswd_ValidationFailure(t *testing.T) {
	code, _, errOut, httpClient := runCLI(t, http.StatusOK, "",
		"passwd", "--user", "alice123")
	assert.Equal(t, exitValidation, code)
	assert.Contains(t, errOut, "pass")
	assert.Equal(t, 0, httpClient.CallCount())
}

func TestUnsuspend_TransportFailure(t *testing.T) {
	code, _, errOut, _ := runCLI(t, http.StatusInternalServerError, "upstream down",
		"unsuspend", "--username", "epiz_1", "--password", "pw")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "upstream down")
}

func TestMissingCredentials(t *testing.T) {
	t.Setenv("MOFH_API_USER", "")
	t.Setenv("MOFH_API_KEY", "")

	var out, errOut bytes.Buffer
	rootCmd, a := newRootCmd(withOutput(&out, &errOut), withHTTPClient(mocks.NewStaticHTTPClient(http.StatusOK, "1")))

	code := a.run(context.Background(), rootCmd, []string{"check-domain", "example.com", "--env-file", writeEnvFile(t, "")})
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut.String(), "MOFH_API_USER is required")
}

func TestVersion_NeedsNoCredentials(t *testing.T) {
	t.Setenv("MOFH_API_USER", "")
	t.Setenv("MOFH_API_KEY", "")

	var out, errOut bytes.Buffer
	rootCmd, a := newRootCmd(withOutput(&out, &errOut))

	code := a.run(context.Background(), rootCmd, []string{"version"})
	assert.Equal(t, 0, code)
	assert.Equal(t, "Version: dev\n", out.String())
}

func TestRoot_BareCommandPrintsHelp(t *testing.T) {
	t.Setenv("MOFH_API_USER", "")
	t.Setenv("MOFH_API_KEY", "")

	var out, errOut bytes.Buffer
	rootCmd, a := newRootCmd(withOutput(&out, &errOut))

	code := a.run(context.Background(), rootCmd, []string{"--env-file", writeEnvFile(t, "")})
	assert.Equal(t, 0, code)
	assert.Empty(t, errOut.String())
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "create-account")
}

func TestMetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mofh.prom")

	code, _, _, _ := runCLI(t, http.StatusOK, "0", "check-domain", "taken.example.com", "--metrics-textfile", path)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mofh_panel_requests_total{operation="checkavailable",outcome="success"} 1`)
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
