// Package mofh is a client for the MyOwnFreeHost reseller panel API.
//
// Every method is one stateless POST against the panel. Account operations
// (createacct, suspendacct, unsuspendacct, passwd) answer in XML, the domain
// lookups answer in plain text or JSON. Results always carry the untouched
// body in RawResponse. Failures are one of the typed errors of
// github.com/Lebyy/mofh-go/pkg/errors:
//
//   - *errors.ValidationError: a required option is missing, nothing was sent
//   - *errors.ProtocolError: the body does not have the shape of the endpoint
//   - *errors.RemoteError: the panel reported a status other than 1
//   - *errors.TransportError: the HTTP round trip itself failed
//
// Example:
//
//	client, err := mofh.NewClient(mofh.Config{Username: apiUser, Password: apiKey})
//	if err != nil {
//		return err
//	}
//	res, err := client.CreateAccount(ctx, mofh.CreateAccountRequest{
//		Username:     "alice123",
//		Password:     "s3cret",
//		ContactEmail: "alice@example.com",
//		Domain:       "alice.example-reseller.com",
//		Plan:         "free",
//	})
package mofh
