package sfcli

import "context"

// StatusConnected is the connectedStatus value the Salesforce CLI reports for
// orgs with a live session.
const StatusConnected = "Connected"

// Org is one entry of the CLI's authenticated org directory.
type Org struct {
	Alias           string `json:"alias"`
	Username        string `json:"username"`
	OrgID           string `json:"orgId"`
	InstanceURL     string `json:"instanceUrl"`
	ConnectedStatus string `json:"connectedStatus"`
}

// Name returns the identifier the operator selects the org by: its alias, or
// the username when no alias was set at auth time.
func (o Org) Name() string {
	if o.Alias != "" {
		return o.Alias
	}
	return o.Username
}

// Credential is a bearer token and the instance it is valid for. It lives only
// for one org's activation loop and is never persisted.
type Credential struct {
	AccessToken string `json:"accessToken"`
	InstanceURL string `json:"instanceUrl"`
}

// Directory lists authenticated orgs and resolves their credentials.
type Directory interface {
	ListConnectedOrgs(ctx context.Context) ([]Org, error)
	ResolveCredential(ctx context.Context, org string) (Credential, error)
}
