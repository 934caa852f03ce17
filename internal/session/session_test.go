package session

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/flowactivate/internal/flow"
	"github.com/ziadkadry99/flowactivate/internal/flow/flowtest"
	"github.com/ziadkadry99/flowactivate/internal/sfcli"
)

// fakePrompter answers prompts from queued responses.
type fakePrompter struct {
	flowInputs []string
	flowErr    error
	selections [][]string
	selectErr  error
	confirm    bool
	confirmErr error

	// dir, when set, lets the prompter record how often orgs had been
	// listed at the moment each flow-name prompt was shown.
	dir            *fakeDirectory
	listsSeen      []int
	offered        [][]string
	flowPrompts    int
	selectPrompts  int
	confirmPrompts int
	question       string
}

func (p *fakePrompter) FlowNames(context.Context) (string, error) {
	p.flowPrompts++
	if p.dir != nil {
		p.listsSeen = append(p.listsSeen, p.dir.listCalls)
	}
	if p.flowErr != nil {
		return "", p.flowErr
	}
	in := p.flowInputs[0]
	p.flowInputs = p.flowInputs[1:]
	return in, nil
}

func (p *fakePrompter) SelectOrgs(_ context.Context, orgs []string) ([]string, error) {
	p.selectPrompts++
	p.offered = append(p.offered, orgs)
	if p.selectErr != nil {
		return nil, p.selectErr
	}
	sel := p.selections[0]
	p.selections = p.selections[1:]
	return sel, nil
}

func (p *fakePrompter) Confirm(_ context.Context, question string) (bool, error) {
	p.confirmPrompts++
	p.question = question
	return p.confirm, p.confirmErr
}

// fakeDirectory serves a fixed org list and credentials.
type fakeDirectory struct {
	orgs     []sfcli.Org
	listErr  error
	creds    map[string]sfcli.Credential
	credErrs map[string]error

	listCalls int
	resolved  []string
}

func (d *fakeDirectory) ListConnectedOrgs(context.Context) ([]sfcli.Org, error) {
	d.listCalls++
	return d.orgs, d.listErr
}

func (d *fakeDirectory) ResolveCredential(_ context.Context, org string) (sfcli.Credential, error) {
	d.resolved = append(d.resolved, org)
	if err := d.credErrs[org]; err != nil {
		return sfcli.Credential{}, err
	}
	return d.creds[org], nil
}

// recordingActivator activates every flow and records calls as "org/flow",
// using the credential's token as the org name.
type recordingActivator struct {
	mu    sync.Mutex
	calls []string
}

func (a *recordingActivator) Activate(_ context.Context, name string, cred sfcli.Credential) flow.Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, cred.AccessToken+"/"+name)
	return flow.Outcome{Flow: name, Status: flow.StatusActivated, VersionNumber: 1}
}

func orgs(names ...string) []sfcli.Org {
	var out []sfcli.Org
	for _, n := range names {
		out = append(out, sfcli.Org{Alias: n, ConnectedStatus: sfcli.StatusConnected})
	}
	return out
}

func credsFor(names ...string) map[string]sfcli.Credential {
	m := map[string]sfcli.Credential{}
	for _, n := range names {
		m[n] = sfcli.Credential{AccessToken: n, InstanceURL: "https://" + strings.ToLower(n) + ".example"}
	}
	return m
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// statusLines returns the per-flow lines of the output with styling removed.
func statusLines(out string) []string {
	var lines []string
	for _, l := range strings.Split(ansi.ReplaceAllString(out, ""), "\n") {
		if strings.HasPrefix(l, "✔ [") || strings.HasPrefix(l, "? [") || strings.HasPrefix(l, "✘ [") {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestParseFlowNames(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"FlowA", []string{"FlowA"}},
		{"FlowA;FlowB", []string{"FlowA", "FlowB"}},
		{"  FlowA ; FlowB ;FlowC  ", []string{"FlowA", "FlowB", "FlowC"}},
		{"FlowA;;FlowB;", []string{"FlowA", "FlowB"}},
		{"B;A", []string{"B", "A"}},
		{"", nil},
		{" ; ;  ", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseFlowNames(tt.in), "input %q", tt.in)
	}
}

func TestRunRepromptsEmptyFlowNamesBeforeListingOrgs(t *testing.T) {
	dir := &fakeDirectory{orgs: orgs("Org1"), creds: credsFor("Org1")}
	p := &fakePrompter{
		flowInputs: []string{"", " ; ", "FlowA"},
		selections: [][]string{{"Org1"}},
		confirm:    true,
		dir:        dir,
	}
	act := &recordingActivator{}
	var out bytes.Buffer

	_, err := New(p, dir, act, &out, nil, Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, p.flowPrompts)
	assert.Equal(t, []int{0, 0, 0}, p.listsSeen)
	assert.Equal(t, 1, dir.listCalls)
	assert.Equal(t, 2, strings.Count(out.String(), "Enter at least one flow API name."))
	assert.Equal(t, []string{"Org1/FlowA"}, act.calls)
}

func TestRunOffersOnlyConnectedOrgs(t *testing.T) {
	listing := `{"status":0,"result":{"nonScratchOrgs":[
		{"alias":"Prod","connectedStatus":"Connected"},
		{"alias":"Broken","connectedStatus":"RefreshTokenAuthError"},
		{"alias":"UAT","connectedStatus":"Connected"},
		{"alias":"Gone","connectedStatus":"Disconnected"}]}}`
	dir := sfcli.NewCLIWithRunner("sf", func(_ context.Context, _ string, args ...string) ([]byte, error) {
		return []byte(listing), nil
	})
	p := &fakePrompter{flowInputs: []string{"FlowA"}, selectErr: ErrCanceled}

	_, err := New(p, dir, &recordingActivator{}, &bytes.Buffer{}, nil, Options{}).Run(context.Background())
	require.ErrorIs(t, err, ErrCanceled)

	require.Len(t, p.offered, 1)
	assert.Equal(t, []string{"Prod", "UAT"}, p.offered[0])
}

func TestRunRequiresAtLeastOneOrg(t *testing.T) {
	dir := &fakeDirectory{orgs: orgs("Org1", "Org2"), creds: credsFor("Org1", "Org2")}
	p := &fakePrompter{
		flowInputs: []string{"FlowA"},
		selections: [][]string{{}, nil, {"Org2"}},
		confirm:    true,
	}
	act := &recordingActivator{}
	var out bytes.Buffer

	_, err := New(p, dir, act, &out, nil, Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, p.selectPrompts)
	assert.Equal(t, 1, p.confirmPrompts)
	assert.Equal(t, "Proceed with 1 org(s)?", p.question)
	assert.Equal(t, 2, strings.Count(out.String(), "Select at least one org."))
	assert.Equal(t, []string{"Org2/FlowA"}, act.calls)
}

func TestRunDeclineHasNoSideEffects(t *testing.T) {
	dir := &fakeDirectory{orgs: orgs("Org1"), creds: credsFor("Org1")}
	p := &fakePrompter{flowInputs: []string{"FlowA"}, selections: [][]string{{"Org1"}}, confirm: false}
	act := &recordingActivator{}

	summary, err := New(p, dir, act, &bytes.Buffer{}, nil, Options{}).Run(context.Background())
	assert.ErrorIs(t, err, ErrCanceled)
	assert.Nil(t, summary)
	assert.Empty(t, dir.resolved)
	assert.Empty(t, act.calls)
}

func TestRunCancellation(t *testing.T) {
	tests := []struct {
		name string
		p    *fakePrompter
	}{
		{"at flow names", &fakePrompter{flowErr: ErrCanceled}},
		{"at org selection", &fakePrompter{flowInputs: []string{"FlowA"}, selectErr: ErrCanceled}},
		{"at confirmation", &fakePrompter{flowInputs: []string{"FlowA"}, selections: [][]string{{"Org1"}}, confirmErr: ErrCanceled}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := &fakeDirectory{orgs: orgs("Org1"), creds: credsFor("Org1")}
			act := &recordingActivator{}

			_, err := New(tt.p, dir, act, &bytes.Buffer{}, nil, Options{}).Run(context.Background())
			assert.ErrorIs(t, err, ErrCanceled)
			assert.Empty(t, dir.resolved)
			assert.Empty(t, act.calls)
		})
	}
}

func TestRunListingFailureIsFatal(t *testing.T) {
	dir := &fakeDirectory{listErr: errors.New("listing orgs: sf: command not found")}
	p := &fakePrompter{flowInputs: []string{"FlowA"}}

	_, err := New(p, dir, &recordingActivator{}, &bytes.Buffer{}, nil, Options{}).Run(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCanceled)
	assert.Equal(t, 0, p.selectPrompts)
}

func TestRunNoConnectedOrgs(t *testing.T) {
	dir := &fakeDirectory{}
	p := &fakePrompter{flowInputs: []string{"FlowA"}}
	var out bytes.Buffer

	summary, err := New(p, dir, &recordingActivator{}, &out, nil, Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Results)
	assert.Equal(t, 0, p.selectPrompts)
	assert.Contains(t, out.String(), "No connected orgs found")
}

func TestRunCredentialFailureHaltsRun(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		dir := &fakeDirectory{
			orgs:     orgs("OrgA", "OrgB", "OrgC"),
			creds:    credsFor("OrgA", "OrgC"),
			credErrs: map[string]error{"OrgB": errors.New("resolving credentials for OrgB: expired")},
		}
		p := &fakePrompter{
			flowInputs: []string{"Flow1;Flow2"},
			selections: [][]string{{"OrgA", "OrgB", "OrgC"}},
			confirm:    true,
		}
		act := &recordingActivator{}

		_, err := New(p, dir, act, &bytes.Buffer{}, nil, Options{Concurrency: concurrency}).Run(context.Background())
		require.Error(t, err, "concurrency %d", concurrency)
		assert.Contains(t, err.Error(), "OrgB")
		assert.Equal(t, []string{"OrgA", "OrgB"}, dir.resolved, "concurrency %d", concurrency)
		for _, call := range act.calls {
			assert.False(t, strings.HasPrefix(call, "OrgB/") || strings.HasPrefix(call, "OrgC/"), "unexpected activation %s", call)
		}
	}
}

func TestRunSkipUnresolvableOrgs(t *testing.T) {
	dir := &fakeDirectory{
		orgs:     orgs("OrgA", "OrgB", "OrgC"),
		creds:    credsFor("OrgA", "OrgC"),
		credErrs: map[string]error{"OrgB": errors.New("expired")},
	}
	p := &fakePrompter{
		flowInputs: []string{"Flow1"},
		selections: [][]string{{"OrgA", "OrgB", "OrgC"}},
		confirm:    true,
	}
	act := &recordingActivator{}
	var out bytes.Buffer

	summary, err := New(p, dir, act, &out, nil, Options{SkipUnresolvableOrgs: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"OrgA/Flow1", "OrgC/Flow1"}, act.calls)
	assert.Equal(t, []string{"OrgB"}, summary.Skipped)
	assert.Contains(t, out.String(), "Skipping OrgB: expired")
	assert.Contains(t, ansi.ReplaceAllString(out.String(), ""), "2 activated, 0 failed across 2 org(s)")
}

// endToEnd wires a real activator against two fake org instances: Org1 has
// FlowA but not FlowB, Org2 has both.
func endToEnd(t *testing.T, concurrency int) (string, *Summary, error) {
	t.Helper()

	org1 := flowtest.NewOrg(t, "token-1", map[string]*flowtest.Flow{
		"FlowA": {Versions: []flow.Version{{ID: "301a1", VersionNumber: 1}, {ID: "301a2", VersionNumber: 2}}, DefinitionID: "300a", ActiveVersionID: "301a1"},
	})
	org2 := flowtest.NewOrg(t, "token-2", map[string]*flowtest.Flow{
		"FlowA": {Versions: []flow.Version{{ID: "301b4", VersionNumber: 4}}, DefinitionID: "300b"},
		"FlowB": {Versions: []flow.Version{{ID: "301c1", VersionNumber: 1}, {ID: "301c3", VersionNumber: 3}}, DefinitionID: "300c", ActiveVersionID: "301c1"},
	})

	dir := &fakeDirectory{
		orgs:  orgs("Org1", "Org2", "Org3"),
		creds: map[string]sfcli.Credential{"Org1": org1.Credential(), "Org2": org2.Credential()},
	}
	p := &fakePrompter{
		flowInputs: []string{"FlowA;FlowB"},
		selections: [][]string{{"Org1", "Org2"}},
		confirm:    true,
	}
	var out bytes.Buffer

	summary, err := New(p, dir, flow.NewActivator("60.0", nil), &out, nil, Options{Version: "test", Concurrency: concurrency}).Run(context.Background())
	return out.String(), summary, err
}

func TestRunEndToEnd(t *testing.T) {
	want := []string{
		"✔ [Org1] FlowA: activated version 2",
		"? [Org1] FlowB: flow not found",
		"✔ [Org2] FlowA: activated version 4",
		"✔ [Org2] FlowB: activated version 3",
	}

	for _, concurrency := range []int{1, 2} {
		out, summary, err := endToEnd(t, concurrency)
		require.NoError(t, err)
		assert.Equal(t, want, statusLines(out), "concurrency %d", concurrency)
		assert.Equal(t, 3, summary.Activated())
		assert.Equal(t, 1, summary.Failed())
		assert.Contains(t, ansi.ReplaceAllString(out, ""), "3 activated, 1 failed across 2 org(s)")
	}
}
