package flow

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ziadkadry99/flowactivate/internal/sfcli"
)

// Activator switches flows to their latest version through the Tooling API.
type Activator struct {
	apiVersion string
	client     *http.Client
}

// NewActivator creates an Activator for the given API version (e.g. "60.0").
// A nil client uses a default http.Client.
func NewActivator(apiVersion string, client *http.Client) *Activator {
	if client == nil {
		client = &http.Client{}
	}
	return &Activator{apiVersion: apiVersion, client: client}
}

type activeVersionUpdate struct {
	Metadata activeVersionMetadata `json:"Metadata"`
}

type activeVersionMetadata struct {
	ActiveVersionNumber int `json:"activeVersionNumber"`
}

// Activate makes the highest-numbered version of the named flow the active
// one and verifies the change. Failures are reported in the Outcome; no call
// is retried.
func (a *Activator) Activate(ctx context.Context, flowName string, cred sfcli.Credential) Outcome {
	tc := newToolingClient(ctx, a.client, cred.InstanceURL, a.apiVersion, cred.AccessToken)
	logger := log.With().Str("flow", flowName).Str("instance", cred.InstanceURL).Logger()

	outcome, err := a.activate(ctx, tc, flowName)
	if err != nil {
		logger.Warn().Err(err).Msg("flow activation failed")
		return Outcome{Flow: flowName, Status: StatusRemoteError, Message: err.Error()}
	}
	logger.Debug().Stringer("status", outcome.Status).Int("version", outcome.VersionNumber).Msg("flow activation finished")
	return outcome
}

func (a *Activator) activate(ctx context.Context, tc *toolingClient, flowName string) (Outcome, error) {
	// 1. Latest version.
	versions, err := query[Version](ctx, tc, fmt.Sprintf(
		"SELECT Id, VersionNumber FROM Flow WHERE Definition.DeveloperName = %s ORDER BY VersionNumber DESC LIMIT 1",
		quote(flowName)))
	if err != nil {
		return Outcome{}, fmt.Errorf("looking up latest version: %w", err)
	}
	if len(versions) == 0 {
		return Outcome{Flow: flowName, Status: StatusFlowNotFound}, nil
	}
	latest := versions[0]

	// 2. Definition record.
	defs, err := query[Definition](ctx, tc, fmt.Sprintf(
		"SELECT Id, ActiveVersionId FROM FlowDefinition WHERE DeveloperName = %s LIMIT 1",
		quote(flowName)))
	if err != nil {
		return Outcome{}, fmt.Errorf("looking up flow definition: %w", err)
	}
	if len(defs) == 0 {
		return Outcome{Flow: flowName, Status: StatusDefinitionNotFound}, nil
	}
	def := defs[0]

	// 3. Point the definition at the latest version.
	update := activeVersionUpdate{Metadata: activeVersionMetadata{ActiveVersionNumber: latest.VersionNumber}}
	if err := tc.patch(ctx, "FlowDefinition", def.ID, update); err != nil {
		return Outcome{}, fmt.Errorf("updating active version: %w", err)
	}

	// 4. Verify.
	after, err := query[Definition](ctx, tc, fmt.Sprintf(
		"SELECT ActiveVersionId FROM FlowDefinition WHERE Id = %s",
		quote(def.ID)))
	if err != nil {
		return Outcome{}, fmt.Errorf("verifying active version: %w", err)
	}
	if len(after) == 0 || after[0].ActiveVersionID != latest.ID {
		return Outcome{Flow: flowName, Status: StatusVerificationFailed, VersionNumber: latest.VersionNumber}, nil
	}
	return Outcome{Flow: flowName, Status: StatusActivated, VersionNumber: latest.VersionNumber}, nil
}
