// Package flowtest provides an in-process fake of the Tooling API endpoints
// the flow activator uses.
package flowtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/ziadkadry99/flowactivate/internal/flow"
	"github.com/ziadkadry99/flowactivate/internal/sfcli"
)

// Flow is the server-side state of one flow definition.
type Flow struct {
	Versions        []flow.Version
	DefinitionID    string // empty means the definition record is missing
	ActiveVersionID string
	RejectPatch     bool // answer the PATCH with a 400 error array
	IgnorePatch     bool // accept the PATCH without applying it
}

// Request is a recorded call to the fake.
type Request struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

// Org is a fake org instance serving the Tooling API.
type Org struct {
	Token string

	mu       sync.Mutex
	flows    map[string]*Flow
	requests []Request
	server   *httptest.Server
}

// NewOrg starts a fake instance that accepts token and serves flows. The
// server is closed when the test ends.
func NewOrg(t *testing.T, token string, flows map[string]*Flow) *Org {
	t.Helper()
	if flows == nil {
		flows = map[string]*Flow{}
	}
	o := &Org{Token: token, flows: flows}
	o.server = httptest.NewServer(http.HandlerFunc(o.handle))
	t.Cleanup(o.server.Close)
	return o
}

// URL returns the instance URL.
func (o *Org) URL() string { return o.server.URL }

// Credential returns a credential valid for this instance.
func (o *Org) Credential() sfcli.Credential {
	return sfcli.Credential{AccessToken: o.Token, InstanceURL: o.server.URL}
}

// Requests returns a copy of every request received so far.
func (o *Org) Requests() []Request {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Request(nil), o.requests...)
}

// Patches counts PATCH requests received so far.
func (o *Org) Patches() int {
	n := 0
	for _, r := range o.Requests() {
		if r.Method == http.MethodPatch {
			n++
		}
	}
	return n
}

// Flow returns the current server-side state of a flow.
func (o *Org) Flow(name string) Flow {
	o.mu.Lock()
	defer o.mu.Unlock()
	return *o.flows[name]
}

var (
	latestVersionQuery = regexp.MustCompile(`FROM Flow WHERE Definition\.DeveloperName = '((?:[^'\\]|\\.)*)' ORDER BY VersionNumber DESC LIMIT 1$`)
	definitionQuery    = regexp.MustCompile(`FROM FlowDefinition WHERE DeveloperName = '((?:[^'\\]|\\.)*)' LIMIT 1$`)
	definitionByID     = regexp.MustCompile(`FROM FlowDefinition WHERE Id = '((?:[^'\\]|\\.)*)'$`)
)

func unquote(s string) string {
	s = strings.ReplaceAll(s, `\'`, `'`)
	return strings.ReplaceAll(s, `\\`, `\`)
}

func (o *Org) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	o.mu.Lock()
	defer o.mu.Unlock()

	o.requests = append(o.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query().Get("q"),
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})

	if r.Header.Get("Authorization") != "Bearer "+o.Token {
		writeErrors(w, http.StatusUnauthorized, "INVALID_SESSION_ID", "Session expired or invalid")
		return
	}

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/tooling/query"):
		o.handleQuery(w, r.URL.Query().Get("q"))
	case r.Method == http.MethodPatch && strings.Contains(r.URL.Path, "/tooling/sobjects/FlowDefinition/"):
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		o.handlePatch(w, id, body)
	default:
		writeErrors(w, http.StatusNotFound, "NOT_FOUND", "The requested resource does not exist")
	}
}

func (o *Org) handleQuery(w http.ResponseWriter, q string) {
	var records []any

	if m := latestVersionQuery.FindStringSubmatch(q); m != nil {
		if f, ok := o.flows[unquote(m[1])]; ok {
			var latest *flow.Version
			for i := range f.Versions {
				if latest == nil || f.Versions[i].VersionNumber > latest.VersionNumber {
					latest = &f.Versions[i]
				}
			}
			if latest != nil {
				records = append(records, latest)
			}
		}
	} else if m := definitionQuery.FindStringSubmatch(q); m != nil {
		if f, ok := o.flows[unquote(m[1])]; ok && f.DefinitionID != "" {
			records = append(records, flow.Definition{ID: f.DefinitionID, ActiveVersionID: f.ActiveVersionID})
		}
	} else if m := definitionByID.FindStringSubmatch(q); m != nil {
		if f := o.byDefinitionID(unquote(m[1])); f != nil {
			records = append(records, map[string]string{"ActiveVersionId": f.ActiveVersionID})
		}
	} else {
		writeErrors(w, http.StatusBadRequest, "MALFORMED_QUERY", "unexpected query: "+q)
		return
	}

	if records == nil {
		records = []any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"size":      len(records),
		"totalSize": len(records),
		"done":      true,
		"records":   records,
	})
}

func (o *Org) handlePatch(w http.ResponseWriter, id string, body []byte) {
	f := o.byDefinitionID(id)
	if f == nil {
		writeErrors(w, http.StatusNotFound, "NOT_FOUND", "Provided external ID field does not exist or is not accessible: "+id)
		return
	}
	if f.RejectPatch {
		writeErrors(w, http.StatusBadRequest, "FIELD_INTEGRITY_EXCEPTION", "The flow can't be activated")
		return
	}

	var update struct {
		Metadata struct {
			ActiveVersionNumber int `json:"activeVersionNumber"`
		} `json:"Metadata"`
	}
	if err := json.Unmarshal(body, &update); err != nil {
		writeErrors(w, http.StatusBadRequest, "JSON_PARSER_ERROR", err.Error())
		return
	}

	if !f.IgnorePatch {
		for _, v := range f.Versions {
			if v.VersionNumber == update.Metadata.ActiveVersionNumber {
				f.ActiveVersionID = v.ID
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (o *Org) byDefinitionID(id string) *Flow {
	for _, f := range o.flows {
		if f.DefinitionID != "" && f.DefinitionID == id {
			return f
		}
	}
	return nil
}

func writeErrors(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, []map[string]string{{"errorCode": code, "message": msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
