// Where: curstack/internal/domain/policy/policy.go
// What: IAM policy document model.
// Why: Policy documents are plain JSON values shared by several resource nodes.
package policy

import "encoding/json"

// Version2012 is the policy language version used by every generated document.
const Version2012 = "2012-10-17"

// Document is a JSON policy document.
type Document struct {
	Version   string      `json:"Version"`
	ID        string      `json:"Id,omitempty"`
	Statement []Statement `json:"Statement"`
}

// Statement is a single policy statement. Actions and resources are always
// encoded as lists to keep the marshalled form predictable.
type Statement struct {
	Sid       string                       `json:"Sid,omitempty"`
	Effect    string                       `json:"Effect"`
	Principal *Principal                   `json:"Principal,omitempty"`
	Action    []string                     `json:"Action"`
	Resource  []string                     `json:"Resource,omitempty"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

// Principal identifies who a statement applies to.
type Principal struct {
	Service []string `json:"Service,omitempty"`
	AWS     []string `json:"AWS,omitempty"`
}

// JSON returns the document marshalled without indentation.
func (d Document) JSON() (string, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// Sids returns the statement IDs in declaration order.
func (d Document) Sids() []string {
	sids := make([]string, 0, len(d.Statement))
	for _, s := range d.Statement {
		sids = append(sids, s.Sid)
	}
	return sids
}
