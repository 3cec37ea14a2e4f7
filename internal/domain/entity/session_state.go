package entity

import "time"

// SessionState is the fully resolved application identity for one session.
// Either everything derived is populated (Loading=false) or the state is
// anonymous; Loading=true only while a resolution is pending.
type SessionState struct {
	Identity     *Identity     `json:"user"`
	Session      *Session      `json:"session"`
	Profile      *Profile      `json:"profile"`
	Organization *Organization `json:"organization"`
	Membership   *Membership   `json:"membership"`
	Loading      bool          `json:"loading"`
	ResolvedAt   time.Time     `json:"resolved_at"`
}

// Anonymous returns a settled state with no identity.
func Anonymous() *SessionState {
	return &SessionState{ResolvedAt: time.Now().UTC()}
}

// OrgID returns the tenant id or "" when the identity has no organization.
func (s *SessionState) OrgID() string {
	if s == nil || s.Organization == nil {
		return ""
	}
	return s.Organization.ID
}

// UserID returns the identity id or "".
func (s *SessionState) UserID() string {
	if s == nil || s.Identity == nil {
		return ""
	}
	return s.Identity.ID
}

// ClearTenant drops the organization-derived fields together.
func (s *SessionState) ClearTenant() {
	s.Organization = nil
	s.Membership = nil
}

// ChangeEvent is one row change on a tenant-scoped table.
type ChangeEvent struct {
	Event    string    `json:"event"` // INSERT, UPDATE, DELETE
	Table    string    `json:"table"`
	OrgID    string    `json:"org_id"`
	RecordID string    `json:"record_id"`
	At       time.Time `json:"at"`
}

const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)
