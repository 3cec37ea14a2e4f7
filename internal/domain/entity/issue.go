package entity

import "time"

type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
	IssueClosed     IssueStatus = "closed"
)

func AllIssueStatuses() []IssueStatus {
	return []IssueStatus{IssueOpen, IssueInProgress, IssueResolved, IssueClosed}
}

func (s IssueStatus) Valid() bool {
	switch s {
	case IssueOpen, IssueInProgress, IssueResolved, IssueClosed:
		return true
	}
	return false
}

// Active reports whether the issue still needs work.
func (s IssueStatus) Active() bool {
	return s == IssueOpen || s == IssueInProgress
}

// IssuePriority is ordinal: low < medium < high < critical.
type IssuePriority string

const (
	PriorityLow      IssuePriority = "low"
	PriorityMedium   IssuePriority = "medium"
	PriorityHigh     IssuePriority = "high"
	PriorityCritical IssuePriority = "critical"
)

func AllIssuePriorities() []IssuePriority {
	return []IssuePriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// Rank returns the ordinal position, or -1 for an unknown priority.
func (p IssuePriority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	}
	return -1
}

func (p IssuePriority) Valid() bool { return p.Rank() >= 0 }

type Issue struct {
	ID          string        `json:"id"`
	OrgID       string        `json:"org_id"`
	AssetID     *string       `json:"asset_id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      IssueStatus   `json:"status"`
	Priority    IssuePriority `json:"priority"`
	ReportedBy  *string       `json:"reported_by"`
	AssignedTo  *string       `json:"assigned_to"`
	ResolvedAt  *time.Time    `json:"resolved_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IssueFilter narrows an issue listing. Zero values mean "any".
type IssueFilter struct {
	Status   IssueStatus
	Priority IssuePriority
	AssetID  string
	Limit    int
}

// IssueStats feeds the dashboard counters.
type IssueStats struct {
	Active        int `json:"active_issues"`
	Critical      int `json:"critical_alerts"`
	ResolvedSince int `json:"resolved_this_week"`
}

// IssueBreakdown groups issue counts for the reports page.
type IssueBreakdown struct {
	ByStatus   map[IssueStatus]int   `json:"by_status"`
	ByPriority map[IssuePriority]int `json:"by_priority"`
}
