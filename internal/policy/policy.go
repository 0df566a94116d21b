// Package policy is the static authorization table evaluated once before a
// request is dispatched to a service. It maps (role, resource, action) to an
// allow decision; fine-grained row ownership checks stay with the services.
package policy

// Role is an actor role.
type Role string

const (
	RoleCitizen         Role = "citizen"
	RoleAreaAdmin       Role = "area_admin"
	RoleDepartmentAdmin Role = "department_admin"
	RoleContractor      Role = "contractor"
	RoleSuperAdmin      Role = "super_admin"
)

// Resource is an entity kind requests act on.
type Resource string

const (
	ResourceIssue         Resource = "issue"
	ResourceTender        Resource = "tender"
	ResourceBid           Resource = "bid"
	ResourceWorkProgress  Resource = "work_progress"
	ResourceAssignment    Resource = "assignment"
	ResourceCommunityPost Resource = "community_post"
	ResourceFeedback      Resource = "feedback"
	ResourceNotification  Resource = "notification"
)

// Action is an operation on a resource.
type Action string

const (
	ActionCreate   Action = "create"
	ActionRead     Action = "read"
	ActionUpdate   Action = "update"
	ActionRoute    Action = "route"
	ActionSubmit   Action = "submit"
	ActionAccept   Action = "accept"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionWithdraw Action = "withdraw"
	ActionVote     Action = "vote"
)

type key struct {
	role     Role
	resource Resource
	action   Action
}

// allow is the full policy table. Absence means deny; super_admin bypasses
// the table entirely.
var allow = map[key]bool{
	// Citizens report and follow their issues, vote, post, leave feedback.
	{RoleCitizen, ResourceIssue, ActionCreate}:         true,
	{RoleCitizen, ResourceIssue, ActionRead}:           true,
	{RoleCitizen, ResourceIssue, ActionVote}:           true,
	{RoleCitizen, ResourceCommunityPost, ActionCreate}: true,
	{RoleCitizen, ResourceCommunityPost, ActionRead}:   true,
	{RoleCitizen, ResourceFeedback, ActionCreate}:      true,
	{RoleCitizen, ResourceTender, ActionRead}:          true,
	{RoleCitizen, ResourceNotification, ActionRead}:    true,

	// Area admins triage reported issues and route them onward.
	{RoleAreaAdmin, ResourceIssue, ActionRead}:        true,
	{RoleAreaAdmin, ResourceIssue, ActionUpdate}:      true,
	{RoleAreaAdmin, ResourceIssue, ActionRoute}:       true,
	{RoleAreaAdmin, ResourceIssue, ActionReject}:      true,
	{RoleAreaAdmin, ResourceAssignment, ActionRead}:   true,
	{RoleAreaAdmin, ResourceNotification, ActionRead}: true,

	// Department admins run tenders, review bids and verify work.
	{RoleDepartmentAdmin, ResourceIssue, ActionRead}:            true,
	{RoleDepartmentAdmin, ResourceIssue, ActionUpdate}:          true,
	{RoleDepartmentAdmin, ResourceIssue, ActionRoute}:           true,
	{RoleDepartmentAdmin, ResourceIssue, ActionReject}:          true,
	{RoleDepartmentAdmin, ResourceTender, ActionCreate}:         true,
	{RoleDepartmentAdmin, ResourceTender, ActionRead}:           true,
	{RoleDepartmentAdmin, ResourceTender, ActionUpdate}:         true,
	{RoleDepartmentAdmin, ResourceTender, ActionCancel}:         true,
	{RoleDepartmentAdmin, ResourceBid, ActionRead}:              true,
	{RoleDepartmentAdmin, ResourceBid, ActionAccept}:            true,
	{RoleDepartmentAdmin, ResourceBid, ActionReject}:            true,
	{RoleDepartmentAdmin, ResourceWorkProgress, ActionRead}:     true,
	{RoleDepartmentAdmin, ResourceWorkProgress, ActionApprove}:  true,
	{RoleDepartmentAdmin, ResourceWorkProgress, ActionReject}:   true,
	{RoleDepartmentAdmin, ResourceAssignment, ActionRead}:       true,
	{RoleDepartmentAdmin, ResourceNotification, ActionRead}:     true,

	// Contractors bid on tenders and report work progress.
	{RoleContractor, ResourceTender, ActionRead}:         true,
	{RoleContractor, ResourceBid, ActionCreate}:          true,
	{RoleContractor, ResourceBid, ActionRead}:            true,
	{RoleContractor, ResourceBid, ActionSubmit}:          true,
	{RoleContractor, ResourceBid, ActionWithdraw}:        true,
	{RoleContractor, ResourceWorkProgress, ActionCreate}: true,
	{RoleContractor, ResourceWorkProgress, ActionSubmit}: true,
	{RoleContractor, ResourceWorkProgress, ActionRead}:   true,
	{RoleContractor, ResourceNotification, ActionRead}:   true,
}

// Allowed reports whether role may perform action on resource.
func Allowed(role Role, resource Resource, action Action) bool {
	if role == RoleSuperAdmin {
		return true
	}
	return allow[key{role, resource, action}]
}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleCitizen, RoleAreaAdmin, RoleDepartmentAdmin, RoleContractor, RoleSuperAdmin:
		return true
	}
	return false
}
