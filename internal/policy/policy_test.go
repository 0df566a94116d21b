package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		resource Resource
		action   Action
		want     bool
	}{
		{"citizen reports issues", RoleCitizen, ResourceIssue, ActionCreate, true},
		{"citizen votes", RoleCitizen, ResourceIssue, ActionVote, true},
		{"citizen cannot route", RoleCitizen, ResourceIssue, ActionRoute, false},
		{"citizen cannot accept bids", RoleCitizen, ResourceBid, ActionAccept, false},
		{"area admin routes issues", RoleAreaAdmin, ResourceIssue, ActionRoute, true},
		{"area admin cannot create tenders", RoleAreaAdmin, ResourceTender, ActionCreate, false},
		{"department admin creates tenders", RoleDepartmentAdmin, ResourceTender, ActionCreate, true},
		{"department admin accepts bids", RoleDepartmentAdmin, ResourceBid, ActionAccept, true},
		{"department admin approves work", RoleDepartmentAdmin, ResourceWorkProgress, ActionApprove, true},
		{"department admin cannot submit bids", RoleDepartmentAdmin, ResourceBid, ActionCreate, false},
		{"contractor submits bids", RoleContractor, ResourceBid, ActionCreate, true},
		{"contractor withdraws bids", RoleContractor, ResourceBid, ActionWithdraw, true},
		{"contractor reports progress", RoleContractor, ResourceWorkProgress, ActionCreate, true},
		{"contractor cannot approve own work", RoleContractor, ResourceWorkProgress, ActionApprove, false},
		{"contractor cannot accept bids", RoleContractor, ResourceBid, ActionAccept, false},
		{"unknown role denied", Role("auditor"), ResourceIssue, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.role, tt.resource, tt.action))
		})
	}
}

func TestSuperAdminBypass(t *testing.T) {
	assert.True(t, Allowed(RoleSuperAdmin, ResourceBid, ActionAccept))
	assert.True(t, Allowed(RoleSuperAdmin, ResourceTender, ActionCancel))
	assert.True(t, Allowed(RoleSuperAdmin, ResourceWorkProgress, ActionApprove))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleCitizen))
	assert.True(t, ValidRole(RoleSuperAdmin))
	assert.False(t, ValidRole(Role("")))
	assert.False(t, ValidRole(Role("root")))
}
