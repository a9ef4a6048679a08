package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleStaff, RoleVerifier, RoleLeader, RolePersonnel} {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role Role
		op   string
		want bool
	}{
		{RoleAdmin, OpManageUsers, true},
		{RoleAdmin, OpVerifyRequest, false}, // admins decide nothing themselves
		{RoleStaff, OpManagePersonnel, true},
		{RoleStaff, OpManageUsers, false},
		{RoleVerifier, OpVerifyRequest, true},
		{RoleVerifier, OpSubmitRequest, false},
		{RoleLeader, OpViewReports, true},
		{RoleLeader, OpManagePersonnel, false},
		{RolePersonnel, OpSubmitRequest, true},
		{RolePersonnel, OpViewAuditLog, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.role.Can(tc.op), "%s %s", tc.role, tc.op)
	}
}

func TestVerifierRoleFor(t *testing.T) {
	for _, rt := range []RequestType{TypeMutation, TypeRetirement, TypePromotion, TypeCorrection} {
		assert.Equal(t, RoleVerifier, VerifierRoleFor(rt), string(rt))
	}
}

func TestRequestTypeAndStatusValid(t *testing.T) {
	for _, rt := range []RequestType{TypeMutation, TypeRetirement, TypePromotion, TypeCorrection} {
		assert.True(t, rt.Valid(), string(rt))
	}
	assert.False(t, RequestType("transfer").Valid())

	for _, st := range []RequestStatus{StatusPending, StatusApproved, StatusRejected} {
		assert.True(t, st.Valid(), string(st))
	}
	assert.False(t, RequestStatus("cancelled").Valid())
}
