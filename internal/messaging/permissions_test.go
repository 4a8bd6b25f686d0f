package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-app-server/internal/models"
)

func TestCanSendMatrix(t *testing.T) {
	tests := []struct {
		sender    models.Role
		recipient models.Role
		allowed   bool
	}{
		{models.RoleOffice, models.RoleOffice, true},
		{models.RoleOffice, models.RoleTeacher, true},
		{models.RoleOffice, models.RoleStudent, true},
		{models.RoleTeacher, models.RoleOffice, true},
		{models.RoleTeacher, models.RoleTeacher, true},
		{models.RoleTeacher, models.RoleStudent, true},
		{models.RoleStudent, models.RoleOffice, false},
		{models.RoleStudent, models.RoleTeacher, true},
		{models.RoleStudent, models.RoleStudent, false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.allowed, CanSend(tt.sender, tt.recipient),
			"%s -> %s", tt.sender, tt.recipient)
	}
}

func TestAuthorizeSendReasons(t *testing.T) {
	err := AuthorizeSend(models.RoleStudent, models.RoleOffice)
	require.Error(t, err)
	permErr, ok := err.(*PermissionError)
	require.True(t, ok)
	assert.Equal(t, ReasonStudentToOffice, permErr.Reason)

	err = AuthorizeSend(models.RoleStudent, models.RoleStudent)
	require.Error(t, err)
	permErr, ok = err.(*PermissionError)
	require.True(t, ok)
	assert.Equal(t, ReasonStudentToStudent, permErr.Reason)

	// Unknown roles are denied with the generic reason, not allowed by default.
	err = AuthorizeSend(models.Role("visitor"), models.RoleTeacher)
	require.Error(t, err)
	permErr, ok = err.(*PermissionError)
	require.True(t, ok)
	assert.Equal(t, ReasonUnknownRole, permErr.Reason)

	assert.NoError(t, AuthorizeSend(models.RoleTeacher, models.RoleStudent))
}
