package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-app-server/internal/models"
)

func TestAttachmentPolicyStaff(t *testing.T) {
	p := DefaultAttachmentPolicy()

	// Staff can send anything under the global cap, including arbitrary types.
	f := FileInfo{Name: "grades.zip", Size: 20 << 20, ContentType: "application/zip"}
	assert.NoError(t, p.Check(models.RoleOffice, f))
	assert.NoError(t, p.Check(models.RoleTeacher, f))

	// The global hard cap applies to everyone.
	f.Size = p.GlobalMaxBytes + 1
	for _, role := range []models.Role{models.RoleOffice, models.RoleTeacher, models.RoleStudent} {
		err := p.Check(role, f)
		require.Error(t, err)
		_, ok := err.(*AttachmentRejectedError)
		assert.True(t, ok)
	}
}

func TestAttachmentPolicyStudent(t *testing.T) {
	p := DefaultAttachmentPolicy()

	ok := FileInfo{Name: "excuse.pdf", Size: 1 << 20, ContentType: "application/pdf"}
	assert.NoError(t, p.Check(models.RoleStudent, ok))

	tooBig := FileInfo{Name: "scan.pdf", Size: p.StudentMaxBytes + 1, ContentType: "application/pdf"}
	err := p.Check(models.RoleStudent, tooBig)
	require.Error(t, err)
	rejected, isRejected := err.(*AttachmentRejectedError)
	require.True(t, isRejected)
	assert.Equal(t, "scan.pdf", rejected.FileName)
	assert.NotEmpty(t, rejected.Reason)

	badType := FileInfo{Name: "tool.exe", Size: 1024, ContentType: "application/x-msdownload"}
	err = p.Check(models.RoleStudent, badType)
	require.Error(t, err)
	_, isRejected = err.(*AttachmentRejectedError)
	assert.True(t, isRejected)
}
