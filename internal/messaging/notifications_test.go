package messaging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-app-server/internal/models"
)

func TestUnreadCountAndFeed(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newService(t, db)
	teacher := createTeacher(t, db, "t1@uni.edu")
	student := createStudent(t, db, "s1@uni.edu", "S-001", nil)

	for _, content := range []string{"first", "second", "third"} {
		_, err := svc.Send(ref(teacher.ID, models.RoleTeacher), SendInput{
			RecipientID: student.ID, RecipientRole: models.RoleStudent, Content: content,
		})
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// The sender has nothing unread.
	count, err = svc.UnreadCount(teacher.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	feed, err := svc.Notifications(student.ID)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "third", feed[0].Preview)
	assert.Equal(t, teacher.ID, feed[0].Sender.ID)
	assert.Equal(t, models.RoleTeacher, feed[0].Sender.Role)
}

func TestMarkReadIdempotent(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newService(t, db)
	teacher := createTeacher(t, db, "t1@uni.edu")
	student := createStudent(t, db, "s1@uni.edu", "S-001", nil)

	msg, err := svc.Send(ref(teacher.ID, models.RoleTeacher), SendInput{
		RecipientID: student.ID, RecipientRole: models.RoleStudent, Content: "read me",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(msg.ID, student.ID))
	require.NoError(t, svc.MarkRead(msg.ID, student.ID)) // second call succeeds silently

	count, err := svc.UnreadCount(student.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkReadOnlyByRecipient(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newService(t, db)
	teacher := createTeacher(t, db, "t1@uni.edu")
	student := createStudent(t, db, "s1@uni.edu", "S-001", nil)
	outsider := createStudent(t, db, "s2@uni.edu", "S-002", nil)

	msg, err := svc.Send(ref(teacher.ID, models.RoleTeacher), SendInput{
		RecipientID: student.ID, RecipientRole: models.RoleStudent, Content: "private",
	})
	require.NoError(t, err)

	// The sender cannot mark their own message read.
	err = svc.MarkRead(msg.ID, teacher.ID)
	require.Error(t, err)
	var permErr *PermissionError
	require.True(t, errors.As(err, &permErr))
	assert.Equal(t, ReasonNotRecipient, permErr.Reason)

	// Neither can a non-participant.
	err = svc.MarkRead(msg.ID, outsider.ID)
	require.Error(t, err)

	err = svc.MarkRead("no-such-message", student.ID)
	assert.True(t, IsNotFound(err))
}
