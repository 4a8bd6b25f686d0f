package messaging

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"attendance-app-server/internal/models"
	"attendance-app-server/internal/storage"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func newService(t *testing.T, db *gorm.DB) (*Service, *storage.MemStore) {
	t.Helper()
	files := storage.NewMemStore()
	return NewService(db, files, DefaultAttachmentPolicy()), files
}

func createTeacher(t *testing.T, db *gorm.DB, email string) models.Teacher {
	t.Helper()
	teacher := models.Teacher{Department: "Mathematics", Subject: "Algebra"}
	teacher.FirstName = "Terry"
	teacher.LastName = "Teacher"
	teacher.Email = email
	require.NoError(t, teacher.SetPassword("password123"))
	require.NoError(t, db.Create(&teacher).Error)
	return teacher
}

func createStudent(t *testing.T, db *gorm.DB, email, number string, classID *string) models.Student {
	t.Helper()
	student := models.Student{StudentNumber: number, Department: "Mathematics", ClassID: classID}
	student.FirstName = "Sam"
	student.LastName = "Student"
	student.Email = email
	require.NoError(t, student.SetPassword("password123"))
	require.NoError(t, db.Create(&student).Error)
	return student
}

func createClass(t *testing.T, db *gorm.DB, name string) models.Class {
	t.Helper()
	class := models.Class{Name: name, Department: "Mathematics", Year: 2}
	require.NoError(t, db.Create(&class).Error)
	return class
}

func ref(id string, role models.Role) models.UserRef {
	return models.UserRef{ID: id, Role: role}
}

func TestSendCreatesConversationLazily(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newService(t, db)
	teacher := createTeacher(t, db, "t1@uni.edu")
	student := createStudent(t, db, "s1@uni.edu", "S-001", nil)

	msg, err := svc.Send(ref(student.ID, models.RoleStudent), SendInput{
		RecipientID:   teacher.ID,
		RecipientRole: models.RoleTeacher,
		Content:       "  Hello, a question about the homework.  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello, a question about the homework.", msg.Content)
	assert.Equal(t, "general", msg.Category)

	// The reply from the other side lands in the same conversation.
	reply, err := svc.Send(ref(teacher.ID, models.RoleTeacher), SendInput{
		RecipientID:   student.ID,
		RecipientRole: models.RoleStudent,
		Content:       "Sure, ask away.",
	})
	require.NoError(t, err)
	assert.Equal(t, msg.ConversationID, reply.ConversationID)

	var count int64
	db.Model(&models.Conversation{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSendPermissionDeniedBeforePersistence(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newService(t, db)
	staff := models.OfficeStaff{Position: "Registrar"}
	staff.FirstName = "Olive"
	staff.LastName = "Office"
	staff.Email = "o1@uni.edu"
	require.NoError(t, staff.SetPassword("password123"))
	require.NoError(t, db.Create(&staff).Error)
	student := createStudent(t, db, "s1@uni.edu", "S-001", nil)

	_, err := svc.Send(ref(student.ID, models.RoleStudent), SendInput{
		RecipientID:   staff.ID,
		RecipientRole: models.RoleOffice,
		Content:       "Please change my grade.",
	})
	require.Error(t, err)
	var permErr *PermissionError
	require.True(t, errors.As(err, &permErr))
	assert.Equal(t, ReasonStudentToOffice, permErr.Reason)

	var convCount, msgCount int64
	db.Model(&models.Conversation{}).Count(&convCount)
	db.Model(&models.Message{}).Count(&msgCount)
	assert.Zero(t, convCount)
	assert.Zero(t, msgCount)
}

func TestSendRejectedAttachmentIsAllOrNothing(t *testing.T) {
	db := openTestDB(t)
	svc, files := newService(t, db)
	teacher := createTeacher(t, db, "t1@uni.edu")
	student := createStudent(t, db, "s1@uni.edu", "S-001", nil)

	_, err := svc.Send(ref(student.ID, models.RoleStudent), SendInput{
		RecipientID:   teacher.ID,
		RecipientRole: models.RoleTeacher,
		Content:       "Here are my files.",
		Attachments: []AttachmentUpload{
			{FileName: "excuse.pdf", ContentType: "application/pdf", Size: 100, Data: []byte("pdf")},
			{FileName: "tool.exe", ContentType: "application/x-msdownload", Size: 100, Data: []byte("exe")},
		},
	})
	require.Error(t, err)
	var rejected *AttachmentRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "tool.exe", rejected.FileName)

	var msgCount, attCount int64
	db.Model(&models.Message{}).Count(&msgCount)
	db.Model(&models.Attachment{}).Count(&attCount)
	assert.Zero(t, msgCount)
	assert.Zero(t, attCount)
	assert.Zero(t, files.Len())
}

func TestSendPersistsMessageWithAttachments(t *testing.T) {
	db := openTestDB(t)
	svc, files := newService(t, db)
	teacher := createTeacher(t, db, "t1@uni.edu")
	student := createStudent(t, db, "s1@uni.edu", "S-001", nil)

	msg, err := svc.Send(ref(teacher.ID, models.RoleTeacher), SendInput{
		RecipientID:   student.ID,
		RecipientRole: models.RoleStudent,
		Content:       "Syllabus attached.",
		Category:      "announcement",
		Attachments: []AttachmentUpload{
			{FileName: "syllabus.pdf", ContentType: "application/pdf", Size: 9, Data: []byte("syllabus!")},
		},
	})
	require.NoError(t, err)
	require.Len(t, msg.Attachments, 1)
	assert.NotEmpty(t, msg.Attachments[0].StorageKey)
	assert.Equal(t, 1, files.Len())

	var stored models.Message
	require.NoError(t, db.Preload("Attachments").First(&stored, "id = ?", msg.ID).Error)
	assert.Equal(t, "announcement", stored.Category)
	require.Len(t, stored.Attachments, 1)
	assert.Equal(t, "syllabus.pdf", stored.Attachments[0].FileName)
}

func TestSendIntoConversationRequiresParticipant(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newService(t, db)
	teacher := createTeacher(t, db, "t1@uni.edu")
	student := createStudent(t, db, "s1@uni.edu", "S-001", nil)
	outsider := createStudent(t, db, "s2@uni.edu", "S-002", nil)

	msg, err := svc.Send(ref(student.ID, models.RoleStudent), SendInput{
		RecipientID:   teacher.ID,
		RecipientRole: models.RoleTeacher,
		Content:       "First contact.",
	})
	require.NoError(t, err)

	_, err = svc.Send(ref(outsider.ID, models.RoleStudent), SendInput{
		ConversationID: msg.ConversationID,
		Content:        "Let me in.",
	})
	require.Error(t, err)
	var permErr *PermissionError
	require.True(t, errors.As(err, &permErr))
	assert.Equal(t, ReasonNotParticipant, permErr.Reason)
}

// flakyStore fails its nth Save call, simulating a storage outage mid-broadcast.
type flakyStore struct {
	*storage.MemStore
	failOn int
	calls  int
}

func (s *flakyStore) Save(name, contentType string, data []byte) (string, error) {
	s.calls++
	if s.calls == s.failOn {
		return "", errors.New("storage unavailable")
	}
	return s.MemStore.Save(name, contentType, data)
}

func TestBroadcastToClass(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newService(t, db)
	teacher := createTeacher(t, db, "t1@uni.edu")
	class := createClass(t, db, "Algebra II")
	for i, email := range []string{"s1@uni.edu", "s2@uni.edu", "s3@uni.edu"} {
		createStudent(t, db, email, "S-00"+string(rune('1'+i)), &class.ID)
	}

	result, err := svc.BroadcastToClass(ref(teacher.ID, models.RoleTeacher),
		class.ID, "Exam moved to Friday.", "announcement", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.SentCount)
	assert.Empty(t, result.Failures)

	var msgCount, convCount int64
	db.Model(&models.Message{}).Count(&msgCount)
	db.Model(&models.Conversation{}).Count(&convCount)
	assert.Equal(t, int64(3), msgCount)
	assert.Equal(t, int64(3), convCount)
}

func TestBroadcastPartialFailure(t *testing.T) {
	db := openTestDB(t)
	files := &flakyStore{MemStore: storage.NewMemStore(), failOn: 2}
	svc := NewService(db, files, DefaultAttachmentPolicy())
	teacher := createTeacher(t, db, "t1@uni.edu")
	class := createClass(t, db, "Algebra II")
	var students []models.Student
	for i, email := range []string{"s1@uni.edu", "s2@uni.edu", "s3@uni.edu"} {
		students = append(students, createStudent(t, db, email, "S-00"+string(rune('1'+i)), &class.ID))
	}

	result, err := svc.BroadcastToClass(ref(teacher.ID, models.RoleTeacher),
		class.ID, "Handout attached.", "general", []AttachmentUpload{
			{FileName: "handout.pdf", ContentType: "application/pdf", Size: 7, Data: []byte("handout")},
		})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SentCount)
	require.Len(t, result.Failures, 1)
	assert.NotEmpty(t, result.Failures[0].StudentID)
	assert.NotEmpty(t, result.Failures[0].Reason)

	// The two successful sends are independently retrievable.
	var delivered int64
	db.Model(&models.Message{}).Count(&delivered)
	assert.Equal(t, int64(2), delivered)
	for _, st := range students {
		summaries, err := svc.Conversations(st.ID)
		require.NoError(t, err)
		if st.ID == result.Failures[0].StudentID {
			continue
		}
		require.Len(t, summaries, 1)
		assert.Equal(t, int64(1), summaries[0].UnreadCount)
	}
}

func TestBroadcastDeniedForStudents(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newService(t, db)
	class := createClass(t, db, "Algebra II")
	student := createStudent(t, db, "s1@uni.edu", "S-001", &class.ID)

	_, err := svc.BroadcastToClass(ref(student.ID, models.RoleStudent),
		class.ID, "Party at my place.", "general", nil)
	require.Error(t, err)
	var permErr *PermissionError
	require.True(t, errors.As(err, &permErr))
	assert.Equal(t, ReasonStudentBroadcast, permErr.Reason)
}

func TestBroadcastEmptyClass(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newService(t, db)
	teacher := createTeacher(t, db, "t1@uni.edu")
	class := createClass(t, db, "Empty Class")

	_, err := svc.BroadcastToClass(ref(teacher.ID, models.RoleTeacher),
		class.ID, "Anyone there?", "general", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestConversationsOrderedByRecency(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newService(t, db)
	teacher := createTeacher(t, db, "t1@uni.edu")
	first := createStudent(t, db, "s1@uni.edu", "S-001", nil)
	second := createStudent(t, db, "s2@uni.edu", "S-002", nil)

	_, err := svc.Send(ref(teacher.ID, models.RoleTeacher), SendInput{
		RecipientID: first.ID, RecipientRole: models.RoleStudent, Content: "older",
	})
	require.NoError(t, err)
	_, err = svc.Send(ref(teacher.ID, models.RoleTeacher), SendInput{
		RecipientID: second.ID, RecipientRole: models.RoleStudent, Content: "newer",
	})
	require.NoError(t, err)

	summaries, err := svc.Conversations(teacher.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, second.ID, summaries[0].Partner.ID)
	assert.Equal(t, first.ID, summaries[1].Partner.ID)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, "newer", summaries[0].LastMessage.Content)
}
