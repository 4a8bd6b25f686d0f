package models

// Class represents an academic class/group that students are enrolled in.
type Class struct {
	BaseModel
	Name       string `gorm:"size:100;not null" json:"name"`
	Department string `gorm:"size:100" json:"department"`
	Year       int    `json:"year"`

	// Relations
	Students        []Student       `gorm:"foreignKey:ClassID" json:"-"`
	ScheduleEntries []ScheduleEntry `gorm:"foreignKey:ClassID" json:"-"`
}

// ScheduleEntry represents one period of a class timetable.
type ScheduleEntry struct {
	BaseModel
	ClassID   string `gorm:"size:36;index;not null" json:"classId"`
	TeacherID string `gorm:"size:36;index" json:"teacherId"`
	DayOfWeek int    `gorm:"not null" json:"dayOfWeek"` // 1 = Monday .. 7 = Sunday
	Period    int    `gorm:"not null" json:"period"`
	Subject   string `gorm:"size:100;not null" json:"subject"`
	Room      string `gorm:"size:50" json:"room"`

	// Relations
	Class   Class   `gorm:"foreignKey:ClassID" json:"-"`
	Teacher Teacher `gorm:"foreignKey:TeacherID" json:"-"`
}
