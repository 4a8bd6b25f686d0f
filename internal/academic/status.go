package academic

import (
	"math"
)

// Status represents an attendance-standing tier, ordered by severity.
type Status string

const (
	StatusGoodStanding Status = "good-standing"
	StatusWarning      Status = "warning"
	StatusTasdiq       Status = "tasdiq"  // requires medical certification to stay eligible
	StatusMahroom      Status = "mahroom" // disqualified from exams
)

// Default tier thresholds (attendance-rate percentages). Callers can
// override them per request.
const (
	DefaultMahroomThreshold = 75.0
	DefaultTasdiqThreshold  = 85.0

	// The warning band starts below this rate; not configurable.
	warningRate = 90.0
)

// Thresholds holds the configurable tier boundaries.
type Thresholds struct {
	Mahroom float64
	Tasdiq  float64
}

// DefaultThresholds returns the standard 75/85 tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Mahroom: DefaultMahroomThreshold, Tasdiq: DefaultTasdiqThreshold}
}

// Result is the computed academic standing. Derived on every request,
// never persisted.
type Result struct {
	Status            Status  `json:"status"`
	AttendanceRate    float64 `json:"attendanceRate"`
	RemainingAbsences int     `json:"remainingAbsences"`
	Message           string  `json:"message"`
}

// maxAbsences is the number of absences a student may accumulate before
// falling below the given rate threshold.
func maxAbsences(total int, threshold float64) int {
	return int(math.Floor(float64(total) * (1 - threshold/100)))
}

// Evaluate maps an attendance rate onto a standing tier and computes how many
// further absences the student can afford before dropping into the next tier.
// A totalCount of zero means no classes have been held yet; the student is
// not penalized and the rate is treated as 100.
func Evaluate(rate float64, absentCount, totalCount int, th Thresholds) Result {
	if totalCount == 0 {
		return Result{
			Status:         StatusGoodStanding,
			AttendanceRate: 100,
			Message:        "No classes held yet.",
		}
	}

	res := Result{AttendanceRate: rate}
	switch {
	case rate < th.Mahroom:
		res.Status = StatusMahroom
		res.RemainingAbsences = 0 // already past the limit
		res.Message = "Attendance below the mahroom threshold: disqualified from exams."
	case rate < th.Tasdiq:
		res.Status = StatusTasdiq
		res.RemainingAbsences = remaining(totalCount, th.Mahroom, absentCount)
		res.Message = "Attendance in the tasdiq band: medical certification required to retain exam eligibility."
	case rate < warningRate:
		res.Status = StatusWarning
		res.RemainingAbsences = remaining(totalCount, th.Tasdiq, absentCount)
		res.Message = "Attendance is slipping: further absences will require certification."
	default:
		res.Status = StatusGoodStanding
		res.RemainingAbsences = remaining(totalCount, th.Tasdiq, absentCount)
		res.Message = "Attendance in good standing."
	}
	return res
}

func remaining(total int, threshold float64, absent int) int {
	r := maxAbsences(total, threshold) - absent
	if r < 0 {
		return 0
	}
	return r
}
