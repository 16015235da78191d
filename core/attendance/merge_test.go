package attendance

import (
	"reflect"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/schedule"
)

var testLoc = func() *time.Location {
	loc, err := time.LoadLocation("Africa/Algiers")
	if err != nil {
		panic(err)
	}
	return loc
}()

func testRoster() []Student {
	grp := schedule.Group{ID: 3, Name: "G1", Section: "A"}
	return []Student{
		{ID: 1, FirstName: "Amina", LastName: "Bensalem", FullName: "Amina Bensalem", Email: "amina@uni.dz", Group: grp},
		{ID: 2, FirstName: "Karim", LastName: "Haddad", FullName: "Karim Haddad", Email: "karim@uni.dz", Group: grp},
		{ID: 3, FirstName: "Lina", LastName: "Cherif", FullName: "Lina Cherif", Email: "lina@uni.dz", Group: grp},
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"present", StatusPresent},
		{"  Present ", StatusPresent},
		{"LATE", StatusLate},
		{"justified", StatusJustified},
		{"Justified Absence", StatusJustified},
		{"absent", StatusAbsent},
		{"", StatusAbsent},
		{"whatever", StatusAbsent},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeStatus(tt.in); got != tt.want {
				t.Errorf("NormalizeStatus(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMergeForDate(t *testing.T) {
	day := time.Date(2021, 3, 1, 0, 0, 0, 0, testLoc)
	start := time.Date(2021, 3, 1, 8, 0, 0, 0, testLoc)
	checkIn := time.Date(2021, 3, 1, 10, 5, 30, 0, testLoc)

	records := []Record{
		{ID: 10, StudentID: 1, StudentGroup: "G1", CourseID: 7, CourseStart: start, Status: StatusPresent, CheckIn: null.TimeFrom(checkIn)},
		{ID: 11, StudentID: 2, StudentGroup: "G1", CourseID: 7, CourseStart: start.AddDate(0, 0, -1), Status: StatusPresent}, // previous day, ignored
		{ID: 12, StudentID: 3, StudentGroup: "G1", CourseID: 7, Status: StatusPresent},                                      // zero start, ignored
	}

	rows := MergeForDate(testRoster(), records, day, testLoc)
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}

	// matched: record status and skew-corrected wall-clock check-in
	if rows[0].Status != string(StatusPresent) {
		t.Errorf("rows[0].Status = %q, want %q", rows[0].Status, StatusPresent)
	}
	if rows[0].CheckIn != "08:05:30" {
		t.Errorf("rows[0].CheckIn = %q, want %q", rows[0].CheckIn, "08:05:30")
	}
	if !rows[0].RecordID.Valid || rows[0].RecordID.Int != 10 {
		t.Errorf("rows[0].RecordID = %+v, want 10", rows[0].RecordID)
	}

	// unmatched roster students default to absent
	for _, i := range []int{1, 2} {
		if rows[i].Status != string(StatusAbsent) {
			t.Errorf("rows[%d].Status = %q, want %q", i, rows[i].Status, StatusAbsent)
		}
		if rows[i].CheckIn != NoCheckIn {
			t.Errorf("rows[%d].CheckIn = %q, want %q", i, rows[i].CheckIn, NoCheckIn)
		}
		if rows[i].RecordID.Valid {
			t.Errorf("rows[%d].RecordID = %+v, want invalid", i, rows[i].RecordID)
		}
	}
}

func TestMergeForDate_duplicateRecordsLastWins(t *testing.T) {
	day := time.Date(2021, 3, 1, 0, 0, 0, 0, testLoc)
	start := time.Date(2021, 3, 1, 8, 0, 0, 0, testLoc)

	records := []Record{
		{ID: 10, StudentID: 1, CourseStart: start, Status: StatusPresent},
		{ID: 11, StudentID: 1, CourseStart: start, Status: StatusLate},
	}
	rows := MergeForDate(testRoster()[:1], records, day, testLoc)
	if rows[0].Status != string(StatusLate) {
		t.Errorf("rows[0].Status = %q, want %q", rows[0].Status, StatusLate)
	}
	if rows[0].RecordID.Int != 11 {
		t.Errorf("rows[0].RecordID = %d, want 11", rows[0].RecordID.Int)
	}
}

func TestMergeForDate_pure(t *testing.T) {
	day := time.Date(2021, 3, 1, 0, 0, 0, 0, testLoc)
	start := time.Date(2021, 3, 1, 8, 0, 0, 0, testLoc)

	roster := testRoster()
	records := []Record{
		{ID: 10, StudentID: 1, StudentGroup: "G1", CourseID: 7, CourseStart: start, Status: StatusPresent, CheckIn: null.TimeFrom(start.Add(10 * time.Minute))},
		{ID: 11, StudentID: 2, StudentGroup: "G1", CourseID: 7, CourseStart: start, Status: StatusLate},
	}
	rosterBefore := testRoster()
	recordsBefore := append([]Record(nil), records...)

	first := MergeForDate(roster, records, day, testLoc)
	second := MergeForDate(roster, records, day, testLoc)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls differ:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(roster, rosterBefore) {
		t.Errorf("roster mutated: %+v", roster)
	}
	if !reflect.DeepEqual(records, recordsBefore) {
		t.Errorf("records mutated: %+v", records)
	}
}

func TestMergeForDate_missingCheckInTime(t *testing.T) {
	day := time.Date(2021, 3, 1, 0, 0, 0, 0, testLoc)
	start := time.Date(2021, 3, 1, 8, 0, 0, 0, testLoc)

	records := []Record{
		{ID: 10, StudentID: 1, CourseStart: start, Status: StatusJustified}, // manual record, no check-in
	}
	rows := MergeForDate(testRoster()[:1], records, day, testLoc)
	if rows[0].Status != string(StatusJustified) {
		t.Errorf("rows[0].Status = %q, want %q", rows[0].Status, StatusJustified)
	}
	if rows[0].CheckIn != NoCheckIn {
		t.Errorf("rows[0].CheckIn = %q, want %q", rows[0].CheckIn, NoCheckIn)
	}
}

func TestMergeOverall(t *testing.T) {
	days := []time.Time{
		time.Date(2021, 3, 1, 0, 0, 0, 0, testLoc),
		time.Date(2021, 3, 3, 0, 0, 0, 0, testLoc),
		time.Date(2021, 3, 5, 0, 0, 0, 0, testLoc),
	}
	start := func(d time.Time) time.Time { return d.Add(8 * time.Hour) }
	records := []Record{
		{ID: 1, StudentID: 1, CourseStart: start(days[0]), Status: StatusPresent},
		{ID: 2, StudentID: 1, CourseStart: start(days[1]), Status: StatusLate},
		{ID: 3, StudentID: 1, CourseStart: start(days[2]), Status: StatusJustified},
		{ID: 4, StudentID: 2, CourseStart: start(days[0]), Status: StatusPresent},
		{ID: 5, StudentID: 2, CourseStart: start(days[1]), Status: StatusAbsent}, // manual absent record, not counted
	}

	rows := MergeOverall(testRoster(), records, days)
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}

	tests := []struct {
		idx         string
		row         ResolvedRow
		wantStatus  string
		wantPresent int
	}{
		{idx: "all present-equivalent", row: rows[0], wantStatus: "100% Present (3/3)", wantPresent: 3},
		{idx: "one of three", row: rows[1], wantStatus: "33% Present (1/3)", wantPresent: 1},
		{idx: "no records", row: rows[2], wantStatus: "0% Present (0/3)", wantPresent: 0},
	}
	for _, tt := range tests {
		t.Run(tt.idx, func(t *testing.T) {
			if tt.row.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", tt.row.Status, tt.wantStatus)
			}
			if tt.row.PresentSessions != tt.wantPresent {
				t.Errorf("PresentSessions = %d, want %d", tt.row.PresentSessions, tt.wantPresent)
			}
			if tt.row.TotalSessions != 3 {
				t.Errorf("TotalSessions = %d, want 3", tt.row.TotalSessions)
			}
		})
	}
}

func TestMergeOverall_noSessions(t *testing.T) {
	rows := MergeOverall(testRoster(), nil, nil)
	for i, row := range rows {
		if row.Status != NoSessions {
			t.Errorf("rows[%d].Status = %q, want %q", i, row.Status, NoSessions)
		}
	}
}

func TestSessionDaysFromRecords(t *testing.T) {
	records := []Record{
		{CourseStart: time.Date(2021, 3, 3, 8, 0, 0, 0, testLoc)},
		{CourseStart: time.Date(2021, 3, 1, 8, 0, 0, 0, testLoc)},
		{CourseStart: time.Date(2021, 3, 1, 10, 0, 0, 0, testLoc)}, // same day, second session
		{},
	}
	days := SessionDaysFromRecords(records, testLoc)
	if len(days) != 2 {
		t.Fatalf("len(days) = %d, want 2", len(days))
	}
	if !days[0].Before(days[1]) {
		t.Errorf("days not ascending: %v", days)
	}
	if got, want := days[0].Format("2006-01-02"), "2021-03-01"; got != want {
		t.Errorf("days[0] = %s, want %s", got, want)
	}
}

func TestGroups(t *testing.T) {
	records := []Record{
		{StudentGroup: "G2"},
		{StudentGroup: "G1"},
		{StudentGroup: "G2"},
		{StudentGroup: ""},
	}
	got := Groups(records)
	want := []string{"G1", "G2"}
	if len(got) != len(want) {
		t.Fatalf("Groups() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Groups()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
