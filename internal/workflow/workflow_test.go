package workflow

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

// fakeStore 是 Store 的内存实现
type fakeStore struct {
	users       map[int64]*domain.User
	shifts      map[int64]*domain.Shift
	assignments map[int64]*domain.ShiftAssignment
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[int64]*domain.User{
			1: {ID: 1, Username: "zhangsan", FullName: "张三", Role: domain.RoleNurse, IsActive: true},
			2: {ID: 2, Username: "lisi", FullName: "李四", Role: domain.RoleNurse, IsActive: false},
		},
		shifts: map[int64]*domain.Shift{
			1: {ID: 1, Name: "早班", StartTime: "08:00:00", EndTime: "16:00:00", Type: domain.ShiftTypeMorning, Status: domain.ShiftStatusActive},
			2: {ID: 2, Name: "停用班次", StartTime: "12:00:00", EndTime: "20:00:00", Type: domain.ShiftTypeMiddle, Status: domain.ShiftStatusDisabled},
		},
		assignments: make(map[int64]*domain.ShiftAssignment),
		nextID:      1,
	}
}

func (s *fakeStore) GetUserByID(id int64) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *fakeStore) GetShiftByID(id int64) (*domain.Shift, error) {
	shift, ok := s.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return shift, nil
}

func (s *fakeStore) ShiftAssignmentExists(userID int64, shiftID int64, workDate time.Time) (bool, error) {
	for _, sa := range s.assignments {
		if sa.UserID == userID && sa.ShiftID == shiftID && sa.WorkDate.Equal(workDate) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateShiftAssignment(sa *domain.ShiftAssignment) error {
	sa.ID = s.nextID
	s.nextID++
	s.assignments[sa.ID] = sa
	return nil
}

func (s *fakeStore) GetShiftAssignmentByID(id int64) (*domain.ShiftAssignment, error) {
	sa, ok := s.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return sa, nil
}

func (s *fakeStore) UpdateShiftAssignmentDate(sa *domain.ShiftAssignment) error {
	stored, ok := s.assignments[sa.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.WorkDate = sa.WorkDate
	return nil
}

func (s *fakeStore) DeleteShiftAssignment(id int64) error {
	delete(s.assignments, id)
	return nil
}

// fakeValidator 按日期返回预设的违规
type fakeValidator struct {
	violations map[string][]string // key 为 "2006-01-02"
	excludedID int64               // 最近一次 ValidateMove 收到的排班 ID
}

func (v *fakeValidator) Validate(userID int64, shiftID int64, date time.Time) (*domain.ValidationResult, error) {
	vs := v.violations[date.Format("2006-01-02")]
	if vs == nil {
		vs = make([]string, 0)
	}
	return &domain.ValidationResult{
		IsValid:    len(vs) == 0,
		Violations: vs,
		Warnings:   make([]string, 0),
	}, nil
}

func (v *fakeValidator) ValidateMove(userID int64, shiftID int64, date time.Time, assignmentID int64) (*domain.ValidationResult, error) {
	v.excludedID = assignmentID
	return v.Validate(userID, shiftID, date)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreate(t *testing.T) {
	store := newFakeStore()
	wf := New(store, &fakeValidator{})

	sa, err := wf.Create(CreateParams{UserID: 1, ShiftID: 1, Date: date(2026, time.August, 26)}, 100)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sa.ID == 0 {
		t.Error("ID 未分配")
	}
	if sa.CreatedByID != 100 {
		t.Errorf("CreatedByID = %d, want 100", sa.CreatedByID)
	}
	if sa.Shift == nil || sa.Shift.Name != "早班" {
		t.Errorf("Shift = %+v, want 早班", sa.Shift)
	}
	if len(store.assignments) != 1 {
		t.Errorf("持久化了 %d 条排班, want 1", len(store.assignments))
	}
}

func TestCreateNormalizesDate(t *testing.T) {
	store := newFakeStore()
	wf := New(store, &fakeValidator{})

	sa, err := wf.Create(CreateParams{
		UserID:  1,
		ShiftID: 1,
		Date:    time.Date(2026, time.August, 26, 14, 30, 0, 0, time.UTC),
	}, 100)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !sa.WorkDate.Equal(date(2026, time.August, 26)) {
		t.Errorf("WorkDate = %v, want 2026-08-26 00:00:00", sa.WorkDate)
	}
}

func TestCreateInactiveUser(t *testing.T) {
	store := newFakeStore()
	wf := New(store, &fakeValidator{})

	_, err := wf.Create(CreateParams{UserID: 2, ShiftID: 1, Date: date(2026, time.August, 26)}, 100)
	if !errors.Is(err, domain.ErrInactiveUser) {
		t.Fatalf("Create() error = %v, want ErrInactiveUser", err)
	}
	if len(store.assignments) != 0 {
		t.Error("失败的请求不应产生写入")
	}
}

func TestCreateDisabledShift(t *testing.T) {
	store := newFakeStore()
	wf := New(store, &fakeValidator{})

	_, err := wf.Create(CreateParams{UserID: 1, ShiftID: 2, Date: date(2026, time.August, 26)}, 100)
	if !errors.Is(err, domain.ErrShiftDisabled) {
		t.Fatalf("Create() error = %v, want ErrShiftDisabled", err)
	}
}

func TestCreateValidationFailure(t *testing.T) {
	store := newFakeStore()
	wf := New(store, &fakeValidator{violations: map[string][]string{
		"2026-08-29": {"违反约定「No Weekend Work」：不允许在周末排班"},
	}})

	_, err := wf.Create(CreateParams{UserID: 1, ShiftID: 1, Date: date(2026, time.August, 29)}, 100)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Create() error = %v, want *ValidationError", err)
	}
	if len(vErr.Violations) != 1 {
		t.Errorf("Violations = %v, want 1 entry", vErr.Violations)
	}
	if len(store.assignments) != 0 {
		t.Error("校验失败的请求不应产生写入")
	}
}

func TestCreateDuplicate(t *testing.T) {
	store := newFakeStore()
	wf := New(store, &fakeValidator{})

	params := CreateParams{UserID: 1, ShiftID: 1, Date: date(2026, time.August, 26)}
	if _, err := wf.Create(params, 100); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := wf.Create(params, 100)
	if !errors.Is(err, domain.ErrDuplicateAssignment) {
		t.Fatalf("Create() error = %v, want ErrDuplicateAssignment", err)
	}
	if len(store.assignments) != 1 {
		t.Errorf("持久化了 %d 条排班, want 1", len(store.assignments))
	}

	// 同一天的不同班次不算重复
	store.shifts[3] = &domain.Shift{ID: 3, Name: "晚班", StartTime: "16:00:00", EndTime: "22:00:00", Type: domain.ShiftTypeEvening, Status: domain.ShiftStatusActive}
	if _, err := wf.Create(CreateParams{UserID: 1, ShiftID: 3, Date: date(2026, time.August, 26)}, 100); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestBulkCreate(t *testing.T) {
	store := newFakeStore()
	wf := New(store, &fakeValidator{violations: map[string][]string{
		"2026-08-29": {"违反约定「No Weekend Work」：不允许在周末排班"},
	}})

	result := wf.BulkCreate([]CreateParams{
		{UserID: 1, ShiftID: 1, Date: date(2026, time.August, 26)},
		{UserID: 1, ShiftID: 1, Date: date(2026, time.August, 29)}, // 校验失败
		{UserID: 1, ShiftID: 1, Date: date(2026, time.August, 27)},
	}, 100)

	if len(result.Successful) != 2 {
		t.Errorf("Successful = %d, want 2", len(result.Successful))
	}
	if len(result.Failed) != 1 {
		t.Fatalf("Failed = %d, want 1", len(result.Failed))
	}
	if !result.Failed[0].Assignment.Date.Equal(date(2026, time.August, 29)) {
		t.Errorf("失败的请求 = %+v, want 2026-08-29", result.Failed[0].Assignment)
	}
	if len(store.assignments) != 2 {
		t.Errorf("持久化了 %d 条排班, want 2", len(store.assignments))
	}
}

func TestUpdate(t *testing.T) {
	store := newFakeStore()
	wf := New(store, &fakeValidator{violations: map[string][]string{
		"2026-08-29": {"违反约定「No Weekend Work」：不允许在周末排班"},
	}})

	sa, err := wf.Create(CreateParams{UserID: 1, ShiftID: 1, Date: date(2026, time.August, 26)}, 100)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 新日期校验失败时不落库
	_, err = wf.Update(sa.ID, date(2026, time.August, 29))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Update() error = %v, want *ValidationError", err)
	}
	if !store.assignments[sa.ID].WorkDate.Equal(date(2026, time.August, 26)) {
		t.Error("校验失败后日期不应被修改")
	}

	// 合法的新日期
	updated, err := wf.Update(sa.ID, date(2026, time.August, 27))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.WorkDate.Equal(date(2026, time.August, 27)) {
		t.Errorf("WorkDate = %v, want 2026-08-27", updated.WorkDate)
	}
}

func TestUpdateExcludesSelfFromValidation(t *testing.T) {
	store := newFakeStore()
	validator := &fakeValidator{}
	wf := New(store, validator)

	sa, err := wf.Create(CreateParams{UserID: 1, ShiftID: 1, Date: date(2026, time.August, 26)}, 100)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := wf.Update(sa.ID, date(2026, time.August, 27)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	// 校验引擎必须知道哪条排班正在被移动，以便从快照中排除它
	if validator.excludedID != sa.ID {
		t.Errorf("传给校验引擎的排班 ID = %d, want %d", validator.excludedID, sa.ID)
	}
}

func TestUpdateUnchangedDate(t *testing.T) {
	store := newFakeStore()
	wf := New(store, &fakeValidator{})

	sa, err := wf.Create(CreateParams{UserID: 1, ShiftID: 1, Date: date(2026, time.August, 26)}, 100)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 日期不变的更新不是重复排班，原样返回
	updated, err := wf.Update(sa.ID, date(2026, time.August, 26))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ID != sa.ID || !updated.WorkDate.Equal(sa.WorkDate) {
		t.Errorf("Update() = %+v, want unchanged assignment", updated)
	}
}

func TestRemove(t *testing.T) {
	store := newFakeStore()
	wf := New(store, &fakeValidator{})

	sa, err := wf.Create(CreateParams{UserID: 1, ShiftID: 1, Date: date(2026, time.August, 26)}, 100)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := wf.Remove(sa.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(store.assignments) != 0 {
		t.Error("排班未被删除")
	}

	if err := wf.Remove(sa.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("Remove() error = %v, want sql.ErrNoRows", err)
	}
}
