// Package workflow 实现排班的写入工作流：查重、调用校验引擎、落库。
// 排班记录只允许通过这里创建
package workflow

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
	"github.com/careshift-dev/hospital-roster/backend/internal/rules"
)

// Store 是工作流依赖的存储接口，由 repository.Repository 实现
type Store interface {
	GetUserByID(id int64) (*domain.User, error)
	GetShiftByID(id int64) (*domain.Shift, error)
	ShiftAssignmentExists(userID int64, shiftID int64, workDate time.Time) (bool, error)
	CreateShiftAssignment(sa *domain.ShiftAssignment) error
	GetShiftAssignmentByID(id int64) (*domain.ShiftAssignment, error)
	UpdateShiftAssignmentDate(sa *domain.ShiftAssignment) error
	DeleteShiftAssignment(id int64) error
}

// Validator 是校验引擎的接口，由 rules.Engine 实现
type Validator interface {
	Validate(userID int64, shiftID int64, date time.Time) (*domain.ValidationResult, error)
	ValidateMove(userID int64, shiftID int64, date time.Time, assignmentID int64) (*domain.ValidationResult, error)
}

// ValidationError 携带完整的违规列表，约定校验失败不是系统故障，
// 而是正常业务流程中的预期结果
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("排班校验未通过: %s", strings.Join(e.Violations, "；"))
}

// Workflow 驱动单条和批量的排班请求。
// 同一个用户的校验和落库在一把按用户分配的锁内串行执行，
// 避免两个并发请求都基于过期的周内聚合值通过上限检查；
// 数据库层的唯一索引仍然是防止重复排班的最终保障
type Workflow struct {
	store  Store
	engine Validator

	mu sync.Mutex
	// userLocks 中的条目不会被回收，上界是在职员工数，
	// 每个条目只有一个 mutex，进程生命周期内可以接受
	userLocks map[int64]*sync.Mutex
}

func New(store Store, engine Validator) *Workflow {
	return &Workflow{
		store:     store,
		engine:    engine,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

func (w *Workflow) lockUser(userID int64) func() {
	w.mu.Lock()
	lock, exists := w.userLocks[userID]
	if !exists {
		lock = &sync.Mutex{}
		w.userLocks[userID] = lock
	}
	w.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// CreateParams 是一条排班请求
type CreateParams struct {
	UserID  int64     `json:"userID"`
	ShiftID int64     `json:"shiftID"`
	Date    time.Time `json:"date"`
}

// Create 校验并持久化一条排班。
// 失败时不产生任何写入；校验失败返回 *ValidationError，
// 重复排班返回 domain.ErrDuplicateAssignment，调用方据此区分提示语
func (w *Workflow) Create(params CreateParams, creatorID int64) (*domain.ShiftAssignment, error) {
	user, err := w.store.GetUserByID(params.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}

	shift, err := w.store.GetShiftByID(params.ShiftID)
	if err != nil {
		return nil, err
	}
	if shift.Status != domain.ShiftStatusActive {
		return nil, domain.ErrShiftDisabled
	}

	workDate := rules.NormalizeDate(params.Date)

	unlock := w.lockUser(params.UserID)
	defer unlock()

	result, err := w.engine.Validate(params.UserID, params.ShiftID, workDate)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return nil, &ValidationError{Violations: result.Violations}
	}

	exists, err := w.store.ShiftAssignmentExists(params.UserID, params.ShiftID, workDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateAssignment
	}

	sa := &domain.ShiftAssignment{
		UserID:      params.UserID,
		ShiftID:     params.ShiftID,
		WorkDate:    workDate,
		CreatedByID: creatorID,
		Shift:       shift,
	}
	if err := w.store.CreateShiftAssignment(sa); err != nil {
		return nil, err
	}

	return sa, nil
}

// BulkFailure 记录批量排班中单条失败的请求和失败原因
type BulkFailure struct {
	Assignment CreateParams `json:"assignment"`
	Error      string       `json:"error"`
}

// BulkResult 中成功和失败相互独立
type BulkResult struct {
	Successful []*domain.ShiftAssignment `json:"successful"`
	Failed     []BulkFailure             `json:"failed"`
}

// BulkCreate 逐条执行 Create，每条请求独立成败，不使用跨越整个批次的事务，
// 某条请求的违规或冲突不会影响其余请求
func (w *Workflow) BulkCreate(items []CreateParams, creatorID int64) *BulkResult {
	result := &BulkResult{
		Successful: make([]*domain.ShiftAssignment, 0),
		Failed:     make([]BulkFailure, 0),
	}

	for _, item := range items {
		sa, err := w.Create(item, creatorID)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{
				Assignment: item,
				Error:      err.Error(),
			})
			continue
		}
		result.Successful = append(result.Successful, sa)
	}

	return result
}

// Update 修改排班的工作日期，用户和班次在创建后不可变。
// 新日期会重新走一遍完整校验，校验时排除这条排班自身，
// 否则在工时已满的一周内移动班次会被它自己的工时挡下。
// 新日期与当前日期相同时不产生任何写入，直接返回
func (w *Workflow) Update(id int64, newDate time.Time) (*domain.ShiftAssignment, error) {
	sa, err := w.store.GetShiftAssignmentByID(id)
	if err != nil {
		return nil, err
	}

	workDate := rules.NormalizeDate(newDate)
	if sa.WorkDate.Equal(workDate) {
		return sa, nil
	}

	unlock := w.lockUser(sa.UserID)
	defer unlock()

	result, err := w.engine.ValidateMove(sa.UserID, sa.ShiftID, workDate, sa.ID)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return nil, &ValidationError{Violations: result.Violations}
	}

	exists, err := w.store.ShiftAssignmentExists(sa.UserID, sa.ShiftID, workDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateAssignment
	}

	sa.WorkDate = workDate
	if err := w.store.UpdateShiftAssignmentDate(sa); err != nil {
		return nil, err
	}

	return sa, nil
}

// Remove 硬删除一条排班。删除只会放宽其他排班受到的约束，不需要重新校验
func (w *Workflow) Remove(id int64) error {
	if _, err := w.store.GetShiftAssignmentByID(id); err != nil {
		return err
	}

	return w.store.DeleteShiftAssignment(id)
}
