package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
	"github.com/careshift-dev/hospital-roster/backend/internal/workflow"
)

const dateLayout = "2006-01-02"

// respondAssignmentError 把工作流的错误分类映射成对应的响应：
// 校验失败附带完整的违规列表，重复排班和前置条件失败使用各自的提示语
func (h *Handler) respondAssignmentError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *workflow.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.errorResponseWithData(w, r, "排班校验未通过", validationErr.Violations)
	case errors.Is(err, domain.ErrDuplicateAssignment),
		errors.Is(err, domain.ErrInactiveUser),
		errors.Is(err, domain.ErrShiftDisabled):
		h.errorResponse(w, r, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "用户或班次不存在")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) creatorID(r *http.Request) (int64, error) {
	subString := r.Context().Value(SubCtxKey).(string)
	return strconv.ParseInt(subString, 10, 64)
}

// notifyAssignment 向被排班的员工发送邮件通知，通知失败只记录日志，不影响已完成的排班
func (h *Handler) notifyAssignment(sa *domain.ShiftAssignment) {
	if !h.config.Assignment.NotifyByEmail || sa.Shift == nil {
		return
	}

	user, err := h.repository.GetUserByID(sa.UserID)
	if err != nil {
		slog.Error("无法获取排班通知的收件人", "userID", sa.UserID, "error", err)
		return
	}

	if err := h.publishMail(domain.MailMessage{
		Type: "assignment_notice",
		To:   user.Email,
		Data: domain.AssignmentNoticeMailData{
			FullName:  user.FullName,
			ShiftName: sa.Shift.Name,
			StartTime: sa.Shift.StartTime,
			EndTime:   sa.Shift.EndTime,
			WorkDate:  sa.WorkDate.Format(dateLayout),
		},
	}); err != nil {
		slog.Error("无法投递排班通知邮件", "userID", sa.UserID, "error", err)
	}
}

type assignmentRequest struct {
	UserID  int64  `json:"userID" validate:"required"`
	ShiftID int64  `json:"shiftID" validate:"required"`
	Date    string `json:"date" validate:"required"`
}

func (req *assignmentRequest) toParams() (workflow.CreateParams, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return workflow.CreateParams{}, errors.New("日期格式无效，应为 YYYY-MM-DD")
	}
	return workflow.CreateParams{
		UserID:  req.UserID,
		ShiftID: req.ShiftID,
		Date:    date,
	}, nil
}

func (h *Handler) CreateShiftAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	params, err := req.toParams()
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	creatorID, err := h.creatorID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	sa, err := h.workflow.Create(params, creatorID)
	if err != nil {
		h.respondAssignmentError(w, r, err)
		return
	}

	h.notifyAssignment(sa)

	h.successResponse(w, r, "排班成功", sa)
}

func (h *Handler) BulkCreateShiftAssignments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Assignments []assignmentRequest `json:"assignments" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	creatorID, err := h.creatorID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 日期格式错误的请求直接进入失败列表，不影响其余请求
	items := make([]workflow.CreateParams, 0, len(req.Assignments))
	invalid := make([]workflow.BulkFailure, 0)
	for _, a := range req.Assignments {
		params, err := a.toParams()
		if err != nil {
			invalid = append(invalid, workflow.BulkFailure{
				Assignment: workflow.CreateParams{UserID: a.UserID, ShiftID: a.ShiftID},
				Error:      err.Error(),
			})
			continue
		}
		items = append(items, params)
	}

	result := h.workflow.BulkCreate(items, creatorID)
	result.Failed = append(result.Failed, invalid...)

	for _, sa := range result.Successful {
		h.notifyAssignment(sa)
	}

	h.successResponse(w, r, "批量排班处理完成", result)
}

// ValidateShiftAssignment 只做校验，不写入任何数据，用于前端的预检
func (h *Handler) ValidateShiftAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	params, err := req.toParams()
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	result, err := h.engine.Validate(params.UserID, params.ShiftID, params.Date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "校验完成", result)
}

func (h *Handler) GetShiftAssignments(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userID"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "用户ID无效")
		return
	}

	start, err := time.Parse(dateLayout, r.URL.Query().Get("start"))
	if err != nil {
		h.errorResponse(w, r, "开始日期格式无效，应为 YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, r.URL.Query().Get("end"))
	if err != nil {
		h.errorResponse(w, r, "结束日期格式无效，应为 YYYY-MM-DD")
		return
	}

	assignments, err := h.repository.FindAssignmentsByUserAndDateRange(userID, start, end)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班列表成功", assignments)
}

func (h *Handler) UpdateShiftAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "排班ID无效")
		return
	}

	var req struct {
		Date string `json:"date" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		h.errorResponse(w, r, "日期格式无效，应为 YYYY-MM-DD")
		return
	}

	sa, err := h.workflow.Update(id, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "排班记录不存在")
			return
		}
		h.respondAssignmentError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新排班成功", sa)
}

func (h *Handler) DeleteShiftAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "排班ID无效")
		return
	}

	if err := h.workflow.Remove(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "排班记录不存在")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除排班成功", nil)
}
