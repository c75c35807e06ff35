package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

// CreateMessage 发布一条广播消息，保存后向所有在职员工投递邮件通知。
// 单个收件人的投递失败只记录日志，不影响消息本身的发布
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title" validate:"required"`
		Content string `json:"content" validate:"required"`
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

	message := &domain.Message{
		Title:       req.Title,
		Content:     req.Content,
		CreatedByID: creatorID,
	}

	if err := h.repository.CreateMessage(message); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	users, err := h.repository.GetAllActiveUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	for _, user := range users {
		if err := h.publishMail(domain.MailMessage{
			Type: "broadcast",
			To:   user.Email,
			Data: domain.BroadcastMailData{
				FullName: user.FullName,
				Title:    message.Title,
				Content:  message.Content,
			},
		}); err != nil {
			slog.Error("无法投递广播邮件", "userID", user.ID, "error", err)
		}
	}

	h.successResponse(w, r, "消息发布成功", message)
}

func (h *Handler) GetAllMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.repository.GetAllMessages()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取消息列表成功", messages)
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "消息ID无效")
		return
	}

	if err := h.repository.DeleteMessage(id); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除消息成功", nil)
}
