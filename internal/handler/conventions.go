package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

func (h *Handler) CreateConvention(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		Type        string `json:"type" validate:"required,oneof=AVAILABILITY RESTRICTION LEGAL MEDICAL CUSTOM"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	convention := &domain.Convention{
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.ConventionType(req.Type),
		IsActive:    true,
	}

	if err := h.repository.CreateConvention(convention); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "约定创建成功", convention)
}

func (h *Handler) GetAllConventions(w http.ResponseWriter, r *http.Request) {
	conventions, err := h.repository.GetAllConventions()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取约定列表成功", conventions)
}

func (h *Handler) GetConvention(w http.ResponseWriter, r *http.Request) {
	convention := r.Context().Value(ConventionCtx).(*domain.Convention)
	h.successResponse(w, r, "获取约定成功", convention)
}

// UpdateConvention 停用约定只影响之后的校验，不会使历史排班失效
func (h *Handler) UpdateConvention(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Type        *string `json:"type" validate:"omitempty,oneof=AVAILABILITY RESTRICTION LEGAL MEDICAL CUSTOM"`
		IsActive    *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	convention := r.Context().Value(ConventionCtx).(*domain.Convention)

	if req.Title != nil {
		convention.Title = *req.Title
	}
	if req.Description != nil {
		convention.Description = *req.Description
	}
	if req.Type != nil {
		convention.Type = domain.ConventionType(*req.Type)
	}
	if req.IsActive != nil {
		convention.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateConvention(convention); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新约定失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新约定成功", convention)
}

func (h *Handler) DeleteConvention(w http.ResponseWriter, r *http.Request) {
	convention := r.Context().Value(ConventionCtx).(*domain.Convention)

	if err := h.repository.DeleteConvention(convention.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除约定成功", nil)
}
