package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/projboard/projboard/internal/application"
	"github.com/projboard/projboard/internal/domain/entity"
	"github.com/projboard/projboard/pkg/response"
	"github.com/projboard/projboard/pkg/validation"
)

type ProfileHandler struct {
	Svc    *application.AccountService
	Logger *logrus.Logger
}

func NewProfileHandler(svc *application.AccountService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func profileBody(a *entity.Account) gin.H {
	return gin.H{
		"id":         a.ID,
		"email":      a.Email,
		"name":       a.Name,
		"phone":      a.Phone,
		"avatar_url": a.AvatarURL,
		"created_at": a.CreatedAt,
		"updated_at": a.UpdatedAt,
	}
}

// Get - GET /api/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	a, err := h.Svc.GetProfile(c.GetString("accountID"))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "account not found", nil)
		return
	}
	response.Success(c, http.StatusOK, profileBody(a), "profile", nil)
}

// Update - PUT /api/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("accountID"),
		application.UpdateProfileInput{Name: req.Name, Phone: req.Phone})
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "failed to update profile", err.Error())
		return
	}
	response.Success(c, http.StatusOK, profileBody(a), "profile updated", nil)
}

// UploadAvatar - POST /api/profile/avatar (multipart field "avatar")
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing avatar file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable avatar file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	contentType := fh.Header.Get("Content-Type")
	url, err := h.Svc.UploadAvatar(c.Request.Context(), c.GetString("accountID"), f, fh.Filename, contentType)
	if err != nil {
		h.Logger.WithError(err).Error("avatar upload failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to upload avatar", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar updated", nil)
}
