package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/projboard/projboard/internal/application"
	"github.com/projboard/projboard/internal/domain/entity"
	"github.com/projboard/projboard/internal/listing"
	"github.com/projboard/projboard/pkg/response"
	"github.com/projboard/projboard/pkg/validation"
)

type ListingHandler struct {
	Svc    *application.ListingService
	Logger *logrus.Logger
}

func NewListingHandler(svc *application.ListingService, logger *logrus.Logger) *ListingHandler {
	return &ListingHandler{Svc: svc, Logger: logger}
}

type createListingRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Price       string `json:"price" binding:"required"`
	Phone       string `json:"phone"`
	PartySize   string `json:"party_size"`
}

func listingBody(l entity.Listing) gin.H {
	return gin.H{
		"id":            l.ID,
		"title":         l.Title,
		"description":   l.Description,
		"display_price": l.DisplayPrice,
		"price":         l.Price,
		"party_size":    l.PartySize,
		"owner_name":    l.OwnerName,
		"owner_email":   l.OwnerEmail,
		"owner_phone":   l.OwnerPhone,
		"owner_avatar":  l.OwnerAvatar,
		"created_at":    l.CreatedAt,
		"display_date":  l.DisplayDate(),
	}
}

// Create - POST /api/listings
func (h *ListingHandler) Create(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	l, err := h.Svc.Create(c.Request.Context(), c.GetString("accountID"), application.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Phone:       req.Phone,
		PartySize:   req.PartySize,
	})
	if err != nil {
		// A session surviving its account means the token outlived the row.
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Error[any](c, http.StatusUnauthorized, "account no longer exists", nil)
			return
		}
		h.Logger.WithError(err).Error("create listing failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to create listing", nil)
		return
	}
	response.Success(c, http.StatusCreated, listingBody(*l), "listing created", nil)
}

// Feed - GET /api/listings?search=&sort=
func (h *ListingHandler) Feed(c *gin.Context) {
	search := c.Query("search")
	mode := listing.ParseSortMode(c.Query("sort"))

	items, err := h.Svc.Feed(c.Request.Context(), search, mode)
	if err != nil {
		h.Logger.WithError(err).Error("load feed failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to load listings", nil)
		return
	}
	out := make([]gin.H, 0, len(items))
	for _, l := range items {
		out = append(out, listingBody(l))
	}
	response.Success(c, http.StatusOK, out, "listings",
		map[string]any{"count": len(out), "sort": string(mode)})
}

// Delete - DELETE /api/listings/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), c.GetString("accountID"), c.Param("id"))
	switch {
	case err == nil:
		response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "listing deleted", nil)
	case errors.Is(err, application.ErrListingNotFound):
		response.Error[any](c, http.StatusNotFound, "listing not found", nil)
	case errors.Is(err, application.ErrNotOwner):
		response.Error[any](c, http.StatusForbidden, "not the listing owner", nil)
	default:
		h.Logger.WithError(err).Error("delete listing failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to delete listing", nil)
	}
}

// Search - GET /api/listings/search?q=&size=
func (h *ListingHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("listing search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
