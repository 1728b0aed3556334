package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/gin-gonic/gin"
)

type searchUsecaser interface {
	Search(ctx context.Context, userID, phoneNumber, countryCode string) (*domain.Search, error)
	History(ctx context.Context, userID string, limit int) ([]*domain.Search, error)
	Analytics(ctx context.Context, userID string) (*domain.Analytics, error)
}

type SearchHandler struct {
	searchUsecase searchUsecaser
	logger        *slog.Logger
}

func NewSearchHandler(searchUsecase searchUsecaser, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		searchUsecase: searchUsecase,
		logger:        logger.With("component", "search_handler"),
	}
}

type searchRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
}

type searchResponse struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phoneNumber"`
	Valid       bool      `json:"valid"`
	Country     *string   `json:"country"`
	Location    *string   `json:"location"`
	Carrier     *string   `json:"carrier"`
	LineType    *string   `json:"lineType"`
	AIInsight   string    `json:"aiInsight"`
	CreatedAt   time.Time `json:"createdAt"`
}

type historyItem struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	PhoneNumber string    `json:"phoneNumber"`
	CountryCode string    `json:"countryCode"`
	Country     *string   `json:"country"`
	Location    *string   `json:"location"`
	Carrier     *string   `json:"carrier"`
	LineType    *string   `json:"lineType"`
	Valid       bool      `json:"valid"`
	AIInsight   string    `json:"aiInsight"`
	CreatedAt   time.Time `json:"createdAt"`
}

type analyticsResponse struct {
	TotalSearches     int `json:"totalSearches"`
	RecentSearches    int `json:"recentSearches"`
	ValidNumbersCount int `json:"validNumbersCount"`
	ValidationRate    int `json:"validationRate"`
}

// POST /api/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidInput})
		return
	}
	if strings.TrimSpace(req.PhoneNumber) == "" || strings.TrimSpace(req.CountryCode) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errSearchFieldsMissing})
		return
	}

	s, err := h.searchUsecase.Search(c.Request.Context(), c.GetString("userID"), req.PhoneNumber, req.CountryCode)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "search", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, searchResponse{
		ID:          s.ID,
		PhoneNumber: s.PhoneNumber,
		Valid:       s.Valid,
		Country:     s.Country,
		Location:    s.Location,
		Carrier:     s.Carrier,
		LineType:    s.LineType,
		AIInsight:   s.AIInsight,
		CreatedAt:   s.CreatedAt,
	})
}

// GET /api/searches?limit=N
func (h *SearchHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLimit})
			return
		}
		limit = n
	}

	searches, err := h.searchUsecase.History(c.Request.Context(), c.GetString("userID"), limit)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list searches", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	items := make([]historyItem, len(searches))
	for i, s := range searches {
		items[i] = historyItem{
			ID:          s.ID,
			UserID:      s.UserID,
			PhoneNumber: s.PhoneNumber,
			CountryCode: s.CountryCode,
			Country:     s.Country,
			Location:    s.Location,
			Carrier:     s.Carrier,
			LineType:    s.LineType,
			Valid:       s.Valid,
			AIInsight:   s.AIInsight,
			CreatedAt:   s.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, items)
}

// GET /api/analytics
func (h *SearchHandler) Analytics(c *gin.Context) {
	a, err := h.searchUsecase.Analytics(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "get analytics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, analyticsResponse{
		TotalSearches:     a.TotalSearches,
		RecentSearches:    a.RecentSearches,
		ValidNumbersCount: a.ValidNumbersCount,
		ValidationRate:    a.ValidationRate(),
	})
}
