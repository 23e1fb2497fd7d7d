package movies

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Coddedx/MoviePx-API/internal/logger"
	"github.com/Coddedx/MoviePx-API/internal/middleware"
)

// Handler exposes the authenticated movie endpoints. Every route runs
// behind the auth middleware, so the identity context is always set.
type Handler struct {
	service  *Service
	comments *CommentRepository
	ratings  *RatingRepository
}

func NewHandler(service *Service, comments *CommentRepository, ratings *RatingRepository) *Handler {
	return &Handler{service: service, comments: comments, ratings: ratings}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/movies/search", h.search)
	api.GET("/movies/:imdbID", h.get)
	api.GET("/movies/:imdbID/comments", h.listComments)
	api.POST("/movies/:imdbID/comments", h.addComment)
	api.GET("/movies/:imdbID/rating", h.getRating)
	api.PUT("/movies/:imdbID/rating", h.putRating)
}

func (h *Handler) search(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := h.service.Search(c.Request.Context(), title, page)
	if err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no movies found"})
			return
		}
		logger.Error("movie search failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusBadGateway, gin.H{"error": "movie search unavailable"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) get(c *gin.Context) {
	movie, err := h.service.Get(c.Request.Context(), c.Param("imdbID"))
	if err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
			return
		}
		logger.Error("movie lookup failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusBadGateway, gin.H{"error": "movie lookup unavailable"})
		return
	}

	c.JSON(http.StatusOK, movie)
}

func (h *Handler) listComments(c *gin.Context) {
	comments, err := h.comments.ListByMovie(c.Request.Context(), c.Param("imdbID"))
	if err != nil {
		logger.Error("comment list failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

type addCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *Handler) addComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID, _ := middleware.UserIDFromContext(c.Request.Context())

	comment, err := h.comments.Add(c.Request.Context(), c.Param("imdbID"), userID, req.Body)
	if err != nil {
		logger.Error("comment insert failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) getRating(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c.Request.Context())

	rating, err := h.ratings.Get(c.Request.Context(), c.Param("imdbID"), userID)
	if err != nil {
		if errors.Is(err, ErrRatingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not rated"})
			return
		}
		logger.Error("rating lookup failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rating"})
		return
	}

	c.JSON(http.StatusOK, rating)
}

type putRatingRequest struct {
	Stars int `json:"stars" binding:"required"`
}

func (h *Handler) putRating(c *gin.Context) {
	var req putRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID, _ := middleware.UserIDFromContext(c.Request.Context())

	rating, err := h.ratings.Upsert(c.Request.Context(), c.Param("imdbID"), userID, req.Stars)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stars must be between 1 and 10"})
		return
	}

	c.JSON(http.StatusOK, rating)
}
