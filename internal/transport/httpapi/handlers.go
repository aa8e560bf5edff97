package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kanon95/user-records/internal/domain"
	"github.com/kanon95/user-records/internal/service"
)

type UserHandler struct {
	svc *service.UserSvc
}

func NewUserHandler(s *service.UserSvc) *UserHandler {
	return &UserHandler{svc: s}
}

// userRequest is the body of POST and PUT. The id never comes from the body.
type userRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// Failure responses carry an empty body; the status code is the whole
// contract.

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	u, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Status(statusFor(err, http.StatusNotFound))
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Create(c *gin.Context) {
	var in userRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	u, err := h.svc.Create(c.Request.Context(), in.Name, in.Email)
	if err != nil {
		c.Status(statusFor(err, http.StatusBadRequest))
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	var in userRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	u, err := h.svc.Update(c.Request.Context(), id, in.Name, in.Email)
	if err != nil {
		c.Status(statusFor(err, http.StatusNotFound))
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.Status(statusFor(err, http.StatusNotFound))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	u, err := h.svc.GetByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		c.Status(statusFor(err, http.StatusNotFound))
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) SearchByName(c *gin.Context) {
	users, err := h.svc.SearchByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "User API is running!")
}

func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// statusFor maps domain errors to the route's failure status and everything
// else to 500. Duplicate email keeps the route's coarse failure code (400 on
// create, 404 on update) rather than a distinct status.
func statusFor(err error, failure int) int {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrDuplicateEmail) {
		return failure
	}
	return http.StatusInternalServerError
}
