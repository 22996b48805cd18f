package handlers

import (
	"net/http"
	"strconv"

	"wconnect-service/internal/api/middleware"
	"wconnect-service/internal/models"
	"wconnect-service/internal/services"
	"wconnect-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService  *services.UserService
	redisService *services.RedisService
}

func NewUserHandler(usrSvc *services.UserService, redisSvc *services.RedisService) *UserHandler {
	return &UserHandler{userService: usrSvc, redisService: redisSvc}
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserResponse "Profile"
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} models.UserResponse "Updated profile"
// @Failure 400 {object} models.ErrorResponse "Malformed body"
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid profile payload")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// List godoc
// @Summary List visible users
// @Description List users who have not blocked the caller
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserResponse "Users"
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	users, err := h.userService.ListVisible(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Search godoc
// @Summary Search users by username
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param q query string true "Username keyword"
// @Success 200 {array} models.UserResponse "Matching users"
// @Failure 400 {object} models.ErrorResponse "Empty keyword"
// @Router /users/search [get]
func (h *UserHandler) Search(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	users, err := h.userService.Search(c.Request.Context(), c.Query("q"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// AddContact godoc
// @Summary Add a user to the caller's contacts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{} "Acknowledgement"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /users/contacts/{id} [post]
func (h *UserHandler) AddContact(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	contactID, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	if err := h.userService.AddContact(c.Request.Context(), userID, contactID); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": true})
}

// RemoveContact godoc
// @Summary Remove a user from the caller's contacts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{} "Acknowledgement"
// @Router /users/contacts/{id} [delete]
func (h *UserHandler) RemoveContact(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	contactID, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	if err := h.userService.RemoveContact(c.Request.Context(), userID, contactID); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// Block godoc
// @Summary Block a user
// @Description Block a user and drop them from the caller's contacts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{} "Acknowledgement"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /users/block/{id} [post]
func (h *UserHandler) Block(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	blockedID, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	if err := h.userService.Block(c.Request.Context(), userID, blockedID); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": true})
}

// Online godoc
// @Summary List online user ids
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string "Online user ids"
// @Router /users/online [get]
func (h *UserHandler) Online(c *gin.Context) {
	ids, err := h.redisService.GetOnlineUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err
}
