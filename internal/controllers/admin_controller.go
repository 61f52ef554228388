package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"waste_tracker/internal/config"
	"waste_tracker/internal/models"
)

// ListLocalBodies lists every local body, for admins.
func ListLocalBodies(c *gin.Context) {
	var bodies []models.LocalBody
	if err := config.DB.WithContext(c.Request.Context()).Order("name").Find(&bodies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch local bodies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bodies})
}

func CreateLocalBody(c *gin.Context) {
	var input struct {
		Name     string `form:"name" json:"name" binding:"required"`
		District string `form:"district" json:"district"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body := models.LocalBody{Name: input.Name, District: input.District}
	if err := config.DB.WithContext(c.Request.Context()).Create(&body).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "local body already exists"})
			return
		}
		logrus.WithError(err).Error("could not create local body")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create local body"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"local_body": body})
}

// AssignCollector points a customer at the collector who serves them.
func AssignCollector(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}

	var input struct {
		CollectorID uint `form:"collector_id" json:"collector_id" binding:"required"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := config.DB.WithContext(c.Request.Context())

	var customer models.CustomerInfo
	if err := db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load customer"})
		return
	}

	var collector models.User
	if err := db.Where("id = ? AND role = ?", input.CollectorID, models.RoleCollector).First(&collector).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "collector not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load collector"})
		return
	}

	if err := db.Model(&customer).Update("assigned_collector_id", collector.ID).Error; err != nil {
		logrus.WithError(err).WithField("customer_id", customer.ID).Error("could not assign collector")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not assign collector"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// CreateUser registers an account of any role. It is the only way to create
// collectors and admins.
func CreateUser(c *gin.Context) {
	var input signupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(input.Role) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}
	role, err := models.ParseRole(input.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := registerUser(c, input, role)
	if !ok {
		return
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role.String()}).Info("admin created user")
	c.JSON(http.StatusCreated, gin.H{"user": prepareUserResponse(user)})
}
