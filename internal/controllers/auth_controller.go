package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"waste_tracker/internal/config"
	"waste_tracker/internal/middleware"
	"waste_tracker/internal/models"
	"waste_tracker/internal/urls"
)

var errLocalBodyNotFound = errors.New("local body with the provided local_body_id does not exist")

type signupInput struct {
	Name        string   `json:"name" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=8"`
	Phone       string   `json:"phone"`
	Role        string   `json:"role"`
	Address     string   `json:"address"`
	LocalBodyID *uint    `json:"local_body_id"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,longitude"`
}

type loginInput struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

// SignupUser is the public registration endpoint. It only creates customers;
// collectors and admins come from CreateUser.
func SignupUser(c *gin.Context) {
	var input signupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := models.ParseRole(input.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if role != models.RoleCustomer {
		c.JSON(http.StatusForbidden, gin.H{"error": "only customers can sign up; ask an admin for a " + role.String() + " account"})
		return
	}

	user, ok := registerUser(c, input, role)
	if !ok {
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  prepareUserResponse(user),
	})
}

// registerUser creates the user and, for customers, their CustomerInfo in one
// transaction. On failure the response has been written.
func registerUser(c *gin.Context, input signupInput, role models.Role) (models.User, bool) {
	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return models.User{}, false
	}

	tx := config.DB.WithContext(c.Request.Context()).Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return models.User{}, false
	}

	user, err := createUserRecord(tx, input, role, hashedPassword)
	if err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return models.User{}, false
		}
		logrus.WithError(err).Error("signup: could not create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return models.User{}, false
	}

	if err := createCustomerRecord(tx, &user, input); err != nil {
		tx.Rollback()
		if errors.Is(err, errLocalBodyNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return models.User{}, false
		}
		logrus.WithError(err).Error("signup: could not create customer record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create customer record"})
		return models.User{}, false
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction"})
		return models.User{}, false
	}
	return user, true
}

// LoginPage is the target of every access-guard redirect.
func LoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"error": "", "email": ""})
}

// LoginUser accepts the login form or a JSON body. Browsers get a session
// cookie and a redirect; JSON clients get the token back.
func LoginUser(c *gin.Context) {
	var body loginInput
	if err := c.ShouldBind(&body); err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{"error": "email and password are required", "email": body.Email})
		return
	}

	var user models.User
	err := config.DB.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(body.Email))).
		Preload("CustomerInfo").
		First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			serverError(c, err, "could not load user")
			return
		}
		render(c, http.StatusUnauthorized, "login.html", gin.H{"error": "invalid email or password", "email": body.Email})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		render(c, http.StatusUnauthorized, "login.html", gin.H{"error": "invalid email or password", "email": body.Email})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		serverError(c, err, "could not generate token")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(config.App.TokenTTL.Seconds()), "/", "", config.App.Env == "production", true)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  prepareUserResponse(user),
		})
		return
	}
	if user.Role == models.RoleCollector {
		redirectTo(c, urls.Dashboard)
		return
	}
	redirectTo(c, urls.BillingDashboard)
}

func LogoutUser(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", config.App.Env == "production", true)
	redirectTo(c, urls.Login)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func createUserRecord(tx *gorm.DB, input signupInput, role models.Role, hashedPassword string) (models.User, error) {
	user := models.User{
		Name:     input.Name,
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hashedPassword,
		Phone:    input.Phone,
		Role:     role,
	}
	if err := tx.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// createCustomerRecord gives customers their CustomerInfo row in the same
// transaction as the user.
func createCustomerRecord(tx *gorm.DB, user *models.User, input signupInput) error {
	if user.Role != models.RoleCustomer {
		return nil
	}

	if input.LocalBodyID != nil {
		var lb models.LocalBody
		if err := tx.First(&lb, *input.LocalBodyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errLocalBodyNotFound
			}
			return err
		}
	}

	info := models.CustomerInfo{
		UserID:      &user.ID,
		Name:        input.Name,
		Phone:       input.Phone,
		Address:     input.Address,
		LocalBodyID: input.LocalBodyID,
	}
	if input.Latitude != nil && input.Longitude != nil {
		loc, err := pointWKB(*input.Longitude, *input.Latitude)
		if err != nil {
			return err
		}
		info.Location = loc
	}
	if err := tx.Create(&info).Error; err != nil {
		return err
	}
	user.CustomerInfo = &info
	return nil
}

func prepareUserResponse(user models.User) gin.H {
	responseUser := gin.H{
		"ID":        user.ID,
		"CreatedAt": user.CreatedAt,
		"name":      user.Name,
		"email":     user.Email,
		"phone":     user.Phone,
		"role":      user.Role,
	}
	if user.CustomerInfo != nil {
		responseUser["customer_info"] = gin.H{
			"ID":                    user.CustomerInfo.ID,
			"address":               user.CustomerInfo.Address,
			"local_body_id":         user.CustomerInfo.LocalBodyID,
			"assigned_collector_id": user.CustomerInfo.AssignedCollectorID,
		}
	}
	return responseUser
}
