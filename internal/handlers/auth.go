package handlers

import (
	"net/http"
	"strings"

	"github.com/AlexandrBurak/hw05-final/internal/db"
	"github.com/AlexandrBurak/hw05-final/internal/models"
	"github.com/AlexandrBurak/hw05-final/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type authPage struct {
	BasePage
	Next     string
	Username string
	Error    string
}

// safeNext only accepts local redirect targets
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return ""
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "auth/signup.html", &authPage{
		BasePage: BasePage{Title: "Регистрация"},
		Next:     safeNext(c.Query("next")),
	})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	displayName := strings.TrimSpace(c.PostForm("display_name"))
	password := c.PostForm("password")
	next := safeNext(c.PostForm("next"))

	fail := func(message string) {
		Render(c, http.StatusBadRequest, "auth/signup.html", &authPage{
			BasePage: BasePage{Title: "Регистрация"},
			Next:     next,
			Username: username,
			Error:    message,
		})
	}

	if username == "" {
		fail("Укажите имя пользователя")
		return
	}
	if len(password) < 6 {
		fail("Пароль должен быть не короче 6 символов")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Не удалось создать пользователя")
		return
	}

	user := models.User{
		Username:    username,
		DisplayName: displayName,
		Password:    hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		fail("Имя пользователя уже занято")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	if next == "" {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", &authPage{
		BasePage: BasePage{Title: "Вход"},
		Next:     safeNext(c.Query("next")),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := safeNext(c.PostForm("next"))

	var user models.User
	err := db.DB.Where("username = ?", username).First(&user).Error
	if err != nil || !utils.CheckPassword(user.Password, password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", &authPage{
			BasePage: BasePage{Title: "Вход"},
			Next:     next,
			Username: username,
			Error:    "Неверное имя пользователя или пароль",
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	if next == "" {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete("user_id")
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
