package handlers

import (
	"errors"
	"net/http"

	"github.com/AlexandrBurak/hw05-final/internal/middleware"
	"github.com/AlexandrBurak/hw05-final/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BasePage carries the fields every template expects. Concrete page
// structs embed it; Render fills it in before handing off to the
// template engine.
type BasePage struct {
	Title       string
	CurrentUser *models.User
	CurrentPath string
}

func (p *BasePage) setViewer(user *models.User, path string) {
	p.CurrentUser = user
	p.CurrentPath = path
}

type page interface {
	setViewer(user *models.User, path string)
}

// Render injects the current viewer and renders the named template.
func Render(c *gin.Context, code int, name string, p page) {
	p.setViewer(middleware.CurrentUser(c), c.Request.URL.Path)
	c.HTML(code, name, p)
}

type errorPage struct {
	BasePage
	Error string
}

// RenderError renders the shared error page
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", &errorPage{
		BasePage: BasePage{Title: "Ошибка"},
		Error:    message,
	})
}

// NotFound is the NoRoute handler and is reused whenever a route
// parameter points at a missing record.
func NotFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound, "Страница не найдена")
}

// formErrors maps binding failures to per-field messages for re-rendering
func formErrors(err error) map[string]string {
	msgs := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				msgs[fe.Field()] = "Обязательное поле."
			case "max":
				msgs[fe.Field()] = "Слишком длинное значение."
			default:
				msgs[fe.Field()] = "Некорректное значение."
			}
		}
		return msgs
	}
	msgs["Form"] = "Некорректные данные формы."
	return msgs
}
