package handlers

import (
	"net/http"

	"github.com/AlexandrBurak/hw05-final/internal/db"
	"github.com/AlexandrBurak/hw05-final/internal/middleware"
	"github.com/AlexandrBurak/hw05-final/internal/models"
	"github.com/AlexandrBurak/hw05-final/internal/services"
	"github.com/AlexandrBurak/hw05-final/internal/utils"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

type profilePage struct {
	BasePage
	Author    models.User
	PostCount int
	Following bool
	Page      utils.Page[models.Post]
}

type feedPage struct {
	BasePage
	Page utils.Page[models.Post]
}

// findUser resolves the :username route parameter, rendering the 404
// page when no such user exists.
func findUser(c *gin.Context) (models.User, bool) {
	var user models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
		NotFound(c)
		return models.User{}, false
	}
	return user, true
}

// Profile lists one author's posts. The following flag is false for an
// anonymous viewer; there is no separate anonymous branch.
func (h *ProfileHandler) Profile(c *gin.Context) {
	author, ok := findUser(c)
	if !ok {
		return
	}

	var posts []models.Post
	if err := db.DB.Preload("Author").Preload("Group").
		Where("author_id = ?", author.ID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Не удалось загрузить записи")
		return
	}
	fillCommentCounts(posts)

	following := false
	if viewer := middleware.CurrentUser(c); viewer != nil {
		following = services.IsFollowing(viewer.ID, author.ID)
	}

	number := utils.ParsePageNumber(c.Query("page"))
	Render(c, http.StatusOK, "posts/profile.html", &profilePage{
		BasePage:  BasePage{Title: "Профайл пользователя " + author.Username},
		Author:    author,
		PostCount: len(posts),
		Following: following,
		Page:      utils.Paginate(posts, utils.PageSize, number),
	})
}

// FollowIndex shows the viewer's feed: posts by everyone they follow,
// newest first.
func (h *ProfileHandler) FollowIndex(c *gin.Context) {
	user := middleware.CurrentUser(c)

	posts, err := services.FollowingPosts(user.ID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Не удалось загрузить ленту")
		return
	}
	fillCommentCounts(posts)

	number := utils.ParsePageNumber(c.Query("page"))
	Render(c, http.StatusOK, "posts/follow.html", &feedPage{
		BasePage: BasePage{Title: "Ваша лента"},
		Page:     utils.Paginate(posts, utils.PageSize, number),
	})
}

func (h *ProfileHandler) Follow(c *gin.Context) {
	user := middleware.CurrentUser(c)
	author, ok := findUser(c)
	if !ok {
		return
	}

	if err := services.FollowAuthor(user.ID, author.ID); err != nil {
		RenderError(c, http.StatusInternalServerError, "Не удалось подписаться")
		return
	}
	c.Redirect(http.StatusFound, "/profile/"+user.Username)
}

func (h *ProfileHandler) Unfollow(c *gin.Context) {
	user := middleware.CurrentUser(c)
	author, ok := findUser(c)
	if !ok {
		return
	}

	if err := services.UnfollowAuthor(user.ID, author.ID); err != nil {
		RenderError(c, http.StatusInternalServerError, "Не удалось отписаться")
		return
	}
	c.Redirect(http.StatusFound, "/profile/"+user.Username)
}
