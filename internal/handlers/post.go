package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/AlexandrBurak/hw05-final/internal/db"
	"github.com/AlexandrBurak/hw05-final/internal/middleware"
	"github.com/AlexandrBurak/hw05-final/internal/models"
	"github.com/AlexandrBurak/hw05-final/internal/services"
	"github.com/AlexandrBurak/hw05-final/internal/utils"

	"github.com/gin-gonic/gin"
)

const indexCacheKey = "posts:index"
const indexCacheTTL = 20 * time.Second

type PostHandler struct {
	images *services.ImageStore
}

func NewPostHandler() *PostHandler {
	return &PostHandler{
		images: services.NewImageStore(),
	}
}

type indexPage struct {
	BasePage
	Page utils.Page[models.Post]
}

type groupPage struct {
	BasePage
	Group models.Group
	Page  utils.Page[models.Post]
}

type commentView struct {
	models.Comment
	TextHTML template.HTML
}

type detailPage struct {
	BasePage
	Post            models.Post
	PostHTML        template.HTML
	Comments        []commentView
	AuthorPostCount int64
	CommentText     string
	Errors          map[string]string
}

type postForm struct {
	Text    string `form:"text" binding:"required"`
	GroupID *uint  `form:"group_id"`
}

// normalize folds an empty group selection into "no group". Gin binds
// an empty form value to a pointer at zero, which is not a real group id.
func (f *postForm) normalize() {
	if f.GroupID != nil && *f.GroupID == 0 {
		f.GroupID = nil
	}
}

type commentForm struct {
	Text string `form:"text" binding:"required"`
}

type postFormPage struct {
	BasePage
	Form       postForm
	Errors     map[string]string
	Groups     []models.Group
	EditPostID uint // zero on the create form

	// SelectedGroupID mirrors Form.GroupID for the template, since
	// text/template cannot dereference the pointer in comparisons.
	SelectedGroupID uint
}

// fillCommentCounts batch-loads comment counts for a page of posts
func fillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

// findPost resolves the :post_id route parameter. Renders the 404 page
// and returns false when the parameter is malformed or the post is gone.
func findPost(c *gin.Context) (models.Post, bool) {
	id, err := strconv.Atoi(c.Param("post_id"))
	if err != nil || id < 1 {
		NotFound(c)
		return models.Post{}, false
	}

	var post models.Post
	if err := db.DB.Preload("Author").Preload("Group").First(&post, id).Error; err != nil {
		NotFound(c)
		return models.Post{}, false
	}
	return post, true
}

func postPath(id uint) string {
	return fmt.Sprintf("/posts/%d", id)
}

// Index lists all posts, newest first. The ordered list is cached for a
// short window and dropped eagerly when a post is created or edited.
func (h *PostHandler) Index(c *gin.Context) {
	number := utils.ParsePageNumber(c.Query("page"))

	var posts []models.Post
	if cached, ok := utils.GetCache().Get(indexCacheKey).([]models.Post); ok {
		posts = cached
	} else {
		if err := db.DB.Preload("Author").Preload("Group").
			Order("created_at DESC, id DESC").
			Find(&posts).Error; err != nil {
			RenderError(c, http.StatusInternalServerError, "Не удалось загрузить записи")
			return
		}
		fillCommentCounts(posts)
		utils.GetCache().Set(indexCacheKey, posts, indexCacheTTL)
	}

	Render(c, http.StatusOK, "posts/index.html", &indexPage{
		BasePage: BasePage{Title: "Последние обновления на сайте"},
		Page:     utils.Paginate(posts, utils.PageSize, number),
	})
}

// GroupPosts lists posts that belong to one group.
func (h *PostHandler) GroupPosts(c *gin.Context) {
	slug := c.Param("slug")

	var group models.Group
	if err := db.DB.Where("slug = ?", slug).First(&group).Error; err != nil {
		NotFound(c)
		return
	}

	var posts []models.Post
	if err := db.DB.Preload("Author").Preload("Group").
		Where("group_id = ?", group.ID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Не удалось загрузить записи")
		return
	}
	fillCommentCounts(posts)

	number := utils.ParsePageNumber(c.Query("page"))
	Render(c, http.StatusOK, "posts/group_list.html", &groupPage{
		BasePage: BasePage{Title: "Записи сообщества " + group.Title},
		Group:    group,
		Page:     utils.Paginate(posts, utils.PageSize, number),
	})
}

// buildDetailPage assembles the detail context: the post rendered as
// HTML, its comments oldest first, and the author's total post count.
func buildDetailPage(post models.Post) (*detailPage, error) {
	var comments []models.Comment
	if err := db.DB.Preload("Author").
		Where("post_id = ?", post.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	views := make([]commentView, len(comments))
	for i, com := range comments {
		views[i] = commentView{
			Comment:  com,
			TextHTML: utils.RenderMarkdown(com.Text),
		}
	}

	var authorPostCount int64
	db.DB.Model(&models.Post{}).Where("author_id = ?", post.AuthorID).Count(&authorPostCount)

	title := []rune(post.Text)
	if len(title) > 30 {
		title = title[:30]
	}

	return &detailPage{
		BasePage:        BasePage{Title: string(title)},
		Post:            post,
		PostHTML:        utils.RenderMarkdown(post.Text),
		Comments:        views,
		AuthorPostCount: authorPostCount,
	}, nil
}

func (h *PostHandler) Detail(c *gin.Context) {
	post, ok := findPost(c)
	if !ok {
		return
	}

	page, err := buildDetailPage(post)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Не удалось загрузить запись")
		return
	}
	Render(c, http.StatusOK, "posts/post_detail.html", page)
}

func (h *PostHandler) renderPostForm(c *gin.Context, code int, form postForm, errs map[string]string, editPostID uint) {
	var groups []models.Group
	db.DB.Order("title ASC").Find(&groups)

	title := "Новая запись"
	if editPostID != 0 {
		title = "Редактировать запись"
	}

	var selected uint
	if form.GroupID != nil {
		selected = *form.GroupID
	}

	Render(c, code, "posts/create_post.html", &postFormPage{
		BasePage:        BasePage{Title: title},
		Form:            form,
		Errors:          errs,
		Groups:          groups,
		EditPostID:      editPostID,
		SelectedGroupID: selected,
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderPostForm(c, http.StatusOK, postForm{}, nil, 0)
}

// resolveGroup checks that a submitted group id refers to a real group.
func resolveGroup(form postForm, errs map[string]string) map[string]string {
	if form.GroupID == nil {
		return errs
	}
	var group models.Group
	if err := db.DB.First(&group, *form.GroupID).Error; err != nil {
		if errs == nil {
			errs = make(map[string]string)
		}
		errs["GroupID"] = "Выберите существующую группу."
	}
	return errs
}

// uploadImage stores an attached image, if any, and returns its URL.
// An absent file is not an error.
func (h *PostHandler) uploadImage(c *gin.Context) (string, error) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		return "", nil
	}
	defer file.Close()

	if h.images == nil {
		return "", fmt.Errorf("image storage is not configured")
	}
	return h.images.Upload(c.Request.Context(), file, header)
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var form postForm
	var errs map[string]string
	if err := c.ShouldBind(&form); err != nil {
		errs = formErrors(err)
	}
	form.normalize()
	errs = resolveGroup(form, errs)
	if len(errs) > 0 {
		h.renderPostForm(c, http.StatusOK, form, errs, 0)
		return
	}

	imageURL, err := h.uploadImage(c)
	if err != nil {
		h.renderPostForm(c, http.StatusOK, form, map[string]string{
			"Image": "Не удалось загрузить картинку.",
		}, 0)
		return
	}

	post := models.Post{
		Text:     form.Text,
		AuthorID: user.ID,
		GroupID:  form.GroupID,
		ImageURL: imageURL,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Не удалось сохранить запись")
		return
	}

	utils.GetCache().Delete(indexCacheKey)

	c.Redirect(http.StatusFound, "/profile/"+user.Username)
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	post, ok := findPost(c)
	if !ok {
		return
	}

	// Only the author edits; everyone else is bounced to the detail page
	if post.AuthorID != user.ID {
		c.Redirect(http.StatusFound, postPath(post.ID))
		return
	}

	form := postForm{Text: post.Text, GroupID: post.GroupID}
	h.renderPostForm(c, http.StatusOK, form, nil, post.ID)
}

func (h *PostHandler) Edit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	post, ok := findPost(c)
	if !ok {
		return
	}

	if post.AuthorID != user.ID {
		c.Redirect(http.StatusFound, postPath(post.ID))
		return
	}

	var form postForm
	var errs map[string]string
	if err := c.ShouldBind(&form); err != nil {
		errs = formErrors(err)
	}
	form.normalize()
	errs = resolveGroup(form, errs)
	if len(errs) > 0 {
		h.renderPostForm(c, http.StatusOK, form, errs, post.ID)
		return
	}

	imageURL, err := h.uploadImage(c)
	if err != nil {
		h.renderPostForm(c, http.StatusOK, form, map[string]string{
			"Image": "Не удалось загрузить картинку.",
		}, post.ID)
		return
	}

	post.Text = form.Text
	post.GroupID = form.GroupID
	if imageURL != "" {
		post.ImageURL = imageURL
	}

	if err := db.DB.Save(&post).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Не удалось сохранить запись")
		return
	}

	utils.GetCache().Delete(indexCacheKey)

	c.Redirect(http.StatusFound, postPath(post.ID))
}

// AddComment attaches a comment to a post. An invalid submission
// re-renders the detail page with the field message instead of silently
// dropping the comment.
func (h *PostHandler) AddComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	post, ok := findPost(c)
	if !ok {
		return
	}

	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		page, perr := buildDetailPage(post)
		if perr != nil {
			RenderError(c, http.StatusInternalServerError, "Не удалось загрузить запись")
			return
		}
		page.CommentText = form.Text
		page.Errors = formErrors(err)
		Render(c, http.StatusBadRequest, "posts/post_detail.html", page)
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: user.ID,
		Text:     form.Text,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Не удалось сохранить комментарий")
		return
	}

	c.Redirect(http.StatusFound, postPath(post.ID))
}
