package router

import (
	"github.com/AlexandrBurak/hw05-final/internal/handlers"
	"github.com/AlexandrBurak/hw05-final/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	profileHandler := handlers.NewProfileHandler()

	// Public routes
	r.GET("/", postHandler.Index)
	r.GET("/group/:slug", postHandler.GroupPosts)
	r.GET("/profile/:username", profileHandler.Profile)
	r.GET("/posts/:post_id", postHandler.Detail)

	r.GET("/auth/signup", authHandler.ShowSignup)
	r.POST("/auth/signup", authHandler.Signup)
	r.GET("/auth/login", authHandler.ShowLogin)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/auth/logout", authHandler.Logout)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create", postHandler.ShowCreate)
		authorized.POST("/create", postHandler.Create)
		authorized.GET("/posts/:post_id/edit", postHandler.ShowEdit)
		authorized.POST("/posts/:post_id/edit", postHandler.Edit)
		authorized.POST("/posts/:post_id/comment", postHandler.AddComment)

		authorized.GET("/follow", profileHandler.FollowIndex)
		authorized.GET("/profile/:username/follow", profileHandler.Follow)
		authorized.GET("/profile/:username/unfollow", profileHandler.Unfollow)
	}

	r.NoRoute(handlers.NotFound)
}
