package router

import (
	"Thread_Hive/internal/config"
	"Thread_Hive/internal/handler"
	"Thread_Hive/internal/middleware"
	"Thread_Hive/internal/pkg"
	"Thread_Hive/internal/repository/mysql"
	"Thread_Hive/internal/repository/redis"
	"Thread_Hive/internal/service"

	"github.com/gin-gonic/gin"
)

func InitRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	emailCfg := pkg.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}

	emailSvc := service.NewEmailService(emailCfg)

	likeCache := redis.NewLikeCacheRepository()
	distLock := redis.NewDistLock()

	user := handler.NewUserHandler(service.NewUserService(mysql.DB, emailSvc))
	email := handler.NewEmailHandler(emailSvc)
	community := handler.NewCommunityHandler(service.NewCommunityService(mysql.DB, &emailCfg))
	thread := handler.NewThreadHandler(service.NewThreadService(mysql.DB, likeCache))
	like := handler.NewThreadLikeHandler(service.NewThreadLikeService(mysql.DB, likeCache, distLock))

	// 邮件相关接口
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", email.SendCode)
	}

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/reset", user.ResetPassword)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/logout", user.Logout)
		authGroup.POST("/change-password", user.ChangePassword)
		authGroup.POST("/onboard", user.Onboard)
		authGroup.GET("/me", user.Me)
		authGroup.DELETE("/account", user.DeleteAccount)
	}

	// 社区相关接口
	communityGroup := r.Group("/api/community")
	communityGroup.Use(middleware.AuthMiddleware())
	{
		communityGroup.POST("/create", community.Create)
		communityGroup.GET("/list", community.List)
		communityGroup.GET("/invites", community.MyInvites)
		communityGroup.GET("/:cid", community.Get)
		communityGroup.PATCH("/:cid", community.Update)
		communityGroup.DELETE("/:cid", community.Delete)
		communityGroup.POST("/:cid/join", community.Join)
		communityGroup.POST("/:cid/leave", community.Leave)
		communityGroup.GET("/:cid/members", community.Members)
		communityGroup.DELETE("/:cid/members/:uid", community.RemoveMember)
		communityGroup.POST("/:cid/moderators/:uid", community.AddModerator)
		communityGroup.DELETE("/:cid/moderators/:uid", community.RemoveModerator)
		communityGroup.POST("/:cid/invites/:uid", community.Invite)
		communityGroup.POST("/:cid/invite/accept", community.AcceptInvite)
		communityGroup.POST("/:cid/invite/reject", community.RejectInvite)
		communityGroup.GET("/:cid/requests", community.Requests)
		communityGroup.POST("/:cid/requests/:uid/accept", community.AcceptRequest)
		communityGroup.POST("/:cid/requests/:uid/reject", community.RejectRequest)
	}

	// 帖子相关接口
	threadGroup := r.Group("/api/thread")
	threadGroup.Use(middleware.AuthMiddleware())
	{
		threadGroup.POST("/create", thread.Create)
		threadGroup.GET("/list/:cid", thread.ListByCommunity)
		threadGroup.GET("/:id", thread.Get)
		threadGroup.PATCH("/:id", thread.Edit)
		threadGroup.DELETE("/:id", thread.Delete)
		threadGroup.POST("/:id/reply", thread.Reply)
		threadGroup.POST("/:id/like", like.Toggle)
		threadGroup.GET("/:id/like", like.Status)
	}

	return r
}
