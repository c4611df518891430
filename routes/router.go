package routes

import (
	"time"

	"github.com/free4fun/carbon-codex/config"
	"github.com/free4fun/carbon-codex/handlers"
	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/markdown"
	"github.com/free4fun/carbon-codex/middleware"
	"github.com/free4fun/carbon-codex/repositories"
	"github.com/free4fun/carbon-codex/services"
	"github.com/free4fun/carbon-codex/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers into a router. It is
// shared by the server and the HTTP tests.
func Setup(cfg *config.Config, db *gorm.DB, store storage.Store) *gin.Engine {
	h := helper.NewHTTPHelper()

	// Initialize repositories
	postRepo := repositories.NewPostRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	authorRepo := repositories.NewAuthorRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	userRepo := repositories.NewUserRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize services
	contentService := services.NewContentService(postRepo, tagRepo, authorRepo, categoryRepo, markdown.NewRenderer())
	tagService := services.NewTagService(tagRepo)
	postService := services.NewPostService(uow, postRepo, tagRepo, store)
	authorService := services.NewAuthorService(authorRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	authService := services.NewAuthService(userRepo)
	uploadService := services.NewUploadService(store)
	sitemapService := services.NewSitemapService(contentService, cfg.SiteURL)

	// Initialize handlers
	contentHandler := handlers.NewContentHandler(contentService, h)
	tagHandler := handlers.NewTagHandler(tagService, contentService, h)
	postHandler := handlers.NewPostHandler(postService, h)
	authorHandler := handlers.NewAuthorHandler(authorService, h)
	categoryHandler := handlers.NewCategoryHandler(categoryService, h)
	authHandler := handlers.NewAuthHandler(authService, h)
	uploadHandler := handlers.NewUploadHandler(uploadService, h)
	systemHandler := handlers.NewSystemHandler(db, sitemapService, h)

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/health", systemHandler.Health)
	router.GET("/sitemap.xml", systemHandler.Sitemap)

	if local, ok := store.(*storage.LocalStore); ok && cfg.UploadsBase != "" {
		router.Static(cfg.UploadsBase, local.Root)
	}

	v1 := router.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthMiddleware(), authHandler.Me)
		}

		// Public routes
		public := v1.Group("")
		public.Use(middleware.Locale())
		{
			public.GET("/posts", contentHandler.LatestPosts)
			public.GET("/posts/:slug", contentHandler.GetPost)
			public.GET("/posts/:slug/related", contentHandler.RelatedPosts)

			public.GET("/categories", contentHandler.GetCategories)
			public.GET("/categories/:slug", contentHandler.GetCategory)
			public.GET("/categories/:slug/posts", contentHandler.GetCategoryPosts)

			public.GET("/tags", tagHandler.GetTags)
			public.GET("/tags/count", tagHandler.CountTags)
			public.GET("/tags/:slug/posts", tagHandler.GetTagPosts)

			public.GET("/authors", contentHandler.GetAuthors)
			public.GET("/authors/:slug", contentHandler.GetAuthor)
			public.GET("/authors/:slug/posts", contentHandler.GetAuthorPosts)

			public.GET("/search", contentHandler.Search)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.RequireAdmin())
		{
			posts := admin.Group("/posts")
			{
				posts.GET("", postHandler.ListPosts)
				posts.GET("/:id", postHandler.GetPost)
				posts.POST("", postHandler.CreatePost)
				posts.PUT("/:id", postHandler.UpdatePost)
				posts.DELETE("/:id", postHandler.DeletePost)
			}

			authors := admin.Group("/authors")
			{
				authors.GET("", authorHandler.ListAuthors)
				authors.GET("/:id", authorHandler.GetAuthor)
				authors.POST("", authorHandler.CreateAuthor)
				authors.PUT("/:id", authorHandler.UpdateAuthor)
				authors.DELETE("/:id", authorHandler.DeleteAuthor)
			}

			categories := admin.Group("/categories")
			{
				categories.GET("", categoryHandler.ListCategories)
				categories.GET("/:id", categoryHandler.GetCategory)
				categories.POST("", categoryHandler.CreateCategory)
				categories.PUT("/:id", categoryHandler.UpdateCategory)
				categories.DELETE("/:id", categoryHandler.DeleteCategory)
			}

			uploads := admin.Group("/uploads")
			{
				uploads.GET("", uploadHandler.ListUploads)
				uploads.POST("", uploadHandler.Upload)
				uploads.DELETE("", uploadHandler.DeleteUpload)
			}
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Language"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
