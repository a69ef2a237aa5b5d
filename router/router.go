package router

import (
	"GoVault/internal/handler"
	"GoVault/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes.
func InitRouter() *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/register", handler.Register)
		api.GET("/activate", handler.Activate)
		api.POST("/login", handler.Login)

		auth := api.Group("")
		auth.Use(utils.AuthMiddleware())

		file := auth.Group("/file")
		{
			file.POST("/list", handler.GetFileList)
			file.POST("/info", handler.GetFileInfo)
			file.POST("/bulk", handler.BulkInsertFiles)
			file.POST("/rename", handler.RenameFile)
			file.POST("/transfer", handler.TransferFile)
			file.POST("/delete", handler.SoftDeleteFile)
			file.GET("/usage", handler.GetUsage)
			file.POST("/usage/reconcile", handler.ReconcileUsage)
		}

		folder := auth.Group("/folder")
		{
			folder.POST("/create", handler.CreateFolder)
			folder.POST("/rename", handler.RenameFolder)
			folder.POST("/move", handler.MoveFolder)
			folder.POST("/delete", handler.DeleteFolder)
		}

		recycle := auth.Group("/recycle")
		{
			recycle.POST("/list", handler.ListRecycleFiles)
			recycle.POST("/restore", handler.RestoreFile)
			recycle.POST("/delete", handler.PermanentlyDeleteFile)
		}

		share := auth.Group("/share")
		{
			share.POST("/create", handler.CreateShareHandler)
			share.POST("/deactivate", handler.DeactivateShare)
			share.POST("/list", handler.ListShares)
		}

		// Public share endpoints; rate limited per IP so passwords cannot
		// be brute forced.
		public := api.Group("/share")
		public.Use(utils.RedeemRateMiddleware())
		{
			public.GET("/:token", handler.GetShareInfo)
			public.POST("/:token/redeem", handler.RedeemShare)
			public.GET("/:token/download", handler.ShareDownload)
		}
	}
	return r
}
