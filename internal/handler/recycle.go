package handler

import (
	"GoVault/internal/dto"
	"GoVault/internal/service"
	"GoVault/internal/task"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SoftDeleteFile moves a file to the recycle bin. The locator is returned so
// the client can decide whether to drop the blob right away.
func SoftDeleteFile(c *gin.Context) {
	var req dto.FileIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	file, err := service.SoftDeleteFile(callerID(c), req.FileID)
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file_id": file.ID,
		"locator": file.Locator,
	})
}

// ListRecycleFiles lists the caller's recycle bin.
func ListRecycleFiles(c *gin.Context) {
	files, err := service.ListRecycledFiles(callerID(c))
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// RestoreFile brings a recycled file back.
func RestoreFile(c *gin.Context) {
	var req dto.FileIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	file, err := service.RestoreFile(callerID(c), req.FileID)
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file_id": file.ID})
}

// PermanentlyDeleteFile purges a registry row and queues the blob removal.
func PermanentlyDeleteFile(c *gin.Context) {
	var req dto.FileIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	file, err := service.PermanentlyDeleteFile(callerID(c), req.FileID)
	if err != nil {
		failService(c, err)
		return
	}
	task.EnqueueBlobCleanupAll(c.Request.Context(), []string{file.Locator})
	c.JSON(http.StatusOK, gin.H{
		"file_id": file.ID,
		"locator": file.Locator,
	})
}
