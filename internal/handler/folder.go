package handler

import (
	"GoVault/internal/dto"
	"GoVault/internal/service"
	"GoVault/internal/task"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateFolder creates a folder for the caller.
func CreateFolder(c *gin.Context) {
	var req dto.FolderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	folder, err := service.CreateFolder(callerID(c), req.ParentID, req.Name)
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folder": folder})
}

// RenameFolder renames a folder.
func RenameFolder(c *gin.Context) {
	var req dto.FolderRenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	folder, err := service.RenameFolder(callerID(c), req.FolderID, req.NewName)
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folder": folder})
}

// MoveFolder reparents a folder.
func MoveFolder(c *gin.Context) {
	var req dto.FolderMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	folder, err := service.MoveFolder(callerID(c), req.FolderID, req.NewParentID)
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folder": folder})
}

// DeleteFolder removes a folder tree and queues blob cleanup for every
// purged file.
func DeleteFolder(c *gin.Context) {
	var req dto.FolderIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	locators, err := service.DeleteFolder(callerID(c), req.FolderID)
	if err != nil {
		failService(c, err)
		return
	}
	task.EnqueueBlobCleanupAll(c.Request.Context(), locators)
	c.JSON(http.StatusOK, gin.H{"purged": len(locators)})
}
