package handler

import (
	"GoVault/internal/dto"
	"GoVault/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// BulkInsertFiles registers a batch of uploaded files in one unit of work.
func BulkInsertFiles(c *gin.Context) {
	var req dto.BulkInsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	files, err := service.BulkInsertFiles(callerID(c), req.Records)
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// GetFileList lists the caller's files with pagination.
func GetFileList(c *gin.Context) {
	var req dto.FileListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	files, total, err := service.ListFiles(callerID(c), &req)
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"total": total,
	})
}

// RenameFile renames a file.
func RenameFile(c *gin.Context) {
	var req dto.FileRenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	file, err := service.RenameFile(callerID(c), req.FileID, req.NewName, req.NewOriginalName)
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file_id": file.ID,
		"name":    file.Name,
	})
}

// TransferFile hands a file over to another account.
func TransferFile(c *gin.Context) {
	var req dto.FileTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	file, err := service.TransferFileOwner(callerID(c), req.FileID, req.NewOwnerID)
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file_id": file.ID})
}

// GetFileInfo returns one non-recycled file the caller owns.
func GetFileInfo(c *gin.Context) {
	var req dto.FileIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	file, err := service.GetFileById(req.FileID)
	if err != nil {
		failService(c, err)
		return
	}
	if file.UserID != callerID(c) {
		failService(c, service.ErrNotAuthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": file})
}

// GetUsage reports the caller's ledger against a full recomputation.
func GetUsage(c *gin.Context) {
	ownerID := callerID(c)
	if raw := c.Query("owner_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed != ownerID {
			c.JSON(http.StatusForbidden, gin.H{"msg": "not authorized"})
			return
		}
	}
	report, err := service.RecomputeUsage(ownerID)
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ReconcileUsage rewrites the caller's ledger when it has drifted from the
// recomputed value.
func ReconcileUsage(c *gin.Context) {
	report, err := service.ReconcileUsage(c.Request.Context(), callerID(c))
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
