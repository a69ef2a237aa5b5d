package handler

import (
	"GoVault/config"
	"GoVault/internal/dto"
	"GoVault/internal/service"
	"GoVault/internal/storage"
	"GoVault/utils"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateShareHandler issues a share link for a file the caller owns and
// optionally mails it to a recipient.
func CreateShareHandler(c *gin.Context) {
	var req dto.CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	link, err := service.CreateShareLink(callerID(c), req.FileID, req.ExpireHours, req.Password, req.DownloadLimit)
	if err != nil {
		failService(c, err)
		return
	}

	if req.NotifyEmail != "" {
		shareURL := buildShareLink(c, link.Token)
		go func(to, name, url string) {
			if err := utils.SendShareMail(to, name, url); err != nil {
				log.Printf("share mail to %s failed: %v", to, err)
			}
		}(req.NotifyEmail, link.File.Name, shareURL)
	}

	c.JSON(http.StatusOK, dto.CreateShareResponse{
		ShareID:  link.ID,
		Token:    link.Token,
		ExpireAt: link.ExpireAt,
	})
}

func buildShareLink(c *gin.Context, token string) string {
	baseURL := strings.TrimSpace(os.Getenv("APP_BASE_URL"))
	if baseURL == "" {
		scheme := "http"
		if forwarded := strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")); forwarded != "" {
			scheme = forwarded
		} else if c.Request.TLS != nil {
			scheme = "https"
		}
		host := strings.TrimSpace(c.GetHeader("X-Forwarded-Host"))
		if host == "" {
			host = c.Request.Host
		}
		baseURL = scheme + "://" + host
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return baseURL + "/api/share/" + url.PathEscape(token)
}

// GetShareInfo serves the public, non-consuming view of a share link.
func GetShareInfo(c *gin.Context) {
	info, err := service.GetShareInfo(c.Param("token"))
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func bindSharePassword(c *gin.Context) string {
	password := c.Query("password")
	if password == "" {
		var req dto.RedeemShareRequest
		_ = c.ShouldBindJSON(&req)
		password = req.Password
	}
	return password
}

// RedeemShare consumes one redemption and returns the file metadata.
func RedeemShare(c *gin.Context) {
	result, err := service.RedeemShareLink(c.Param("token"), bindSharePassword(c))
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ShareDownload consumes one redemption and streams the blob. With
// ?presign=1 it returns a short-lived direct URL instead of streaming.
func ShareDownload(c *gin.Context) {
	result, err := service.RedeemShareLink(c.Param("token"), bindSharePassword(c))
	if err != nil {
		failService(c, err)
		return
	}

	if storage.Default == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "storage not initialized"})
		return
	}

	if c.Query("presign") == "1" {
		downloadURL, err := storage.Default.PresignedGetObject(
			c.Request.Context(),
			config.AppConfig.BucketName,
			result.Locator,
			15*time.Minute,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": downloadURL, "file_name": result.FileName})
		return
	}

	object, info, err := storage.Default.GetObject(
		c.Request.Context(),
		config.AppConfig.BucketName,
		result.Locator,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
		return
	}
	defer object.Close()

	safeName := utils.SanitizeHeaderFilename(result.FileName)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, safeName))
	contentType := result.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Length", fmt.Sprintf("%d", info.Size))

	if _, err := io.Copy(c.Writer, object); err != nil {
		log.Printf("share download stream failed: %v", err)
	}
}

// DeactivateShare permanently disables a link the caller created.
func DeactivateShare(c *gin.Context) {
	var req struct {
		ShareID uint64 `json:"share_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := service.DeactivateShareLink(callerID(c), req.ShareID); err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// ListShares lists the caller's links for one file.
func ListShares(c *gin.Context) {
	var req dto.FileIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	links, err := service.ListShareLinks(callerID(c), req.FileID)
	if err != nil {
		failService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shares": links})
}
