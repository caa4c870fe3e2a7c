package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// ParseRaffleUUID 解析路由上的 :uuid；失敗時直接回 400
func ParseRaffleUUID(c *gin.Context) (uuid.UUID, bool) {
	raffleID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid raffle uuid"})
		return uuid.Nil, false
	}
	return raffleID, true
}
