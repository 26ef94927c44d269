package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandlePing handles ping requests.
//
// @summary     Ping
// @description Liveness probe.
// @tags        ping
// @produce     json
// @success     200 {object} any{message=string}
// @router      /ping [get]
func HandlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}
