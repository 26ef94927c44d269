package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @summary     ParameterList
// @description List the coal-quality parameters known to the lab.
// @tags        parameter
// @produce     json
// @success     200 {object} any{parameters=[]catalog.Parameter}
// @router      /api/parameters [get]
func (h *Handler) HandleParameterList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"parameters": h.catalog.All()})
}

// @summary     ParameterGet
// @description Get a parameter by code. Unknown codes answer 404 with the closest known code, if any.
// @tags        parameter
// @produce     json
// @param       code path     string true "Item code, case insensitive"
// @success     200  {object} catalog.Parameter
// @failure     404  {object} any{error=string,suggestion=string}
// @router      /api/parameters/{code} [get]
func (h *Handler) HandleParameterGet(c *gin.Context) {
	code := c.Param("code")
	if p, ok := h.catalog.Lookup(code); ok {
		c.JSON(http.StatusOK, p)
		return
	}

	body := gin.H{"error": "unknown parameter"}
	if s, ok := h.catalog.Suggest(code); ok {
		body["suggestion"] = s
	}
	c.JSON(http.StatusNotFound, body)
}
