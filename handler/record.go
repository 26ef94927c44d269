package handler

import (
	"net/http"

	"coalhub/service/record"
	"coalhub/service/store"

	"github.com/gin-gonic/gin"
)

// defaultListLimit applies when the client does not page.
const defaultListLimit = 100

// @summary     RecordCreate
// @description Submit a testing record. The weighted averages are computed from the results.
// @tags        testing-record
// @accept      json
// @produce     json
// @param       record body     record.Input true "Testing record"
// @success     201    {object} model.TestingRecord
// @failure     400    {object} any{error=string,itemCode=string,field=string,index=int}
// @failure     429    {object} any{error=string}
// @failure     500    {object} any{error=string}
// @router      /api/testing-records [post]
func (h *Handler) HandleRecordCreate(c *gin.Context) {
	var in record.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	rec, err := h.records.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err, "failed to create testing record")
		return
	}

	c.JSON(http.StatusCreated, rec)
}

type recordListQuery struct {
	Company  string `form:"company"`
	CoalType string `form:"coalType"`
	ItemCode string `form:"itemCode"`
	Limit    int    `form:"limit" binding:"min=0,max=1000"`
	Offset   int    `form:"offset" binding:"min=0"`
}

// @summary     RecordList
// @description List testing records ordered by id.
// @tags        testing-record
// @produce     json
// @param       company  query    string false "Company, case insensitive"
// @param       coalType query    string false "Coal type, case insensitive"
// @param       itemCode query    string false "Only records with a result for this item code"
// @param       limit    query    int    false "Page size, 100 by default"
// @param       offset   query    int    false "Records to skip"
// @success     200      {object} any{records=[]model.TestingRecord}
// @failure     400      {object} any{error=string}
// @failure     500      {object} any{error=string}
// @router      /api/testing-records [get]
func (h *Handler) HandleRecordList(c *gin.Context) {
	var q recordListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultListLimit
	}

	records, err := h.records.List(c.Request.Context(), store.Filter{
		Company:  q.Company,
		CoalType: q.CoalType,
		ItemCode: q.ItemCode,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		fail(c, err, "failed to list testing records")
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}

// @summary     RecordGet
// @description Get a testing record.
// @tags        testing-record
// @produce     json
// @param       id  path     int true "Record ID"
// @success     200 {object} model.TestingRecord
// @failure     400 {object} any{error=string}
// @failure     404 {object} any{error=string}
// @failure     500 {object} any{error=string}
// @router      /api/testing-records/{id} [get]
func (h *Handler) HandleRecordGet(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.records.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "failed to get testing record")
		return
	}

	c.JSON(http.StatusOK, rec)
}

// @summary     RecordUpdate
// @description Change some fields of a testing record. Sending results replaces them all and recomputes the weighted averages.
// @tags        testing-record
// @accept      json
// @produce     json
// @param       id    path     int          true "Record ID"
// @param       patch body     record.Patch true "Fields to change"
// @success     200   {object} model.TestingRecord
// @failure     400   {object} any{error=string,itemCode=string,field=string,index=int}
// @failure     404   {object} any{error=string}
// @failure     500   {object} any{error=string}
// @router      /api/testing-records/{id} [put]
func (h *Handler) HandleRecordUpdate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var p record.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		bindError(c, err)
		return
	}

	rec, err := h.records.Update(c.Request.Context(), id, p)
	if err != nil {
		fail(c, err, "failed to update testing record")
		return
	}

	c.JSON(http.StatusOK, rec)
}

// @summary     RecordDelete
// @description Delete a testing record.
// @tags        testing-record
// @produce     json
// @param       id  path     int true "Record ID"
// @success     200 {object} any{message=string}
// @failure     400 {object} any{error=string}
// @failure     404 {object} any{error=string}
// @failure     500 {object} any{error=string}
// @router      /api/testing-records/{id} [delete]
func (h *Handler) HandleRecordDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.records.Delete(c.Request.Context(), id); err != nil {
		fail(c, err, "failed to delete testing record")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// @summary     RecordRecompute
// @description Recompute the weighted averages from the stored results.
// @tags        testing-record
// @produce     json
// @param       id  path     int true "Record ID"
// @success     200 {object} any{weightedResults=map[string]number}
// @failure     400 {object} any{error=string,itemCode=string,field=string,index=int}
// @failure     404 {object} any{error=string}
// @failure     500 {object} any{error=string}
// @router      /api/testing-records/{id}/recompute [post]
func (h *Handler) HandleRecordRecompute(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	weighted, err := h.records.Recompute(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "failed to recompute testing record")
		return
	}

	c.JSON(http.StatusOK, gin.H{"weightedResults": weighted})
}
