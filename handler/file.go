package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"coalhub/middleware"
	"coalhub/model"
	"coalhub/service/sheet"
	"coalhub/service/storage"
	"coalhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// formFile reads the multipart "file" field, answering 413 when the request
// is larger than the upload limit and 400 when the field is missing.
func (h *Handler) formFile(c *gin.Context) (*multipart.FileHeader, bool) {
	if c.Request.ContentLength > h.maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return nil, false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return nil, false
	}
	return fh, true
}

// @summary     ResultsImport
// @description Replace the results of a testing record with the rows of an .xlsx workbook (columns: item code, value, weight; first row is a header).
// @tags        testing-record
// @accept      multipart/form-data
// @produce     json
// @param       id   path     int  true "Record ID"
// @param       file formData file true "Workbook"
// @success     200  {object} model.TestingRecord
// @failure     400  {object} any{error=string,itemCode=string,field=string,index=int}
// @failure     404  {object} any{error=string}
// @failure     413  {object} any{error=string}
// @failure     500  {object} any{error=string}
// @router      /api/testing-records/{id}/results/import [post]
func (h *Handler) HandleResultsImport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	fh, ok := h.formFile(c)
	if !ok {
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, err, "failed to read upload")
		return
	}
	defer f.Close()

	results, err := sheet.ImportResults(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.records.ReplaceResults(c.Request.Context(), id, results)
	if err != nil {
		fail(c, err, "failed to import results")
		return
	}

	c.JSON(http.StatusOK, rec)
}

// @summary     RecordExport
// @description Download a testing record as an .xlsx workbook.
// @tags        testing-record
// @produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @param       id  path int true "Record ID"
// @success     200 {file} file
// @failure     400 {object} any{error=string}
// @failure     404 {object} any{error=string}
// @failure     500 {object} any{error=string}
// @router      /api/testing-records/{id}/export [get]
func (h *Handler) HandleRecordExport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.records.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "failed to get testing record")
		return
	}

	var buf bytes.Buffer
	if err := sheet.ExportRecord(&buf, rec, h.catalog); err != nil {
		fail(c, err, "failed to export testing record")
		return
	}

	utils.SetHeaderNoCache(c)
	utils.SendAttachment(c, utils.AttachmentName("testing-record", rec.ID, ".xlsx"),
		xlsxContentType, &buf, int64(buf.Len()))
}

// @summary     AttachmentAdd
// @description Upload a file, e.g. a lab certificate, for a testing record.
// @tags        attachment
// @accept      multipart/form-data
// @produce     json
// @param       id   path     int  true "Record ID"
// @param       file formData file true "Attachment"
// @success     201  {object} model.Attachment
// @failure     400  {object} any{error=string}
// @failure     404  {object} any{error=string}
// @failure     413  {object} any{error=string}
// @failure     429  {object} any{error=string}
// @failure     500  {object} any{error=string}
// @router      /api/testing-records/{id}/attachments [post]
func (h *Handler) HandleAttachmentAdd(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, err := h.records.Get(c.Request.Context(), id); err != nil {
		fail(c, err, "failed to get testing record")
		return
	}
	fh, ok := h.formFile(c)
	if !ok {
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, err, "failed to read upload")
		return
	}
	defer f.Close()

	att := model.Attachment{
		ID:          uuid.NewString(),
		Name:        filepath.Base(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	if att.ContentType == "" {
		att.ContentType = "application/octet-stream"
	}
	key := model.AttachmentKey(id, att.ID)
	if err := h.storage.Put(c.Request.Context(), key, f, fh.Size, att.ContentType); err != nil {
		fail(c, err, "failed to store attachment")
		return
	}

	rec, err := h.records.AddAttachment(c.Request.Context(), id, att)
	if err != nil {
		if derr := h.storage.Delete(c.Request.Context(), key); derr != nil {
			log.WithError(derr).WithField("key", key).Warn("Failed to remove orphaned attachment")
		}
		fail(c, err, "failed to add attachment")
		return
	}
	log.WithField("id", id).WithField("attachment", att.ID).
		WithField(middleware.RequestIDKey, middleware.RequestID(c)).
		Info("Attachment uploaded")

	stored, _ := rec.Attachment(att.ID)
	c.JSON(http.StatusCreated, stored)
}

// @summary     AttachmentGet
// @description Download an attachment of a testing record.
// @tags        attachment
// @produce     octet-stream
// @param       id            path string true "Record ID"
// @param       attachment_id path string true "Attachment ID"
// @success     200 {file} file
// @failure     400 {object} any{error=string}
// @failure     404 {object} any{error=string}
// @failure     500 {object} any{error=string}
// @router      /api/testing-records/{id}/attachments/{attachment_id} [get]
func (h *Handler) HandleAttachmentGet(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.records.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "failed to get testing record")
		return
	}
	att, ok := rec.Attachment(c.Param("attachment_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
		return
	}

	rc, err := h.storage.Get(c.Request.Context(), model.AttachmentKey(id, att.ID))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
		return
	}
	if err != nil {
		fail(c, err, "failed to open attachment")
		return
	}
	defer rc.Close()

	utils.SetHeaderCacheForever(c)
	utils.SendAttachment(c, att.Name, att.ContentType, rc, att.Size)
}
