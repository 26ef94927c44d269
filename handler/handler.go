package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"sync"

	"coalhub/middleware"
	"coalhub/service/catalog"
	"coalhub/service/quality"
	"coalhub/service/record"
	"coalhub/service/storage"
	"coalhub/service/store"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// Config holds the collaborators of the HTTP handlers.
type Config struct {
	Records       *record.Service
	Catalog       *catalog.Catalog
	Storage       storage.Provider
	MaxUploadSize int64
	// RateLimit guards the public write endpoints. Nil means no limit.
	RateLimit gin.HandlerFunc
}

// Handler serves the testing record API.
type Handler struct {
	records       *record.Service
	catalog       *catalog.Catalog
	storage       storage.Provider
	maxUploadSize int64
	rateLimit     gin.HandlerFunc
}

var registerOnce sync.Once

// New creates the handlers and registers the custom binding rules.
func New(conf Config) *Handler {
	registerOnce.Do(func() {
		if err := RegisterValidators(); err != nil {
			log.WithError(err).Panic("Failed to register validators")
		}
	})
	h := &Handler{
		records:       conf.Records,
		catalog:       conf.Catalog,
		storage:       conf.Storage,
		maxUploadSize: conf.MaxUploadSize,
		rateLimit:     conf.RateLimit,
	}
	if h.rateLimit == nil {
		h.rateLimit = func(c *gin.Context) { c.Next() }
	}
	return h
}

// RegisterRoutes adds the API routes below /api to r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	{
		params := api.Group("/parameters")
		{
			params.GET("", h.HandleParameterList)
			params.GET("/:code", h.HandleParameterGet)
		}

		records := api.Group("/testing-records")
		{
			records.POST("", h.rateLimit, h.HandleRecordCreate)
			records.GET("", h.HandleRecordList)
			records.GET("/:id", h.HandleRecordGet)
			records.PUT("/:id", h.HandleRecordUpdate)
			records.DELETE("/:id", h.HandleRecordDelete)
			records.POST("/:id/recompute", h.HandleRecordRecompute)
			records.POST("/:id/results/import", h.rateLimit, h.HandleResultsImport)
			records.GET("/:id/export", h.HandleRecordExport)
			records.POST("/:id/attachments", h.rateLimit, h.HandleAttachmentAdd)
			records.GET("/:id/attachments/:attachment_id", h.HandleAttachmentGet)
		}
	}
}

var itemCodePattern = regexp.MustCompile(`^[A-Za-z0-9_.,/-]{1,32}$`)

// RegisterValidators adds the "itemcode" rule to the gin validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return v.RegisterValidation("itemcode", func(fl validator.FieldLevel) bool {
		return itemCodePattern.MatchString(fl.Field().String())
	})
}

// parseID reads the :id path parameter and answers 400 when it is malformed.
func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// bindError answers 400 for a request body or query that failed to bind.
func bindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "field " + fe.Namespace() + " failed on the '" + fe.Tag() + "' rule",
			"field": fe.Field(),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// fail maps err to a response. Unknown errors are logged and answered with
// msg and 500.
func fail(c *gin.Context, err error, msg string) {
	var verr *quality.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    verr.Error(),
			"itemCode": verr.ItemCode,
			"field":    verr.Field,
			"index":    verr.Index,
		})
	case errors.Is(err, record.ErrNoResults):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "testing record not found"})
	default:
		log.WithError(err).WithField(middleware.RequestIDKey, middleware.RequestID(c)).Error(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
