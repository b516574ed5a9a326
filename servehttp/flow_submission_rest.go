package servehttp

import (
	"flowdeck/common"
	"flowdeck/domain/submission"
	"flowdeck/indices/search"
	"flowdeck/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterFlowSubmissionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	handler := &flowSubmissionHandler{
		validator: validator.New(),
	}

	g := r.Group("/v1/flow-submissions", middleWares...)
	g.POST("", handler.handleCreateSubmission)
	g.GET("", handler.handleQuerySubmissions)
	g.GET(":submissionId", handler.handleDetailSubmission)
	g.PUT(":submissionId/status", handler.handleUpdateSubmissionStatus)

	// search serves from the index and may lag the database briefly
	s := r.Group("/v1/flow-submission-search", middleWares...)
	s.GET("", handler.handleSearchSubmissions)
}

type flowSubmissionHandler struct {
	validator *validator.Validate
}

func (h *flowSubmissionHandler) handleCreateSubmission(c *gin.Context) {
	creation := submission.FlowSubmissionCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := submission.CreateFlowSubmissionFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *flowSubmissionHandler) handleQuerySubmissions(c *gin.Context) {
	query := submission.FlowSubmissionQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	records, err := submission.QueryFlowSubmissionsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func (h *flowSubmissionHandler) handleSearchSubmissions(c *gin.Context) {
	query := submission.FlowSubmissionQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	records, err := search.SearchFlowSubmissionsFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func (h *flowSubmissionHandler) handleDetailSubmission(c *gin.Context) {
	id, ok := parseIdParam(c, "submissionId")
	if !ok {
		return
	}

	record, err := submission.DetailFlowSubmissionFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *flowSubmissionHandler) handleUpdateSubmissionStatus(c *gin.Context) {
	id, ok := parseIdParam(c, "submissionId")
	if !ok {
		return
	}

	updating := submission.FlowSubmissionStatusUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(updating); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	record, err := submission.UpdateFlowSubmissionStatusFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, record)
}
