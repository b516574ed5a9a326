package servehttp

import (
	"flowdeck/common"
	"flowdeck/domain/flowdef"
	"flowdeck/session"
	"net/http"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterFlowTemplateHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/flow-templates", middleWares...)

	handler := &flowTemplateHandler{
		validator: validator.New(),
	}

	g.POST("", handler.handleCreateTemplate)
	g.GET("", handler.handleQueryTemplates)
	g.GET(":templateId", handler.handleDetailTemplate)
	g.PUT(":templateId", handler.handleUpdateTemplateBase)
	g.DELETE(":templateId", handler.handleArchiveTemplate)

	g.POST(":templateId/publish", handler.handlePublishTemplate)
	g.POST(":templateId/reject", handler.handleRejectTemplate)
	g.POST(":templateId/platform-status", handler.handleApplyPlatformStatus)
}

type flowTemplateHandler struct {
	validator *validator.Validate
}

func (h *flowTemplateHandler) handleQueryTemplates(c *gin.Context) {
	query := flowdef.FlowTemplateQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	templates, err := flowdef.QueryFlowTemplatesFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, templates)
}

func (h *flowTemplateHandler) handleCreateTemplate(c *gin.Context) {
	creation := flowdef.FlowTemplateCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err = h.validator.Struct(creation); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	detail, err := flowdef.CreateFlowTemplateFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *flowTemplateHandler) handleDetailTemplate(c *gin.Context) {
	id, err := types.ParseID(c.Param("templateId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("templateId") + "'"})
		return
	}

	detail, err := flowdef.DetailFlowTemplateFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *flowTemplateHandler) handleUpdateTemplateBase(c *gin.Context) {
	id, err := types.ParseID(c.Param("templateId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("templateId") + "'"})
		return
	}

	updating := flowdef.FlowTemplateBaseUpdation{}
	err = c.ShouldBindBodyWith(&updating, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err = h.validator.Struct(updating); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	template, err := flowdef.UpdateFlowTemplateBaseFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *flowTemplateHandler) handleArchiveTemplate(c *gin.Context) {
	id, err := types.ParseID(c.Param("templateId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("templateId") + "'"})
		return
	}

	if err := flowdef.ArchiveFlowTemplateFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func (h *flowTemplateHandler) handlePublishTemplate(c *gin.Context) {
	id, err := types.ParseID(c.Param("templateId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("templateId") + "'"})
		return
	}

	detail, err := flowdef.PublishFlowVersionFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *flowTemplateHandler) handleRejectTemplate(c *gin.Context) {
	id, err := types.ParseID(c.Param("templateId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("templateId") + "'"})
		return
	}

	rejection := flowdef.VersionRejection{}
	err = c.ShouldBindBodyWith(&rejection, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err = h.validator.Struct(rejection); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	detail, err := flowdef.RejectFlowVersionFunc(id, &rejection, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

type platformStatusNotification struct {
	EventTime *time.Time             `json:"eventTime"`
	Payload   map[string]interface{} `json:"payload"`
}

// the platform posts health transitions here; payloads vary by event
// generation, so the body is probed rather than strictly bound
func (h *flowTemplateHandler) handleApplyPlatformStatus(c *gin.Context) {
	id, err := types.ParseID(c.Param("templateId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("templateId") + "'"})
		return
	}

	notification := platformStatusNotification{}
	err = c.ShouldBindBodyWith(&notification, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	eventTime := time.Now()
	if notification.EventTime != nil {
		eventTime = *notification.EventTime
	}
	payload := notification.Payload
	if payload == nil {
		// flat body without an envelope, treat the whole object as payload
		payload = map[string]interface{}{}
		_ = c.ShouldBindBodyWith(&payload, binding.JSON)
	}

	status, err := flowdef.ApplyPlatformStatusFunc(id, payload, eventTime, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"healthStatus": status})
}
