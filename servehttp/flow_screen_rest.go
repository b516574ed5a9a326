package servehttp

import (
	"flowdeck/common"
	"flowdeck/domain/flowdef"
	"flowdeck/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// screen graph editing surface of draft versions

func RegisterFlowScreenHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	handler := &flowScreenHandler{
		validator: validator.New(),
	}

	versions := r.Group("/v1/flow-versions", middleWares...)
	versions.POST(":versionId/screens", handler.handleCreateScreen)
	versions.PUT(":versionId/screen-orders", handler.handleUpdateScreenOrders)

	screens := r.Group("/v1/flow-screens", middleWares...)
	screens.PUT(":screenId", handler.handleUpdateScreen)
	screens.DELETE(":screenId", handler.handleDeleteScreen)
	screens.POST(":screenId/components", handler.handleCreateComponent)
	screens.POST(":screenId/actions", handler.handleCreateAction)

	components := r.Group("/v1/flow-components", middleWares...)
	components.PUT(":componentId", handler.handleUpdateComponent)
	components.DELETE(":componentId", handler.handleDeleteComponent)

	actions := r.Group("/v1/flow-actions", middleWares...)
	actions.PUT(":actionId", handler.handleUpdateAction)
	actions.DELETE(":actionId", handler.handleDeleteAction)
}

type flowScreenHandler struct {
	validator *validator.Validate
}

func parseIdParam(c *gin.Context, name string) (types.ID, bool) {
	id, err := types.ParseID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param(name) + "'"})
		return 0, false
	}
	return id, true
}

func (h *flowScreenHandler) handleCreateScreen(c *gin.Context) {
	versionId, ok := parseIdParam(c, "versionId")
	if !ok {
		return
	}

	creation := flowdef.ScreenCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	screen, err := flowdef.CreateFlowScreenFunc(versionId, &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, screen)
}

func (h *flowScreenHandler) handleUpdateScreen(c *gin.Context) {
	screenId, ok := parseIdParam(c, "screenId")
	if !ok {
		return
	}

	updating := flowdef.ScreenUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(updating); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	screen, err := flowdef.UpdateFlowScreenFunc(screenId, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, screen)
}

func (h *flowScreenHandler) handleDeleteScreen(c *gin.Context) {
	screenId, ok := parseIdParam(c, "screenId")
	if !ok {
		return
	}

	if err := flowdef.DeleteFlowScreenFunc(screenId, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func (h *flowScreenHandler) handleUpdateScreenOrders(c *gin.Context) {
	versionId, ok := parseIdParam(c, "versionId")
	if !ok {
		return
	}

	var orders []flowdef.ScreenOrderUpdating
	if err := c.ShouldBindBodyWith(&orders, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	for _, order := range orders {
		if err := h.validator.Struct(order); err != nil {
			panic(&common.ErrBadParam{Cause: err})
		}
	}

	if err := flowdef.UpdateScreenOrdersFunc(versionId, &orders, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func (h *flowScreenHandler) handleCreateComponent(c *gin.Context) {
	screenId, ok := parseIdParam(c, "screenId")
	if !ok {
		return
	}

	creation := flowdef.ComponentCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	component, err := flowdef.CreateFlowComponentFunc(screenId, &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, component)
}

func (h *flowScreenHandler) handleUpdateComponent(c *gin.Context) {
	componentId, ok := parseIdParam(c, "componentId")
	if !ok {
		return
	}

	updating := flowdef.ComponentUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(updating); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	component, err := flowdef.UpdateFlowComponentFunc(componentId, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, component)
}

func (h *flowScreenHandler) handleDeleteComponent(c *gin.Context) {
	componentId, ok := parseIdParam(c, "componentId")
	if !ok {
		return
	}

	if err := flowdef.DeleteFlowComponentFunc(componentId, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func (h *flowScreenHandler) handleCreateAction(c *gin.Context) {
	screenId, ok := parseIdParam(c, "screenId")
	if !ok {
		return
	}

	creation := flowdef.ActionCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	action, err := flowdef.CreateFlowActionFunc(screenId, &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, action)
}

func (h *flowScreenHandler) handleUpdateAction(c *gin.Context) {
	actionId, ok := parseIdParam(c, "actionId")
	if !ok {
		return
	}

	updating := flowdef.ActionUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(updating); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	action, err := flowdef.UpdateFlowActionFunc(actionId, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, action)
}

func (h *flowScreenHandler) handleDeleteAction(c *gin.Context) {
	actionId, ok := parseIdParam(c, "actionId")
	if !ok {
		return
	}

	if err := flowdef.DeleteFlowActionFunc(actionId, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}
