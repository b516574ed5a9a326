package bizerror

import (
	"encoding/json"
	"errors"
	"flowdeck/common"
	"flowdeck/domain"
	"flowdeck/i18n"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

var badRequestErrors = map[error]string{
	ErrVersionNotMutable:   "flow.version_not_mutable",
	ErrTemplateArchived:    "flow.template_archived",
	ErrDraftNotFound:       "flow.draft_not_found",
	ErrScreenIdConflict:    "flow.screen_id_conflict",
	ErrVariableKeyConflict: "flow.variable_key_conflict",
	ErrDanglingTarget:      "flow.dangling_target_screen",
	ErrEntryPointInvalid:   "flow.entry_point_invalid",
	ErrInvalidOptions:      "flow.invalid_component_options",
	ErrInvalidActionTarget: "flow.invalid_action_target",
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(common.BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &common.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request:  io.EOF (no body).
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	// bad request: json syntax Error
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	// validation failed
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}
	var badCategoryErr *domain.ErrBadCategory
	if errors.As(genericErr, &badCategoryErr) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "flow.bad_category", Message: badCategoryErr.Error()})
		c.Abort()
		return
	}

	if errors.Is(genericErr, ErrUnauthenticated) {
		c.JSON(http.StatusUnauthorized, &common.ErrorBody{Code: i18n.CommonUnauthenticated, Message: "unauthenticated"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrForbidden) {
		c.JSON(http.StatusForbidden, &common.ErrorBody{Code: i18n.CommonForbidden, Message: "access forbidden"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrPublishConflict) {
		c.JSON(http.StatusConflict, &common.ErrorBody{Code: "flow.publish_conflict", Message: genericErr.Error()})
		c.Abort()
		return
	}
	for bizErr, code := range badRequestErrors {
		if errors.Is(genericErr, bizErr) {
			c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: code, Message: bizErr.Error()})
			c.Abort()
			return
		}
	}
	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, &common.ErrorBody{Code: i18n.CommonRecordNotFound, Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(500, &common.ErrorBody{Code: i18n.CommonInternalServerError, Message: err.Error()})
	c.Abort()
}
