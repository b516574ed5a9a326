package servehttp

import (
	"flowdeck/common"
	"flowdeck/domain/flowdef"
	"flowdeck/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

func RegisterFlowVersionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/flow-versions", middleWares...)

	g.GET(":versionId", handleDetailVersion)
	g.GET(":versionId/document", handleCompileVersionDocument)
	g.GET(":versionId/archived-document", handleFetchArchivedDocument)
}

func handleDetailVersion(c *gin.Context) {
	id, err := types.ParseID(c.Param("versionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("versionId") + "'"})
		return
	}

	detail, err := flowdef.DetailFlowVersionFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

// handleCompileVersionDocument renders the external platform document of
// the version, published or draft.
func handleCompileVersionDocument(c *gin.Context) {
	id, err := types.ParseID(c.Param("versionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("versionId") + "'"})
		return
	}

	doc, err := flowdef.CompileFlowVersionFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, doc)
}

// handleFetchArchivedDocument serves the object storage copy taken when the
// version was published.
func handleFetchArchivedDocument(c *gin.Context) {
	id, err := types.ParseID(c.Param("versionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("versionId") + "'"})
		return
	}

	doc, err := flowdef.FetchArchivedDocumentFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, doc)
}
