package meta

import (
	"encoding/json"
	"flowdeck/common"
	"flowdeck/domain/flowcompile"
	"fmt"
	"net/http"
	"os"

	"github.com/fundwit/go-commons/types"
)

// client of the messaging platform management API which hosts the
// published interactive form documents.

var (
	ServiceUrl  string
	AccessToken string

	PublishFlowDocumentFunc   = PublishFlowDocument
	DeprecateFlowDocumentFunc = DeprecateFlowDocument
)

type PublishResult struct {
	ExternalFlowID string `json:"externalFlowId"`
	Status         string `json:"status"`
}

func Bootstrap() {
	ServiceUrl = os.ExpandEnv(os.Getenv("META_SERVICE_URL"))
	AccessToken = os.Getenv("META_ACCESS_TOKEN")
}

func authHeaders() http.Header {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	if AccessToken != "" {
		headers.Set("Authorization", "Bearer "+AccessToken)
	}
	return headers
}

// PublishFlowDocument uploads the compiled document. The platform answers
// with its own flow id which the caller keeps as the external reference.
func PublishFlowDocument(appId types.ID, templateKey string, doc *flowcompile.Document) (*PublishResult, error) {
	if ServiceUrl == "" {
		return &PublishResult{Status: "SKIPPED"}, nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/v1/apps/%s/flows/%s", ServiceUrl, appId.String(), templateKey)
	respBody, err := common.HttpInvokeJson(http.MethodPost, url, authHeaders(), string(body))
	if err != nil {
		return nil, err
	}

	result := PublishResult{}
	if err := json.Unmarshal([]byte(respBody), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func DeprecateFlowDocument(appId types.ID, templateKey string) error {
	if ServiceUrl == "" {
		return nil
	}
	url := fmt.Sprintf("%s/v1/apps/%s/flows/%s", ServiceUrl, appId.String(), templateKey)
	_, err := common.HttpInvokeJson(http.MethodDelete, url, authHeaders(), "")
	return err
}
