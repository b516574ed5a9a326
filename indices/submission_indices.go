package indices

import (
	"flowdeck/client/es"
	"flowdeck/domain"
	"flowdeck/session"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	SubmissionIndexName = "flow-submissions"
)

type SubmissionDocument struct {
	domain.FlowSubmission
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexSubmissions(records []domain.FlowSubmission, s *session.Session) error {
	docs := make([]SubmissionDocument, 0, len(records))
	for _, record := range records {
		docs = append(docs, SubmissionDocument{FlowSubmission: record})
	}

	if err := saveSubmissionDocuments(docs, s); err != nil {
		return err
	}
	return nil
}

func saveSubmissionDocuments(docs []SubmissionDocument, s *session.Session) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(SubmissionIndexName, doc.ID, doc, s); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index submission %d %s %s\n", doc.ID, doc.ExternalID, err)
		} else {
			logrus.Infof("index submission %d %s successfully\n", doc.ID, doc.ExternalID)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
