package indices_test

import (
	"errors"
	"flowdeck/client/es"
	"flowdeck/domain"
	"flowdeck/indices"
	"flowdeck/session"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestIndexSubmissions(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should index every submission document", func(t *testing.T) {
		var indexed []types.ID
		es.IndexFunc = func(index string, id types.ID, doc interface{}, s *session.Session) error {
			Expect(index).To(Equal(indices.SubmissionIndexName))
			indexed = append(indexed, id)
			return nil
		}

		err := indices.IndexSubmissions([]domain.FlowSubmission{{ID: 1}, {ID: 2}}, &session.Session{})
		Expect(err).To(BeNil())
		Expect(indexed).To(Equal([]types.ID{1, 2}))
	})

	t.Run("should aggregate per document failures", func(t *testing.T) {
		es.IndexFunc = func(index string, id types.ID, doc interface{}, s *session.Session) error {
			if id == 2 {
				return errors.New("error on index document")
			}
			return nil
		}

		err := indices.IndexSubmissions([]domain.FlowSubmission{{ID: 1}, {ID: 2}, {ID: 3}}, &session.Session{})
		Expect(err).ToNot(BeNil())
		batchErr, ok := err.(indices.BatchActionError)
		Expect(ok).To(BeTrue())
		Expect(len(batchErr)).To(Equal(1))
		Expect(batchErr[2].Error()).To(Equal("error on index document"))
	})
}
