package indices_test

import (
	"errors"
	"flowdeck/authority"
	"flowdeck/bizerror"
	"flowdeck/client/es"
	"flowdeck/domain"
	"flowdeck/domain/submission"
	"flowdeck/event"
	"flowdeck/indices"
	"flowdeck/indices/indexlog"
	"flowdeck/session"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func TestScheduleNewSyncRun(t *testing.T) {
	RegisterTestingT(t)

	t.Run("only system admin can schedule sync run", func(t *testing.T) {
		s := session.Session{Perms: authority.Permissions{"manager_1"}}
		success, err := indices.ScheduleNewSyncRun(&s)
		Expect(err).To(Equal(bizerror.ErrForbidden))
		Expect(success).To(BeFalse())
	})

	t.Run("concurrent sync runs are rejected", func(t *testing.T) {
		indices.IndicesFullSyncFunc = func() error {
			time.Sleep(100 * time.Millisecond)
			return nil
		}

		s := session.Session{Perms: authority.Permissions{authority.SystemAdminPermission}}
		success, err := indices.ScheduleNewSyncRun(&s)
		Expect(err).To(BeNil())
		Expect(success).To(BeTrue())

		success, err = indices.ScheduleNewSyncRun(&s)
		Expect(err).To(BeNil())
		Expect(success).To(BeFalse())

		time.Sleep(200 * time.Millisecond)

		success, err = indices.ScheduleNewSyncRun(&s)
		Expect(err).To(BeNil())
		Expect(success).To(BeTrue())
		time.Sleep(200 * time.Millisecond)
	})
}

func TestIndexSubmissionEventHandle(t *testing.T) {
	RegisterTestingT(t)

	t.Run("only accept events of flow submissions", func(t *testing.T) {
		ev := event.EventRecord{Event: event.Event{SourceType: event.SourceTypeFlowTemplate}}
		Expect(indices.IndexSubmissionEventHandle(&ev)).To(BeNil())
	})

	t.Run("report failure when index log can not be created", func(t *testing.T) {
		indexlog.CreateIndexLogFunc = func(id types.ID, sourceType string, sourceId types.ID, sourceDesc string,
			deletion bool, timestamp types.Timestamp, tx *gorm.DB) (*indexlog.IndexLogRecord, error) {
			return nil, errors.New("error on create index log")
		}
		ev := event.EventRecord{Event: event.Event{SourceType: event.SourceTypeFlowSubmission, SourceId: 100,
			EventCategory: event.EventCategoryCreated}}

		expected := event.EventHandleResult{
			HandlerIdentifier: indices.SubmissionIndexEventHandlerName,
			Message:           "create index log for submission 100, error on create index log",
		}
		Expect(*indices.IndexSubmissionEventHandle(&ev)).To(Equal(expected))
	})

	t.Run("submission deletion event removes the document", func(t *testing.T) {
		indexlog.CreateIndexLogFunc = func(id types.ID, sourceType string, sourceId types.ID, sourceDesc string,
			deletion bool, timestamp types.Timestamp, tx *gorm.DB) (*indexlog.IndexLogRecord, error) {
			return &indexlog.IndexLogRecord{ID: 999, IndexLog: indexlog.IndexLog{
				SourceType: sourceType, SourceId: sourceId, Deletion: deletion}}, nil
		}
		var finished types.ID
		indexlog.FinishIndexLogFunc = func(id types.ID) error {
			finished = id
			return nil
		}
		var deletedFrom string
		es.DeleteDocumentByIdFunc = func(index string, id types.ID, s *session.Session) error {
			deletedFrom = index
			Expect(id).To(Equal(types.ID(100)))
			return nil
		}
		ev := event.EventRecord{Event: event.Event{SourceType: event.SourceTypeFlowSubmission, SourceId: 100,
			EventCategory: event.EventCategoryDeleted}}

		expected := event.EventHandleResult{Success: true, HandlerIdentifier: indices.SubmissionIndexEventHandlerName}
		Expect(*indices.IndexSubmissionEventHandle(&ev)).To(Equal(expected))
		Expect(deletedFrom).To(Equal(indices.SubmissionIndexName))
		Expect(finished).To(Equal(types.ID(999)))
	})

	t.Run("submission create or update event indexes the document", func(t *testing.T) {
		indexlog.CreateIndexLogFunc = func(id types.ID, sourceType string, sourceId types.ID, sourceDesc string,
			deletion bool, timestamp types.Timestamp, tx *gorm.DB) (*indexlog.IndexLogRecord, error) {
			return &indexlog.IndexLogRecord{ID: 999, IndexLog: indexlog.IndexLog{
				SourceType: sourceType, SourceId: sourceId, Deletion: deletion}}, nil
		}
		var finished types.ID
		indexlog.FinishIndexLogFunc = func(id types.ID) error {
			finished = id
			return nil
		}
		submission.DetailFlowSubmissionFunc = func(id types.ID, s *session.Session) (*domain.FlowSubmission, error) {
			return &domain.FlowSubmission{ID: id, ExternalID: "ext-100"}, nil
		}
		var indexedId types.ID
		es.IndexFunc = func(index string, id types.ID, doc interface{}, s *session.Session) error {
			Expect(index).To(Equal(indices.SubmissionIndexName))
			indexedId = id
			return nil
		}
		ev := event.EventRecord{Event: event.Event{SourceType: event.SourceTypeFlowSubmission, SourceId: 100,
			EventCategory: event.EventCategoryCreated}}

		expected := event.EventHandleResult{Success: true, HandlerIdentifier: indices.SubmissionIndexEventHandlerName}
		Expect(*indices.IndexSubmissionEventHandle(&ev)).To(Equal(expected))
		Expect(indexedId).To(Equal(types.ID(100)))
		Expect(finished).To(Equal(types.ID(999)))
	})

	t.Run("report failure when submission can not be loaded", func(t *testing.T) {
		indexlog.CreateIndexLogFunc = func(id types.ID, sourceType string, sourceId types.ID, sourceDesc string,
			deletion bool, timestamp types.Timestamp, tx *gorm.DB) (*indexlog.IndexLogRecord, error) {
			return &indexlog.IndexLogRecord{ID: 999, IndexLog: indexlog.IndexLog{
				SourceType: sourceType, SourceId: sourceId}}, nil
		}
		submission.DetailFlowSubmissionFunc = func(id types.ID, s *session.Session) (*domain.FlowSubmission, error) {
			return nil, errors.New("error on detail submission")
		}
		ev := event.EventRecord{Event: event.Event{SourceType: event.SourceTypeFlowSubmission, SourceId: 100,
			EventCategory: event.EventCategoryCreated}}

		expected := event.EventHandleResult{
			HandlerIdentifier: indices.SubmissionIndexEventHandlerName,
			Message:           "index submission 100, error on detail submission",
		}
		Expect(*indices.IndexSubmissionEventHandle(&ev)).To(Equal(expected))
	})
}

func TestIndicesFullSync(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should page through all submissions", func(t *testing.T) {
		indices.SyncBatchSize = 2
		defer func() { indices.SyncBatchSize = 500 }()

		submission.LoadFlowSubmissionsFunc = func(page, size int) ([]domain.FlowSubmission, error) {
			switch page {
			case 1:
				return []domain.FlowSubmission{{ID: 1}, {ID: 2}}, nil
			case 2:
				return []domain.FlowSubmission{{ID: 3}}, nil
			default:
				return nil, nil
			}
		}
		var indexed []types.ID
		es.IndexFunc = func(index string, id types.ID, doc interface{}, s *session.Session) error {
			indexed = append(indexed, id)
			return nil
		}

		Expect(indices.IndicesFullSync()).To(BeNil())
		Expect(indexed).To(Equal([]types.ID{1, 2, 3}))
	})
}
