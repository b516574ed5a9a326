package event_test

import (
	"errors"
	"flowdeck/event"
	"flowdeck/session"
	"testing"

	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func TestCreateEvent(t *testing.T) {
	RegisterTestingT(t)

	originPersist, originInvoke := event.EventPersistCreateFunc, event.InvokeHandlersFunc
	defer func() {
		event.EventPersistCreateFunc, event.InvokeHandlersFunc = originPersist, originInvoke
	}()

	t.Run("should return error when failed to persist event", func(t *testing.T) {
		testErr := errors.New("test error")
		event.EventPersistCreateFunc = func(record *event.EventRecord, tx *gorm.DB) error {
			return testErr
		}
		invoked := false
		event.InvokeHandlersFunc = func(record *event.EventRecord) []event.EventHandleResult {
			invoked = true
			return nil
		}

		var tx = &gorm.DB{Value: 10000}
		ret, err := event.CreateEvent(event.SourceTypeFlowSubmission, 1234, "sub1234", event.EventCategoryCreated,
			nil, &session.Identity{ID: 333, Name: "user333"}, tx)
		Expect(ret).To(BeNil())
		Expect(err).To(Equal(testErr))
		Expect(invoked).To(BeFalse())
	})

	t.Run("should persist events without invoking handlers", func(t *testing.T) {
		var ev event.EventRecord
		var db *gorm.DB
		event.EventPersistCreateFunc = func(record *event.EventRecord, tx *gorm.DB) error {
			ev = *record
			db = tx
			return nil
		}
		invoked := false
		event.InvokeHandlersFunc = func(record *event.EventRecord) []event.EventHandleResult {
			invoked = true
			return nil
		}

		var tx = &gorm.DB{Value: 10000}
		updates := event.UpdatedProperties{{PropertyName: "status", PropertyDesc: "status",
			OldValue: "RECEIVED", OldValueDesc: "RECEIVED", NewValue: "COMPLETED", NewValueDesc: "COMPLETED"}}
		ret, err := event.CreateEvent(event.SourceTypeFlowSubmission, 1234, "sub1234",
			event.EventCategoryPropertyUpdated, updates, &session.Identity{ID: 333, Name: "user333"}, tx)
		Expect(err).To(BeNil())

		Expect(ret.SourceType).To(Equal(event.SourceTypeFlowSubmission))
		Expect(ret.SourceId.String()).To(Equal("1234"))
		Expect(ret.SourceDesc).To(Equal("sub1234"))
		Expect(ret.EventCategory).To(Equal(event.EventCategory(event.EventCategoryPropertyUpdated)))
		Expect(ret.UpdatedProperties).To(Equal(updates))
		Expect(ret.CreatorId.String()).To(Equal("333"))
		Expect(ret.CreatorName).To(Equal("user333"))
		Expect(ret.Synced).To(BeFalse())

		Expect(ev).To(Equal(*ret))
		Expect(db).To(Equal(tx))
		Expect(invoked).To(BeFalse())
	})
}
