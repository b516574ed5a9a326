package indices

import (
	"context"
	"flowdeck/authority"
	"flowdeck/bizerror"
	"flowdeck/client/es"
	"flowdeck/domain"
	"flowdeck/domain/submission"
	"flowdeck/event"
	"flowdeck/idgen"
	"flowdeck/indices/indexlog"
	"flowdeck/persistence"
	"flowdeck/session"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	SubmissionIndexEventHandlerName = "submissionIndexer"

	idWorker   = sonyflake.NewSonyflake(sonyflake.Settings{})
	indexRobot = &session.Session{
		Context:  context.Background(),
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{authority.SystemAdminPermission},
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.HasRole(authority.SystemAdminPermission) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		records, err := submission.LoadFlowSubmissionsFunc(page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrieve submissions(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(records) == 0 {
			logrus.Infof("indices fully sync: there are no more submissions to index")
			return nil // loop exit
		}

		if err := IndexSubmissions(records, indexRobot); err != nil {
			logrus.Warnf("indices fully sync: error on index submissions(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

// IndexSubmissionEventHandle routes submission events into the search
// index. A pending index log is written first, so the write can be
// re-driven if the search backend is down.
func IndexSubmissionEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeFlowSubmission {
		return nil
	}

	deletion := e.EventCategory == event.EventCategoryDeleted
	logRecord, err := indexlog.CreateIndexLogFunc(idgen.NextID(idWorker), e.SourceType, e.SourceId,
		e.SourceDesc, deletion, e.Timestamp, persistence.ActiveDataSourceManager.GormDB(context.Background()))
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("create index log for submission %d, %v", e.SourceId, err),
			HandlerIdentifier: SubmissionIndexEventHandlerName,
		}
	}

	if err := driveIndexLog(logRecord); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index submission %d, %v", e.SourceId, err),
			HandlerIdentifier: SubmissionIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: SubmissionIndexEventHandlerName}
}

func driveIndexLog(logRecord *indexlog.IndexLogRecord) error {
	if logRecord.Deletion {
		if err := es.DeleteDocumentByIdFunc(SubmissionIndexName, logRecord.SourceId, indexRobot); err != nil {
			return err
		}
		return indexlog.FinishIndexLogFunc(logRecord.ID)
	}

	record, err := submission.DetailFlowSubmissionFunc(logRecord.SourceId, indexRobot)
	if err != nil {
		return err
	}
	if err := IndexSubmissions([]domain.FlowSubmission{*record}, indexRobot); err != nil {
		return err
	}
	return indexlog.FinishIndexLogFunc(logRecord.ID)
}
