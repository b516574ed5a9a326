package indices

import (
	"flowdeck/authority"
	"flowdeck/bizerror"
	"flowdeck/indices/indexlog"
	"flowdeck/session"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	PathIndexRequests        = "/v1/index-request"
	PathPendingIndexRecovery = "/v1/pending-index-recovery"

	// one recovery routine per minute at most; replays are idempotent but
	// hammering the search backend helps nobody
	indexLogRecoveryLimiter = rate.NewLimiter(rate.Every(time.Minute), 1)

	IndexlogRecoveryRoutineFunc = IndexlogRecoveryRoutine
)

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", handleIndexRequest)

	p := r.Group(PathPendingIndexRecovery, middleWares...)
	p.POST("", handlePendingIndexRecovery)
}

func handleIndexRequest(c *gin.Context) {
	success, err := ScheduleNewSyncRunFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"result": success})
}

func handlePendingIndexRecovery(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	if !s.Perms.HasRole(authority.SystemAdminPermission) {
		panic(bizerror.ErrForbidden)
	}
	if !indexLogRecoveryLimiter.Allow() {
		c.JSON(http.StatusOK, gin.H{"result": "request rate limited"})
		return
	}
	if err := IndexlogRecoveryRoutineFunc(s); err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"result": "started"})
}

// IndexlogRecoveryRoutine re-drives index logs which never reached the
// search backend.
func IndexlogRecoveryRoutine(s *session.Session) error {
	page := 1
	for {
		pending, err := indexlog.LoadPendingIndexLogFunc(page, SyncBatchSize)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		for _, logRecord := range pending {
			if err := driveIndexLog(&logRecord); err != nil {
				logrus.Warnf("index log recovery: source %s %d, %v", logRecord.SourceType, logRecord.SourceId, err)
			}
		}
		page++
	}
}
