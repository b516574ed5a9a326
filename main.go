package main

import (
	"context"
	"flowdeck/bizerror"
	"flowdeck/client/es"
	"flowdeck/client/meta"
	"flowdeck/client/s3"
	"flowdeck/common"
	"flowdeck/domain"
	"flowdeck/event"
	"flowdeck/indices"
	"flowdeck/indices/indexlog"
	"flowdeck/infra/tracing"
	"flowdeck/persistence"
	"flowdeck/servehttp"
	"flowdeck/session"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	closer, err := tracing.Bootstrap(common.GetServiceName())
	if err != nil {
		log.Fatalf("tracing bootstrap failed %v\n", err)
	}
	defer closer.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(context.Background()).AutoMigrate(
		&domain.FlowTemplate{}, &domain.FlowVersion{}, &domain.FlowScreen{},
		&domain.FlowComponent{}, &domain.FlowAction{}, &domain.FlowSubmission{},
		&event.EventRecord{}, &indexlog.IndexLogRecord{}).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	es.CreateClientFromEnv()
	s3.Bootstrap()
	meta.Bootstrap()

	event.EventHandlers = append(event.EventHandlers, indices.IndexSubmissionEventHandle)

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "flowdeck")
	})

	auth := session.SimpleAuthFilter()
	servehttp.RegisterFlowTemplateHandler(engine, auth)
	servehttp.RegisterFlowVersionHandler(engine, auth)
	servehttp.RegisterFlowScreenHandler(engine, auth)
	servehttp.RegisterFlowSubmissionHandler(engine, auth)
	indices.RegisterIndicesRestAPI(engine, auth)

	indices.StartCron()

	servehttp.StartHTTPServer(engine)
}
