package persistence

import (
	"database/sql"
	"errors"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv DATABASE_URL example:
//   mysql://root:root@(127.0.0.1:3306)/flowdeck?charset=utf8mb4&parseTime=True&loc=Local
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	dbUrl := os.ExpandEnv(os.Getenv("DATABASE_URL"))
	if dbUrl == "" {
		return nil, errors.New("environment variable DATABASE_URL is empty")
	}
	idx := strings.Index(dbUrl, "://")
	if idx <= 0 || idx == len(dbUrl)-3 {
		return nil, errors.New("invalid DATABASE_URL: " + dbUrl)
	}
	return &DatabaseConfig{DriverType: dbUrl[0:idx], DriverArgs: dbUrl[idx+3:]}, nil
}

// PrepareMysqlDatabase create the database of the dsn when absent.
func PrepareMysqlDatabase(driverArgs string) error {
	idx := strings.Index(driverArgs, "/")
	if idx < 0 {
		return errors.New("invalid mysql driver args")
	}
	baseArgs := driverArgs[0 : idx+1]
	remains := driverArgs[idx+1:]
	databaseName := remains
	if paramIdx := strings.Index(remains, "?"); paramIdx >= 0 {
		databaseName = remains[0:paramIdx]
	}
	if databaseName == "" {
		return errors.New("database name is empty")
	}

	db, err := sql.Open("mysql", baseArgs)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName + "` CHARACTER SET utf8mb4")
	return err
}
