package datastore

import (
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/logger"
)

// MySQLManager handles a forum database on a MySQL or MariaDB server.
type MySQLManager struct {
	db       *gorm.DB
	location string
	prefix   string
}

// NewMySQLManager connects to the server described by cfg.MySQL.
func NewMySQLManager(cfg *conf.DatabaseSettings, log logger.Logger) (*MySQLManager, error) {
	location := cfg.MySQL.Host + ":" + cfg.MySQL.Port + "/" + cfg.MySQL.Database

	db, err := gorm.Open(gormmysql.Open(mysqlDSN(&cfg.MySQL)), gormConfig(cfg, log))
	if err != nil {
		return nil, openError(err, conf.DriverMySQL, location)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, openError(err, conf.DriverMySQL, location)
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Debug("connected to mysql", logger.String("location", location))

	return &MySQLManager{
		db:       db,
		location: location,
		prefix:   cfg.TablePrefix,
	}, nil
}

// mysqlDSN formats a go-sql-driver DSN.
func mysqlDSN(cfg *conf.MySQLSettings) string {
	c := mysql.NewConfig()
	c.User = cfg.Username
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	c.DBName = cfg.Database
	c.ParseTime = true
	c.Loc = time.Local
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// DB returns the underlying GORM database.
func (m *MySQLManager) DB() *gorm.DB {
	return m.db
}

// Dialect returns "mysql".
func (m *MySQLManager) Dialect() string {
	return conf.DriverMySQL
}

// TablePrefix returns the forum table prefix.
func (m *MySQLManager) TablePrefix() string {
	return m.prefix
}

// Path returns host:port/database.
func (m *MySQLManager) Path() string {
	return m.location
}

// Close closes the database connection.
func (m *MySQLManager) Close() error {
	return closeDB(m.db)
}
