package reports

import (
	"context"
	"database/sql"
	"net"
	"strconv"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/go-sql-driver/mysql"
)

// MySQLConfig builds the driver config for the warehouse.
func MySQLConfig(cfg config.ReportConfig) *mysql.Config {
	dsn := mysql.NewConfig()
	dsn.User = cfg.DBUser
	dsn.Passwd = cfg.DBPassword
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort))
	dsn.DBName = cfg.DBName
	dsn.Timeout = cfg.ConnectTimeout()
	dsn.ParseTime = true
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn
}

// OpenWarehouse opens the MySQL pool and pings it before any report runs.
func OpenWarehouse(ctx context.Context, cfg config.ReportConfig) (*sql.DB, error) {
	connector, err := mysql.NewConnector(MySQLConfig(cfg))
	if err != nil {
		return nil, common.WrapError(err, "invalid warehouse connection settings")
	}
	db := sql.OpenDB(connector)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout())
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, common.WrapErrorf(err, "failed to connect to warehouse %s", cfg.DBHost)
	}
	return db, nil
}
