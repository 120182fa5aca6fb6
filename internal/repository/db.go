package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/user/bluckboster/internal/config"
	"github.com/user/bluckboster/internal/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接（lib/pq 驱动，gorm 复用该连接）
func InitDB(databaseURL string) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	// 批处理任务，连接池保持很小
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("初始化 gorm 失败: %w", err)
	}
	return db, nil
}

// Repositories 存储与表的集合
type Repositories struct {
	Store     RecordStore
	Movies    model.Table
	Members   model.Table
	Centroids model.Table
	closer    func() error
}

// NewRepositories 按 STORE_BACKEND 创建存储
func NewRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Repositories, error) {
	repos := &Repositories{
		Movies:    model.Table{Name: cfg.MoviesTable, Key: model.FieldID},
		Members:   model.Table{Name: cfg.MembersTable, Key: cfg.MembersTableKey},
		Centroids: model.Table{Name: cfg.CentroidsTable, Key: model.FieldID},
	}

	switch cfg.StoreBackend {
	case config.BackendDynamo:
		client, err := NewDynamoClient(ctx, DynamoConfig{
			Region:    cfg.AWSRegion,
			Endpoint:  cfg.DynamoEndpoint,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		})
		if err != nil {
			return nil, err
		}
		repos.Store = NewDynamoStore(client, logger)

	case config.BackendPostgres:
		db, err := InitDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := NewPostgresStore(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		repos.Store = store
		repos.closer = func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}

	case config.BackendMemory:
		logger.Warn("使用内存存储，结果不会持久化")
		repos.Store = NewMemoryStore()

	default:
		return nil, fmt.Errorf("未知的存储后端: %s", cfg.StoreBackend)
	}

	logger.Info("存储已初始化", zap.String("backend", cfg.StoreBackend))
	return repos, nil
}

// Close 释放底层连接
func (r *Repositories) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer()
}
