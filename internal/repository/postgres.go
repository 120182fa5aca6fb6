package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/user/bluckboster/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// recordRow records 表，所有实体共用，按 table_name 区分
type recordRow struct {
	Table      string           `gorm:"column:table_name;primaryKey"`
	ID         string           `gorm:"column:id;primaryKey"`
	Data       string           `gorm:"column:data;type:jsonb"`
	MetsVector *pgvector.Vector `gorm:"column:mets_vector;type:vector(12)"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;index"`
}

func (recordRow) TableName() string { return "records" }

// PostgresStore 基于 gorm + pgvector 的记录存储
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate 创建 vector 扩展与 records 表
func (r *PostgresStore) Migrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("创建 vector 扩展失败: %w", err)
	}
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return fmt.Errorf("迁移 records 表失败: %w", err)
	}
	return nil
}

// PutItems 批量 upsert，整条覆盖
func (r *PostgresStore) PutItems(ctx context.Context, table model.Table, items []map[string]any) (int, error) {
	rows, err := buildRows(table, items, time.Now())
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "table_name"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "mets_vector", "updated_at"}),
	}).CreateInBatches(rows, 100).Error
	if err != nil {
		return 0, fmt.Errorf("写入 %s 失败: %w", table.Name, err)
	}
	return len(rows), nil
}

// buildRows 同一主键只保留最后一条，ON CONFLICT 不能在一条语句中两次更新同一行
func buildRows(table model.Table, items []map[string]any, now time.Time) ([]recordRow, error) {
	items, err := lastByKey(table, items)
	if err != nil {
		return nil, err
	}
	rows := make([]recordRow, 0, len(items))
	for i, item := range items {
		data, err := json.Marshal(jsonValue(item))
		if err != nil {
			return nil, fmt.Errorf("第 %d 条记录序列化失败: %w", i, err)
		}
		rows = append(rows, recordRow{
			Table:      table.Name,
			ID:         fmt.Sprint(item[table.Key]),
			Data:       string(data),
			MetsVector: metsVector(item[model.FieldMets]),
			UpdatedAt:  now,
		})
	}
	return rows, nil
}

// UpdateFields 使用 jsonb 合并实现部分更新，记录不存在时插入
func (r *PostgresStore) UpdateFields(ctx context.Context, table model.Table, id string, fields map[string]any) error {
	if id == "" {
		return ErrMissingKey
	}
	patch := maps.Clone(fields)
	patch[table.Key] = id
	data, err := json.Marshal(jsonValue(patch))
	if err != nil {
		return fmt.Errorf("序列化更新字段失败: %w", err)
	}

	var vec any
	if v := metsVector(fields[model.FieldMets]); v != nil {
		vec = *v
	}

	err = r.db.WithContext(ctx).Exec(`
		INSERT INTO records (table_name, id, data, mets_vector, updated_at)
		VALUES (?, ?, ?::jsonb, ?, ?)
		ON CONFLICT (table_name, id) DO UPDATE SET
			data = records.data || EXCLUDED.data,
			mets_vector = COALESCE(EXCLUDED.mets_vector, records.mets_vector),
			updated_at = EXCLUDED.updated_at
	`, table.Name, id, string(data), vec, time.Now()).Error
	if err != nil {
		return fmt.Errorf("更新 %s/%s 失败: %w", table.Name, id, err)
	}
	return nil
}

func (r *PostgresStore) GetItem(ctx context.Context, table model.Table, id string) (map[string]any, error) {
	var row recordRow
	err := r.db.WithContext(ctx).
		Where("table_name = ? AND id = ?", table.Name, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取 %s/%s 失败: %w", table.Name, id, err)
	}
	return decodeRow(row)
}

// FindNearest 按 mets_vector 的 L2 距离查找最相似的记录
func (r *PostgresStore) FindNearest(ctx context.Context, table model.Table, id string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []recordRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT r.table_name, r.id, r.data, r.updated_at
		FROM records r
		JOIN records src ON src.table_name = r.table_name AND src.id = ?
		WHERE r.table_name = ? AND r.id <> src.id
		  AND r.mets_vector IS NOT NULL AND src.mets_vector IS NOT NULL
		ORDER BY r.mets_vector <-> src.mets_vector
		LIMIT ?
	`, id, table.Name, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("相似查询失败: %w", err)
	}

	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		item, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func decodeRow(row recordRow) (map[string]any, error) {
	var item map[string]any
	if err := json.Unmarshal([]byte(row.Data), &item); err != nil {
		return nil, fmt.Errorf("解析 %s/%s 失败: %w", row.Table, row.ID, err)
	}
	return item, nil
}

// metsVector 指标完整时返回 12 维向量
func metsVector(v any) *pgvector.Vector {
	vec, ok := metricsVector(v)
	if !ok {
		return nil
	}
	f32 := make([]float32, len(vec))
	for i, f := range vec {
		f32[i] = float32(f)
	}
	pv := pgvector.NewVector(f32)
	return &pv
}
