package database

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestMigrate_SQLite(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "migrate_test.db"))
	if err != nil {
		t.Fatalf("打开 SQLite 失败: %v", err)
	}
	t.Cleanup(func() { Close(db) })
	ctx := context.Background()

	status, err := Migrate(ctx, db, "sqlite", zap.NewNop())
	if err != nil {
		t.Fatalf("期望迁移成功，实际 err=%v", err)
	}
	if status.Previous != 0 || status.Version != 1 || status.Applied != 1 {
		t.Errorf("期望空库迁移到版本 1，实际=%+v", status)
	}

	for _, table := range []string{"courses", "course_relations", "plan_events", "completed_courses"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("期望存在表 %s", table)
		}
	}

	status, err = Migrate(ctx, db, "sqlite", zap.NewNop())
	if err != nil {
		t.Fatalf("期望重复迁移成功，实际 err=%v", err)
	}
	if status.Previous != 1 || status.Version != 1 || status.Applied != 0 {
		t.Errorf("期望重复迁移无变化，实际=%+v", status)
	}
}

func TestMigrate_UnknownDriver(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "unknown.db"))
	if err != nil {
		t.Fatalf("打开 SQLite 失败: %v", err)
	}
	t.Cleanup(func() { Close(db) })

	if _, err := Migrate(context.Background(), db, "mysql", zap.NewNop()); err == nil {
		t.Error("期望不支持的驱动返回错误")
	}
}
