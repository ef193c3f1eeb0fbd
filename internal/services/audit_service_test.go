package services

import (
	"encoding/json"
	"testing"

	"billnudge/internal/models"
	"billnudge/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)
	r := testutil.CreateTestReminder(t, db, user.ID, fixedNow, models.FrequencyOnce)

	svc.Log(user.ID, AuditSnoozeReminder, ResourceReminder, r.ID, "10.0.0.1", map[string]interface{}{"hours": 4})
	svc.Log(user.ID, AuditDeleteReminder, ResourceReminder, r.ID, "10.0.0.1", nil)

	var entries []models.AuditLog
	if err := db.Where("user_id = ?", user.ID).Order("id ASC").Find(&entries).Error; err != nil {
		t.Fatalf("failed to load audit entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	snooze := entries[0]
	if snooze.Action != "SNOOZE_REMINDER" || snooze.ResourceType != "reminder" || snooze.ResourceID != r.ID {
		t.Errorf("unexpected entry %+v", snooze)
	}
	var changes map[string]interface{}
	if err := json.Unmarshal([]byte(snooze.Changes), &changes); err != nil || changes["hours"] != float64(4) {
		t.Errorf("unexpected changes %q", snooze.Changes)
	}

	if entries[1].Action != "DELETE_REMINDER" || entries[1].Changes != "" {
		t.Errorf("expected delete without changes, got %+v", entries[1])
	}
}

func TestAuditLog_UnencodableChanges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, AuditUpdateBudget, ResourceBudget, "b-1", "", map[string]interface{}{"bad": make(chan int)})

	var entry models.AuditLog
	if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
		t.Fatalf("expected the entry despite bad changes: %v", err)
	}
	if entry.Changes != "{}" {
		t.Errorf("expected empty object, got %q", entry.Changes)
	}
}
