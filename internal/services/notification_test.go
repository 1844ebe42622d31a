package services

import (
	"testing"

	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/response"
)

func TestNotificationInbox(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)

	user := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	other := createTestUser(t, db, "other@example.com", models.RoleArtist)

	for i := 0; i < 3; i++ {
		if err := svc.CreateInTx(db, user.ID, models.NotifyRequestUpdate, "Update", "Something happened", ""); err != nil {
			t.Fatalf("CreateInTx: %v", err)
		}
	}
	if err := svc.CreateInTx(db, other.ID, models.NotifyPayment, "Payment", "Paid", ""); err != nil {
		t.Fatalf("CreateInTx: %v", err)
	}

	resp, err := svc.List(user.ID, &NotificationListRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Total != 3 || resp.Unread != 3 {
		t.Errorf("total = %d unread = %d, want 3/3", resp.Total, resp.Unread)
	}

	// Mark one read
	if err := svc.MarkRead(user.ID, resp.Items[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	resp, _ = svc.List(user.ID, &NotificationListRequest{})
	if resp.Unread != 2 {
		t.Errorf("unread = %d, want 2", resp.Unread)
	}

	// Cannot read someone else's notification
	otherResp, _ := svc.List(other.ID, &NotificationListRequest{})
	err = svc.MarkRead(user.ID, otherResp.Items[0].ID)
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.HTTPStatus != 403 {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// Bulk mark
	marked, err := svc.MarkAllRead(user.ID)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if marked != 2 {
		t.Errorf("marked = %d, want 2", marked)
	}
	resp, _ = svc.List(user.ID, &NotificationListRequest{})
	if resp.Unread != 0 {
		t.Errorf("unread = %d, want 0", resp.Unread)
	}
}
