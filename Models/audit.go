package Models

import (
	"log"
	"time"

	"gorm.io/gorm"
)

// Audit action kinds. SUSPICIOUS_SALE marks a sale the operator pushed
// through after acknowledging fraud warnings, so flagged sales stay
// distinguishable from normal ones in the trail.
const (
	ActionLogin           = "LOGIN"
	ActionNewSale         = "NEW_SALE"
	ActionSuspiciousSale  = "SUSPICIOUS_SALE"
	ActionSaleReversed    = "SALE_REVERSED"
	ActionTankerUnload    = "TANKER_UNLOAD"
	ActionPriceUpdate     = "PRICE_UPDATE"
	ActionShiftOpen       = "SHIFT_OPEN"
	ActionShiftClose      = "SHIFT_CLOSE"
	ActionPaymentReceived = "PAYMENT_RECEIVED"
	ActionHistoryCleared  = "HISTORY_CLEARED"
	ActionAuditCleared    = "AUDIT_CLEARED"
)

// AuditLog is append-only. Entries are never mutated; the only delete path is
// the explicit admin full-history wipe.
type AuditLog struct {
	gorm.Model
	UserName  string `json:"user_name"`
	Action    string `json:"action" gorm:"index"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

// LogAudit appends an audit entry using the given handle, which may be an
// open transaction so the entry commits or rolls back with the mutation it
// describes.
func LogAudit(db *gorm.DB, userName, action, details string) error {
	entry := AuditLog{
		UserName:  userName,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Error writing audit log (%s %s): %v", action, details, err)
		return err
	}
	return nil
}
