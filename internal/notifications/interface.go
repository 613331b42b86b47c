package notifications

import "github.com/accountdoctor/accountdoctor/internal/models"

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	SendAlert(alert *models.Alert) error
}
