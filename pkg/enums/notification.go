package enums

import "fmt"

// NotificationType tags a notification for rendering and action affordances.
type NotificationType string

const (
	NotificationTypeOrderUpdate        NotificationType = "order_update"
	NotificationTypeSellerUpdate       NotificationType = "seller_update"
	NotificationTypeListingUpdate      NotificationType = "listing_update"
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderUpdate,
	NotificationTypeSellerUpdate,
	NotificationTypeListingUpdate,
	NotificationTypeSystemAnnouncement,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
