package opnotify

type BroadcastRequest struct {
	Sections       []string `json:"sections" validate:"omitempty,max=20,dive,max=64"`
	Action         string   `json:"action" validate:"max=120"`
	Message        string   `json:"message" validate:"max=4000"`
	Priority       string   `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	TargetAdminIDs []string `json:"target_admin_ids" validate:"omitempty,max=500,dive,max=64"`
}

func (r BroadcastRequest) toInput() BroadcastInput {
	return BroadcastInput{
		Sections:       r.Sections,
		Action:         r.Action,
		Message:        r.Message,
		Priority:       r.Priority,
		TargetAdminIDs: r.TargetAdminIDs,
	}
}

type NotificationListResponse struct {
	Notifications []OperatorNotification `json:"notifications"`
}

type NotificationResponse struct {
	Notification OperatorNotification `json:"notification"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}
