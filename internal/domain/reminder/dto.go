package reminder

type ReminderListResponse struct {
	Reminders   []AdminReminder `json:"reminders"`
	UnreadCount int64           `json:"unread_count"`
	Total       int64           `json:"total"`
}

type UnreadRemindersResponse struct {
	Reminders []AdminReminder `json:"reminders"`
}

type ReminderResponse struct {
	Reminder *AdminReminder `json:"reminder"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}
