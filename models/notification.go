package models

import "time"

type Notification struct {
	ID        string    `json:"id" bson:"id" validate:"required"`
	Username  string    `json:"username" bson:"username" validate:"required"`
	Message   string    `json:"message" bson:"message"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	IsRead    bool      `json:"isRead" bson:"isRead"`
}

type NotificationList struct {
	Notifications []Notification `json:"notifications" validate:"dive"`
}
