package models

import "time"

// Status is the soft-delete state shared by restaurants and selections.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Weight bounds for a restaurant
const (
	MinWeight     = 0
	MaxWeight     = 100
	DefaultWeight = 1
)

// Realtime event names
const (
	EventCreateRestaurant   = "create_restaurant"
	EventUpdateRestaurant   = "update_restaurant"
	EventDeleteRestaurant   = "delete_restaurant"
	EventSpin               = "spin"
	EventDeleteTodayHistory = "delete_today_history"
	EventOnlineUsersUpdate  = "online_users_update"
)

// Request types

// Weight is a pointer so that an absent field falls back to DefaultWeight.
type RestaurantRequest struct {
	Name   string `json:"name"`
	Weight *int   `json:"weight,omitempty"`
}

// Response types

type DataResponse struct {
	Data any `json:"data"`
}

type SpinResponse struct {
	Name      string `json:"name"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type VersionResponse struct {
	Version string `json:"version"`
}

// BlacklistedResponse is returned with 403 while a penalty is active.
type BlacklistedResponse struct {
	Message       string `json:"message"`
	BlackTimeLeft int64  `json:"black_time_left"`
}

// IDPayload identifies a deleted restaurant in realtime events.
type IDPayload struct {
	ID int64 `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Domain types

type ClientIdentity struct {
	ID        int64     `json:"id"`
	UniqueID  string    `json:"unique_id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Region    string    `json:"region"`
	Device    string    `json:"device"`
	OS        string    `json:"os"`
	Browser   string    `json:"browser"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public strips the identity token, which doubles as a credential.
func (c ClientIdentity) Public() OnlineUser {
	return OnlineUser{
		ID:      c.ID,
		Region:  c.Region,
		Device:  c.Device,
		OS:      c.OS,
		Browser: c.Browser,
	}
}

type BlacklistEntry struct {
	ID            int64     `json:"id"`
	IdentityToken string    `json:"-"`
	IP            string    `json:"ip"`
	Cookies       string    `json:"-"`
	AddedAt       time.Time `json:"added_at"`
	Enabled       bool      `json:"enabled"`
}

type Restaurant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Weight    int       `json:"weight"`
	Status    Status    `json:"-"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Selection struct {
	ID           int64  `json:"id"`
	RestaurantID int64  `json:"restaurant_id"`
	Name         string `json:"name"`
	CreatorID    int64  `json:"create_user_id"`
	IP           string `json:"ip"`
	Timestamp    int64  `json:"-"`
	Status       Status `json:"-"`
}

// HistoryItem is the client-facing shape of a Selection.
type HistoryItem struct {
	ID           int64  `json:"id"`
	RestaurantID int64  `json:"restaurant_id"`
	Name         string `json:"name"`
	CreatorID    int64  `json:"create_user_id"`
	IP           string `json:"ip"`
	Timestamp    string `json:"timestamp"`
	Disabled     bool   `json:"disabled"`
}

// Realtime types

type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type OnlineUser struct {
	ID      int64  `json:"id"`
	Region  string `json:"region"`
	Device  string `json:"device"`
	OS      string `json:"os"`
	Browser string `json:"browser"`
}

type OnlineUsers struct {
	Users []OnlineUser `json:"users"`
	Count int          `json:"count"`
}

// Log types

type RequestLog struct {
	RequestTime time.Time
	IP          string
	Method      string
	URL         string
	Status      int
	UserAgent   string
	Region      string
	Device      string
	OS          string
	Browser     string
}

const (
	WSActionConnect    = "connect"
	WSActionDisconnect = "disconnect"
)

type WSLog struct {
	Time          time.Time
	Action        string
	IdentityToken string
	IP            string
	Region        string
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
