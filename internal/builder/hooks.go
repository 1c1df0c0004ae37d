package builder

import "context"

// Store is the persistence collaborator behind the map REST API.
type Store interface {
	ListAreas(ctx context.Context) ([]Area, error)
	ListRooms(ctx context.Context) ([]Room, error)
	CreateRoom(ctx context.Context, room Room) (Room, error)
	UpdateRoom(ctx context.Context, id RoomID, room Room) (Room, error)
	DeleteRoom(ctx context.Context, id RoomID) error
	CreateArea(ctx context.Context, area Area) (Area, error)
	UpsertDoor(ctx context.Context, id RoomID, dir Direction, door Door) error
	DeleteDoor(ctx context.Context, id RoomID, dir Direction) error
}

// Connection is a drawable horizontal exit between two shown rooms.
type Connection struct {
	From      RoomID    `json:"from"`
	To        RoomID    `json:"to"`
	Direction Direction `json:"direction"`
	FromPixel Point     `json:"from_pixel"`
	ToPixel   Point     `json:"to_pixel"`
}

// MapView is everything a renderer needs to redraw the map.
type MapView struct {
	Level       int            `json:"level"`
	AllLevels   bool           `json:"all_levels"`
	ZLevels     []int          `json:"z_levels"`
	AreaID      int            `json:"area_id,omitempty"`
	Rooms       []Room         `json:"rooms"`
	Surrounding []Room         `json:"surrounding,omitempty"`
	Connections []Connection   `json:"connections"`
	Lifted      []NodePosition `json:"lifted,omitempty"`
	Box         *Rect          `json:"box,omitempty"`
	Active      RoomID         `json:"active,omitempty"`
	Selected    []RoomID       `json:"selected,omitempty"`
}

// SelectionView is the selection state handed to renderers.
type SelectionView struct {
	Active   RoomID   `json:"active,omitempty"`
	Members  []RoomID `json:"members"`
	Controls Controls `json:"controls"`
}

// NoticeLevel grades a user notification.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message surfaced to the designer.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Hooks are the rendering collaborators refreshed after every state change.
type Hooks interface {
	RedrawMap(view MapView)
	RefreshSelection(view SelectionView)
	UpdateStatus(status string)
	Notify(notice Notice)
}

// NopHooks discards every render call.
type NopHooks struct{}

func (NopHooks) RedrawMap(MapView)              {}
func (NopHooks) RefreshSelection(SelectionView) {}
func (NopHooks) UpdateStatus(string)            {}
func (NopHooks) Notify(Notice)                  {}

// MultiHooks fans render calls out to several hooks in order.
type MultiHooks []Hooks

func (m MultiHooks) RedrawMap(view MapView) {
	for _, h := range m {
		h.RedrawMap(view)
	}
}

func (m MultiHooks) RefreshSelection(view SelectionView) {
	for _, h := range m {
		h.RefreshSelection(view)
	}
}

func (m MultiHooks) UpdateStatus(status string) {
	for _, h := range m {
		h.UpdateStatus(status)
	}
}

func (m MultiHooks) Notify(notice Notice) {
	for _, h := range m {
		h.Notify(notice)
	}
}
