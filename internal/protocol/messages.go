package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	SessionID       string  `json:"session_id"`
	TileDegrees     float64 `json:"tile_degrees"`
	Radius          int     `json:"radius"`
	Player          Player  `json:"player"`
}

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Bounds struct {
	SW Point `json:"sw"`
	NE Point `json:"ne"`
}

type Cache struct {
	Cell   string   `json:"cell"`
	I      int      `json:"i"`
	J      int      `json:"j"`
	Bounds Bounds   `json:"bounds"`
	Coins  []string `json:"coins"`
}

type Player struct {
	Point    Point    `json:"point"`
	Cell     string   `json:"cell"`
	Coins    []string `json:"coins"`
	Trail    []Point  `json:"trail"`
	Tracking bool     `json:"tracking"`
}

// SHOW and UPDATE (server -> client)
type CacheMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Cache           Cache  `json:"cache"`
}

// HIDE (server -> client)
type HideMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Cell            string `json:"cell"`
}

// PLAYER (server -> client)
type PlayerMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Player          Player `json:"player"`
}

// RESULT (server -> client) answers one ACT.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	Point           *Point `json:"point,omitempty"`
}
