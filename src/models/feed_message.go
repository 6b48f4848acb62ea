package models

import "encoding/json"

// -----------------------------------------------------------------------------
// Wire messages
// -----------------------------------------------------------------------------

// MFeedMessage is the envelope a feed endpoint may wrap a tree in.
// Type is "INITIAL" or "UPDATE"; Data always carries the whole tree at Path.
type MFeedMessage struct {
	Type string          `json:"type"`
	Path string          `json:"path,omitempty"`
	Data json.RawMessage `json:"data"`
}

// MSubscribeCommand is sent by the client when opening a feed subscription.
type MSubscribeCommand struct {
	Command string `json:"command"`
	Path    string `json:"path"`
}

// MClientCommand is sent by a dashboard websocket client.
type MClientCommand struct {
	Command string `json:"command"` // "select_tab", "mount_chart", "unmount_chart"
	Tab     string `json:"tab,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
}

// MPushMessage is pushed to dashboard websocket clients.
type MPushMessage struct {
	Type  string          `json:"type"` // "VIEW" or "CHART"
	View  *MDashboardView `json:"view,omitempty"`
	Chart *MChartView     `json:"chart,omitempty"`
}
