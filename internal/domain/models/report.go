package models

import (
	"fmt"
	"image"
	"time"
)

// ReportArtifact is a rendered report: the raster plus its PNG encoding.
type ReportArtifact struct {
	Image image.Image
	PNG   []byte
	Hash  uint64 // xxh3 of PNG
}

// HashHex returns Hash as fixed-width lowercase hex.
func (a *ReportArtifact) HashHex() string {
	return fmt.Sprintf("%016x", a.Hash)
}

// PublishedArtifactRef points at a publicly reachable artifact.
type PublishedArtifactRef struct {
	URL string
}

// InboundCommand is a text message received from a chat user.
type InboundCommand struct {
	RawText    string
	SenderID   string
	ReplyToken string
}

// ReportJob is the queued unit of work for one report run.
type ReportJob struct {
	RunID       string    `json:"run_id"`
	SenderID    string    `json:"sender_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// RunEvent describes how a report run ended.
type RunEvent struct {
	RunID      string    `json:"run_id"`
	SenderID   string    `json:"sender_id"`
	State      string    `json:"state"`
	URL        string    `json:"url,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}
