package api

import (
	"github.com/VoidMesh/worldstream/internal/chunk"
	"github.com/VoidMesh/worldstream/internal/loader"
	"github.com/VoidMesh/worldstream/internal/streaming"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ViewerResponse struct {
	Placed bool   `json:"placed"`
	ChunkX int    `json:"chunk_x"`
	ChunkY int    `json:"chunk_y"`
	World  string `json:"world,omitempty"`
}

// MoveViewerRequest uses pointers so a missing coordinate is rejected rather
// than read as zero.
type MoveViewerRequest struct {
	ChunkX *int `json:"chunk_x"`
	ChunkY *int `json:"chunk_y"`
}

type MoveViewerResponse struct {
	Moved  bool           `json:"moved"`
	Viewer ViewerResponse `json:"viewer"`
}

type ChunkSummary struct {
	ChunkX   int        `json:"chunk_x"`
	ChunkY   int        `json:"chunk_y"`
	World    string     `json:"world"`
	State    string     `json:"state"`
	Attached bool       `json:"attached"`
	Bounds   chunk.Rect `json:"bounds"`
}

type ChunkDetail struct {
	ChunkSummary
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Layers      int      `json:"layers"`
	Passability []string `json:"passability"`
}

type ChunkListResponse struct {
	Chunks []ChunkSummary `json:"chunks"`
	Count  int            `json:"count"`
}

type PassableResponse struct {
	WorldX   float64 `json:"world_x"`
	WorldY   float64 `json:"world_y"`
	ChunkX   int     `json:"chunk_x"`
	ChunkY   int     `json:"chunk_y"`
	Passable bool    `json:"passable"`
}

type SetPassableRequest struct {
	WorldX   *float64 `json:"world_x"`
	WorldY   *float64 `json:"world_y"`
	Passable *bool    `json:"passable"`
}

type RegionResponse struct {
	Region   string `json:"region"`
	Unlocked bool   `json:"unlocked"`
}

type RegionListResponse struct {
	Unlocked []string `json:"unlocked"`
}

type StatsResponse struct {
	Manager   streaming.Stats `json:"manager"`
	Loader    loader.Stats    `json:"loader"`
	Templates []string        `json:"templates"`
}
