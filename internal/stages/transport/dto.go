package transport

// StageResponse is one catalog row as returned to clients.
type StageResponse struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Key    string  `json:"key"`
	Colour *string `json:"colour,omitempty"`
}

// ResolveResponse reports the outcome of a stage resolution.
type ResolveResponse struct {
	Input        string `json:"input"`
	CanonicalKey string `json:"canonicalKey"`
	StageID      int    `json:"stageId"`
	StageName    string `json:"stageName,omitempty"`
}
