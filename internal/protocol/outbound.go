package protocol

// ChatIntent is the data of an outbound chat envelope
type ChatIntent struct {
	Text string `json:"text"`
	From string `json:"from"`
}

// TargetIntent is the data of an outbound vote or kill envelope
type TargetIntent struct {
	TargetID string `json:"targetId"`
	From     string `json:"from"`
}
