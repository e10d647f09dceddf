package messaging

type ChangeTopic string

const (
	SearchTracked ChangeTopic = "tracking"
)
