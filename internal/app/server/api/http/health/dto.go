package health

import "time"

type Input struct{}

type Output struct {
	Body Response
}

// Response is the reachability probe reply. Clients decide reachability
// by status code alone; the body carries the server clock so operators can
// diagnose last-write-wins disagreements caused by clock drift.
type Response struct {
	Status     string    `json:"status" example:"OK" doc:"Health status of the sync service"`
	ServerTime time.Time `json:"server_time" doc:"Current server time in UTC"`
}
