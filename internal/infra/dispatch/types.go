package dispatch

import "time"

type DeliveryTask struct {
	RecordID   string    `json:"-"`
	UserID     string    `json:"-"`
	ScheduleAt time.Time `json:"-"`

	IssueKey string `json:"issue_key,omitempty"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Tone     string `json:"tone"`
}

type TaskResponse struct {
	Name         string    `json:"name"`
	ScheduleTime time.Time `json:"schedule_time"`
	CreateTime   time.Time `json:"create_time"`
}

type primindTaskRequest struct {
	Task primindTask `json:"task"`
}

type primindTask struct {
	HTTPRequest  primindHTTPRequest `json:"httpRequest"`
	ScheduleTime string             `json:"scheduleTime,omitempty"`
}

type primindHTTPRequest struct {
	URL     string            `json:"url,omitempty"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

type primindTaskResponse struct {
	Name         string `json:"name"`
	ScheduleTime string `json:"scheduleTime"`
	CreateTime   string `json:"createTime"`
}
