package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ScheduleReadyMailData struct {
	FullName  string `json:"fullName"`
	RequestID string `json:"requestID"`
	Workers   int    `json:"workers"`
	Plots     int    `json:"plots"`
}

type ScheduleInfeasibleMailData struct {
	FullName  string `json:"fullName"`
	RequestID string `json:"requestID"`
	Message   string `json:"message"`
}

type CreatePlannerMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}
