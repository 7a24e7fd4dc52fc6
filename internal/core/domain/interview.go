package domain

// JobRole is one job description and the questions generated for it.
type JobRole struct {
	JobDescription string   `json:"job_description"`
	Questions      []string `json:"questions"`
}

// JobRecord groups every role saved under one job id.
type JobRecord struct {
	JobID string    `json:"jdid"`
	Roles []JobRole `json:"roles"`
}
