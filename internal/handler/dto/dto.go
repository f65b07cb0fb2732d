// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse represents an error response body. All error paths, handler
// and middleware alike, emit this one shape.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the stable machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreatePollRequest represents the request body for creating a poll.
type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// CastVoteRequest represents the request body for voting on a poll.
type CastVoteRequest struct {
	OptionID string `json:"option_id"`
}

// VoteResponse confirms a recorded vote.
type VoteResponse struct {
	Message string `json:"message"`
	VoteID  string `json:"vote_id"`
}

// ProjectRequest represents the request body for creating or updating a project.
type ProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	GithubLink  string   `json:"github_link,omitempty"`
	DemoLink    string   `json:"demo_link,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Version     string   `json:"version,omitempty"`
}

// SubmitFeedbackRequest represents the request body for submitting feedback.
type SubmitFeedbackRequest struct {
	ProjectID string `json:"project_id"`
	Rating    int    `json:"rating"`
	Category  string `json:"category"`
	Message   string `json:"message"`
}

// ReplyFeedbackRequest represents the request body for an admin reply.
type ReplyFeedbackRequest struct {
	Reply string `json:"reply"`
}

// StatsResponse represents the admin dashboard counters.
type StatsResponse struct {
	TotalUsers    int64 `json:"total_users"`
	TotalProjects int64 `json:"total_projects"`
	TotalFeedback int64 `json:"total_feedback"`
}
