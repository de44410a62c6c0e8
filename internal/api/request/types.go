package request

// CredentialsRequest is the request body for registering and logging in
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateMovieRequest is the request body for adding a movie
type CreateMovieRequest struct {
	Title    string `json:"title"`
	Language string `json:"language,omitempty"`
	Overview string `json:"overview,omitempty"`
	Watched  bool   `json:"watched,omitempty"`
}

// UpdateMovieRequest is the request body for a partial movie update.
// Absent (or null) fields are left unchanged.
type UpdateMovieRequest struct {
	Title    *string `json:"title,omitempty"`
	Language *string `json:"language,omitempty"`
	Overview *string `json:"overview,omitempty"`
	Watched  *bool   `json:"watched,omitempty"`
}
