package backend

// envelope is the wrapper every admin endpoint replies with. Payload fields
// sit next to it under an operation-specific name.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
