package types

// CatCreateRequest is the body of POST /v1/cats.
type CatCreateRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CatUpdateRequest is the body of PUT /v1/cats/:id.
type CatUpdateRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}
