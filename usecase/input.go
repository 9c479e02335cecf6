package usecase

// CreateInput carries a create request after transport decoding.
type CreateInput struct {
	Title     string
	Completed bool
}
