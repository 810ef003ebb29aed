package catalog

// Book is one record in the remote collection. The server assigns IDs;
// an ID of zero means the book has not been created yet.
type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// Credential is a stored username/password pair used for local
// authentication. Passwords are stored as entered.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// FormDraft holds in-progress book input. When EditingID is non-zero the
// draft updates that book on submit; otherwise it creates a new one.
type FormDraft struct {
	Title  string
	Author string
	ISBN   string

	EditingID int64
}
