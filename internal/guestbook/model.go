package guestbook

type Message struct {
	ID      int64  `db:"id" json:"-"`
	Name    string `db:"name" json:"name"`
	Message string `db:"message" json:"message"`
}

type listResponse struct {
	Messages []Message `json:"messages"`
}

type statusResponse struct {
	Status string `json:"status"`
}
