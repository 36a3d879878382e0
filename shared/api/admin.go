package api

type DeleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}
