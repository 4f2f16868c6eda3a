package models

// Payment status values returned by the backend.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// Payment is the latest subscription payment of an organization. It gates
// per-item actions such as consuming a candidate video.
type Payment struct {
	ID               int64  `json:"id"`
	CVVideoRemaining int    `json:"cv_video_remaining"`
	Status           string `json:"status"`
}

// CanConsume reports whether another candidate can be consumed. A nil payment
// (none on record) cannot.
func (p *Payment) CanConsume() bool {
	if p == nil {
		return false
	}
	return p.Status != PaymentPending && p.CVVideoRemaining > 0
}
