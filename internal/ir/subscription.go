package ir

import "fmt"

// SubscriptionLog records the lifetime of one subscription in virtual frames.
//
// Subscribed <= Unsubscribed unless either is Infinity ("never").
type SubscriptionLog struct {
	Subscribed   int64 `json:"subscribed"`
	Unsubscribed int64 `json:"unsubscribed"`
}

// NewSubscriptionLog opens a log at frame with no end yet.
func NewSubscriptionLog(frame int64) SubscriptionLog {
	return SubscriptionLog{Subscribed: frame, Unsubscribed: Infinity}
}

// Open reports whether the subscription has not ended.
func (l SubscriptionLog) Open() bool {
	return l.Unsubscribed == Infinity
}

// String renders the log as (subscribed, unsubscribed).
func (l SubscriptionLog) String() string {
	return fmt.Sprintf("(%s, %s)", frameString(l.Subscribed), frameString(l.Unsubscribed))
}

func frameString(f int64) string {
	if f == Infinity {
		return "∞"
	}
	return fmt.Sprintf("%d", f)
}
