package subscription

// Channel is the outbound half of one subscriber connection, as supplied by
// the transport layer. Implementations must be safe for concurrent use:
// Broadcast may call Send from many goroutines while the transport closes
// the connection.
type Channel interface {
	// Send writes one text message to the subscriber. It returns an error
	// once the channel is closed or its buffer is exhausted.
	Send(text string) error

	// Close terminates the connection with the given close code and reason.
	// Closing an already-closed channel is a no-op.
	Close(code int, reason string) error

	// Closed returns a channel that is closed exactly once, when the
	// connection terminates for any reason (either side).
	Closed() <-chan struct{}
}

// Close codes sent when a subscription channel is terminated, paired with
// their human-readable messages.
const (
	CloseAuthenticationError   = 1011
	CloseAuthorizationFailed   = 4001
	CloseInvalidSubscriptionID = 4002
	CloseMaxSubscriptions      = 4003

	// CloseNormal terminates subscribers of a webhook or bundle being
	// deleted.
	CloseNormal = 1000
)

// CloseMessage returns the human-readable message paired with a close code.
func CloseMessage(code int) string {
	switch code {
	case CloseAuthenticationError:
		return "Authentication Error"
	case CloseAuthorizationFailed:
		return "Authorization Failed"
	case CloseInvalidSubscriptionID:
		return "Invalid Subscription ID"
	case CloseMaxSubscriptions:
		return "Max Subscriptions Reached"
	case CloseNormal:
		return "Normal Closure"
	default:
		return ""
	}
}
