package outbound

// TaskDispatcher runs tasks off the calling goroutine. *ants.Pool satisfies it.
type TaskDispatcher interface {
	Submit(task func()) error
}
