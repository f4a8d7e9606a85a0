package conversation

// PipelineObserver receives counters from the reply pipeline. The metrics package
// provides the Prometheus implementation.
type PipelineObserver interface {
	ObserveExtraction(outcome string)
	ObserveVariants(source string)
	ObserveReply(intent string)
	ObserveChatLogFailure(direction string)
	ObserveDelivery(err error)
	ObserveNotification(err error)
}

type noopObserver struct{}

func (noopObserver) ObserveExtraction(string)     {}
func (noopObserver) ObserveVariants(string)       {}
func (noopObserver) ObserveReply(string)          {}
func (noopObserver) ObserveChatLogFailure(string) {}
func (noopObserver) ObserveDelivery(error)        {}
func (noopObserver) ObserveNotification(error)    {}
